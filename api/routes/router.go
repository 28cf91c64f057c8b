package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assetline-io/assetline-backend/api/controllers"
	"github.com/assetline-io/assetline-backend/api/middleware"
	assetsvc "github.com/assetline-io/assetline-backend/internal/assets"
	catalogsvc "github.com/assetline-io/assetline-backend/internal/catalog"
	purchasesvc "github.com/assetline-io/assetline-backend/internal/purchases"
	reportingsvc "github.com/assetline-io/assetline-backend/internal/reporting"
	requestsvc "github.com/assetline-io/assetline-backend/internal/requests"
	usersvc "github.com/assetline-io/assetline-backend/internal/users"
	vendorsvc "github.com/assetline-io/assetline-backend/internal/vendors"
	"github.com/assetline-io/assetline-backend/pkg/config"
	"github.com/assetline-io/assetline-backend/pkg/db"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/metrics"
	"github.com/assetline-io/assetline-backend/pkg/pubsub"
	"github.com/assetline-io/assetline-backend/pkg/redis"
	"github.com/assetline-io/assetline-backend/pkg/storage/local"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	PubSub      *pubsub.Client
	HTTPMetrics *metrics.HTTPMetrics
	Uploads     *local.Store

	Assets    assetsvc.Service
	Vendors   vendorsvc.Service
	Catalog   catalogsvc.Service
	Requests  requestsvc.Service
	Purchases purchasesvc.Service
	Users     usersvc.Service
	Reporting reportingsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Instrument)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, readyPingers(deps)))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	uploadsDir := http.Dir(cfg.Storage.UploadsDir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	adminRole := string(enums.UserRoleAdmin)
	maxUploadBytes := int64(cfg.Storage.MaxUploadMB) << 20

	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/profile", controllers.UserProfile(deps.Users, deps.Requests, logg))

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", controllers.AssetList(deps.Assets, logg))
			r.Get("/{assetId}", controllers.AssetGet(deps.Assets, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole, logg))
				r.Post("/", controllers.AssetCreate(deps.Assets, logg))
				r.Patch("/{assetId}", controllers.AssetUpdate(deps.Assets, logg))
				r.Delete("/{assetId}", controllers.AssetDelete(deps.Assets, logg))
				r.Post("/{assetId}/photo", controllers.AssetUploadPhoto(deps.Assets, deps.Uploads, logg, maxUploadBytes))
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", controllers.RequestList(deps.Requests, logg))
			r.Get("/{requestId}", controllers.RequestGet(deps.Requests, logg))
			r.Post("/", controllers.RequestSubmit(deps.Requests, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole, logg))
				r.Post("/{requestId}/approve", controllers.RequestApprove(deps.Requests, logg))
				r.Post("/create-and-approve", controllers.RequestCreateAndApprove(deps.Requests, logg))
			})
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Use(middleware.RequireRole(adminRole, logg))
			r.Get("/", controllers.PurchaseList(deps.Purchases, logg))
			r.Get("/{purchaseId}", controllers.PurchaseGet(deps.Purchases, logg))
			r.Post("/", controllers.PurchaseCreate(deps.Purchases, logg))
			r.Put("/{purchaseId}", controllers.PurchaseUpdate(deps.Purchases, logg))
			r.Delete("/{purchaseId}", controllers.PurchaseDelete(deps.Purchases, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.VendorList(deps.Vendors, logg))
			r.Get("/{vendorId}", controllers.VendorGet(deps.Vendors, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole, logg))
				r.Post("/", controllers.VendorCreate(deps.Vendors, logg))
				r.Put("/{vendorId}", controllers.VendorUpdate(deps.Vendors, logg))
				r.Delete("/{vendorId}", controllers.VendorDelete(deps.Vendors, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole, logg))
				r.Post("/", controllers.CategoryCreate(deps.Catalog, logg))
				r.Put("/{categoryId}", controllers.CategoryRename(deps.Catalog, logg))
				r.Delete("/{categoryId}", controllers.CategoryDelete(deps.Catalog, logg))
			})
		})

		r.Route("/subcategories", func(r chi.Router) {
			r.Get("/", controllers.SubcategoryList(deps.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole, logg))
				r.Post("/", controllers.SubcategoryCreate(deps.Catalog, logg))
				r.Put("/{subcategoryId}", controllers.SubcategoryRename(deps.Catalog, logg))
				r.Delete("/{subcategoryId}", controllers.SubcategoryDelete(deps.Catalog, logg))
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", controllers.BrandList(deps.Catalog, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(adminRole, logg))
				r.Post("/", controllers.BrandCreate(deps.Catalog, logg))
				r.Put("/{brandId}", controllers.BrandRename(deps.Catalog, logg))
				r.Delete("/{brandId}", controllers.BrandDelete(deps.Catalog, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(adminRole, logg))
			r.Get("/", controllers.UserList(deps.Users, logg))
			r.Post("/", controllers.UserCreate(deps.Users, deps.Uploads, logg, maxUploadBytes))
			r.Delete("/{userId}", controllers.UserDelete(deps.Users, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(adminRole, logg))
			r.Get("/dashboard", controllers.ReportDashboard(deps.Reporting, logg))
			r.Get("/requests", controllers.ReportRequestRegister(deps.Reporting, logg))
			r.Get("/purchases", controllers.ReportPurchaseRegister(deps.Reporting, logg))
			r.Get("/purchases/export", controllers.ReportPurchaseRegisterExport(deps.Reporting, logg))
		})
	})

	return r
}

func readyPingers(deps Deps) map[string]controllers.Pinger {
	pingers := map[string]controllers.Pinger{}
	if deps.Redis != nil {
		pingers["redis"] = deps.Redis
	}
	if deps.PubSub != nil {
		pingers["pubsub"] = deps.PubSub
	}
	return pingers
}
