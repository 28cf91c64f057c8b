package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/assetline-io/assetline-backend/api/responses"
	"github.com/assetline-io/assetline-backend/pkg/config"
	"github.com/assetline-io/assetline-backend/pkg/db"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/logger"
)

const readyCheckTimeout = 5 * time.Second

// Pinger is the health check surface shared by redis, pubsub and friends.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Assetline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency. A nil pinger is skipped so
// workers can reuse the handler with a partial set.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Assetline-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			checks["database"] = "ok"
		}

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			checks[name] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
