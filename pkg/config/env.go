package config

const EnvPrefix = "ASSETLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "ASSETLINE_APP_ENV"
	EnvPort     = "ASSETLINE_APP_PORT"
	EnvLogLevel = "ASSETLINE_LOG_LEVEL"

	EnvDBDSN  = "ASSETLINE_DB_DSN"
	EnvDBHost = "ASSETLINE_DB_HOST"
	EnvDBUser = "ASSETLINE_DB_USER"
	EnvDBName = "ASSETLINE_DB_NAME"

	EnvRedisURL = "ASSETLINE_REDIS_URL"

	EnvJWTSecret  = "ASSETLINE_JWT_SECRET"
	EnvJWTIssuer  = "ASSETLINE_JWT_ISSUER"
	EnvJWTExpMins = "ASSETLINE_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "ASSETLINE_GCP_PROJECT_ID"

	EnvPubSubNotificationTopic = "ASSETLINE_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "ASSETLINE_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
