package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat    = "STOREFRONT_LOG_FORMAT"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"

	EnvDBDSN      = "STOREFRONT_DB_DSN"
	EnvDBDriver   = "STOREFRONT_DB_DRIVER"
	EnvDBHost     = "STOREFRONT_DB_HOST"
	EnvDBPort     = "STOREFRONT_DB_PORT"
	EnvDBUser     = "STOREFRONT_DB_USER"
	EnvDBPassword = "STOREFRONT_DB_PASSWORD"
	EnvDBName     = "STOREFRONT_DB_NAME"
	EnvDBSSLMode  = "STOREFRONT_DB_SSLMODE"
	EnvDBRequired = "STOREFRONT_DB_REQUIRED"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "STOREFRONT_USE_SQLITE"
	EnvSQLitePath  = "STOREFRONT_SQLITE_PATH"
	EnvAutoMigrate = "STOREFRONT_AUTO_MIGRATE"

	EnvCORSAllowedOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"

	EnvUploadsDir   = "STOREFRONT_UPLOADS_DIR"
	EnvMaxUploadMB  = "STOREFRONT_MAX_UPLOAD_MB"
	EnvEventChannel = "STOREFRONT_EVENTS_REDIS_CHANNEL"
	EnvEventBuffer  = "STOREFRONT_EVENTS_SUBSCRIBER_BUFFER"

	EnvSeedAdminUsername = "STOREFRONT_SEED_ADMIN_USERNAME"
	EnvSeedAdminEmail    = "STOREFRONT_SEED_ADMIN_EMAIL"
	EnvSeedAdminPassword = "STOREFRONT_SEED_ADMIN_PASSWORD"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
