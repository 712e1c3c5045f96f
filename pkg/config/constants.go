package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	OrderStatusSetLegacy = "legacy"
	OrderStatusSetFull   = "full"
)

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvDBDSN             = "STOREFRONT_DB_DSN"
	EnvDBHost            = "STOREFRONT_DB_HOST"
	EnvDBUser            = "STOREFRONT_DB_USER"
	EnvDBName            = "STOREFRONT_DB_NAME"
	EnvDBPassword        = "STOREFRONT_DB_PASSWORD"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvUseSQLite         = "STOREFRONT_USE_SQLITE"
	EnvReservationTTL    = "STOREFRONT_RESERVATION_TTL"
	EnvOrdersStatusSet   = "STOREFRONT_ORDERS_STATUS_SET"
	EnvAdminAPIKey       = "STOREFRONT_ADMIN_API_KEY"
	EnvLegacyStandardClr = "STOREFRONT_INVENTORY_LEGACY_STANDARD_COLOR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
