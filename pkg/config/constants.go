package config

// EnvPrefix namespaces every environment variable consumed by envconfig.
const EnvPrefix = "RENTKART"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "RENTKART_APP_ENV"

	EnvDBDSN  = "RENTKART_DB_DSN"
	EnvDBHost = "RENTKART_DB_HOST"
	EnvDBUser = "RENTKART_DB_USER"
	EnvDBName = "RENTKART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
