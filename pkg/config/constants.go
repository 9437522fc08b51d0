package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "huisvind"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv = "HUISVIND_APP_ENV"
	EnvPort   = "HUISVIND_APP_PORT"
	EnvDBDSN  = "HUISVIND_DB_DSN"
	EnvDBHost = "HUISVIND_DB_HOST"
	EnvDBUser = "HUISVIND_DB_USER"
	EnvDBName = "HUISVIND_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
