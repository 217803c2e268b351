package config

const (
	EnvPrefix = "DESKLINO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "DESKLINO_APP_ENV"
	EnvDBDSN  = "DESKLINO_DB_DSN"
	EnvDBHost = "DESKLINO_DB_HOST"
	EnvDBUser = "DESKLINO_DB_USER"
	EnvDBName = "DESKLINO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
