package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry full names.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CASSPEA_DB_DSN"
	EnvDBHost = "CASSPEA_DB_HOST"
	EnvDBUser = "CASSPEA_DB_USER"
	EnvDBName = "CASSPEA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
