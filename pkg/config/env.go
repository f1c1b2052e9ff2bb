package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "ENGAGE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ENGAGE_DB_DSN"
	EnvDBHost = "ENGAGE_DB_HOST"
	EnvDBUser = "ENGAGE_DB_USER"
	EnvDBName = "ENGAGE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
