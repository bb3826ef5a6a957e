package config

// EnvPrefix is passed to envconfig.Process; individual fields override it
// with fully qualified envconfig tags.
const EnvPrefix = "PROCUREFLOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "PROCUREFLOW_APP_ENV"
	EnvPort       = "PROCUREFLOW_APP_PORT"
	EnvDBDSN      = "PROCUREFLOW_DB_DSN"
	EnvDBHost     = "PROCUREFLOW_DB_HOST"
	EnvDBUser     = "PROCUREFLOW_DB_USER"
	EnvDBName     = "PROCUREFLOW_DB_NAME"
	EnvRedisURL   = "PROCUREFLOW_REDIS_URL"
	EnvJWTSecret  = "PROCUREFLOW_JWT_SECRET"
	EnvJWTIssuer  = "PROCUREFLOW_JWT_ISSUER"
	EnvJWTExpMins = "PROCUREFLOW_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "PROCUREFLOW_GCP_PROJECT_ID"

	EnvPubSubProcurementTopic = "PROCUREFLOW_PUBSUB_PROCUREMENT_TOPIC"
	EnvPubSubProcurementSub   = "PROCUREFLOW_PUBSUB_PROCUREMENT_SUBSCRIPTION"
)

// legacyDBEnvVars are the discrete connection vars accepted when a full DSN
// is not supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
