package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"production"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	RedisURL      string `envconfig:"REDIS_URL" required:"true"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Blob storage holding message content, one object per message id.
	S3URL            string `envconfig:"S3_URL" required:"true"`
	S3Region         string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY" required:"true"`
	MessageContainer string `envconfig:"MESSAGE_CONTAINER_NAME" required:"true"`

	ServiceCacheTTLSec  int `envconfig:"SERVICE_CACHE_TTL_DURATION" default:"3600"`
	RCConfigCacheTTLSec int `envconfig:"RC_CONFIGURATION_CACHE_TTL_DURATION" default:"3600"`

	// Message list source selection. With UseFallback set, every request is
	// served by the legacy three-store pipeline regardless of the flag type.
	UseFallback        bool   `envconfig:"USE_FALLBACK" default:"true"`
	FFType             string `envconfig:"FF_TYPE" default:"none"`
	FFBetaTesters      string `envconfig:"FF_BETA_TESTERS"`
	FFCanaryUsersRegex string `envconfig:"FF_CANARY_USERS_REGEX"`

	// Service id registered for the third-party (PN) integration.
	PNServiceID string `envconfig:"PN_SERVICE_ID"`

	// JSON object mapping service ids to remote-content configuration ids,
	// used when a message does not carry an explicit configuration id.
	ServiceToRCConfigurationMap string `envconfig:"SERVICE_TO_RC_CONFIGURATION_MAP" default:"{}"`

	// Pub/Sub tracking of enrichment failures. Disabled when the project id
	// is empty.
	GCPProjectID  string `envconfig:"GCP_PROJECT_ID"`
	TrackingTopic string `envconfig:"TRACKING_TOPIC" default:"message-enrichment-failures"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
