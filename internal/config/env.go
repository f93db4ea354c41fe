package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. KEVETL_FEED_URL.
const EnvPrefix = "KEVETL"

// NewViper returns a viper instance bound to the KEVETL_ environment.
// MONGO_URI is honoured as a fallback for the load connection string.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("load.connection_string", EnvPrefix+"_LOAD_CONNECTION_STRING", "MONGO_URI")
	return v
}

// ApplyEnv overlays values present in v on top of c.
func (c *Config) ApplyEnv(v *viper.Viper) {
	setString(v, "logger.level", &c.Logger.Level)
	setString(v, "feed.url", &c.Feed.URL)
	if v.IsSet("feed.timeout") {
		c.Feed.Timeout = v.GetDuration("feed.timeout")
	}

	setString(v, "load.connection_string", &c.Load.ConnectionString)
	setString(v, "load.database", &c.Load.Database)
	setString(v, "load.collection", &c.Load.Collection)
	setString(v, "load.strategy", &c.Load.Strategy)

	if v.IsSet("archive.enabled") {
		c.Archive.Enabled = v.GetBool("archive.enabled")
	}
	setString(v, "archive.repository.type", &c.Archive.Repository.Type)
	setString(v, "archive.repository.local.path", &c.Archive.Repository.LocalConfig.Path)
	setString(v, "archive.repository.s3.bucket", &c.Archive.Repository.S3Config.Bucket)
	setString(v, "archive.repository.s3.region", &c.Archive.Repository.S3Config.Region)
	setString(v, "archive.repository.s3.prefix", &c.Archive.Repository.S3Config.Prefix)
	setString(v, "archive.repository.s3.endpoint", &c.Archive.Repository.S3Config.Endpoint)

	setString(v, "metrics.textfile", &c.Metrics.Textfile)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}
