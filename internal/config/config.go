package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/kevetl/internal/extract"
	"github.com/turbolytics/kevetl/internal/kev"
	"github.com/turbolytics/kevetl/internal/load"
)

const (
	DefaultDatabase   = "ssn_assignment_db"
	DefaultCollection = "cisa_kev_raw"
)

var (
	ErrFeedURLIsRequired       = errors.New("feed.url is required")
	ErrUnknownRepositoryType   = errors.New("unknown archive repository type")
	ErrArchivePathIsRequired   = errors.New("archive.repository.local.path is required")
	ErrArchiveBucketIsRequired = errors.New("archive.repository.s3.bucket is required")
)

type Logger struct {
	Level string `yaml:"level"`
}

type Feed struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Load struct {
	// ConnectionString is usually supplied through the environment. It is not
	// validated up front; a missing value fails the load step of the run.
	ConnectionString string `yaml:"connection_string"`
	Database         string `yaml:"database"`
	Collection       string `yaml:"collection"`
	Strategy         string `yaml:"strategy"`
}

type LocalConfig struct {
	Path string `yaml:"path"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Prefix         string `yaml:"prefix"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Repository struct {
	Type        string      `yaml:"type"`
	LocalConfig LocalConfig `yaml:"local"`
	S3Config    S3Config    `yaml:"s3"`
}

type Archive struct {
	Enabled    bool       `yaml:"enabled"`
	Repository Repository `yaml:"repository"`
}

type Metrics struct {
	Textfile string `yaml:"textfile"`
}

type Config struct {
	Logger  Logger  `yaml:"logger"`
	Feed    Feed    `yaml:"feed"`
	Load    Load    `yaml:"load"`
	Archive Archive `yaml:"archive"`
	Metrics Metrics `yaml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logger: Logger{Level: "info"},
		Feed: Feed{
			URL:     kev.DefaultFeedURL,
			Timeout: extract.DefaultTimeout,
		},
		Load: Load{
			Database:   DefaultDatabase,
			Collection: DefaultCollection,
			Strategy:   string(load.StrategyReplace),
		},
		Archive: Archive{
			Repository: Repository{Type: "local"},
		},
	}
}

// NewFromFile reads a YAML file on top of the defaults.
func NewFromFile(fpath string) (*Config, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fpath, err)
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return ErrFeedURLIsRequired
	}
	if _, err := url.ParseRequestURI(c.Feed.URL); err != nil {
		return fmt.Errorf("feed.url: %w", err)
	}

	switch load.Strategy(c.Load.Strategy) {
	case "", load.StrategyReplace, load.StrategySwap:
	default:
		return fmt.Errorf("%w: %q", load.ErrUnsupportedStrategy, c.Load.Strategy)
	}

	if c.Archive.Enabled {
		switch c.Archive.Repository.Type {
		case "local":
			if c.Archive.Repository.LocalConfig.Path == "" {
				return ErrArchivePathIsRequired
			}
		case "s3":
			if c.Archive.Repository.S3Config.Bucket == "" {
				return ErrArchiveBucketIsRequired
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownRepositoryType, c.Archive.Repository.Type)
		}
	}

	return nil
}

// TargetConfig is the load section in the shape the loader expects.
func (c *Config) TargetConfig() load.TargetConfig {
	return load.TargetConfig{
		ConnectionString: c.Load.ConnectionString,
		Database:         c.Load.Database,
		Collection:       c.Load.Collection,
		Strategy:         load.Strategy(c.Load.Strategy),
	}
}

// Build returns a development logger at the configured level.
func (l Logger) Build() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if l.Level != "" {
		lvl, err := zapcore.ParseLevel(l.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}
