package load

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal/integrations/mongo"
	"github.com/turbolytics/kevetl/internal/integrations/postgres"
)

type Strategy string

const (
	// StrategyReplace clears the collection, then inserts.
	StrategyReplace Strategy = "replace"
	// StrategySwap fills a shadow collection and renames it over the target.
	StrategySwap Strategy = "swap"
)

type TargetConfig struct {
	ConnectionString string
	Database         string
	Collection       string
	Strategy         Strategy
}

// Opener returns an OpenFunc choosing the target implementation from the
// connection string scheme.
func Opener(c TargetConfig, logger *zap.Logger) OpenFunc {
	return func() (Target, error) {
		return NewTarget(c, logger)
	}
}

func NewTarget(c TargetConfig, logger *zap.Logger) (Target, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	u, err := url.Parse(c.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	strategy := c.Strategy
	if strategy == "" {
		strategy = StrategyReplace
	}
	if strategy != StrategyReplace && strategy != StrategySwap {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, strategy)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return mongo.NewTarget(
			c.ConnectionString,
			c.Database,
			c.Collection,
			mongo.WithLogger(logger.Named("mongo")),
			mongo.WithSwap(strategy == StrategySwap),
		), nil
	case "postgres", "postgresql":
		if strategy == StrategySwap {
			logger.Info("postgres target always replaces inside a transaction, swap is implied")
		}
		return postgres.NewTarget(
			c.ConnectionString,
			c.Database,
			c.Collection,
			postgres.WithLogger(logger.Named("postgres")),
		), nil
	case "":
		return nil, fmt.Errorf("%w: empty connection string", ErrUnsupportedTarget)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTarget, u.Scheme)
	}
}
