package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal"
	"github.com/turbolytics/kevetl/internal/extract"
	"github.com/turbolytics/kevetl/internal/load"
	"github.com/turbolytics/kevetl/internal/local"
	"github.com/turbolytics/kevetl/internal/parquet"
	"github.com/turbolytics/kevetl/internal/pipeline"
	"github.com/turbolytics/kevetl/internal/s3"
)

// InitializePipeline wires the extract, load and archive stages described
// by c. The load target is only opened when the pipeline runs.
func InitializePipeline(c *Config, l *zap.Logger) (*pipeline.Pipeline, error) {
	extractor := extract.New(
		c.Feed.URL,
		extract.WithTimeout(c.Feed.Timeout),
		extract.WithLogger(l.Named("extract")),
	)

	loader := load.New(
		load.Opener(c.TargetConfig(), l),
		load.WithLogger(l.Named("load")),
	)

	opts := []pipeline.Option{
		pipeline.WithLogger(l),
		pipeline.WithExtractor(extractor),
		pipeline.WithLoader(loader),
		pipeline.WithTargetName(fmt.Sprintf("%s.%s", c.Load.Database, c.Load.Collection)),
		pipeline.WithMetricsTextfile(c.Metrics.Textfile),
	}

	if c.Archive.Enabled {
		repository, err := InitializeRepository(c.Archive.Repository, l)
		if err != nil {
			return nil, err
		}
		preserver, err := parquet.New(
			parquet.WithLogger(l.Named("parquet")),
			parquet.WithSchema(parquet.KEVSchema),
			parquet.WithRepository(repository),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithPreserver(preserver))
	}

	return pipeline.New(opts...), nil
}

func InitializeRepository(r Repository, l *zap.Logger) (internal.Repository, error) {
	switch r.Type {
	case "local":
		return local.New(
			r.LocalConfig.Path,
			local.WithLogger(l.Named("local")),
		), nil
	case "s3":
		return s3.New(
			s3.WithLogger(l.Named("s3")),
			s3.WithRegion(r.S3Config.Region),
			s3.WithBucket(r.S3Config.Bucket),
			s3.WithEndpoint(r.S3Config.Endpoint),
			s3.WithPrefix(r.S3Config.Prefix),
			s3.WithForcePathStyle(r.S3Config.ForcePathStyle),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRepositoryType, r.Type)
	}
}
