package parquet

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal"
	"github.com/turbolytics/kevetl/internal/kev"
)

const FileName = "kev.parquet"

type Option func(*Preserver)

func WithLogger(l *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = l
	}
}

func WithSchema(s Schema) Option {
	return func(p *Preserver) {
		p.schema = s
	}
}

func WithRepository(r internal.Repository) Option {
	return func(p *Preserver) {
		p.repository = r
	}
}

// Preserver archives a run's transformed records as a single parquet file.
type Preserver struct {
	schema     Schema
	repository internal.Repository
	logger     *zap.Logger
}

func New(opts ...Option) (*Preserver, error) {
	p := &Preserver{
		schema: KEVSchema,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.repository == nil {
		return nil, fmt.Errorf("parquet preserver requires a repository")
	}
	return p, nil
}

func (p *Preserver) Repository() internal.Repository {
	return p.repository
}

// Encode writes records as parquet into a buffer.
func (p *Preserver) Encode(records []kev.Record) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	pw, err := writer.NewCSVWriterFromWriter(p.schema.ToGoParquetSchema(), &buf, 1)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = pq.CompressionCodec_SNAPPY

	for _, r := range records {
		row, err := p.schema.RecordToParquetRow(r)
		if err != nil {
			return nil, err
		}
		if err := pw.Write(row); err != nil {
			return nil, fmt.Errorf("writing %s: %w", r.CVEID(), err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Preserve encodes records and stores them under <run-id>/kev.parquet,
// returning the artifact location.
func (p *Preserver) Preserve(ctx context.Context, runID uuid.UUID, records []kev.Record) (string, error) {
	buf, err := p.Encode(records)
	if err != nil {
		return "", err
	}

	key := path.Join(runID.String(), FileName)
	p.logger.Info("preserving snapshot",
		zap.String("key", key),
		zap.Int("records", len(records)),
		zap.Int("bytes", buf.Len()),
	)

	if err := p.repository.Write(ctx, key, buf); err != nil {
		return "", err
	}
	return p.repository.Location(key), nil
}
