package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/turbolytics/kevetl/internal"
	"github.com/turbolytics/kevetl/internal/catalog"
	"github.com/turbolytics/kevetl/internal/kev"
	"github.com/turbolytics/kevetl/internal/metrics"
)

type Extractor interface {
	URL() string
	Extract(ctx context.Context) (*kev.Catalog, error)
}

type Loader interface {
	Load(ctx context.Context, records []kev.Record) (int, error)
}

// Preserver archives the transformed snapshot. Its repository also receives
// the run catalog.
type Preserver interface {
	Preserve(ctx context.Context, runID uuid.UUID, records []kev.Record) (string, error)
	Repository() internal.Repository
}

type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

func WithLoader(l Loader) Option {
	return func(p *Pipeline) {
		p.loader = l
	}
}

func WithPreserver(pr Preserver) Option {
	return func(p *Pipeline) {
		p.preserver = pr
	}
}

func WithClock(c clock.PassiveClock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithTargetName labels the load target in the run catalog.
func WithTargetName(name string) Option {
	return func(p *Pipeline) {
		p.targetName = name
	}
}

// WithMetricsTextfile writes run gauges to path after every run.
func WithMetricsTextfile(path string) Option {
	return func(p *Pipeline) {
		p.metricsPath = path
	}
}

// Pipeline runs one extract, transform and load cycle.
type Pipeline struct {
	extractor   Extractor
	loader      Loader
	preserver   Preserver
	clock       clock.PassiveClock
	logger      *zap.Logger
	targetName  string
	metricsPath string
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		clock:  clock.RealClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the cycle. Stage failures are logged and recorded in the
// returned catalog; they never abort the process. A failed extraction skips
// transform and load entirely.
func (p *Pipeline) Run(ctx context.Context) *catalog.Catalog {
	runID := uuid.New()
	c := catalog.New(runID, p.extractor.URL(), p.clock.Now().UTC())
	c.Target = p.targetName

	l := p.logger.With(zap.String("run_id", runID.String()))
	l.Info("kev etl process started")

	defer p.finish(ctx, l, c)

	// 1. Extract
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		l.Error("error during data extraction", zap.Error(err))
		c.ExtractError = err.Error()
		return c
	}
	c.CatalogVersion = raw.CatalogVersion
	c.NumSourceRecords = raw.Len()

	// 2. Transform, with one ingestion instant for the whole batch
	ingestedAt := p.clock.Now().UTC()
	res := kev.Transform(raw, ingestedAt, l.Named("transform"))
	c.NumRecordsProcessed = len(res.Records)
	c.NumDateFailures = res.DateFailures

	// 3. Load
	n, err := p.loader.Load(ctx, res.Records)
	c.NumRecordsLoaded = n
	if err != nil {
		l.Error("error during data loading", zap.Error(err))
		c.LoadError = err.Error()
	}

	// 4. Archive
	if p.preserver != nil && len(res.Records) > 0 {
		loc, err := p.preserver.Preserve(ctx, runID, res.Records)
		if err != nil {
			l.Error("error archiving snapshot", zap.Error(err))
			c.ArchiveError = err.Error()
		}
		c.Archive = loc
	}

	c.Completed = true
	return c
}

func (p *Pipeline) finish(ctx context.Context, l *zap.Logger, c *catalog.Catalog) {
	c.EndTime = p.clock.Now().UTC()

	if p.preserver != nil {
		if err := c.Write(ctx, p.preserver.Repository()); err != nil {
			l.Error("error writing run catalog", zap.Error(err))
		}
	}

	if p.metricsPath != "" {
		m := metrics.NewRun()
		m.Observe(c)
		if err := m.WriteTextfile(p.metricsPath); err != nil {
			l.Error("error writing metrics textfile",
				zap.String("path", p.metricsPath),
				zap.Error(err),
			)
		}
	}

	l.Info("kev etl process finished",
		zap.Bool("success", c.Success()),
		zap.Int("extracted", c.NumSourceRecords),
		zap.Int("loaded", c.NumRecordsLoaded),
		zap.Int("date_failures", c.NumDateFailures),
		zap.Duration("duration", c.Duration()),
	)
}

