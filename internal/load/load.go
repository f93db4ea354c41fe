package load

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal/kev"
)

//go:generate mockgen -source=load.go -destination=mock_target_test.go -package=load

var (
	ErrUnsupportedTarget   = errors.New("unsupported target")
	ErrUnsupportedStrategy = errors.New("unsupported load strategy")
)

// Target is a store whose collection can be replaced wholesale.
type Target interface {
	Name() string
	Connect(ctx context.Context) error
	// Replace removes every existing document and inserts records in order,
	// returning the number inserted.
	Replace(ctx context.Context, records []kev.Record) (int, error)
	Disconnect(ctx context.Context) error
}

// OpenFunc builds a target. It is only invoked when there is something to load,
// so configuration problems surface as load failures rather than at startup.
type OpenFunc func() (Target, error)

type Option func(*Loader)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

type Loader struct {
	open   OpenFunc
	logger *zap.Logger
}

func New(open OpenFunc, opts ...Option) *Loader {
	l := &Loader{
		open:   open,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the target contents with records. An empty batch is a no-op:
// the target is not opened, so whatever the previous run stored stays in place.
// Nothing is rolled back when the insert fails after the clear.
func (l *Loader) Load(ctx context.Context, records []kev.Record) (int, error) {
	if len(records) == 0 {
		l.logger.Info("no records to load")
		return 0, nil
	}

	target, err := l.open()
	if err != nil {
		return 0, err
	}

	l.logger.Info("beginning data loading",
		zap.String("target", target.Name()),
		zap.Int("records", len(records)),
	)

	// Disconnect is deferred ahead of Connect so a half-open client is released too.
	defer func() {
		if err := target.Disconnect(context.WithoutCancel(ctx)); err != nil {
			l.logger.Warn("error disconnecting from target", zap.Error(err))
		}
	}()

	if err := target.Connect(ctx); err != nil {
		return 0, fmt.Errorf("connecting to %s: %w", target.Name(), err)
	}

	n, err := target.Replace(ctx, records)
	if err != nil {
		return n, fmt.Errorf("replacing %s: %w", target.Name(), err)
	}

	if n != len(records) {
		l.logger.Warn("inserted count differs from batch size",
			zap.Int("inserted", n),
			zap.Int("records", len(records)),
		)
	}

	l.logger.Info("loading successful",
		zap.String("target", target.Name()),
		zap.Int("inserted", n),
	)
	return n, nil
}
