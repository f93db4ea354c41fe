package extract

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/turbolytics/kevetl/internal/kev"
)

// DefaultTimeout bounds the whole feed request, body included.
const DefaultTimeout = 30 * time.Second

var (
	// ErrBadStatus is returned when the feed answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected http status")
)

type Option func(*Extractor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(e *Extractor) {
		e.timeout = timeout
	}
}

// WithHTTPClient replaces the client used for the request. The extractor's
// timeout is applied on top of it through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		e.client = c
	}
}

func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		e.userAgent = ua
	}
}

// Extractor downloads and decodes the KEV catalog.
type Extractor struct {
	url       string
	timeout   time.Duration
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

func New(url string, opts ...Option) *Extractor {
	e := &Extractor{
		url:       url,
		timeout:   DefaultTimeout,
		userAgent: "kevetl",
		client:    http.DefaultClient,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) URL() string {
	return e.url
}

// Extract fetches the feed. Any failure, whether transport, status or decoding,
// is returned as an error and the catalog is nil. There is no retry.
func (e *Extractor) Extract(ctx context.Context) (*kev.Catalog, error) {
	e.logger.Info("beginning data extraction", zap.String("url", e.url))

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", e.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrBadStatus, e.url, resp.Status)
	}

	var c kev.Catalog
	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	e.logger.Info("extraction successful",
		zap.String("catalog_version", c.CatalogVersion),
		zap.Int("vulnerabilities", c.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return &c, nil
}
