package internal

import (
	"context"
	"io"
)

// Repository stores run artifacts by key, e.g. "<run-id>/catalog.json".
type Repository interface {
	Write(ctx context.Context, key string, reader io.Reader) error
	// Location describes where a key ends up, for logging and the run catalog.
	Location(key string) string
}
