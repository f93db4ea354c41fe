package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/turbolytics/kevetl/internal"
)

/*
The catalog is a record of one ETL run.
It is the primitive for verifying, inventorying and auditing
what each run extracted and loaded.
*/

const FileName = "catalog.json"

// Catalog represents the outcome of a single run.
type Catalog struct {
	RunID     uuid.UUID `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Source         string `json:"source"`
	CatalogVersion string `json:"catalog_version,omitempty"`
	Target         string `json:"target,omitempty"`
	Archive        string `json:"archive,omitempty"`

	NumSourceRecords    int `json:"num_source_records"`
	NumRecordsProcessed int `json:"num_records_processed"`
	NumDateFailures     int `json:"num_date_failures"`
	NumRecordsLoaded    int `json:"num_records_loaded"`

	ExtractError string `json:"extract_error,omitempty"`
	LoadError    string `json:"load_error,omitempty"`
	ArchiveError string `json:"archive_error,omitempty"`

	Completed bool `json:"completed"`
}

func New(runID uuid.UUID, source string, start time.Time) *Catalog {
	return &Catalog{
		RunID:     runID,
		Source:    source,
		StartTime: start,
	}
}

// Success reports whether data was extracted and loaded without error.
func (c *Catalog) Success() bool {
	return c.Completed && c.ExtractError == "" && c.LoadError == ""
}

func (c *Catalog) Duration() time.Duration {
	if c.EndTime.IsZero() {
		return 0
	}
	return c.EndTime.Sub(c.StartTime)
}

// Key is where the catalog is stored inside a repository.
func (c *Catalog) Key() string {
	return path.Join(c.RunID.String(), FileName)
}

// Write stores the catalog as indented JSON.
func (c *Catalog) Write(ctx context.Context, repo internal.Repository) error {
	bs, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return repo.Write(ctx, c.Key(), bytes.NewReader(bs))
}
