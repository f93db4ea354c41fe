package kev

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date layout used by the feed.
const DateLayout = "2006-01-02"

// ErrMissingDate is reported for a date column that is absent from an entry.
var ErrMissingDate = errors.New("missing date")

// DateField is the outcome of parsing one date column. When Valid is false the
// raw value is kept as-is; Present reports whether the key existed at all.
type DateField struct {
	Time    time.Time
	Valid   bool
	Raw     any
	Present bool
	Err     error
}

// ParseDate parses a raw feed value as a YYYY-MM-DD date at UTC midnight.
func ParseDate(raw any, present bool) DateField {
	f := DateField{Raw: raw, Present: present}
	if !present {
		f.Err = ErrMissingDate
		return f
	}

	s, ok := raw.(string)
	if !ok {
		f.Err = fmt.Errorf("expected string, got %T", raw)
		return f
	}

	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		f.Err = err
		return f
	}

	f.Time = t
	f.Valid = true
	return f
}

// Value is what gets stored for the field: the parsed time, or the untouched raw
// value when parsing failed.
func (f DateField) Value() any {
	if f.Valid {
		return f.Time
	}
	return f.Raw
}

// Record is a transformed catalog entry.
type Record struct {
	Raw Vulnerability

	IngestionTimestamp time.Time
	DateAdded          DateField
	DueDate            DateField

	// DaysToPatch is nil unless both dates parsed.
	DaysToPatch            *int
	IsRansomwareAssociated bool
}

// CVEID returns the identifier of the underlying entry.
func (r Record) CVEID() string {
	return r.Raw.CVEID()
}

// Document flattens the record into the shape that is persisted: every raw key,
// with the date columns re-typed where possible and the derived fields added.
func (r Record) Document() map[string]any {
	doc := make(map[string]any, len(r.Raw)+3)
	for k, v := range r.Raw {
		doc[k] = v
	}

	if r.DateAdded.Present {
		doc[FieldDateAdded] = r.DateAdded.Value()
	}
	if r.DueDate.Present {
		doc[FieldDueDate] = r.DueDate.Value()
	}

	doc[FieldIngestionTimestamp] = r.IngestionTimestamp
	if r.DaysToPatch != nil {
		doc[FieldDaysToPatch] = *r.DaysToPatch
	} else {
		doc[FieldDaysToPatch] = nil
	}
	doc[FieldIsRansomwareAssociated] = r.IsRansomwareAssociated

	return doc
}

// Documents converts a batch of records, preserving order.
func Documents(records []Record) []map[string]any {
	docs := make([]map[string]any, len(records))
	for i, r := range records {
		docs[i] = r.Document()
	}
	return docs
}
