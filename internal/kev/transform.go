package kev

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Result summarizes one Transform call.
type Result struct {
	Records      []Record
	DateFailures int
}

// Transform enriches every vulnerability in the catalog. now is stamped on every
// record unchanged, so the caller must sample it once per run. A nil catalog or
// a catalog without vulnerabilities yields an empty, non-nil slice. Records whose
// dates cannot be parsed are kept with DaysToPatch left nil.
func Transform(c *Catalog, now time.Time, logger *zap.Logger) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	if c.Len() == 0 {
		logger.Info("no vulnerabilities found in the raw data")
		return Result{Records: []Record{}}
	}

	now = now.UTC()
	res := Result{Records: make([]Record, 0, len(c.Vulnerabilities))}
	for _, v := range c.Vulnerabilities {
		r := transformOne(v, now)
		if r.DaysToPatch == nil {
			res.DateFailures++
			logger.Warn("could not process dates",
				zap.String("cve_id", r.CVEID()),
				zap.NamedError("date_added_error", r.DateAdded.Err),
				zap.NamedError("due_date_error", r.DueDate.Err),
			)
		}
		res.Records = append(res.Records, r)
	}

	logger.Info("transformation complete",
		zap.Int("records", len(res.Records)),
		zap.Int("date_failures", res.DateFailures),
	)
	return res
}

func transformOne(v Vulnerability, now time.Time) Record {
	if v == nil {
		v = Vulnerability{}
	}

	added, ok := v[FieldDateAdded]
	due, dueOK := v[FieldDueDate]

	r := Record{
		Raw:                    v,
		IngestionTimestamp:     now,
		DateAdded:              ParseDate(added, ok),
		DueDate:                ParseDate(due, dueOK),
		IsRansomwareAssociated: IsRansomwareAssociated(v[FieldKnownRansomwareCampaignUse]),
	}

	if r.DateAdded.Valid && r.DueDate.Valid {
		days := DaysBetween(r.DateAdded.Time, r.DueDate.Time)
		r.DaysToPatch = &days
	}

	return r
}

// DaysBetween returns the whole days from start to end; negative when end is
// before start.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

// IsRansomwareAssociated reports whether a knownRansomwareCampaignUse value is
// "known", ignoring case. Anything else, including non-strings, is false.
func IsRansomwareAssociated(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.EqualFold(s, "known")
}
