package parquet

import (
	"fmt"
	"strings"
	"time"

	"github.com/turbolytics/kevetl/internal/kev"
)

type Field struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	ConvertedType  string `yaml:"converted_type,omitempty"`
	RepetitionType string `yaml:"repetition_type"`
}

type Schema []Field

// ToGoParquetSchema renders the schema as the metadata strings understood by
// the parquet-go CSV writer.
func (s Schema) ToGoParquetSchema() []string {
	schema := make([]string, len(s))
	for i, field := range s {
		parts := []string{
			fmt.Sprintf("name=%s", field.Name),
			fmt.Sprintf("type=%s", field.Type),
		}
		if field.ConvertedType != "" {
			parts = append(parts, fmt.Sprintf("convertedtype=%s", field.ConvertedType))
		}
		if field.RepetitionType != "" {
			parts = append(parts, fmt.Sprintf("repetitiontype=%s", field.RepetitionType))
		}
		schema[i] = strings.Join(parts, ", ")
	}

	return schema
}

// RecordToParquetRow maps a transformed record onto the schema columns. Missing
// or unconvertible values become nulls; an unparsed date is stored as null.
func (s Schema) RecordToParquetRow(r kev.Record) ([]any, error) {
	doc := r.Document()
	row := make([]any, len(s))

	for i, field := range s {
		v, ok := doc[field.Name]
		if !ok || v == nil {
			if field.RepetitionType != "OPTIONAL" {
				return nil, fmt.Errorf("%s: required field %q is missing", r.CVEID(), field.Name)
			}
			continue
		}

		// apply the mapper functions
		switch field.ConvertedType {
		case "DATE":
			t, ok := v.(time.Time)
			if !ok {
				continue
			}
			row[i] = int32(t.Unix() / 86400)
			continue
		case "TIMESTAMP_MILLIS":
			t, ok := v.(time.Time)
			if !ok {
				continue
			}
			row[i] = t.UnixMilli()
			continue
		}

		switch field.Type {
		case "BYTE_ARRAY":
			row[i] = stringValue(v)
		case "INT32":
			n, ok := v.(int)
			if !ok {
				continue
			}
			row[i] = int32(n)
		case "BOOLEAN":
			b, ok := v.(bool)
			if !ok {
				continue
			}
			row[i] = b
		default:
			return nil, fmt.Errorf("unsupported parquet type: %q", field.Type)
		}
	}

	return row, nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
