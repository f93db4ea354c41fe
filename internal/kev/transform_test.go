package kev

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var now = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func decodeCatalog(t *testing.T, s string) *Catalog {
	t.Helper()
	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(s), &c))
	return &c
}

func TestTransform_EmptyInputs(t *testing.T) {
	tests := []struct {
		name    string
		catalog *Catalog
	}{
		{name: "nil catalog", catalog: nil},
		{name: "missing vulnerabilities key", catalog: decodeCatalog(t, `{"title":"x"}`)},
		{name: "null document", catalog: decodeCatalog(t, `null`)},
		{name: "empty vulnerabilities", catalog: decodeCatalog(t, `{"vulnerabilities":[]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform(tt.catalog, now, nil)
			assert.NotNil(t, res.Records)
			assert.Empty(t, res.Records)
			assert.Equal(t, 0, res.DateFailures)
		})
	}
}

func TestTransform_Scenario(t *testing.T) {
	c := decodeCatalog(t, `{"vulnerabilities":[{"cveID":"CVE-1","dateAdded":"2024-01-01","dueDate":"2024-01-15","knownRansomwareCampaignUse":"Known"}]}`)

	res := Transform(c, now, zap.NewNop())
	require.Len(t, res.Records, 1)

	r := res.Records[0]
	require.NotNil(t, r.DaysToPatch)
	assert.Equal(t, 14, *r.DaysToPatch)
	assert.True(t, r.IsRansomwareAssociated)
	assert.Equal(t, now, r.IngestionTimestamp)

	doc := r.Document()
	assert.Equal(t, "CVE-1", doc[FieldCVEID])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), doc[FieldDateAdded])
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), doc[FieldDueDate])
	assert.Equal(t, 14, doc[FieldDaysToPatch])
	assert.Equal(t, true, doc[FieldIsRansomwareAssociated])
	assert.Equal(t, "Known", doc[FieldKnownRansomwareCampaignUse])
}

func TestTransform_DaysToPatch(t *testing.T) {
	tests := []struct {
		name      string
		dateAdded string
		dueDate   string
		want      int
	}{
		{name: "two weeks", dateAdded: "2024-01-01", dueDate: "2024-01-15", want: 14},
		{name: "same day", dateAdded: "2024-05-05", dueDate: "2024-05-05", want: 0},
		{name: "due before added", dateAdded: "2024-01-15", dueDate: "2024-01-01", want: -14},
		{name: "across leap day", dateAdded: "2024-02-28", dueDate: "2024-03-01", want: 2},
		{name: "across years", dateAdded: "2021-11-03", dueDate: "2022-05-03", want: 181},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Catalog{Vulnerabilities: []Vulnerability{{
				FieldCVEID:     "CVE-X",
				FieldDateAdded: tt.dateAdded,
				FieldDueDate:   tt.dueDate,
			}}}
			res := Transform(c, now, nil)
			require.Len(t, res.Records, 1)
			require.NotNil(t, res.Records[0].DaysToPatch)
			assert.Equal(t, tt.want, *res.Records[0].DaysToPatch)
		})
	}
}

func TestTransform_BadDatesDegrade(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	c := &Catalog{Vulnerabilities: []Vulnerability{
		{FieldCVEID: "CVE-MISSING", FieldDueDate: "2024-01-15"},
		{FieldCVEID: "CVE-GARBAGE", FieldDateAdded: "01/02/2024", FieldDueDate: "2024-01-15"},
		{FieldCVEID: "CVE-NUMBER", FieldDateAdded: "2024-01-01", FieldDueDate: float64(20240115)},
		{FieldDateAdded: nil, FieldDueDate: "2024-01-15"},
		{FieldCVEID: "CVE-OK", FieldDateAdded: "2024-01-01", FieldDueDate: "2024-01-02"},
	}}

	res := Transform(c, now, logger)
	require.Len(t, res.Records, 5)
	assert.Equal(t, 4, res.DateFailures)

	missing := res.Records[0]
	assert.Nil(t, missing.DaysToPatch)
	assert.False(t, missing.DateAdded.Present)
	assert.ErrorIs(t, missing.DateAdded.Err, ErrMissingDate)
	doc := missing.Document()
	_, has := doc[FieldDateAdded]
	assert.False(t, has, "absent date must not be invented")
	assert.Nil(t, doc[FieldDaysToPatch])
	assert.Contains(t, doc, FieldDaysToPatch)

	garbage := res.Records[1].Document()
	assert.Equal(t, "01/02/2024", garbage[FieldDateAdded])
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), garbage[FieldDueDate])

	number := res.Records[2].Document()
	assert.Equal(t, float64(20240115), number[FieldDueDate])

	assert.Equal(t, "N/A", res.Records[3].CVEID())

	require.NotNil(t, res.Records[4].DaysToPatch)
	assert.Equal(t, 1, *res.Records[4].DaysToPatch)

	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, "CVE-MISSING", logs.All()[0].ContextMap()["cve_id"])
	assert.Equal(t, "N/A", logs.All()[3].ContextMap()["cve_id"])
}

func TestTransform_SharedTimestampAndOrder(t *testing.T) {
	c := &Catalog{}
	for _, id := range []string{"CVE-3", "CVE-1", "CVE-2"} {
		c.Vulnerabilities = append(c.Vulnerabilities, Vulnerability{FieldCVEID: id})
	}

	local := time.Date(2024, 3, 1, 7, 30, 0, 0, time.FixedZone("EST", -5*3600))
	res := Transform(c, local, nil)
	require.Len(t, res.Records, 3)
	for i, want := range []string{"CVE-3", "CVE-1", "CVE-2"} {
		assert.Equal(t, want, res.Records[i].CVEID())
		assert.Equal(t, now, res.Records[i].IngestionTimestamp)
		assert.Equal(t, time.UTC, res.Records[i].IngestionTimestamp.Location())
	}
}

func TestIsRansomwareAssociated(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{in: "Known", want: true},
		{in: "known", want: true},
		{in: "KNOWN", want: true},
		{in: "Unknown", want: false},
		{in: " known", want: false},
		{in: "", want: false},
		{in: nil, want: false},
		{in: true, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRansomwareAssociated(tt.in), "value %#v", tt.in)
	}

	res := Transform(&Catalog{Vulnerabilities: []Vulnerability{{FieldCVEID: "CVE-1"}}}, now, nil)
	assert.False(t, res.Records[0].IsRansomwareAssociated)
}

func TestTransform_KeepsRawFields(t *testing.T) {
	c := decodeCatalog(t, `{"vulnerabilities":[{"cveID":"CVE-2","vendorProject":"Acme","cwes":["CWE-79"],"notes":"n","dateAdded":"2024-01-01","dueDate":"2024-01-22"}]}`)
	doc := Transform(c, now, nil).Records[0].Document()
	assert.Equal(t, "Acme", doc["vendorProject"])
	assert.Equal(t, []any{"CWE-79"}, doc["cwes"])
	assert.Equal(t, "n", doc["notes"])
	assert.Equal(t, now, doc[FieldIngestionTimestamp])
	assert.Equal(t, false, doc[FieldIsRansomwareAssociated])
}
