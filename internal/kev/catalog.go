package kev

// DefaultFeedURL is the published location of the CISA Known Exploited
// Vulnerabilities catalog.
const DefaultFeedURL = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"

// Catalog is the document served by the KEV feed.
type Catalog struct {
	Title          string `json:"title,omitempty"`
	CatalogVersion string `json:"catalogVersion,omitempty"`
	DateReleased   string `json:"dateReleased,omitempty"`
	Count          int    `json:"count,omitempty"`

	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Len returns the number of raw vulnerabilities, treating a nil catalog as empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Vulnerabilities)
}

// Vulnerability is a raw catalog entry. The feed schema is loose, so values are
// kept exactly as decoded and every key is carried through to the stored
// document.
type Vulnerability map[string]any

// CVEID returns the entry identifier, or "N/A" when it is missing or not a string.
func (v Vulnerability) CVEID() string {
	if id, ok := v[FieldCVEID].(string); ok && id != "" {
		return id
	}
	return "N/A"
}

// Field names of the feed and of the derived document.
const (
	FieldCVEID                      = "cveID"
	FieldDateAdded                  = "dateAdded"
	FieldDueDate                    = "dueDate"
	FieldKnownRansomwareCampaignUse = "knownRansomwareCampaignUse"

	FieldIngestionTimestamp     = "ingestionTimestamp"
	FieldDaysToPatch            = "daysToPatch"
	FieldIsRansomwareAssociated = "isRansomwareAssociated"
)
