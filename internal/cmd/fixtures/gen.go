package fixtures

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turbolytics/kevetl/internal/kev"
)

var (
	vendors   = []string{"Microsoft", "Apache", "Cisco", "Fortinet", "Ivanti", "VMware", "Citrix"}
	products  = []string{"Windows", "HTTP Server", "IOS XE", "FortiOS", "Connect Secure", "vCenter", "NetScaler"}
	ransomUse = []any{"Known", "Unknown", "known", "", nil}
	cwes      = []string{"CWE-20", "CWE-22", "CWE-78", "CWE-287", "CWE-502", "CWE-787"}
)

// Generate builds a synthetic catalog of n entries. Every malformedEvery-th
// entry carries an unparseable dateAdded; zero disables that.
func Generate(n, malformedEvery int, released time.Time, r *rand.Rand) *kev.Catalog {
	c := &kev.Catalog{
		Title:           "CISA Catalog of Known Exploited Vulnerabilities",
		CatalogVersion:  released.Format("2006.01.02"),
		DateReleased:    released.Format(time.RFC3339),
		Count:           n,
		Vulnerabilities: make([]kev.Vulnerability, 0, n),
	}

	for i := 0; i < n; i++ {
		added := released.AddDate(0, 0, -r.IntN(3650))
		due := added.AddDate(0, 0, 7+r.IntN(21))
		idx := r.IntN(len(vendors))

		v := kev.Vulnerability{
			kev.FieldCVEID:      fmt.Sprintf("CVE-%d-%05d", added.Year(), i+1),
			"vendorProject":     vendors[idx],
			"product":           products[idx],
			"vulnerabilityName": fmt.Sprintf("%s %s Vulnerability %d", vendors[idx], products[idx], i+1),
			kev.FieldDateAdded:  added.Format(kev.DateLayout),
			"shortDescription":  fmt.Sprintf("Synthetic entry %d", i+1),
			"requiredAction":    "Apply mitigations per vendor instructions or discontinue use of the product if mitigations are unavailable.",
			kev.FieldDueDate:    due.Format(kev.DateLayout),
			"notes":             "",
			"cwes":              []any{cwes[r.IntN(len(cwes))]},
		}
		if use := ransomUse[r.IntN(len(ransomUse))]; use != nil {
			v[kev.FieldKnownRansomwareCampaignUse] = use
		}
		if malformedEvery > 0 && (i+1)%malformedEvery == 0 {
			v[kev.FieldDateAdded] = "not-a-date"
		}
		c.Vulnerabilities = append(c.Vulnerabilities, v)
	}

	return c
}

func newGenerateCommand() *cobra.Command {
	var records int
	var malformedEvery int
	var seed uint64
	var out string

	var cmd = &cobra.Command{
		Use:   "generate",
		Short: "Writes a synthetic KEV catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if records < 0 {
				return fmt.Errorf("records must not be negative: %d", records)
			}

			r := rand.New(rand.NewPCG(seed, seed))
			c := Generate(records, malformedEvery, time.Now().UTC(), r)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			if err := enc.Encode(c); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", records, out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&records, "records", "r", 10, "Number of records to generate")
	cmd.Flags().IntVar(&malformedEvery, "malformed-every", 0, "Corrupt dateAdded on every Nth record (0 disables)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "kev.json", "Output file")
	return cmd
}
