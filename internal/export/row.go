// Package export renders the working selection into the fixed 16-column
// supplier upload layout, shared by the tab-delimited text stream and the
// Excel sheet.
package export

import (
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/sequence"
)

// FieldCount is the fixed number of columns in a supplier row.
const FieldCount = 16

const (
	locale  = "EN"
	flagSet = "X"
)

// Formatter maps enriched companies to upload rows. The town default is the
// resolver's fallback town: one configured constant serves both.
type Formatter struct {
	countryCode  string
	orgUnit      string
	trailingCode string
	defaultTown  string
	sheetName    string
}

func NewFormatter(cfg config.ExportConfig, defaultTown string) *Formatter {
	return &Formatter{
		countryCode:  cfg.CountryCode,
		orgUnit:      cfg.OrgUnit,
		trailingCode: cfg.TrailingCode,
		defaultTown:  defaultTown,
		sheetName:    cfg.SheetName,
	}
}

// Row renders one company into its 16 field values. The leading field is the
// bidder number: the row's own when set, otherwise derived as
// base + 2*rowIndex so export stays correct on partially-sequenced
// selections. Field order and semantics are identical for both
// serializations.
func (f *Formatter) Row(c models.EnrichedCompany, rowIndex int, base string) []string {
	town := c.Town
	if town == "" {
		town = f.defaultTown
	}

	return []string{
		sequence.Derive(c.BidderNumber, base, rowIndex),
		c.Name,
		c.Name,
		locale,
		f.countryCode,
		c.Phone,
		f.countryCode,
		c.Email,
		town,
		f.orgUnit,
		c.Name,
		c.Name,
		locale,
		flagSet,
		c.CompanyID,
		f.trailingCode,
	}
}

// Rows renders the whole selection in order.
func (f *Formatter) Rows(companies []models.EnrichedCompany, base string) [][]string {
	rows := make([][]string, len(companies))
	for i, c := range companies {
		rows[i] = f.Row(c, i, base)
	}
	return rows
}
