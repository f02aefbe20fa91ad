package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/models"
)

func testFormatter() *Formatter {
	return NewFormatter(config.ExportConfig{
		CountryCode:  "NG",
		OrgUnit:      "NIPEX",
		TrailingCode: "KRED",
		SheetName:    "Suppliers",
	}, "UNKNOWN")
}

func company(id, name string) models.EnrichedCompany {
	return models.EnrichedCompany{
		CompanyCandidate: models.CompanyCandidate{
			CompanyID: id,
			Name:      name,
			Phone:     "+234-800-000",
			Email:     strings.ToLower(name) + "@example.com",
		},
		Town:         "PORT HARCOURT",
		BidderNumber: "0000000100",
	}
}

func TestRowLayout(t *testing.T) {
	c := company("V1", "acme")
	row := testFormatter().Row(c, 0, "0000000100")

	if len(row) != FieldCount {
		t.Fatalf("row has %d fields, want %d", len(row), FieldCount)
	}

	want := []string{
		"0000000100", "acme", "acme", "EN", "NG", "+234-800-000", "NG",
		"acme@example.com", "PORT HARCOURT", "NIPEX", "acme", "acme",
		"EN", "X", "V1", "KRED",
	}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("field %d = %q, want %q", i, row[i], w)
		}
	}
}

func TestRowBidderFallback(t *testing.T) {
	c := company("V1", "acme")
	c.BidderNumber = ""

	// Row 3 of a partially-sequenced selection derives base + 6.
	row := testFormatter().Row(c, 3, "0000000100")
	if row[0] != "0000000106" {
		t.Errorf("derived bidder = %q, want 0000000106", row[0])
	}

	// An explicitly set number wins over derivation.
	c.BidderNumber = "42"
	row = testFormatter().Row(c, 3, "0000000100")
	if row[0] != "0000000042" {
		t.Errorf("own bidder = %q, want 0000000042", row[0])
	}
}

func TestRowTownDefault(t *testing.T) {
	// Spec scenario: empty address, no resolved town. The export default and
	// the resolver fallback are one configured constant.
	c := models.EnrichedCompany{
		CompanyCandidate: models.CompanyCandidate{CompanyID: "V1", Name: "Acme Ltd"},
		BidderNumber:     "0000000100",
	}
	row := testFormatter().Row(c, 0, "0000000100")
	if row[0] != "0000000100" {
		t.Errorf("bidder = %q, want 0000000100", row[0])
	}
	if row[8] != "UNKNOWN" {
		t.Errorf("town = %q, want the configured default", row[8])
	}
}

func TestTextAndExcelAgree(t *testing.T) {
	f := testFormatter()
	companies := []models.EnrichedCompany{company("V1", "acme"), company("V2", "globex")}
	companies[1].BidderNumber = "" // exercise derivation in one row
	base := "0000000100"

	var text bytes.Buffer
	if err := f.WriteText(&text, companies, base); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	lines := strings.Split(strings.TrimRight(text.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 text lines, got %d", len(lines))
	}

	var xlsx bytes.Buffer
	if err := f.WriteExcel(&xlsx, companies, base); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(xlsx.Bytes()))
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Suppliers" {
		t.Fatalf("expected single sheet Suppliers, got %v", sheets)
	}

	rows, err := wb.GetRows("Suppliers")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != len(lines) {
		t.Fatalf("sheet has %d rows, text has %d lines", len(rows), len(lines))
	}

	for i := range lines {
		textFields := strings.Split(lines[i], "\t")
		if len(textFields) != FieldCount {
			t.Fatalf("line %d has %d fields", i, len(textFields))
		}
		for j, v := range textFields {
			if rows[i][j] != v {
				t.Errorf("row %d col %d: excel %q != text %q", i, j, rows[i][j], v)
			}
		}
	}
}
