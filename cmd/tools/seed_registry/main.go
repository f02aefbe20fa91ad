// Dev-only seeding of the live registry table so search has something to
// find without a copy of the production registry.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	live, err := db.ConnectLive(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer live.Close()

	_, err = live.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tbl_company_mst (
			fldi_company_id  TEXT PRIMARY KEY,
			fldi_vendor_id   TEXT,
			fldv_companyname TEXT NOT NULL,
			fldv_address     TEXT,
			fldv_phone       TEXT,
			fldv_email       TEXT,
			fldv_website     TEXT
		)
	`)
	if err != nil {
		log.Fatalf("Failed to create registry table: %v", err)
	}

	seeds := []struct {
		ID, VendorID, Name, Address, Phone, Email, Website string
	}{
		{"NPX-1001", "NPX-1001", "Acme Oilfield Services Ltd", "12 Aba Road, Rumuola, Port Harcourt, Rivers", "+234-803-555-0101", "info@acmeoilfield.ng", "https://acmeoilfield.ng"},
		{"NPX-1002", "200045", "Globex Marine Logistics", "Plot 7 Creek Road, Apapa, Lagos", "+234-802-555-0144", "ops@globexmarine.ng", ""},
		{"NPX-1003", "NPX-1003", "Delta Valve & Fittings Nigeria", "3 Refinery Close, Effurun, Warri, Delta", "+234-805-555-0190", "sales@deltavalve.ng", ""},
		{"NPX-1004", "NPX-1004", "Savannah Drilling Supplies", "22 Airport Road, Oshodi, Lagos", "+234-809-555-0133", "contact@savannahdrilling.ng", "https://savannahdrilling.ng"},
		{"NPX-1005", "310887", "Harmattan Engineering Works", "15 Trans Amadi Industrial Layout, Port Harcourt, Rivers", "+234-806-555-0177", "hello@harmattaneng.ng", ""},
	}

	count := 0
	for _, s := range seeds {
		_, err := live.Exec(ctx, `
			INSERT INTO tbl_company_mst (
				fldi_company_id, fldi_vendor_id, fldv_companyname,
				fldv_address, fldv_phone, fldv_email, fldv_website
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (fldi_company_id) DO UPDATE SET
				fldv_companyname = EXCLUDED.fldv_companyname,
				fldv_address     = EXCLUDED.fldv_address,
				fldv_phone       = EXCLUDED.fldv_phone,
				fldv_email       = EXCLUDED.fldv_email,
				fldv_website     = EXCLUDED.fldv_website
		`, s.ID, s.VendorID, s.Name, s.Address, s.Phone, s.Email, s.Website)
		if err != nil {
			log.Printf("Failed to seed %s: %v", s.ID, err)
			continue
		}
		count++
	}

	log.Printf("Seeded %d registry companies", count)
}
