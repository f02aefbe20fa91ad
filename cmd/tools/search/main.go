// Registry search from the command line: prints matching live registry
// companies as a table.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/db"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: search <name fragment>")
	}
	query := strings.Join(os.Args[1:], " ")

	ctx := context.Background()
	live, err := db.ConnectLive(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer live.Close()

	store := db.NewStore(nil, live)
	companies, err := store.SearchCompanies(ctx, query)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Vendor", "Name", "Address", "Phone", "Email"})
	for _, c := range companies {
		t.AppendRow(table.Row{c.CompanyID, c.VendorID, c.Name, c.Address, c.Phone, c.Email})
	}
	t.Render()
	log.Printf("%d companies matched %q", len(companies), query)
}
