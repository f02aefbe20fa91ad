// One-shot town resolution: feed it an address, get the town the pipeline
// would assign.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/geocode"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: resolve_town <full address>")
	}
	address := strings.Join(os.Args[1:], " ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	client := geocode.NewClient(cfg.Geocoder)
	resolver := geocode.NewResolver(client, cfg.Geocoder.CountryHint, cfg.Resolver.FallbackTown, cfg.Geocoder.CacheMaxEntries)

	result := resolver.ResolveTown(context.Background(), address)
	fmt.Printf("town: %s\n", result.Town)
	if result.DisplayName != "" {
		fmt.Printf("matched: %s\n", result.DisplayName)
	}
	if result.Town == resolver.FallbackTown() {
		fmt.Println("(no segment of the address resolved; fallback applied)")
	}
}
