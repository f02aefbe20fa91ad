package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/api"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/db"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	jqs, err := db.ConnectJQS(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to JQS database: %v", err)
	}
	defer jqs.Close()

	live, err := db.ConnectLive(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to live registry database: %v", err)
	}
	defer live.Close()

	if err := db.ApplyMigrations(ctx, jqs); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	srv := api.NewServer(jqs, live, cfg)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
