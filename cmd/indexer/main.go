package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/findmypark/findmypark-nyc/internal/adapters/database"
	"github.com/findmypark/findmypark-nyc/internal/adapters/search"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/typesense"
	"github.com/findmypark/findmypark-nyc/pkg/config"
)

// Backfills the Typesense park index from Postgres, optionally on a
// repeating interval.
func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	parkRepo := database.NewParkAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting parks collection before reindex")
		if _, err := tsClient.Client().Collection("parks").Delete(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	searchAdapter := search.NewTypesenseAdapter(tsClient)
	if err := searchAdapter.InitSchema(ctx); err != nil {
		return err
	}

	parks, err := parkRepo.ListCatalog(ctx)
	if err != nil {
		return err
	}

	indexed := 0
	failed := 0
	for _, park := range parks {
		if err := searchAdapter.Index(ctx, park); err != nil {
			log.Printf("Warning: failed to index park %s: %v", park.ID, err)
			failed++
			continue
		}
		indexed++
		if indexed%500 == 0 {
			log.Printf("Indexed %d/%d parks", indexed, len(parks))
		}
	}

	log.Printf("Indexed %d parks (%d failed)", indexed, failed)
	return nil
}
