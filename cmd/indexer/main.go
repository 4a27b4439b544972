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

	"github.com/nearspot/business-discovery/internal/adapters/database"
	"github.com/nearspot/business-discovery/internal/adapters/search"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/nearspot/business-discovery/internal/infrastructure/clients/postgres"
	"github.com/nearspot/business-discovery/internal/infrastructure/clients/typesense"
	"github.com/nearspot/business-discovery/pkg/config"
)

const indexPageSize = 200

// The indexer hydrates the Typesense candidate collection from the
// business metadata store, once or on an interval.
func main() {
	var intervalFlag string
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
		if err := indexOnce(ctx); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	businessRepo := database.NewBusinessAdapter(pgClient)
	candidateSource := search.NewTypesenseCandidateSource(tsClient)

	var indexed, failed int
	for offset := 0; ; offset += indexPageSize {
		businesses, err := businessRepo.List(ctx, repositories.BusinessFilter{
			Limit:  indexPageSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(businesses) == 0 {
			break
		}

		for _, business := range businesses {
			if err := candidateSource.Index(ctx, business); err != nil {
				failed++
				log.Printf("Failed to index business %s: %v", business.ID, err)
				continue
			}
			indexed++
		}
	}

	log.Printf("Indexed %d businesses (%d failures)", indexed, failed)
	return nil
}
