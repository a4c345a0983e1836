// Command brahma-jobs runs one batch job against the configured store and
// exits. Intended to be invoked by cron or a scheduler:
//
//	brahma-jobs -task decay
//	brahma-jobs -task meta-learning
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/scrypster/brahma/internal/config"
	"github.com/scrypster/brahma/internal/jobs"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/internal/store/postgres"
	"github.com/scrypster/brahma/internal/store/sqlite"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (optional, uses env vars by default)")
	task       = flag.String("task", "", "Job to run: decay or meta-learning")
	timeout    = flag.Duration("timeout", 10*time.Minute, "Job timeout")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *task {
	case "decay":
		processed, err := jobs.RunDecaySweep(ctx, st.Items())
		if err != nil {
			log.Fatalf("Decay sweep failed: %v", err)
		}
		log.Printf("Decay sweep complete: %d items processed", processed)

	case "meta-learning":
		reported, err := jobs.RunMetaLearning(ctx, st.AgentLogs(), st.Messages(), st.Reports())
		if err != nil {
			log.Fatalf("Meta-learning failed: %v", err)
		}
		log.Printf("Meta-learning complete: %d intents reported", reported)

	default:
		log.Fatalf("Unknown task %q (expected decay or meta-learning)", *task)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Storage.Engine == "postgres" {
		return postgres.New(cfg.Storage.PostgresDSN)
	}
	return sqlite.New(cfg.Storage.DataPath)
}
