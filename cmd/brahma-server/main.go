// Command brahma-server runs the Brahma HTTP API: chat, uploads, feedback,
// batch-job triggers, and the dashboard event feed.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/brahma/internal/agent"
	"github.com/scrypster/brahma/internal/config"
	"github.com/scrypster/brahma/internal/graph"
	"github.com/scrypster/brahma/internal/llm"
	"github.com/scrypster/brahma/internal/orchestrator"
	"github.com/scrypster/brahma/internal/server"
	"github.com/scrypster/brahma/internal/speech"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/internal/store/postgres"
	"github.com/scrypster/brahma/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional, uses env vars by default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, graphStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer st.Close()

	generator, err := llm.NewTextGenerator(llmConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	pipeline, err := agent.NewPipeline(generator, agent.DefaultToolRegistry(), st.AgentLogs())
	if err != nil {
		log.Fatalf("Failed to initialize reasoning pipeline: %v", err)
	}

	builder := graph.NewBuilder(generator, graphStore)

	var tts speech.Synthesizer
	if cfg.Speech.URL != "" {
		tts = speech.NewHTTPClient(speech.HTTPConfig{BaseURL: cfg.Speech.URL})
	}

	orch, err := orchestrator.New(st, pipeline, builder, tts)
	if err != nil {
		log.Fatalf("Failed to initialize orchestrator: %v", err)
	}

	hub := server.NewEventHub()
	go hub.Run()
	defer hub.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.New(orch, st, hub).Router(),
	}

	go func() {
		log.Printf("Brahma API listening on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	// Let detached graph writes finish before the store closes.
	builder.Flush()
}

// openStore opens the configured storage backend. Both backends also serve
// as the knowledge-graph sink.
func openStore(cfg *config.Config) (store.Store, graph.Store, error) {
	if cfg.Storage.Engine == "postgres" {
		st, err := postgres.New(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	}
	st, err := sqlite.New(cfg.Storage.DataPath)
	if err != nil {
		return nil, nil, err
	}
	return st, st, nil
}

func llmConfig(cfg *config.Config) llm.ClientConfig {
	if cfg.LLM.Provider == "openai" {
		return llm.ClientConfig{
			Provider:          "openai",
			BaseURL:           cfg.LLM.OpenAIBaseURL,
			Model:             cfg.LLM.OpenAIModel,
			APIKey:            cfg.LLM.OpenAIAPIKey,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		}
	}
	return llm.ClientConfig{
		Provider:          "ollama",
		BaseURL:           cfg.LLM.OllamaURL,
		Model:             cfg.LLM.OllamaModel,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	}
}
