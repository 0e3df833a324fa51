package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"applyboost/internal/app"
	"applyboost/internal/config"
	"applyboost/internal/memory"
	"applyboost/internal/queue"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	cfg, err := config.Load(os.Getenv("AB_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "ollama" && cfg.LLM.Provider != "noop" {
		log.Printf("WARNING: no LLM API key found in environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "serve":
		runServe(ctx, cfg)
	case "worker":
		runWorker(ctx, cfg)
	default:
		usage()
	}
}

func runServe(ctx context.Context, cfg config.Config) {
	appInstance, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer appInstance.Close()

	log.Printf("applyboostd serving on %s (llm=%s model=%s memory=%s)",
		cfg.HTTP.Addr, appInstance.LLM.Name(), appInstance.LLM.Model(), appInstance.Memory.Name())
	if err := appInstance.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// runWorker drains deferred memory-save jobs into the memory store.
func runWorker(ctx context.Context, cfg config.Config) {
	if cfg.Redis.URL == "" {
		log.Fatalf("worker requires redis.url (or AB_REDIS_URL)")
	}
	q, err := queue.New(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("queue error: %v", err)
	}
	defer q.Close()

	var store memory.Store
	if cfg.Memory.APIKey != "" {
		store = memory.NewSupermemory(cfg.Memory.URL, cfg.Memory.APIKey, cfg.Memory.ContainerTag)
	} else {
		store = memory.NewNoop()
	}

	log.Println("worker started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := q.PopSave(ctx, 5*time.Second)
			if err != nil {
				continue
			}
			if _, err := store.Save(ctx, job.Content, job.Tags); err != nil {
				log.Printf("memory save failed for job %s: %v", job.ID, err)
				continue
			}
			log.Printf("saved memory job: %s", job.ID)
		}
	}
}

func usage() {
	fmt.Println("Usage: applyboostd <serve|worker>")
}
