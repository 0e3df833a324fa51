package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"applyboost/internal/api"
	"applyboost/internal/config"
	"applyboost/internal/extract"
	"applyboost/internal/llm"
	"applyboost/internal/memory"
	"applyboost/internal/prompt"
	"applyboost/internal/queue"
	"applyboost/internal/schema"
)

type App struct {
	Config  config.Config
	LLM     llm.Provider
	Memory  memory.Store
	Queue   *queue.Queue
	Extract *extract.Service
	Handler *api.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	prompts := prompt.NewRegistry()
	if cfg.LLM.PromptPath != "" {
		if err := prompts.LoadOverrides(cfg.LLM.PromptPath); err != nil {
			return nil, err
		}
	}

	schemas, err := schema.NewRegistry()
	if err != nil {
		return nil, err
	}

	provider := selectLLM(cfg)
	mem := selectMemory(cfg)

	var q *queue.Queue
	if cfg.Redis.URL != "" {
		q, err = queue.New(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
	}

	var turns extract.TurnSaver
	if q != nil {
		turns = &queuedTurns{queue: q}
	} else {
		turns = &directTurns{store: mem}
	}

	svc := extract.NewService(prompts, schemas, provider, mem, cfg.Memory.SearchLimit, turns)
	handler := api.NewHandler(cfg, svc, mem, provider)

	return &App{
		Config:  cfg,
		LLM:     provider,
		Memory:  mem,
		Queue:   q,
		Extract: svc,
		Handler: handler,
	}, nil
}

func (a *App) Close() error {
	if a.Queue != nil {
		return a.Queue.Close()
	}
	return nil
}

func (a *App) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.Queue != nil {
			if err := a.Queue.Ping(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	a.Handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

// middleware tags each request with an ID and applies the CORS policy from
// config. Request timeouts stay with the transport; the core sets none.
func (a *App) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		if origin := r.Header.Get("Origin"); origin != "" {
			if allowed := a.allowOrigin(origin); allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) allowOrigin(origin string) string {
	for _, allowed := range a.Config.HTTP.AllowOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

func selectLLM(cfg config.Config) llm.Provider {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey != "" {
			return llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		}
		log.Printf("WARNING: openai provider selected but no API key set, using noop")
	case "gemini":
		if cfg.LLM.APIKey != "" {
			return llm.NewGemini(cfg.LLM.APIKey, cfg.LLM.Model)
		}
		log.Printf("WARNING: gemini provider selected but no API key set, using noop")
	case "ollama":
		if cfg.LLM.OllamaURL != "" {
			return llm.NewOllama(cfg.LLM.OllamaURL, cfg.LLM.Model)
		}
	}
	return llm.NewNoop()
}

func selectMemory(cfg config.Config) memory.Store {
	if cfg.Memory.APIKey != "" {
		return memory.NewSupermemory(cfg.Memory.URL, cfg.Memory.APIKey, cfg.Memory.ContainerTag)
	}
	return memory.NewNoop()
}

// queuedTurns defers conversation-turn saves to the redis queue; the worker
// drains them into the memory store.
type queuedTurns struct {
	queue *queue.Queue
}

func (t *queuedTurns) SaveTurn(ctx context.Context, content string) error {
	return t.queue.PushSave(ctx, queue.NewSaveJob(content, []string{"chat"}))
}

// directTurns saves inline, matching behavior when no queue is configured.
type directTurns struct {
	store memory.Store
}

func (t *directTurns) SaveTurn(ctx context.Context, content string) error {
	_, err := t.store.Save(ctx, content, []string{"chat"})
	return err
}
