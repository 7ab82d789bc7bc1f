package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"symptom-triage-api/internal/agent"
	"symptom-triage-api/internal/config"
	"symptom-triage-api/internal/triage"
	logx "symptom-triage-api/pkg/logger"
)

func main() {
	// 1. Configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logx.Init(cfg.Environment)

	// 2. Knowledge base + inference client
	kb, err := triage.NewKnowledgeBase()
	if err != nil {
		logx.Fatal().Err(err).Msg("knowledge base failed validation")
	}

	var generator triage.Generator
	if cfg.Inference.Enabled {
		client, err := agent.NewClient(cfg.Inference)
		if err != nil {
			// No degraded mode: a misconfigured model is a startup failure.
			logx.Fatal().Err(err).Msg("inference client initialization failed")
		}
		generator = client
		logx.Info().Str("model", cfg.Inference.Model).Msg("inference client ready")
	} else {
		logx.Info().Msg("inference disabled, serving templated analysis replies")
	}

	// 3. Services
	svc := triage.NewService(kb, generator)
	handler := triage.NewHandler(svc)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		triage.RegisterRoutes(r, handler)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal().Err(err).Msg("server error")
		}
	}()

	logx.Info().Str("port", cfg.Port).Msg("server listening")
	waitForShutdown(server)
}

// requestLogger tags every request with an ID and writes one log line per
// call. The ID is echoed in the response so client reports can be matched
// against logs.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		logx.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request")
		next.ServeHTTP(w, r)
	})
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
	logx.Info().Msg("server stopped")
}
