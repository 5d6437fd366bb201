package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/docvault/config"
	"github.com/serisow/docvault/logging"
	"github.com/serisow/docvault/server"
	"github.com/serisow/docvault/services/analysis_service"
	"github.com/serisow/docvault/services/convert_service"
	"github.com/serisow/docvault/services/llm_service"
	"github.com/serisow/docvault/services/render_service"
	"github.com/serisow/docvault/services/storage_service"

	"github.com/urfave/negroni"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogDir, slog.LevelInfo)
	ctx := context.Background()

	engine := render_service.New(cfg.RenderTimeout, logger)
	converter := convert_service.NewConverter(engine, cfg.MaxUploadBytes, logger)

	// Persistence and analysis need GCP credentials; without a project the
	// service still serves the direct conversion endpoints.
	var store *storage_service.Service
	var analysis *analysis_service.Service
	if cfg.ProjectID != "" {
		var err error
		store, err = storage_service.New(ctx, cfg.ProjectID, cfg.StorageBucket, cfg.SignedURLTTL, logger)
		if err != nil {
			log.Fatalf("Failed to initialize storage service: %v", err)
		}

		gemini, err := llm_service.NewGeminiService(ctx, cfg.ProjectID, cfg.VertexLocation, cfg.GeminiModel, logger)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini service: %v", err)
		}
		defer gemini.Close()

		analysis = analysis_service.New(gemini, cfg.FetchTimeout, cfg.MaxCombinedDocChars, logger)
	} else {
		logger.Warn("GCP_PROJECT_ID not set; document persistence and analysis endpoints disabled")
	}

	r := server.SetupRoutes(converter, store, analysis, cfg.MaxUploadBytes, logger)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  time.Minute,
			WriteTimeout: cfg.RenderTimeout + time.Minute,
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}
