// Command server starts the TalentScout interview HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	ai "github.com/Abiads/talentscout/internal/adapter/ai"
	httpserver "github.com/Abiads/talentscout/internal/adapter/httpserver"
	"github.com/Abiads/talentscout/internal/adapter/observability"
	tikaext "github.com/Abiads/talentscout/internal/adapter/textextractor/tika"
	"github.com/Abiads/talentscout/internal/app"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/usecase"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	// Model clients per sampling profile, sharing one registry. With no
	// credential configured every client degrades to the deterministic stub
	// and the service still reaches terminal decisions.
	registry := ai.NewRegistry(cfg)
	opts := ai.Options{AllowLocalFallback: cfg.AllowLocalModels}
	conversationAI := registry.Get(ai.ProfileConversation, opts)
	evaluationAI := registry.Get(ai.ProfileEvaluation, opts)
	recommendationAI := registry.Get(ai.ProfileRecommendation, opts)
	slog.Info("model clients initialized", slog.String("backend", conversationAI.Backend()))

	// Usecases. Question flow, policy reasoning, and resume parsing ride the
	// conversation profile; scoring and the final recommendation get their own.
	store := usecase.NewMemoryStore()
	assessment := usecase.NewAssessmentService(
		store,
		usecase.NewGenerator(conversationAI),
		usecase.NewEvaluator(evaluationAI),
		usecase.NewPolicy(usecase.PolicyFromConfig(cfg), conversationAI),
		usecase.NewReporter(recommendationAI),
	)

	// External text extractor (Apache Tika)
	ext := tikaext.New(cfg.TikaURL)
	resume := usecase.NewResumeService(ext, conversationAI, cfg)

	srv := httpserver.NewServer(cfg, assessment, resume, app.BuildTikaCheck(cfg))
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
