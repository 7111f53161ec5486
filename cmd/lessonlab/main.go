package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lessonlab/internal/api"
	"lessonlab/pkg/audio"
	"lessonlab/pkg/config"
	"lessonlab/pkg/lesson"
	"lessonlab/pkg/llm"
	"lessonlab/pkg/llm/gemini"
	"lessonlab/pkg/llm/openai"
	"lessonlab/pkg/logging"
	"lessonlab/pkg/request"
	"lessonlab/pkg/tracker"
	"lessonlab/pkg/tts"
	"lessonlab/pkg/tts/dialecttts"
	"lessonlab/pkg/version"
)

const configPath = "configs/lessonlab.yaml"

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	// Environment overrides may live in a local .env file.
	_ = godotenv.Load()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: " + configPath)
		return
	}

	if err := run(context.Background(), configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("LessonLab Started", "version", version.Version)

	tr := tracker.New()
	rc := request.NewWithPolicy(tr, request.Policy{
		Timeout:   appCfg.Request.Timeout.Std(),
		Retries:   appCfg.Request.Retries,
		BaseDelay: appCfg.Request.Backoff.BaseDelay.Std(),
		MaxDelay:  appCfg.Request.Backoff.MaxDelay.Std(),
	})

	provider, err := initProvider(appCfg, rc, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	gen := lesson.NewGenerator(provider, appCfg.Lesson.BatchSize)
	batches, err := lesson.NewBatchCache(gen, appCfg.Lesson.CacheSize, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize batch cache: %w", err)
	}
	builder := lesson.NewBuilder(batches, appCfg.Lesson.BatchSize)

	speech := tts.NewHandle(func(ctx context.Context, verify bool) (tts.Client, error) {
		return dialecttts.NewClient(ctx, appCfg.TTS, verify, tr)
	}, appCfg.TTS.VerifyTLSEnabled())
	pipeline := audio.New(speech, tr, appCfg.TTS.Timeout.Std())

	return runServer(ctx, appCfg, builder, pipeline, batches, tr)
}

// initProvider selects the chat backend from config.
func initProvider(cfg *config.Config, rc *request.Client, tr *tracker.Tracker) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai", "":
		return openai.NewClient(cfg.LLM, rc)
	case "gemini":
		return gemini.NewClient(cfg.LLM, tr)
	case "mock":
		slog.Warn("Using mock LLM provider, lessons will be placeholders")
		return &llm.MockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

func runServer(ctx context.Context, cfg *config.Config, builder *lesson.Builder, pipeline *audio.Pipeline, batches *lesson.BatchCache, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Addr,
		api.NewLessonHandler(builder),
		api.NewAudioHandler(pipeline),
		api.NewStatsHandler(tr, batches),
		cfg.Server.StaticDir,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
