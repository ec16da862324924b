// sia runs the Self-Initiating Agent engine: it loads configuration,
// wires the World Model store, sample data source, LLM port,
// Execution runtime, and scheduler into one pipeline.Runtime, and
// serves the HTTP Presenter API. Grounded on cmd/tarsy/main.go's
// flag-parse -> env-load -> service-wiring -> serve shape.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/shun1423/sia/internal/audit"
	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/conflict"
	"github.com/shun1423/sia/internal/config"
	"github.com/shun1423/sia/internal/execution"
	"github.com/shun1423/sia/internal/idempotency"
	"github.com/shun1423/sia/internal/llm"
	"github.com/shun1423/sia/internal/llm/anthropicport"
	"github.com/shun1423/sia/internal/pipeline"
	"github.com/shun1423/sia/internal/presenter/httpapi"
	"github.com/shun1423/sia/internal/presenter/wsfeed"
	"github.com/shun1423/sia/internal/ratelimit"
	"github.com/shun1423/sia/internal/scheduler"
	"github.com/shun1423/sia/internal/source/sample"
	"github.com/shun1423/sia/internal/worldmodel"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config", getEnv("SIA_CONFIG", ""), "Path to a YAML config file (optional, built-in defaults apply otherwise)")
	envPath := flag.String("env-file", getEnv("SIA_ENV_FILE", ".env"), "Path to a .env file to load before reading configuration")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil {
		slog.Warn("could not load env file, continuing with existing environment", "path", *envPath, "error", err)
	} else {
		slog.Info("loaded environment file", "path", *envPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("sia exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	store, err := worldmodel.Open(cfg.WorldModelPath)
	if err != nil {
		return err
	}

	auditLogger, err := audit.NewLogger(cfg.LogDir)
	if err != nil {
		return err
	}

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSeconds)
	execRuntime := execution.NewRuntime(limiter, idempotency.NewTracker(), conflict.NewManager(), auditLogger)

	src := sample.New()
	llmPort := capabilityLLM(cfg)

	rt := pipeline.NewRuntime(store, src, llmPort, execRuntime)
	if cfg.ScoreThreshold > 0 {
		rt.ScoreThreshold = cfg.ScoreThreshold
	}

	schedOpts := []scheduler.Option{}
	if cfg.NATSEmbeddedPort > 0 {
		schedOpts = append(schedOpts, scheduler.WithNATSPort(cfg.NATSEmbeddedPort))
	}
	sched, err := scheduler.Start(schedOpts...)
	if err != nil {
		return err
	}
	defer sched.Stop()
	sched.Run()

	feed := wsfeed.NewHub()
	stopFeed := make(chan struct{})
	go feed.Run(stopFeed)
	defer close(stopFeed)

	gin.SetMode(getEnv("GIN_MODE", gin.ReleaseMode))
	server := httpapi.NewServer(rt, feed)

	slog.Info("sia engine starting", "http_addr", cfg.HTTPAddr, "world_model_path", cfg.WorldModelPath, "llm_enabled", cfg.LLMEnabled())
	return server.Start(cfg.HTTPAddr)
}

// capabilityLLM wires anthropicport.Port when LLM.enabled (or
// SIA_LLM_ENABLED) is set and an API key is present; otherwise every
// stage falls back to its deterministic rule-based path via
// llm.DeterministicPort, matching the tiered-inference design: cheap
// detectors always run, LLM enrichment is additive and optional.
func capabilityLLM(cfg config.Config) capability.LLMPort {
	if !cfg.LLMEnabled() {
		return llm.NewDeterministicPort()
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		slog.Warn("LLM enabled but ANTHROPIC_API_KEY is not set, falling back to deterministic port")
		return llm.NewDeterministicPort()
	}

	return anthropicport.New(apiKey, cfg.LLM.Model)
}
