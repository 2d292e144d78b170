// go_transcript - YouTube caption batch service.
//
// Exposes a REST API (POST /api/transcript, POST /api/transcript/archive) and
// one MCP tool, youtube_transcripts. Both run the same batch pipeline:
// resolve watch page → select caption track → normalize to plain text.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/batch"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	yt := sources.NewYouTube()
	runner := batch.NewRunner(yt, yt)

	slog.Info("starting go_transcript",
		slog.String("api_port", engine.Cfg.APIPort),
		slog.String("mcp_port", mcpPort),
		slog.Int("max_batch", engine.Cfg.MaxBatchSize),
	)

	if engine.Cfg.APIPort != "" {
		go serveAPI(runner)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	transcriptserver.RegisterTools(server, runner)
	slog.Info("tools registered", slog.Int("count", 1))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func serveAPI(runner *batch.Runner) {
	if env.Str("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + engine.Cfg.APIPort,
		Handler:           transcriptserver.NewHandler(runner, engine.Cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      300 * time.Second,
	}
	slog.Info("rest api listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("rest api failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initEngine() {
	c := engine.Config{
		APIPort:              env.Str("API_PORT", "8080"),
		WatchBaseURL:         env.Str("WATCH_BASE_URL", engine.DefaultWatchBaseURL),
		DefaultLanguage:      env.Str("DEFAULT_LANGUAGE", engine.DefaultLanguageCode),
		CaptionFormat:        env.Str("CAPTION_FORMAT", engine.FormatXML),
		OutputFormat:         env.Str("OUTPUT_FORMAT", engine.ExtText),
		MaxBatchSize:         env.Int("MAX_BATCH_SIZE", engine.DefaultMaxBatchSize),
		BatchConcurrency:     env.Int("BATCH_CONCURRENCY", engine.DefaultBatchConcurrency),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", engine.DefaultFetchTimeout),
		StrictMetadata:       env.Str("STRICT_METADATA", "") == "true",
		UseBrowserClient:     env.Str("USE_BROWSER_CLIENT", "") == "true",
		CORSOrigins:          env.List("CORS_ORIGINS", "*"),
		CacheTTL:             env.Duration("CACHE_TTL", 30*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	}

	if path := env.Str("CONFIG_FILE", ""); path != "" {
		fc, err := engine.LoadFileConfig(path)
		if err != nil {
			slog.Error("config file load failed", slog.Any("error", err))
			os.Exit(1)
		}
		fc.Apply(&c)
		slog.Info("config file applied", slog.String("path", path))
	}

	if c.UseBrowserClient {
		var opts []stealth.ClientOption
		opts = append(opts, stealth.WithTimeout(c.BrowserTimeoutSeconds()))

		if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
			pool, err := proxypool.NewWebshare(apiKey)
			if err != nil {
				slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
			} else {
				opts = append(opts, stealth.WithProxyPool(pool))
				slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
			}
		}

		bc, err := stealth.NewClient(opts...)
		if err != nil {
			slog.Error("stealth client init failed", slog.Any("error", err))
		} else {
			c.BrowserClient = bc
			slog.Info("stealth browser client initialized")
		}
	}

	engine.Init(c)
	engine.InitCache(env.Str("REDIS_URL", ""), c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
