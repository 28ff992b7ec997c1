package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "rembgd/docs"
	"rembgd/internal/config"
	"rembgd/internal/httpapi"
	"rembgd/internal/pipeline"
	"rembgd/internal/registry"
)

const version = "1.0.1"

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// Flags with environment variable defaults; zero values fall through to
	// the config file and then to built-in defaults.
	addr := flag.String("addr", envStr("REMBGD_ADDR", ""), "HTTP listen address, e.g. :8080")
	modelsDir := flag.String("models-dir", envStr("REMBGD_MODELS_DIR", ""), "Directory to scan for *.onnx model files")
	model := flag.String("model", envStr("REMBGD_MODEL", ""), "Segmentation model id (filename stem)")
	workers := flag.Int("workers", 0, "Worker pool capacity (0=default)")
	maxQueueDepth := flag.Int("max-queue-depth", 0, "Queued units before backpressure (0=default)")
	maxWait := flag.Duration("max-wait", 0, "Bounded wait for a pool slot (0=default)")
	drainTimeout := flag.Duration("drain-timeout", 0, "Graceful drain deadline on shutdown (0=default)")
	maxUploadMB := flag.Int("max-upload-mb", 0, "Maximum upload size in MB (0=default)")
	cfgPath := flag.String("config", envStr("REMBGD_CONFIG", ""), "Optional config file (yaml/json/toml)")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "rembgd").Logger()
	httpapi.SetLogger(logger)
	httpapi.SetVersion(version)

	// Config file fills whatever the flags left unset.
	var fileCfg config.Config
	if *cfgPath != "" {
		fc, err := config.Load(*cfgPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *cfgPath).Msg("failed to load config")
		}
		fileCfg = fc
	}
	if *addr == "" {
		*addr = fileCfg.Addr
	}
	if *addr == "" {
		*addr = ":8080"
	}
	if *modelsDir == "" {
		*modelsDir = fileCfg.ModelsDir
	}
	if *modelsDir == "" {
		*modelsDir = "~/models/rembg"
	}
	if *model == "" {
		*model = fileCfg.Model
	}
	if *model == "" {
		*model = "u2net"
	}
	if *workers == 0 {
		*workers = fileCfg.Workers
	}
	if *maxQueueDepth == 0 {
		*maxQueueDepth = fileCfg.MaxQueueDepth
	}
	if *maxWait == 0 {
		*maxWait = time.Duration(fileCfg.MaxWaitMS) * time.Millisecond
	}
	if *drainTimeout == 0 {
		*drainTimeout = time.Duration(fileCfg.DrainTimeoutMS) * time.Millisecond
	}
	if *maxUploadMB == 0 {
		*maxUploadMB = fileCfg.MaxUploadMB
	}

	// Load registry by scanning modelsDir for *.onnx
	reg, err := registry.LoadDir(*modelsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *modelsDir).Msg("failed to load models")
	}

	// Engine init is fatal: the service must not accept requests without a
	// live model handle.
	pipe, err := pipeline.New(pipeline.Config{
		Registry:      reg,
		Model:         *model,
		Workers:       *workers,
		MaxQueueDepth: *maxQueueDepth,
		MaxWait:       *maxWait,
		DrainTimeout:  *drainTimeout,
		MaxUploadSize: int64(*maxUploadMB) << 20,
		AllowedExts:   fileCfg.AllowedExts,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("model", *model).Msg("engine initialization failed")
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: *addr, Handler: httpapi.NewMux(pipe)}
	go func() {
		logger.Info().Str("addr", *addr).Str("model", *model).Msg("rembgd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM): stop accepting, drain the pool,
	// release the engine handle last.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful server shutdown error")
	}
	if err := pipe.Close(); err != nil {
		logger.Error().Err(err).Msg("pipeline close error")
	}
}
