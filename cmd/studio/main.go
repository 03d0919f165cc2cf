package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"skinpack-studio/internal/config"
	"skinpack-studio/internal/logging"
	"skinpack-studio/internal/pack"
	"skinpack-studio/internal/preview"
	"skinpack-studio/internal/session"
	"skinpack-studio/internal/studio"
	"skinpack-studio/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	envFile := flag.String("env", ".env", "Path to .env file")
	listen := flag.String("listen", "", "Listen address (default: 127.0.0.1:8080)")
	slots := flag.Int("slots", 3, "Placeholder skins to start with")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.Resolve(config.Flags{ListenAddr: *listen})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions := openSessions(ctx, cfg, log)
	defer closeSessions()

	gen := texture.NewPlaceholderGenerator(nil)
	app, err := studio.New(studio.Options{
		Assembler: pack.NewAssembler(pack.NewZipArchiver(cfg.CompressionLevel),
			pack.WithPlaceholders(gen),
			pack.WithLogger(log),
		),
		Generator:    gen,
		Tracker:      preview.NewTracker(),
		Sessions:     sessions,
		Logger:       log,
		PreviewSize:  cfg.RenderSize,
		Supersample:  cfg.Supersample,
		InitialSlots: *slots,
		Language:     cfg.Language,
		Geometry:     cfg.Geometry,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "studio listening", "addr", "http://"+cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "shutdown", "err", err)
		}
		log.Info(shutdownCtx, "studio stopped")
	}
}

// openSessions uses Redis when an address is configured and falls back to
// memory when it is unreachable.
func openSessions(ctx context.Context, cfg config.Config, log logging.Logger) (session.Store, func()) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(cfg.TTL()), func() {}
	}
	client, err := session.Dial(ctx, session.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn(ctx, "redis unavailable, sessions kept in memory", "err", err)
		return session.NewMemoryStore(cfg.TTL()), func() {}
	}
	log.Info(ctx, "sessions in redis", "addr", cfg.RedisAddr, "ttl", cfg.TTL())
	return session.NewRedisStore(client, cfg.TTL()), func() { _ = client.Close() }
}
