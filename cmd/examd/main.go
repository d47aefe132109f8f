// Command examd runs the exam generation HTTP service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/beplab/examgen"
	"github.com/beplab/examgen/httpapi"
	"github.com/beplab/examgen/limiter"
	"github.com/beplab/examgen/meter"
	"github.com/beplab/examgen/provider/openaicompat"
	"github.com/beplab/examgen/quota"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*cfgPath, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfgPath string, logger *slog.Logger) error {
	cfg, err := examgen.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer cleanup()

	lim := limiter.New(cfg.Limits.Rules())
	defer lim.Stop()

	m := meter.NewLogMeter(logger)

	ctrl, err := examgen.NewAdmissionController(lim, store,
		examgen.WithMeter(m),
		examgen.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	prov := openaicompat.New("openai", cfg.Provider.BaseURL, cfg.Provider.APIKey,
		openaicompat.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
	)

	genOpts := []examgen.GeneratorOption{examgen.WithGeneratorMeter(m)}
	if cfg.Provider.Temperature != nil {
		genOpts = append(genOpts, examgen.WithTemperature(*cfg.Provider.Temperature))
	}
	gen, err := examgen.NewExamGenerator(prov, cfg.Provider.Model, genOpts...)
	if err != nil {
		return err
	}

	srv := httpapi.New(ctrl, gen,
		httpapi.WithLogger(logger),
		httpapi.WithStore(store),
	)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "store", cfg.Store.Backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildStore constructs the configured QuotaStore. The returned cleanup
// closes any underlying connections.
func buildStore(ctx context.Context, cfg examgen.StoreConfig) (examgen.QuotaStore, func(), error) {
	switch cfg.Backend {
	case examgen.StoreNone:
		return examgen.Unconfigured(), func() {}, nil

	case examgen.StoreMemory:
		return quota.NewMemory(), func() {}, nil

	case examgen.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return quota.NewRedis(client), func() { _ = client.Close() }, nil

	case examgen.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		store := quota.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}

	// Config validation rejects unknown backends before we get here.
	return examgen.Unconfigured(), func() {}, nil
}
