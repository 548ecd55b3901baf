package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/accounts/internal/httpserver"
	authmw "github.com/Skotchmaster/accounts/internal/middleware"
	"github.com/Skotchmaster/accounts/internal/repo"
	"github.com/Skotchmaster/accounts/internal/service"
	"github.com/Skotchmaster/accounts/internal/sweeper"
	"github.com/Skotchmaster/accounts/pkg/config"
	pkgdb "github.com/Skotchmaster/accounts/pkg/db"
	"github.com/Skotchmaster/accounts/pkg/logging"
	loggingmw "github.com/Skotchmaster/accounts/pkg/middleware/logging"
	"github.com/Skotchmaster/accounts/pkg/mykafka"
	"github.com/Skotchmaster/accounts/pkg/tokens"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	opts := &Options{}
	if _, err := flags.ParseArgs(opts, args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfg := config.Load()
	if opts.Listen != "" {
		cfg.ListenAddr = opts.Listen
	}
	cfg.MustValid()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err == nil {
		err = repo.Migrate(initCtx, db)
	}
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Error("db close", "error", err)
		}
	}()

	if opts.MigrateOnly {
		logger.Info("migrations applied")
		return nil
	}

	gormRepo := &repo.GormRepo{DB: db}
	blacklist, redisClient, err := openBlacklist(cfg, gormRepo)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	svc := &service.AuthService{
		Accounts:  gormRepo,
		Blacklist: blacklist,
		Tokens: &tokens.Issuer{
			AccessSecret:  cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
		},
		EventTopic:   cfg.KafkaTopic,
		StoreTimeout: cfg.StoreTimeout,
	}

	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka close", "error", err)
			}
		}()
		svc.Events = prod
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger,
		loggingmw.WithQuietPaths("/health/live", "/health/ready"),
		loggingmw.WithContextKeys(authmw.CtxAccountID),
	))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Gate:        authmw.NewTokenAuth(svc),
		Ready:       readiness(db, redisClient),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.BlacklistBackend == config.BlacklistBackendDB {
		sw := &sweeper.Sweeper{
			Store:    gormRepo,
			Interval: cfg.RevokedSweepInterval,
			Timeout:  cfg.StoreTimeout,
			Logger:   logger,
		}
		go sw.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	return nil
}

func openBlacklist(cfg config.Config, gormRepo *repo.GormRepo) (service.Blacklist, *redis.Client, error) {
	if cfg.BlacklistBackend != config.BlacklistBackendRedis {
		return gormRepo, nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	bl := repo.NewRedisBlacklist(client)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := bl.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return bl, client, nil
}

func readiness(db *gorm.DB, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := pkgdb.Ping(ctx, db); err != nil {
			return err
		}
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	}
}
