package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/internal/container"
	esinfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/elasticsearch"
	pginfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/campus-resource-tracker/internal/router"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	infra, closeInfra, err := openInfra(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize infrastructure")
	}
	defer closeInfra()

	c, err := container.New(cfg, logger, infra)
	if err != nil {
		logger.WithError(err).Fatal("failed to build application")
	}

	r := router.NewEngine(c)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "driver": cfg.StoreDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// openInfra connects the configured backing services. Optional services that
// fail to connect are logged and left disabled; only the database is fatal.
func openInfra(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (container.Infra, func(), error) {
	var infra container.Infra
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.StoreDriver == config.DriverPostgres {
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:             cfg.PostgresDSN(),
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			return infra, closeAll, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		infra.PGPool = pool

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			closeAll()
			return infra, func() {}, fmt.Errorf("migrate: %w", err)
		}
		if err := pginfra.VerifyGeoIndex(ctx, pool); err != nil {
			entry := logger.WithError(err)
			if errors.Is(err, apperror.ErrGeoIndexMissing) {
				entry = entry.WithField("code", apperror.CodeGeoIndexMissing)
			}
			entry.Error("geospatial index check failed; radius search will return 500")
		}
	}

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
			_ = rdb.Close()
		} else {
			closers = append(closers, func() { _ = rdb.Close() })
			infra.Redis = rdb
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			err = helpers.PingES(ctx, es)
		}
		if err == nil {
			err = esinfra.NewUserDirectory(es, cfg.ESUsersIndex).EnsureIndex(ctx)
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; user search disabled")
		} else {
			infra.ES = es
		}
	}

	if cfg.RabbitMQURL != "" && cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications disabled")
		} else {
			closers = append(closers, pub.Close)
			infra.RabbitPub = pub
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable; photo upload disabled")
		} else {
			closers = append(closers, func() { _ = gcsClient.Close() })
			infra.GCS = gcsClient
		}
	}

	return infra, closeAll, nil
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
