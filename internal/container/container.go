package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/internal/application"
	repo "github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	esinfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/elasticsearch"
	gcsinfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/gcs"
	"github.com/oksasatya/campus-resource-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/postgres"
	mqinfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/rabbitmq"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

// Infra holds the optional clients opened by the binary. Nil members mean the
// feature they back is disabled.
type Infra struct {
	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	ES        *elasticsearch.Client
	GCS       *storage.Client
	RabbitPub *helpers.RabbitPublisher
}

// Container is the application graph shared by the router and the seeder.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Infra  Infra

	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher

	Users     repo.UserRepository
	Resources repo.ResourceRepository

	UserService     *application.UserService
	ResourceService *application.ResourceService
	SearchService   *application.SearchService
	RatingService   *application.RatingService
}

// New selects the storage driver and assembles the services around it.
func New(cfg *config.Config, logger *logrus.Logger, infra Infra) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Infra: infra}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if infra.PGPool == nil {
			return nil, fmt.Errorf("store driver %q requires a database pool", cfg.StoreDriver)
		}
		c.Users = pginfra.NewUserRepository(infra.PGPool)
		c.Resources = pginfra.NewResourceRepository(infra.PGPool)
	case config.DriverMemory:
		c.Users = memory.NewUserStore()
		c.Resources = memory.NewResourceStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	hasher, err := helpers.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	c.Hasher = hasher
	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)

	var notifier application.Notifier
	if infra.RabbitPub != nil && cfg.MailSendEnabled {
		notifier = mqinfra.NewNotifier(infra.RabbitPub, cfg)
	}
	var directory application.UserDirectory
	if infra.ES != nil {
		directory = esinfra.NewUserDirectory(infra.ES, cfg.ESUsersIndex)
	}
	var photos application.PhotoStore
	if infra.GCS != nil && cfg.GCSBucket != "" {
		photos = gcsinfra.NewPhotoStore(infra.GCS, cfg.GCSBucket)
	}

	c.UserService = application.NewUserService(c.Users, c.Hasher, c.JWT, notifier, directory, logger)
	c.ResourceService = application.NewResourceService(c.Resources, c.Users, photos, logger)
	c.SearchService = application.NewSearchService(c.Resources, c.Users, logger)
	c.RatingService = application.NewRatingService(c.Resources, c.Users, notifier, logger)
	return c, nil
}

// Checks returns health probes for every configured backing service.
func (c *Container) Checks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if c.Infra.PGPool != nil {
		checks["postgres"] = c.Infra.PGPool.Ping
	}
	if c.Infra.Redis != nil {
		rdb := c.Infra.Redis
		checks["redis"] = func(ctx context.Context) error { return helpers.PingRedis(ctx, rdb) }
	}
	if c.Infra.ES != nil {
		es := c.Infra.ES
		checks["elasticsearch"] = func(ctx context.Context) error { return helpers.PingES(ctx, es) }
	}
	return checks
}
