package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
)

// GeoIndexName is the GiST index over resources.location created by the
// initial migration.
const GeoIndexName = "resources_location_gix"

type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

func NewPool(ctx context.Context, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(pc.DSN)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = pc.MaxConns
	cfg.MinConns = pc.MinConns
	cfg.MaxConnLifetime = pc.MaxConnLifetime
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// VerifyGeoIndex returns a GEO_INDEX_MISSING error when the spatial index
// (or the PostGIS extension behind it) is absent.
func VerifyGeoIndex(ctx context.Context, pool *pgxpool.Pool) error {
	var ok bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'postgis')
		   AND EXISTS (SELECT 1 FROM pg_indexes WHERE tablename = 'resources' AND indexname = $1)
	`, GeoIndexName).Scan(&ok)
	if err != nil {
		return apperror.Internal("check geospatial index", err)
	}
	if !ok {
		return apperror.GeoIndexMissing(nil)
	}
	return nil
}
