package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/internal/application"
	"github.com/oksasatya/campus-resource-tracker/internal/container"
	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	pginfra "github.com/oksasatya/campus-resource-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/geo"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

type sample struct {
	name, typ, building, floor, description string
	lng, lat                                float64
}

// UNSW Kensington campus.
var samples = []sample{
	{"Main Library Toilet", "Toilet", "Main Library", "Ground", "Next to the lifts", 151.2313, -33.9173},
	{"Quad Water Fountain", "Water Fountain", "Quadrangle Building", "", "Bottle refill station", 151.2307, -33.9168},
	{"Law Library Outlets", "Power Outlet", "Law Building", "Level 2", "Study desks along the windows", 151.2270, -33.9171},
	{"Tyree Hub WiFi", "WiFi Hotspot", "Tyree Energy Technologies", "Ground", "", 151.2260, -33.9178},
	{"Anzac Parade Bike Cage", "Bike Storage", "Gate 9", "", "Swipe card access", 151.2245, -33.9160},
	{"Roundhouse Vending", "Vending Machine", "Roundhouse", "Ground", "Snacks and drinks", 151.2287, -33.9188},
	{"Scientia Lawn Microwave", "Other", "Scientia", "", "Microwaves for student use", 151.2319, -33.9159},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("seeding needs STORE_DRIVER=%s; the %s driver does not outlive the process", config.DriverPostgres, cfg.StoreDriver)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "seed-only"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:             cfg.PostgresDSN(),
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	c, err := container.New(cfg, logger, container.Infra{PGPool: pool})
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	const (
		username = "demoUser"
		email    = "demo@campus.test"
		password = "password123"
	)
	owner, err := c.UserService.Register(ctx, application.RegisterInput{Username: username, Email: email, Password: password})
	if apperror.IsKind(err, apperror.KindDuplicateKey) {
		owner, err = c.Users.GetByIdentifier(ctx, username)
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s username=%s email=%s password=%s\n", owner.ID, owner.Username, owner.Email, password)

	existing, err := c.ResourceService.List(ctx)
	if err != nil {
		log.Fatalf("failed to list resources: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("resources already present (%d), skipping\n", len(existing))
		return
	}

	for _, s := range samples {
		r, err := c.ResourceService.Create(ctx, owner.ID, entity.ResourceDraft{
			Name:        s.name,
			Type:        s.typ,
			Building:    s.building,
			Floor:       s.floor,
			Description: s.description,
			Location:    &geo.Point{Lng: s.lng, Lat: s.lat},
		})
		if err != nil {
			log.Fatalf("failed to seed %q: %v", s.name, err)
		}
		fmt.Printf("seeded resource: id=%s name=%s\n", r.ID, r.Name)
	}
}
