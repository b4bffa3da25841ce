package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/campus-resource-tracker/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// WithResource describes the resource and links to it in the map client.
func WithResource(id, name, typ, building string) Option {
	return func(d *EmailData) {
		d.ResourceID = id
		d.ResourceName = name
		d.ResourceType = typ
		d.Building = building
		if d.AppURL != "" {
			d.ResourceURL = strings.TrimRight(d.AppURL, "/") + "/resources/" + id
		}
	}
}

func WithRating(rater string, score int, comment string) Option {
	return func(d *EmailData) {
		d.RaterName = rater
		d.Score = score
		d.Comment = comment
	}
}

func WithAggregate(avg float64, count int) Option {
	return func(d *EmailData) {
		d.AverageRating = avg
		d.RatingCount = count
	}
}

// NewBaseEmailData mengisi field umum dari config, lalu apply Option
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		AppURL:      cfg.AppURL,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email, opts...))
}

func NewResourceRatedData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, ResourceRated, name, email, opts...))
}
