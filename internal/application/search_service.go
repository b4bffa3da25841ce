package application

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	repo "github.com/oksasatya/campus-resource-tracker/internal/domain/repository"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/geo"
)

// SearchRadiusMeters bounds geographic search.
const SearchRadiusMeters = 5000

type SearchService struct {
	Resources repo.ResourceRepository
	Users     repo.UserRepository
	Logger    *logrus.Logger
}

func NewSearchService(resources repo.ResourceRepository, users repo.UserRepository, logger *logrus.Logger) *SearchService {
	return &SearchService{Resources: resources, Users: users, Logger: logger}
}

// SearchParams are the raw query-string values.
type SearchParams struct {
	Q   string
	Lat string
	Lng string
}

// ParseOrigin returns nil unless both coordinates are supplied. Supplied
// coordinates must be finite and within range.
func ParseOrigin(lat, lng string) (*geo.Point, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return nil, nil
	}
	fields := map[string]string{}
	la, errLat := strconv.ParseFloat(lat, 64)
	if errLat != nil {
		fields["lat"] = "must be a number"
	}
	ln, errLng := strconv.ParseFloat(lng, 64)
	if errLng != nil {
		fields["lng"] = "must be a number"
	}
	if len(fields) == 0 {
		p := geo.Point{Lng: ln, Lat: la}
		if !p.Valid() {
			if !(geo.Point{Lat: la}).Valid() {
				fields["lat"] = "must be between -90 and 90"
			}
			if !(geo.Point{Lng: ln}).Valid() {
				fields["lng"] = "must be between -180 and 180"
			}
		} else {
			return &p, nil
		}
	}
	return nil, apperror.Validation("invalid search origin", fields)
}

// Search combines the text filter and the radius filter. With an origin
// results are ordered nearest first by haversine distance, ties newest
// first; without one they are newest first.
func (s *SearchService) Search(ctx context.Context, params SearchParams) ([]entity.SearchResult, error) {
	origin, err := ParseOrigin(params.Lat, params.Lng)
	if err != nil {
		return nil, err
	}
	q := entity.SearchQuery{
		Text:   strings.TrimSpace(params.Q),
		Origin: origin,
		Radius: SearchRadiusMeters,
		Limit:  entity.MaxPageSize,
	}

	candidates, err := s.Resources.Search(ctx, q)
	if err != nil {
		if s.Logger != nil && errors.Is(err, apperror.ErrGeoIndexMissing) {
			s.Logger.WithError(err).WithField("code", apperror.CodeGeoIndexMissing).Error("geospatial index missing")
		}
		return nil, err
	}

	results := rank(candidates, origin)
	resources := make([]*entity.Resource, len(results))
	for i := range results {
		resources[i] = results[i].Resource
	}
	if err := attachUsernames(ctx, s.Users, resources...); err != nil {
		return nil, apperror.Internal("resolve usernames", err)
	}
	searchesServed.Add(1)
	return results, nil
}

// rank applies the exact radius and ordering rules and the page cap.
func rank(candidates []*entity.Resource, origin *geo.Point) []entity.SearchResult {
	results := make([]entity.SearchResult, 0, len(candidates))
	for _, r := range candidates {
		res := entity.SearchResult{Resource: r}
		if origin != nil {
			d := geo.Distance(*origin, r.Location)
			if d > SearchRadiusMeters {
				continue
			}
			res.Distance = &d
		}
		results = append(results, res)
	}

	newer := func(a, b *entity.Resource) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	sort.SliceStable(results, func(i, j int) bool {
		if origin != nil && *results[i].Distance != *results[j].Distance {
			return *results[i].Distance < *results[j].Distance
		}
		return newer(results[i].Resource, results[j].Resource)
	})

	if len(results) > entity.MaxPageSize {
		results = results[:entity.MaxPageSize]
	}
	return results
}
