package handlers

import (
	"math"
	"time"

	"github.com/oksasatya/campus-resource-tracker/internal/domain/entity"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/geo"
	"github.com/oksasatya/campus-resource-tracker/pkg/optional"
)

type UserDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *entity.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

type UserRefDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GeoJSONPoint is the wire form of a location.
type GeoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type RatingDTO struct {
	User      UserRefDTO `json:"user"`
	Score     int        `json:"score"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
}

type ResourceDTO struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          string       `json:"type"`
	Building      string       `json:"building"`
	Floor         string       `json:"floor"`
	Description   string       `json:"description"`
	PhotoURL      string       `json:"photo_url,omitempty"`
	Location      GeoJSONPoint `json:"location"`
	UploadedBy    UserRefDTO   `json:"uploaded_by"`
	Ratings       []RatingDTO  `json:"ratings"`
	AverageRating float64      `json:"average_rating"`
	RatingCount   int          `json:"rating_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type SearchResultDTO struct {
	ResourceDTO
	DistanceM    *float64 `json:"distance_m,omitempty"`
	DistanceText string   `json:"distance_text,omitempty"`
}

func toResourceDTO(r *entity.Resource) ResourceDTO {
	ratings := make([]RatingDTO, len(r.Ratings))
	for i, rt := range r.Ratings {
		ratings[i] = RatingDTO{
			User:      UserRefDTO{ID: rt.UserID, Username: rt.Username},
			Score:     rt.Score,
			Comment:   rt.Comment,
			CreatedAt: rt.CreatedAt,
		}
	}
	return ResourceDTO{
		ID:            r.ID,
		Name:          r.Name,
		Type:          string(r.Type),
		Building:      r.Building,
		Floor:         r.Floor,
		Description:   r.Description,
		PhotoURL:      r.PhotoURL,
		Location:      GeoJSONPoint{Type: "Point", Coordinates: []float64{r.Location.Lng, r.Location.Lat}},
		UploadedBy:    UserRefDTO{ID: r.OwnerID, Username: r.OwnerUsername},
		Ratings:       ratings,
		AverageRating: r.AverageRating,
		RatingCount:   r.RatingCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toResourceDTOs(list []*entity.Resource) []ResourceDTO {
	out := make([]ResourceDTO, len(list))
	for i, r := range list {
		out[i] = toResourceDTO(r)
	}
	return out
}

func toSearchResultDTOs(results []entity.SearchResult) []SearchResultDTO {
	out := make([]SearchResultDTO, len(results))
	for i, res := range results {
		out[i] = SearchResultDTO{ResourceDTO: toResourceDTO(res.Resource)}
		if res.Distance != nil {
			d := *res.Distance
			out[i].DistanceM = &d
			out[i].DistanceText = geo.FormatDistance(d)
		}
	}
	return out
}

func toUserRefDTOs(refs []entity.UserRef) []UserRefDTO {
	out := make([]UserRefDTO, len(refs))
	for i, r := range refs {
		out[i] = UserRefDTO{ID: r.ID, Username: r.Username}
	}
	return out
}

// Request bodies.

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest accepts the identifier under any of its historical names.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (r loginRequest) identifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

type createResourceRequest struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Building    string        `json:"building"`
	Floor       string        `json:"floor"`
	Description string        `json:"description"`
	Coordinates []float64     `json:"coordinates"`
	Location    *GeoJSONPoint `json:"location"`
}

func (r createResourceRequest) draft() (entity.ResourceDraft, error) {
	d := entity.ResourceDraft{
		Name:        r.Name,
		Type:        r.Type,
		Building:    r.Building,
		Floor:       r.Floor,
		Description: r.Description,
	}
	coords := r.Coordinates
	if coords == nil && r.Location != nil {
		coords = r.Location.Coordinates
	}
	if coords == nil {
		return d, nil
	}
	p, err := pointFrom(coords)
	if err != nil {
		return d, err
	}
	d.Location = &p
	return d, nil
}

type updateResourceRequest struct {
	Name        optional.Field[string]        `json:"name"`
	Type        optional.Field[string]        `json:"type"`
	Building    optional.Field[string]        `json:"building"`
	Floor       optional.Field[string]        `json:"floor"`
	Description optional.Field[string]        `json:"description"`
	Coordinates optional.Field[[]float64]     `json:"coordinates"`
	Location    optional.Field[*GeoJSONPoint] `json:"location"`
}

// patch only maps the body; coordinate checks happen in the service after
// ownership is known, so a malformed pair is carried as an invalid point.
func (r updateResourceRequest) patch() entity.ResourcePatch {
	p := entity.ResourcePatch{
		Name:        r.Name,
		Type:        r.Type,
		Building:    r.Building,
		Floor:       r.Floor,
		Description: r.Description,
	}

	coords := r.Coordinates
	if !coords.Set && r.Location.Set {
		coords = optional.Field[[]float64]{Set: true, Null: r.Location.Null || r.Location.Value == nil}
		if !coords.Null {
			coords.Value = r.Location.Value.Coordinates
		}
	}
	switch {
	case !coords.Set:
	case coords.Null:
		p.Location = optional.Null[geo.Point]()
	case len(coords.Value) != 2:
		p.Location = optional.Of(geo.Point{Lng: math.NaN(), Lat: math.NaN()})
	default:
		p.Location = optional.Of(geo.Point{Lng: coords.Value[0], Lat: coords.Value[1]})
	}
	return p
}

// pointFrom reads a GeoJSON-ordered [lng, lat] pair.
func pointFrom(coords []float64) (geo.Point, error) {
	if len(coords) != 2 {
		return geo.Point{}, apperror.ValidationField("coordinates", "must be a [longitude, latitude] pair")
	}
	p := geo.Point{Lng: coords[0], Lat: coords[1]}
	if !p.Valid() {
		return geo.Point{}, apperror.ValidationField("coordinates", "must be a finite [longitude, latitude] pair within range")
	}
	return p, nil
}
