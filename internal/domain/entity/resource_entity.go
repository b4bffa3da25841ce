package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/geo"
	"github.com/oksasatya/campus-resource-tracker/pkg/optional"
)

// ResourceType is the closed set of amenity kinds.
type ResourceType string

const (
	TypeToilet         ResourceType = "Toilet"
	TypeWaterFountain  ResourceType = "Water Fountain"
	TypePowerOutlet    ResourceType = "Power Outlet"
	TypeWiFiHotspot    ResourceType = "WiFi Hotspot"
	TypeBikeStorage    ResourceType = "Bike Storage"
	TypeVendingMachine ResourceType = "Vending Machine"
	TypeOther          ResourceType = "Other"
)

var ResourceTypes = []ResourceType{
	TypeToilet, TypeWaterFountain, TypePowerOutlet, TypeWiFiHotspot,
	TypeBikeStorage, TypeVendingMachine, TypeOther,
}

const (
	MaxDescriptionLen = 500
	MinScore          = 1
	MaxScore          = 5
	// MaxPageSize caps every collection returned by the API.
	MaxPageSize = 20
)

// ParseResourceType matches s against the enumeration ignoring case and
// surrounding space, returning the canonical spelling.
func ParseResourceType(s string) (ResourceType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range ResourceTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

func resourceTypeList() string {
	names := make([]string, len(ResourceTypes))
	for i, t := range ResourceTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Rating is one user's score, embedded in its resource.
type Rating struct {
	UserID    string
	Username  string
	Score     int
	Comment   string
	CreatedAt time.Time
}

// Resource is a located campus amenity with its rating ledger.
// RatingCount and RatingSum are written together with Ratings so that
// AverageRating can be maintained in the same write.
type Resource struct {
	ID            string
	Name          string
	Type          ResourceType
	Building      string
	Floor         string
	Description   string
	PhotoURL      string
	Location      geo.Point
	OwnerID       string
	OwnerUsername string
	Ratings       []Rating
	RatingCount   int
	RatingSum     int
	AverageRating float64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasRatingFrom reports whether userID already rated the resource.
func (r *Resource) HasRatingFrom(userID string) bool {
	for _, rt := range r.Ratings {
		if rt.UserID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	c := *r
	if r.Ratings != nil {
		c.Ratings = make([]Rating, len(r.Ratings))
		copy(c.Ratings, r.Ratings)
	}
	return &c
}

// AppendRating adds rt and recomputes the aggregates. Callers hold whatever
// lock or transaction makes the resource write atomic.
func (r *Resource) AppendRating(rt Rating) {
	r.Ratings = append(r.Ratings, rt)
	r.RatingCount++
	r.RatingSum += rt.Score
	r.AverageRating = Average(r.RatingSum, r.RatingCount)
}

// Average is the mean score, 0 for an empty ledger.
func Average(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// ResourceDraft is the input for creating a resource.
type ResourceDraft struct {
	Name        string
	Type        string
	Building    string
	Floor       string
	Description string
	Location    *geo.Point
}

// Normalize validates the draft and returns a resource ready to persist.
func (d ResourceDraft) Normalize() (*Resource, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		fields["name"] = "is required"
	}
	typ, ok := ParseResourceType(d.Type)
	if !ok {
		if strings.TrimSpace(d.Type) == "" {
			fields["type"] = "is required"
		} else {
			fields["type"] = "must be one of: " + resourceTypeList()
		}
	}
	building := strings.TrimSpace(d.Building)
	if building == "" {
		fields["building"] = "is required"
	}
	if len([]rune(d.Description)) > MaxDescriptionLen {
		fields["description"] = "must be at most 500 characters long"
	}
	if d.Location == nil {
		fields["coordinates"] = "is required"
	} else if !d.Location.Valid() {
		fields["coordinates"] = "must be a finite [longitude, latitude] pair within range"
	}

	if len(fields) > 0 {
		return nil, apperror.Validation("invalid resource", fields)
	}
	return &Resource{
		Name:        name,
		Type:        typ,
		Building:    building,
		Floor:       strings.TrimSpace(d.Floor),
		Description: d.Description,
		Location:    *d.Location,
		Ratings:     []Rating{},
	}, nil
}

// ResourcePatch carries only the fields a caller sent. Null clears the
// optional text fields and is rejected for required ones.
type ResourcePatch struct {
	Name        optional.Field[string]
	Type        optional.Field[string]
	Building    optional.Field[string]
	Floor       optional.Field[string]
	Description optional.Field[string]
	PhotoURL    optional.Field[string]
	Location    optional.Field[geo.Point]
}

// IsEmpty reports whether no field was sent.
func (p ResourcePatch) IsEmpty() bool {
	return !p.Name.Set && !p.Type.Set && !p.Building.Set && !p.Floor.Set &&
		!p.Description.Set && !p.PhotoURL.Set && !p.Location.Set
}

// Normalize validates present fields and returns the patch with trimmed
// values and canonical type spelling.
func (p ResourcePatch) Normalize() (ResourcePatch, error) {
	fields := map[string]string{}
	out := p

	requiredText := func(name string, f optional.Field[string]) optional.Field[string] {
		if !f.Set {
			return f
		}
		v := strings.TrimSpace(f.Value)
		if f.Null || v == "" {
			fields[name] = "cannot be empty"
			return f
		}
		return optional.Of(v)
	}
	out.Name = requiredText("name", p.Name)
	out.Building = requiredText("building", p.Building)

	if p.Type.Set {
		typ, ok := ParseResourceType(p.Type.Value)
		if p.Type.Null || !ok {
			fields["type"] = "must be one of: " + resourceTypeList()
		} else {
			out.Type = optional.Of(string(typ))
		}
	}
	if p.Floor.HasValue() {
		out.Floor = optional.Of(strings.TrimSpace(p.Floor.Value))
	}
	if p.Description.HasValue() && len([]rune(p.Description.Value)) > MaxDescriptionLen {
		fields["description"] = "must be at most 500 characters long"
	}
	if p.Location.Set && (p.Location.Null || !p.Location.Value.Valid()) {
		fields["coordinates"] = "must be a finite [longitude, latitude] pair within range"
	}

	if len(fields) > 0 {
		return p, apperror.Validation("invalid resource", fields)
	}
	return out, nil
}

// Apply merges a normalized patch onto r. Absent fields are untouched.
func (p ResourcePatch) Apply(r *Resource) {
	if p.Name.Set {
		r.Name = p.Name.Value
	}
	if p.Type.Set {
		r.Type = ResourceType(p.Type.Value)
	}
	if p.Building.Set {
		r.Building = p.Building.Value
	}
	if p.Floor.Set {
		r.Floor = p.Floor.Value
	}
	if p.Description.Set {
		r.Description = p.Description.Value
	}
	if p.PhotoURL.Set {
		r.PhotoURL = p.PhotoURL.Value
	}
	if p.Location.Set {
		r.Location = p.Location.Value
	}
}

// SearchQuery is what the search engine asks the repository for. With an
// Origin the repository returns every text match its spatial index places
// within Radius, unordered and uncapped; exact distance filtering and ordering
// happen above it. Without one it returns the newest Limit text matches.
type SearchQuery struct {
	Text   string
	Origin *geo.Point
	Radius float64
	Limit  int
}

// SearchResult pairs a resource with its distance from the query origin.
type SearchResult struct {
	Resource *Resource
	Distance *float64
}
