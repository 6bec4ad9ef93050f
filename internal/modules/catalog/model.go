// README: Catalog records (lodging, restaurant, tour, vehicle, location, article) and lookup filters.
package catalog

import (
	"context"
	"errors"
	"strings"
)

var ErrUnknownKind = errors.New("unknown catalog kind")

type Kind string

const (
	KindLodging    Kind = "lodging"
	KindRestaurant Kind = "restaurant"
	KindTour       Kind = "tour"
	KindVehicle    Kind = "vehicle"
	KindLocation   Kind = "location"
	KindArticle    Kind = "article"
)

// Record is opaque to the chat pipeline beyond its title, descriptions and gallery.
// Numeric fields are only ever used as filter predicates.
type Record struct {
	ID            int64    `json:"id"`
	Kind          Kind     `json:"kind"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug,omitempty"`
	ShortDesc     string   `json:"short_desc,omitempty"`
	Content       string   `json:"content,omitempty"`
	Address       string   `json:"address,omitempty"`
	Gallery       string   `json:"gallery,omitempty"`
	Category      string   `json:"category,omitempty"`
	Location      string   `json:"location_name,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	SalePrice     *float64 `json:"sale_price,omitempty"`
	Rating        *float64 `json:"review_score,omitempty"`
	DurationHours *float64 `json:"duration,omitempty"`
	IsFeatured    bool     `json:"is_featured"`
}

// FirstImage returns the first entry of the comma-joined gallery.
func (r Record) FirstImage() string {
	if r.Gallery == "" {
		return ""
	}
	first, _, _ := strings.Cut(r.Gallery, ",")
	return strings.TrimSpace(first)
}

// Filters is the flat predicate bag a lookup accepts. Zero values mean "not set".
// A zero Limit means unbounded, so callers always supply one.
type Filters struct {
	Location          string
	MinPrice          float64
	MaxPrice          float64
	MinRating         float64
	Category          string
	AccommodationType string
	GroupType         string
	HasPool           bool
	MinDurationHours  float64
	MaxDurationHours  float64
	IsFeatured        bool
	Limit             int
}

// Gateway executes filtered lookups against the catalog collections.
type Gateway interface {
	QueryLodging(ctx context.Context, f Filters) ([]Record, error)
	QueryRestaurants(ctx context.Context, f Filters) ([]Record, error)
	QueryTours(ctx context.Context, f Filters) ([]Record, error)
	QueryVehicles(ctx context.Context, f Filters) ([]Record, error)
	QueryLocationInfo(ctx context.Context, name string) (*Record, error)
	SearchArticles(ctx context.Context, keyword string) ([]Record, error)
}

var zoneAliases = map[string]string{
	"playa":    "beach",
	"costa":    "beach",
	"beach":    "beach",
	"centro":   "downtown",
	"downtown": "downtown",
	"montaña":  "mountain",
	"mountain": "mountain",
}

// NormalizeZone maps Spanish and English zone words onto the zone tags stored with records.
// Unknown values come back empty and are matched against location names only.
func NormalizeZone(v string) string {
	return zoneAliases[strings.ToLower(strings.TrimSpace(v))]
}
