// README: Google Places lookups used as the last resort of the information search.
package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"samanainn/internal/modules/catalog"
)

const placesRegionSuffix = "Samaná, República Dominicana"

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// DescribePlace returns the best match for name inside the peninsula as a
// location record, or nil when Places knows nothing about it.
func (s *PlacesService) DescribePlace(ctx context.Context, name string) (*catalog.Record, error) {
	r := &maps.TextSearchRequest{
		Query:    placeQuery(name),
		Language: "es",
		Region:   "do",
	}
	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	rec := placeRecord(resp.Results[0])
	return &rec, nil
}

func placeQuery(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(strings.ToLower(name), "samaná") || strings.Contains(strings.ToLower(name), "samana") {
		return placesRegionSuffix
	}
	return name + ", " + placesRegionSuffix
}

func placeRecord(p maps.PlacesSearchResult) catalog.Record {
	var sb strings.Builder
	sb.WriteString(p.Name)
	if p.FormattedAddress != "" {
		fmt.Fprintf(&sb, " se encuentra en %s.", p.FormattedAddress)
	} else {
		sb.WriteString(" está en la península de Samaná.")
	}
	if p.Rating > 0 {
		fmt.Fprintf(&sb, " Los visitantes le dan una valoración de %.1f", p.Rating)
		if p.UserRatingsTotal > 0 {
			fmt.Fprintf(&sb, " (%d opiniones)", p.UserRatingsTotal)
		}
		sb.WriteString(".")
	}

	rec := catalog.Record{
		Kind:     catalog.KindLocation,
		Title:    p.Name,
		Slug:     p.PlaceID,
		Content:  sb.String(),
		Address:  p.FormattedAddress,
		Location: p.Name,
	}
	if p.Rating > 0 {
		rating := float64(p.Rating)
		rec.Rating = &rating
	}
	return rec
}
