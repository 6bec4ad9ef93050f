// README: In-memory catalog with the same filter semantics as the Postgres store (CLI and tests).
package catalog

import (
	"context"
	"sort"
	"strings"
)

// MemoryRecord adds the columns that only exist as predicates.
type MemoryRecord struct {
	Record
	Zone       string
	GroupTypes []string
	HasPool    bool
	Published  bool
}

type Memory struct {
	items     map[Kind][]MemoryRecord
	locations []Record
	articles  []Record
}

func NewMemory() *Memory {
	return &Memory{items: make(map[Kind][]MemoryRecord)}
}

func (m *Memory) Add(r MemoryRecord) *Memory {
	switch r.Kind {
	case KindLocation:
		m.locations = append(m.locations, r.Record)
	case KindArticle:
		m.articles = append(m.articles, r.Record)
	default:
		m.items[r.Kind] = append(m.items[r.Kind], r)
	}
	return m
}

func (m *Memory) QueryLodging(_ context.Context, f Filters) ([]Record, error) {
	return m.filter(KindLodging, f), nil
}

func (m *Memory) QueryRestaurants(_ context.Context, f Filters) ([]Record, error) {
	return m.filter(KindRestaurant, f), nil
}

func (m *Memory) QueryTours(_ context.Context, f Filters) ([]Record, error) {
	return m.filter(KindTour, f), nil
}

func (m *Memory) QueryVehicles(_ context.Context, f Filters) ([]Record, error) {
	return m.filter(KindVehicle, f), nil
}

func (m *Memory) QueryLocationInfo(_ context.Context, name string) (*Record, error) {
	for _, l := range m.locations {
		if containsFold(l.Title, name) {
			r := l
			return &r, nil
		}
	}
	return nil, nil
}

func (m *Memory) SearchArticles(_ context.Context, keyword string) ([]Record, error) {
	var out []Record
	for _, a := range m.articles {
		if containsFold(a.Title, keyword) || containsFold(a.Content, keyword) {
			out = append(out, a)
		}
		if len(out) == articleLimit {
			break
		}
	}
	return out, nil
}

func (m *Memory) filter(kind Kind, f Filters) []Record {
	var out []MemoryRecord
	for _, r := range m.items[kind] {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFeatured != out[j].IsFeatured {
			return out[i].IsFeatured
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	recs := make([]Record, len(out))
	for i, r := range out {
		recs[i] = r.Record
	}
	return recs
}

func matches(r MemoryRecord, f Filters) bool {
	if !r.Published {
		return false
	}
	if f.Location != "" {
		zone := NormalizeZone(f.Location)
		if !containsFold(r.Location, f.Location) && (zone == "" || r.Zone != zone) {
			return false
		}
	}
	if f.MaxPrice > 0 && !atMost(r.Price, f.MaxPrice) && !atMost(r.SalePrice, f.MaxPrice) {
		return false
	}
	if f.MinPrice > 0 && (r.Price == nil || *r.Price < f.MinPrice) {
		return false
	}
	if f.MinRating > 0 && (r.Rating == nil || *r.Rating < f.MinRating) {
		return false
	}
	if f.Category != "" && !containsFold(r.Category, f.Category) {
		return false
	}
	if f.IsFeatured && !r.IsFeatured {
		return false
	}
	if r.Kind == KindLodging {
		if f.AccommodationType != "" && r.Category != f.AccommodationType {
			return false
		}
		if f.GroupType != "" && !contains(r.GroupTypes, f.GroupType) {
			return false
		}
		if f.HasPool && !r.HasPool {
			return false
		}
	}
	if r.Kind == KindTour {
		if f.MinDurationHours > 0 && (r.DurationHours == nil || *r.DurationHours < f.MinDurationHours) {
			return false
		}
		if f.MaxDurationHours > 0 && (r.DurationHours == nil || *r.DurationHours > f.MaxDurationHours) {
			return false
		}
	}
	return true
}

func atMost(v *float64, limit float64) bool {
	return v != nil && *v <= limit
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
