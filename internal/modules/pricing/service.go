// README: Pricing lookups translate a price tier into catalog filter bounds.
package pricing

import (
	"strings"

	"samanainn/internal/modules/catalog"
)

// ParseTier accepts English and Spanish tier words.
func ParseTier(v string) (Tier, bool) {
	t, ok := tierAliases[strings.ToLower(strings.TrimSpace(v))]
	return t, ok
}

// Lookup returns the band for a segment and tier word.
func Lookup(seg Segment, tier string) (Band, bool) {
	t, ok := ParseTier(tier)
	if !ok {
		return Band{}, false
	}
	b, ok := Bands[seg][t]
	return b, ok
}

// Apply sets the filter price bounds for tier. Unknown tiers leave f unchanged.
func Apply(f *catalog.Filters, seg Segment, tier string) bool {
	b, ok := Lookup(seg, tier)
	if !ok {
		return false
	}
	if b.Min > 0 {
		f.MinPrice = b.Min
	}
	if b.Max > 0 {
		f.MaxPrice = b.Max
	}
	return true
}

// ForAccommodation picks the lodging segment for an accommodation type,
// defaulting to the hotel bands.
func ForAccommodation(accommodationType string) Segment {
	switch accommodationType {
	case "apartment":
		return SegmentApartment
	case "villa":
		return SegmentVilla
	default:
		return SegmentHotel
	}
}
