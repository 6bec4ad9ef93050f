// README: Price tier definitions per catalog segment.
package pricing

type Segment string

const (
	SegmentHotel      Segment = "hotel"
	SegmentApartment  Segment = "apartment"
	SegmentVilla      Segment = "villa"
	SegmentRestaurant Segment = "restaurant"
	// SegmentSearch is the listing search used when no specialist owns the turn.
	SegmentSearch Segment = "search"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Band is a price window in USD per night (lodging) or per person (food).
// Zero bounds are open.
type Band struct {
	Min float64
	Max float64
}

// Bands are user-facing pricing language and differ per segment on purpose.
var Bands = map[Segment]map[Tier]Band{
	SegmentHotel: {
		TierLow:  {Max: 100},
		TierHigh: {Min: 300},
	},
	SegmentApartment: {
		TierLow:  {Max: 100},
		TierHigh: {Min: 200},
	},
	SegmentVilla: {
		TierLow:  {Max: 300},
		TierHigh: {Min: 500},
	},
	SegmentRestaurant: {
		TierLow:  {Max: 30},
		TierHigh: {Min: 50},
	},
	SegmentSearch: {
		TierLow:    {Max: 100},
		TierMedium: {Min: 100, Max: 300},
		TierHigh:   {Min: 300},
	},
}

// tierAliases maps the Spanish budget words of the listing search onto tiers.
var tierAliases = map[string]Tier{
	"low":    TierLow,
	"bajo":   TierLow,
	"medium": TierMedium,
	"medio":  TierMedium,
	"high":   TierHigh,
	"alto":   TierHigh,
}
