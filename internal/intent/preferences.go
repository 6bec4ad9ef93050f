// README: Per-topic preference extraction (substring and regex checks over the lowercased message).
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// option binds a value to the keywords that select it. Within one dimension
// options are tried in order and the first hit is kept.
type option struct {
	value    string
	keywords []string
}

func pick(lower string, opts []option) string {
	for _, o := range opts {
		if containsAny(lower, o.keywords) {
			return o.value
		}
	}
	return ""
}

// ContainsAny reports whether the lowercased text contains any of words.
func ContainsAny(text string, words ...string) bool {
	return containsAny(strings.ToLower(text), words)
}

type LodgingPrefs struct {
	AccommodationType string   `json:"accommodationType,omitempty"`
	Location          string   `json:"location,omitempty"`
	PriceRange        string   `json:"priceRange,omitempty"`
	GroupType         string   `json:"groupType,omitempty"`
	Amenities         []string `json:"amenities,omitempty"`
}

// HasFilters reports whether any filter dimension other than the type was extracted.
func (p LodgingPrefs) HasFilters() bool {
	return p.Location != "" || p.PriceRange != "" || p.GroupType != "" || len(p.Amenities) > 0
}

var (
	lodgingTypes = []option{
		{"hotel", []string{"hotel"}},
		{"apartment", []string{"apartamento", "apartment"}},
		{"villa", []string{"villa", "casa"}},
	}
	lodgingZones = []option{
		{"beach", []string{"playa", "beach", "costa"}},
		{"downtown", []string{"centro", "downtown"}},
		{"mountain", []string{"montaña", "mountain"}},
	}
	lodgingPrices = []option{
		{"low", []string{"barato", "económico", "cheap"}},
		{"high", []string{"lujo", "luxury", "premium"}},
	}
	lodgingGroups = []option{
		{"family", []string{"familia", "niños", "family"}},
		{"couple", []string{"pareja", "romántico", "couple"}},
		{"group", []string{"grupo", "amigos", "group"}},
	}
	// amenities accumulate instead of competing
	lodgingAmenities = []option{
		{"pool", []string{"piscina", "pool"}},
		{"wifi", []string{"wifi", "internet"}},
		{"breakfast", []string{"desayuno", "breakfast"}},
	}
)

func ExtractLodging(text string) LodgingPrefs {
	lower := strings.ToLower(text)
	p := LodgingPrefs{
		AccommodationType: pick(lower, lodgingTypes),
		Location:          pick(lower, lodgingZones),
		PriceRange:        pick(lower, lodgingPrices),
		GroupType:         pick(lower, lodgingGroups),
	}
	for _, a := range lodgingAmenities {
		if containsAny(lower, a.keywords) {
			p.Amenities = append(p.Amenities, a.value)
		}
	}
	return p
}

type FoodPrefs struct {
	CuisineType string `json:"cuisineType,omitempty"`
	PriceRange  string `json:"priceRange,omitempty"`
	Ambience    string `json:"ambience,omitempty"`
}

var (
	cuisines = []option{
		{"local", []string{"dominicana", "local", "típica"}},
		{"italian", []string{"italiana", "pizza", "pasta"}},
		{"seafood", []string{"mariscos", "pescado", "seafood"}},
		{"international", []string{"internacional"}},
	}
	foodPrices = []option{
		{"low", []string{"barato", "económico"}},
		{"high", []string{"caro", "lujo", "exclusivo"}},
	}
	ambiences = []option{
		{"romantic", []string{"romántico", "pareja"}},
		{"family", []string{"familia", "niños"}},
		{"view", []string{"vista", "panorámica", "mar"}},
	}
)

func ExtractFood(text string) FoodPrefs {
	lower := strings.ToLower(text)
	return FoodPrefs{
		CuisineType: pick(lower, cuisines),
		PriceRange:  pick(lower, foodPrices),
		Ambience:    pick(lower, ambiences),
	}
}

type ActivityPrefs struct {
	ActivityType string `json:"activityType,omitempty"`
	Duration     string `json:"duration,omitempty"`
	GroupType    string `json:"groupType,omitempty"`
}

var (
	activityTypes = []option{
		{"whale_watching", []string{"ballena", "whale"}},
		{"beach", []string{"playa", "beach"}},
		{"hiking", []string{"senderismo", "hiking", "caminata"}},
		{"el_limon", []string{"limon", "limón", "cascada", "waterfall"}},
		{"los_haitises", []string{"haitises", "parque nacional"}},
	}
	durations = []option{
		{"full_day", []string{"dia completo", "día completo", "full day"}},
		{"half_day", []string{"medio dia", "medio día", "half day"}},
	}
	activityGroups = []option{
		{"family", []string{"familia", "niños", "family"}},
		{"couple", []string{"pareja", "romantico", "romántico", "couple"}},
		{"adventure", []string{"aventura", "adventure"}},
	}
)

func ExtractActivity(text string) ActivityPrefs {
	lower := strings.ToLower(text)
	return ActivityPrefs{
		ActivityType: pick(lower, activityTypes),
		Duration:     pick(lower, durations),
		GroupType:    pick(lower, activityGroups),
	}
}

type TransportPrefs struct {
	VehicleType string `json:"vehicleType,omitempty"`
	RentalDays  int    `json:"rentalDays,omitempty"`
	PriceRange  string `json:"priceRange,omitempty"`
}

var (
	vehicleTypes = []option{
		{"car", []string{"coche", "auto", "car"}},
		{"motorcycle", []string{"moto", "scooter"}},
		{"atv", []string{"quad", "atv", "buggy"}},
	}
	rentalDaysRe = regexp.MustCompile(`(?i)(\d+)\s*(días|dias|día|dia|days|day)`)
)

func ExtractTransport(text string) TransportPrefs {
	lower := strings.ToLower(text)
	p := TransportPrefs{
		VehicleType: pick(lower, vehicleTypes),
		PriceRange:  pick(lower, lodgingPrices),
	}
	if containsAny(lower, []string{"dia", "día", "day"}) {
		p.RentalDays = 1
		if m := rentalDaysRe.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				p.RentalDays = n
			}
		}
	}
	return p
}

// SearchPrefs feeds the generic listing search.
type SearchPrefs struct {
	Location  string `json:"location,omitempty"`
	Budget    string `json:"budget,omitempty"`
	People    int    `json:"people,omitempty"`
	StartDate string `json:"startDate,omitempty"`
}

var (
	searchZones = []option{
		{"playa", []string{"playa", "costa", "mar"}},
		{"centro", []string{"centro"}},
	}
	searchBudgets = []option{
		{"bajo", []string{"económico", "barato"}},
		{"alto", []string{"lujo", "premium"}},
	}
	peopleRe = regexp.MustCompile(`(?i)(\d+)\s*(personas|persona|huéspedes|adultos|visitantes)`)
)

// ExtractSearch reads date hints relative to now.
func ExtractSearch(text string, now time.Time) SearchPrefs {
	lower := strings.ToLower(text)
	p := SearchPrefs{
		Location: pick(lower, searchZones),
		Budget:   pick(lower, searchBudgets),
	}
	if m := peopleRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			p.People = n
		}
	}
	switch {
	case strings.Contains(lower, "mañana"):
		p.StartDate = now.AddDate(0, 0, 1).Format(time.DateOnly)
	case strings.Contains(lower, "próxima semana"):
		p.StartDate = now.AddDate(0, 0, 7).Format(time.DateOnly)
	}
	return p
}
