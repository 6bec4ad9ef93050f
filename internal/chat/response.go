// README: Response value produced by every responder and emitted by the validator.
package chat

import "samanainn/internal/modules/catalog"

type BannerType string

const (
	BannerGeneral       BannerType = "general"
	BannerAccommodation BannerType = "accommodation"
	BannerGastronomy    BannerType = "gastronomy"
	BannerActivities    BannerType = "activities"
	BannerTransport     BannerType = "transport"
	BannerInformation   BannerType = "information"
)

// UI carries rendering directives for the chat widget.
type UI struct {
	UpdateBanner        bool       `json:"updateBanner"`
	BannerType          BannerType `json:"bannerType,omitempty"`
	BannerTitle         string     `json:"bannerTitle,omitempty"`
	BannerImage         string     `json:"bannerImage,omitempty"`
	ShowResults         bool       `json:"showResults"`
	ResultType          string     `json:"resultType,omitempty"`
	SuggestedQuestions  []string   `json:"suggestedQuestions"`
	ShowBookingButton   bool       `json:"showBookingButton,omitempty"`
	BookingButtonText   string     `json:"bookingButtonText,omitempty"`
	BookingButtonURL    string     `json:"bookingButtonUrl,omitempty"`
	ShowDetailButton    bool       `json:"showDetailButton,omitempty"`
	DetailButtonText    string     `json:"detailButtonText,omitempty"`
	DetailButtonURL     string     `json:"detailButtonUrl,omitempty"`
	ShowPricingButton   bool       `json:"showPricingButton,omitempty"`
	PricingButtonText   string     `json:"pricingButtonText,omitempty"`
	PricingButtonURL    string     `json:"pricingButtonUrl,omitempty"`
	ShowRecommendations bool       `json:"showRecommendations,omitempty"`
	RecommendationsType string     `json:"recommendationsType,omitempty"`
}

type ActionType string

const (
	ActionQuery   ActionType = "query"
	ActionBooking ActionType = "booking"
	ActionRespond ActionType = "respond"
)

// Action tells the dispatcher what runs next in the same turn.
type Action struct {
	Type    ActionType     `json:"type"`
	Query   *QueryParams   `json:"queryParams,omitempty"`
	Booking *BookingParams `json:"bookingParams,omitempty"`
	Message string         `json:"message,omitempty"`
}

type Response struct {
	Message     string           `json:"message"`
	Error       bool             `json:"error,omitempty"`
	Results     []catalog.Record `json:"results,omitempty"`
	UI          *UI              `json:"ui,omitempty"`
	Context     Patch            `json:"-"`
	NextAction  *Action          `json:"-"`
	ValidatedBy string           `json:"validatedBy,omitempty"`
}

// Apology builds the error-flagged response every failure path returns.
func Apology(msg string) Response {
	return Response{Message: msg, Error: true}
}
