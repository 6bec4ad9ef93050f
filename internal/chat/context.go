// README: Conversation context threaded across turns and the patch/merge rules applied at the end of each turn.
package chat

type Stage string

const (
	StageInitial Stage = "initial"
	StageQuery   Stage = "query"
	StageBooking Stage = "booking"
	StageGeneric Stage = "generic"
)

type Topic string

const (
	TopicAccommodation Topic = "accommodation"
	TopicGastronomy    Topic = "gastronomy"
	TopicActivities    Topic = "activities"
	TopicTransport     Topic = "transport"
	TopicInformation   Topic = "information"
	TopicGeneral       Topic = "general"
)

// Known reports whether t is one of the fixed topics.
func (t Topic) Known() bool {
	switch t {
	case TopicAccommodation, TopicGastronomy, TopicActivities, TopicTransport, TopicInformation, TopicGeneral:
		return true
	}
	return false
}

type ResponderName string

const (
	ResponderCoordinator ResponderName = "CoordinatorAgent"
	ResponderQuery       ResponderName = "QueryAgent"
	ResponderBooking     ResponderName = "BookingAgent"
	ResponderLodging     ResponderName = "AccommodationAgent"
	ResponderFood        ResponderName = "GastronomyAgent"
	ResponderActivities  ResponderName = "ActivitiesAgent"
	ResponderTransport   ResponderName = "TransportAgent"
	ResponderGeneric     ResponderName = "GenericAgent"
	ResponderValidation  ResponderName = "ValidationAgent"
)

type Intent struct {
	Type       Topic             `json:"type"`
	Confidence float64           `json:"confidence"`
	Details    map[string]string `json:"details,omitempty"`
}

// QueryParams seeds the query stage. Topic selects the specialist responder.
type QueryParams struct {
	SearchType string            `json:"searchType,omitempty"`
	Topic      Topic             `json:"topic,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// BookingParams is what the booking stage and the deep-link builder read.
type BookingParams struct {
	Type     string `json:"type,omitempty"`
	ID       string `json:"id,omitempty"`
	Slug     string `json:"slug,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Adults   int    `json:"adults,omitempty"`
	Children int    `json:"children,omitempty"`
}

type LastSearch struct {
	Type        string            `json:"type"`
	Params      map[string]string `json:"params,omitempty"`
	ResultCount int               `json:"resultCount"`
}

type Preferences struct {
	Budget    string   `json:"budget,omitempty"`
	GroupType string   `json:"groupType,omitempty"`
	Location  string   `json:"location,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

func (p Preferences) IsZero() bool {
	return p.Budget == "" && p.GroupType == "" && p.Location == "" && len(p.Interests) == 0
}

// Context is owned by one conversation and persisted between turns.
type Context struct {
	ProcessingStage Stage           `json:"processingStage,omitempty"`
	Intent          *Intent         `json:"intent,omitempty"`
	ActiveAgents    []ResponderName `json:"activeAgents,omitempty"`
	QueryParams     *QueryParams    `json:"queryParams,omitempty"`
	BookingParams   *BookingParams  `json:"bookingParams,omitempty"`
	LastSearch      *LastSearch     `json:"lastSearch,omitempty"`
	UserPreferences Preferences     `json:"userPreferences"`
}

// Stage returns the processing stage, treating an unset value as initial.
func (c Context) Stage() Stage {
	if c.ProcessingStage == "" {
		return StageInitial
	}
	return c.ProcessingStage
}

// IntentType returns the intent topic or "" when no intent was recorded yet.
func (c Context) IntentType() Topic {
	if c.Intent == nil {
		return ""
	}
	return c.Intent.Type
}

// Patch is the partial context a stage hands back. Nil fields leave the
// previous value untouched.
type Patch struct {
	ProcessingStage *Stage
	Intent          *Intent
	AppendAgents    []ResponderName
	QueryParams     *QueryParams
	BookingParams   *BookingParams
	LastSearch      *LastSearch
	Preferences     *Preferences
}

func (p Patch) IsEmpty() bool {
	return p.ProcessingStage == nil && p.Intent == nil && len(p.AppendAgents) == 0 &&
		p.QueryParams == nil && p.BookingParams == nil && p.LastSearch == nil && p.Preferences == nil
}

// Then layers next over p, so that merging the result equals merging p then next.
func (p Patch) Then(next Patch) Patch {
	out := p
	if next.ProcessingStage != nil {
		out.ProcessingStage = next.ProcessingStage
	}
	if next.Intent != nil {
		out.Intent = next.Intent
	}
	if len(next.AppendAgents) > 0 {
		out.AppendAgents = append(append([]ResponderName(nil), p.AppendAgents...), next.AppendAgents...)
	}
	if next.QueryParams != nil {
		out.QueryParams = next.QueryParams
	}
	if next.BookingParams != nil {
		out.BookingParams = next.BookingParams
	}
	if next.LastSearch != nil {
		out.LastSearch = next.LastSearch
	}
	if next.Preferences != nil {
		if p.Preferences == nil {
			out.Preferences = next.Preferences
		} else {
			merged := mergePreferences(*p.Preferences, *next.Preferences)
			out.Preferences = &merged
		}
	}
	return out
}

func StagePtr(s Stage) *Stage { return &s }

// Merge returns a new Context with p applied. c is never modified.
func (c Context) Merge(p Patch) Context {
	out := c
	if p.ProcessingStage != nil {
		out.ProcessingStage = *p.ProcessingStage
	}
	if p.Intent != nil {
		in := *p.Intent
		in.Details = copyMap(p.Intent.Details)
		out.Intent = &in
	}
	if len(p.AppendAgents) > 0 {
		out.ActiveAgents = appendUnique(c.ActiveAgents, p.AppendAgents)
	}
	if p.QueryParams != nil {
		q := *p.QueryParams
		q.Filters = copyMap(p.QueryParams.Filters)
		out.QueryParams = &q
	}
	if p.BookingParams != nil {
		b := *p.BookingParams
		out.BookingParams = &b
	}
	if p.LastSearch != nil {
		ls := *p.LastSearch
		ls.Params = copyMap(p.LastSearch.Params)
		out.LastSearch = &ls
	}
	if p.Preferences != nil {
		out.UserPreferences = mergePreferences(c.UserPreferences, *p.Preferences)
	}
	return out
}

// mergePreferences keeps earlier values unless the newer turn set a field.
// Interests accumulate.
func mergePreferences(base, next Preferences) Preferences {
	out := base
	if next.Budget != "" {
		out.Budget = next.Budget
	}
	if next.GroupType != "" {
		out.GroupType = next.GroupType
	}
	if next.Location != "" {
		out.Location = next.Location
	}
	if len(next.Interests) > 0 {
		out.Interests = appendUnique(base.Interests, next.Interests)
	}
	return out
}

func appendUnique[T comparable](base, add []T) []T {
	out := make([]T, 0, len(base)+len(add))
	seen := make(map[T]struct{}, len(base)+len(add))
	for _, v := range base {
		out = append(out, v)
		seen[v] = struct{}{}
	}
	for _, v := range add {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Turn is one stored message of the conversation history.
type Turn struct {
	Role    Role   `json:"from"`
	Content string `json:"content"`
}
