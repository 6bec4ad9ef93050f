package service

import (
	"regexp"
	"strings"

	"samanainn/internal/chat"
	"samanainn/internal/modules/catalog"
)

const (
	maxMessageRunes   = 2000
	maxResults        = 10
	maxContentRunes   = 300
	maxShortDescRunes = 150
	maxQuestions      = 3

	emptyFallback  = "Lo siento, no puedo proporcionar una respuesta en este momento. ¿Hay algo más en lo que pueda ayudarte?"
	refusalMessage = "Lo siento, no puedo proporcionar ese tipo de información. ¿Puedo ayudarte con otra consulta relacionada con Samaná?"
	untitled       = "Elemento sin título"
)

var (
	prohibited = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(contraseña|password|credencial)\b`),
		regexp.MustCompile(`(?i)\b(datos personales|información privada)\b`),
		regexp.MustCompile(`(?i)\b(whatsapp|telegram|número personal)\b`),
	}

	relevance = map[chat.Topic]struct {
		keywords []string
		prefix   string
	}{
		chat.TopicAccommodation: {[]string{"alojamiento", "hotel", "apartamento", "casa", "habitación", "villa"}, "Respecto a tu consulta sobre alojamiento en Samaná: "},
		chat.TopicGastronomy:    {[]string{"restaurante", "comida", "gastronomía", "cocina", "comer"}, "En cuanto a los restaurantes y opciones gastronómicas en Samaná: "},
		chat.TopicActivities:    {[]string{"excursión", "tour", "actividad", "visita", "aventura"}, "Sobre las actividades y excursiones disponibles en Samaná: "},
		chat.TopicTransport:     {[]string{"vehículo", "coche", "carro", "transporte", "traslado"}, "En relación con las opciones de transporte en Samaná: "},
		chat.TopicInformation:   {[]string{"samaná", "república dominicana", "información", "lugar", "destino"}, "Acerca de tu consulta sobre Samaná: "},
	}

	defaultTitles = map[chat.BannerType]string{
		chat.BannerAccommodation: "Alojamientos en Samaná",
		chat.BannerGastronomy:    "Gastronomía de Samaná",
		chat.BannerActivities:    "Actividades y Excursiones en Samaná",
		chat.BannerTransport:     "Transporte en Samaná",
		chat.BannerInformation:   "Descubre Samaná",
		chat.BannerGeneral:       "Bienvenido a SamanaInn",
	}

	defaultQuestions = []string{"¿Qué puedo hacer en Samaná?", "¿Dónde puedo alojarme en Samaná?", "¿Cuál es la mejor época para visitar Samaná?"}
)

// Validate is the terminal stage of every turn. It is pure and idempotent:
// validating a validated response changes nothing. c is the merged context
// of the turn and only its intent is read.
func Validate(resp chat.Response, c chat.Context) chat.Response {
	out := resp
	out.ValidatedBy = string(chat.ResponderValidation)
	if resp.Error {
		return out
	}

	if strings.TrimSpace(out.Message) == "" {
		out.Message = emptyFallback
	}
	out.Message = clamp(out.Message, maxMessageRunes)

	// the refusal is final and never gets a topic prefix
	if out.Message == refusalMessage || isProhibited(out.Message) {
		out.Message = refusalMessage
	} else {
		out.Message = ensureRelevant(out.Message, c.IntentType())
	}

	out.UI = normalizeUI(resp.UI)
	out.Results = boundResults(resp.Results)
	return out
}

func isProhibited(msg string) bool {
	for _, re := range prohibited {
		if re.MatchString(msg) {
			return true
		}
	}
	return false
}

func ensureRelevant(msg string, t chat.Topic) string {
	rule, ok := relevance[t]
	if !ok {
		return msg
	}
	lower := strings.ToLower(msg)
	for _, k := range rule.keywords {
		if strings.Contains(lower, k) {
			return msg
		}
	}
	return clamp(rule.prefix+msg, maxMessageRunes)
}

func normalizeUI(in *chat.UI) *chat.UI {
	var ui chat.UI
	if in != nil {
		ui = *in
	}
	if _, ok := defaultTitles[ui.BannerType]; !ok {
		ui.BannerType = chat.BannerGeneral
	}
	if ui.BannerTitle == "" {
		ui.BannerTitle = defaultTitles[ui.BannerType]
	}
	if ui.BookingButtonURL == "" {
		ui.ShowBookingButton = false
	}
	if ui.DetailButtonURL == "" {
		ui.ShowDetailButton = false
	}
	if ui.PricingButtonURL == "" {
		ui.ShowPricingButton = false
	}
	switch {
	case len(ui.SuggestedQuestions) == 0:
		ui.SuggestedQuestions = append([]string(nil), defaultQuestions...)
	case len(ui.SuggestedQuestions) > maxQuestions:
		ui.SuggestedQuestions = append([]string(nil), ui.SuggestedQuestions[:maxQuestions]...)
	}
	return &ui
}

// boundResults copies so shared slices from the catalog are never mutated.
func boundResults(in []catalog.Record) []catalog.Record {
	if len(in) == 0 {
		return in
	}
	n := min(len(in), maxResults)
	out := make([]catalog.Record, n)
	copy(out, in[:n])
	for i := range out {
		if strings.TrimSpace(out[i].Title) == "" {
			out[i].Title = untitled
		}
		out[i].Content = clamp(out[i].Content, maxContentRunes)
		out[i].ShortDesc = clamp(out[i].ShortDesc, maxShortDescRunes)
	}
	return out
}

// clamp keeps at most limit runes, ending a cut string with "...".
func clamp(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
