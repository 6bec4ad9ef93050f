// README: Booking stage. Builds deep links into the reservation site; nothing is reserved here.
package responders

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/modules/catalog"
)

// ErrUnknownBookingType is mapped to the bare base URL and never escapes BuildURL.
var ErrUnknownBookingType = errors.New("unknown booking type")

const (
	DefaultBookingBaseURL = "https://samanainn.com"

	BookingFailure       = "Lo siento, he tenido un problema al procesar la información de reserva. ¿Podrías intentarlo de nuevo?"
	bookingAvailability  = "Para verificar la disponibilidad exacta y precios actualizados, te recomiendo visitar directamente la página de reservas. Ahí podrás ver todas las opciones disponibles para las fechas que te interesan y completar tu reserva en caso de que encuentres algo que se ajuste a tus necesidades."
	bookingDetailsKnown  = "Para ver todos los detalles completos, fotos, servicios incluidos y opiniones de otros viajeros, te recomiendo visitar la página completa del alojamiento. Ahí encontrarás toda la información que necesitas para tomar una decisión."
	bookingDetailsVague  = "Lo siento, no tengo información detallada sobre esa opción específica. Te recomiendo especificar qué opción te interesa para poder darte información más precisa."
	bookingPricing       = "Los precios pueden variar según la temporada, disponibilidad y promociones actuales. Para ver los precios exactos y actualizados para las fechas que te interesan, te recomiendo visitar la página de reservas donde encontrarás toda la información detallada."
	bookingNoSimilar     = "Lo siento, no tengo recomendaciones similares disponibles en este momento."
	bookingSimilarFormat = "Basándome en tu interés, te puedo recomendar estas opciones similares: %s. ¿Te gustaría más información sobre alguna de ellas?"
)

var (
	bookingPaths = map[string]string{
		"accommodation": "/hotel",
		"restaurant":    "/restaurant",
		"tour":          "/tour",
		"car":           "/car",
	}

	bookingGeneral = map[string]string{
		"":              "Para realizar una reserva en SamanaInn, necesitas seleccionar el tipo de servicio (alojamiento, restaurante, excursión, etc.), las fechas deseadas y el número de personas. Una vez en la página de reserva, podrás ver la disponibilidad, precios y completar tu reserva de forma segura con diferentes métodos de pago.",
		"accommodation": "Para reservar alojamiento en Samaná, te recomendamos hacerlo con antelación, especialmente en temporada alta (diciembre a abril). Puedes encontrar desde hoteles de lujo hasta apartamentos y villas privadas. ¿Te gustaría ver opciones específicas?",
		"restaurant":    "Para reservar en restaurantes de Samaná, especialmente los más populares, te recomendamos hacerlo con 1-2 días de antelación. Muchos restaurantes ofrecen menús especiales y vistas al mar. ¿Buscas algún tipo de cocina en particular?",
		"tour":          "Las excursiones en Samaná suelen requerir reserva previa, especialmente en temporada alta. Ofrecemos tours a Los Haitises, Salto El Limón, avistamiento de ballenas (en temporada) y muchas más actividades. ¿Hay alguna que te interese especialmente?",
	}
	bookingGeneralQuestions = []string{"¿Cuál es la mejor época para visitar Samaná?", "¿Qué necesito para hacer una reserva?", "¿Tienen ofertas especiales disponibles?"}

	similarOptions = map[string][]catalog.Record{
		"accommodation": {
			{Kind: catalog.KindLodging, Title: "Hotel Las Ballenas", ShortDesc: "Hotel boutique con vistas al mar", Slug: "hotel-las-ballenas"},
			{Kind: catalog.KindLodging, Title: "Villa Las Palmeras", ShortDesc: "Villa privada con piscina", Slug: "villa-las-palmeras"},
		},
		"restaurant": {
			{Kind: catalog.KindRestaurant, Title: "El Pescador", ShortDesc: "Especialidad en mariscos frescos", Slug: "el-pescador"},
			{Kind: catalog.KindRestaurant, Title: "Cafe del Mar", ShortDesc: "Cocina internacional con vistas", Slug: "cafe-del-mar"},
		},
		"tour": {
			{Kind: catalog.KindTour, Title: "Excursión a Los Haitises", ShortDesc: "Aventura en parque nacional", Slug: "excursion-los-haitises"},
			{Kind: catalog.KindTour, Title: "Tour de ballenas jorobadas", ShortDesc: "Avistamiento de ballenas en temporada", Slug: "tour-ballenas-jorobadas"},
		},
	}
)

// BuildURL renders the deep link for params under base. Query keys keep the
// check_in, check_out, adults, children order.
func BuildURL(base string, p chat.BookingParams) (string, error) {
	base = strings.TrimRight(base, "/")
	path, ok := bookingPaths[p.Type]
	if !ok {
		return base, ErrUnknownBookingType
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(path)
	sb.WriteString("/")
	sb.WriteString(url.PathEscape(p.Slug))

	var query []string
	if p.CheckIn != "" {
		query = append(query, "check_in="+url.QueryEscape(p.CheckIn))
	}
	if p.CheckOut != "" {
		query = append(query, "check_out="+url.QueryEscape(p.CheckOut))
	}
	if p.Adults > 0 {
		query = append(query, "adults="+strconv.Itoa(p.Adults))
	}
	if p.Children > 0 {
		query = append(query, "children="+strconv.Itoa(p.Children))
	}
	if len(query) > 0 {
		sb.WriteString("?")
		sb.WriteString(strings.Join(query, "&"))
	}
	return sb.String(), nil
}

type Booking struct {
	baseURL string
	logger  *zap.Logger
}

// NewBooking falls back to DefaultBookingBaseURL when baseURL is empty.
func NewBooking(baseURL string, logger *zap.Logger) *Booking {
	if baseURL == "" {
		baseURL = DefaultBookingBaseURL
	}
	return &Booking{baseURL: baseURL, logger: named(logger, "booking")}
}

func (b *Booking) Name() chat.ResponderName { return chat.ResponderBooking }

// URL is BuildURL against the configured base, unknown types included.
func (b *Booking) URL(p chat.BookingParams) string {
	u, err := BuildURL(b.baseURL, p)
	if err != nil {
		b.logger.Debug("booking url falls back to base", zap.String("type", p.Type), zap.Error(err))
	}
	return u
}

func (b *Booking) Respond(_ context.Context, req Request) chat.Response {
	var p chat.BookingParams
	if req.Context.BookingParams != nil {
		p = *req.Context.BookingParams
	}

	switch bookingQueryType(req.Message) {
	case "availability":
		u := b.URL(p)
		return chat.Response{
			Message: bookingAvailability,
			UI:      &chat.UI{ShowBookingButton: true, BookingButtonText: "Ver disponibilidad", BookingButtonURL: u},
		}
	case "details":
		msg := bookingDetailsVague
		if p.ID != "" || p.Slug != "" {
			msg = bookingDetailsKnown
		}
		u := b.URL(p)
		return chat.Response{
			Message: msg,
			UI:      &chat.UI{ShowDetailButton: true, DetailButtonText: "Ver detalles completos", DetailButtonURL: u},
		}
	case "recommendations":
		return similar(p.Type)
	case "pricing":
		u := b.URL(p)
		return chat.Response{
			Message: bookingPricing,
			UI:      &chat.UI{ShowPricingButton: true, PricingButtonText: "Ver precios actualizados", PricingButtonURL: u},
		}
	}

	msg, ok := bookingGeneral[p.Type]
	if !ok {
		msg = bookingGeneral[""]
	}
	return chat.Response{Message: msg, UI: &chat.UI{SuggestedQuestions: bookingGeneralQuestions}}
}

// bookingQueryType checks availability, details, recommendations then pricing.
func bookingQueryType(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "disponible"), strings.Contains(lower, "disponibilidad"), strings.Contains(lower, "fechas"):
		return "availability"
	case strings.Contains(lower, "detalle"), strings.Contains(lower, "información"), strings.Contains(lower, "descrip"):
		return "details"
	case strings.Contains(lower, "recomienda"), strings.Contains(lower, "similar"), strings.Contains(lower, "alternativa"):
		return "recommendations"
	case strings.Contains(lower, "precio"), strings.Contains(lower, "tarifa"), strings.Contains(lower, "costo"), strings.Contains(lower, "cuánto"):
		return "pricing"
	}
	return "general"
}

func similar(kind string) chat.Response {
	options := similarOptions[kind]
	recType := kind
	if recType == "" {
		recType = "general"
	}
	if len(options) == 0 {
		return chat.Response{Message: bookingNoSimilar, UI: &chat.UI{RecommendationsType: recType}}
	}
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.Title
	}
	return chat.Response{
		Message: fmt.Sprintf(bookingSimilarFormat, strings.Join(names, ", ")),
		Results: append([]catalog.Record(nil), options...),
		UI:      &chat.UI{ShowRecommendations: true, RecommendationsType: recType},
	}
}
