package service

import (
	"context"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
)

const coordinatorFailure = "Lo siento, he tenido un problema al procesar tu consulta. ¿Podrías intentarlo de nuevo o formularla de otra manera?"

var (
	initialMessages = map[chat.Topic]string{
		chat.TopicAccommodation: "Entiendo que estás buscando alojamiento en Samaná. Tenemos varias opciones que podrían interesarte. ¿Podrías decirme para qué fechas estás buscando, cuántas personas son y si tienes alguna preferencia de ubicación o tipo de alojamiento?",
		chat.TopicGastronomy:    "Samaná tiene una excelente oferta gastronómica. Puedo ayudarte a encontrar restaurantes según tus preferencias. ¿Buscas algún tipo de cocina en particular, como comida dominicana, mariscos o internacional? ¿Tienes alguna preferencia de ubicación o presupuesto?",
		chat.TopicActivities:    "Samaná ofrece muchas actividades y excursiones interesantes. Desde avistamiento de ballenas (en temporada) hasta visitas al Parque Nacional Los Haitises o la cascada Salto El Limón. ¿Hay algún tipo de actividad que te interese especialmente?",
		chat.TopicTransport:     "Puedo ayudarte con opciones de transporte en Samaná. ¿Estás interesado en alquilar un vehículo, conocer sobre el transporte público o quizás necesitas un servicio de traslado desde el aeropuerto?",
		chat.TopicInformation:   "Samaná es una hermosa península en el noreste de República Dominicana conocida por sus playas paradisíacas, naturaleza exuberante y experiencias únicas. ¿Hay algo específico sobre Samaná que te gustaría conocer?",
	}
	welcomeMessage = "¡Bienvenido a SamanaInn! Puedo ayudarte a encontrar alojamiento, restaurantes, actividades o información sobre Samaná. ¿En qué puedo asistirte hoy?"

	initialQuestions = map[chat.Topic][]string{
		chat.TopicAccommodation: {"¿Qué hoteles hay cerca de la playa?", "¿Dónde puedo encontrar alojamiento para familias?", "¿Cuáles son los alojamientos con mejor relación calidad-precio?"},
		chat.TopicGastronomy:    {"¿Dónde puedo comer comida típica dominicana?", "¿Cuáles son los mejores restaurantes de mariscos?", "¿Hay restaurantes con vistas al mar?"},
		chat.TopicActivities:    {"¿Qué excursiones hay para ver ballenas?", "¿Cómo puedo visitar El Limón?", "¿Qué actividades se recomiendan para familias?"},
		chat.TopicTransport:     {"¿Dónde puedo alquilar un coche?", "¿Hay servicio de traslado desde el aeropuerto?", "¿Cuál es la mejor manera de moverse por Samaná?"},
	}
	welcomeQuestions = []string{"¿Qué puedo hacer en Samaná?", "¿Cuál es la mejor época para visitar Samaná?", "¿Dónde están las mejores playas?"}

	// specialists bound to the query stage per topic
	topicSpecialist = map[chat.Topic]chat.ResponderName{
		chat.TopicAccommodation: chat.ResponderLodging,
		chat.TopicGastronomy:    chat.ResponderFood,
		chat.TopicActivities:    chat.ResponderActivities,
		chat.TopicTransport:     chat.ResponderTransport,
	}

	bookingKeywords = []string{"reserva", "reservar", "booking", "disponibilidad", "precio", "tarifa"}
)

// Router picks the plan for the first turn of a conversation.
type Router interface {
	Route(ctx context.Context, message string, c chat.Context) chat.Response
}

// Coordinator classifies the opening message and decides what runs next.
type Coordinator struct {
	logger *zap.Logger
}

func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger.Named("coordinator")}
}

// Route never fails outward; a panic in classification becomes the apology.
func (c *Coordinator) Route(_ context.Context, message string, _ chat.Context) (resp chat.Response) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("coordinator panicked", zap.Any("panic", r))
			resp = chat.Apology(coordinatorFailure)
		}
	}()

	in := intent.Classify(message)
	c.logger.Debug("classified", zap.String("intent", string(in.Type)), zap.Float64("confidence", in.Confidence))

	resp = chat.Response{
		Message: InitialMessage(in.Type),
		UI: &chat.UI{
			UpdateBanner:       true,
			BannerType:         chat.BannerType(in.Type),
			SuggestedQuestions: InitialQuestions(in.Type),
		},
		Context: chat.Patch{
			Intent:       &in,
			AppendAgents: Plan(in.Type),
		},
		NextAction: nextAction(in, message),
	}
	return resp
}

// Plan lists the responders a topic may involve. The listing search always
// leads and validation always closes.
func Plan(t chat.Topic) []chat.ResponderName {
	plan := []chat.ResponderName{chat.ResponderQuery}
	switch t {
	case chat.TopicAccommodation:
		plan = append(plan, chat.ResponderBooking, chat.ResponderLodging)
	default:
		if s, ok := topicSpecialist[t]; ok {
			plan = append(plan, s)
		}
	}
	return append(plan, chat.ResponderValidation)
}

func InitialMessage(t chat.Topic) string {
	if msg, ok := initialMessages[t]; ok {
		return msg
	}
	return welcomeMessage
}

func InitialQuestions(t chat.Topic) []string {
	if q, ok := initialQuestions[t]; ok {
		return q
	}
	return welcomeQuestions
}

func nextAction(in chat.Intent, message string) *chat.Action {
	switch in.Type {
	case chat.TopicAccommodation:
		if intent.ContainsAny(message, bookingKeywords...) {
			return &chat.Action{Type: chat.ActionBooking, Booking: &chat.BookingParams{Type: "accommodation"}}
		}
		fallthrough
	case chat.TopicGastronomy, chat.TopicActivities, chat.TopicTransport, chat.TopicInformation:
		qp := &chat.QueryParams{SearchType: in.Details["searchType"], Topic: in.Type}
		if loc := in.Details["location"]; loc != "" {
			qp.Filters = map[string]string{"location": loc}
		}
		return &chat.Action{Type: chat.ActionQuery, Query: qp}
	}
	return &chat.Action{Type: chat.ActionRespond, Message: welcomeMessage}
}
