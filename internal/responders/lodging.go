// README: Lodging specialist (hotels, apartments, villas, family and romantic stays).
package responders

import (
	"context"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
	"samanainn/internal/modules/catalog"
	"samanainn/internal/modules/pricing"
)

const lodgingFailure = "Lo siento, he tenido un problema al procesar tu consulta sobre alojamiento. ¿Puedo ayudarte con algo más?"

type lodgingQuery string

const (
	lodgingHotels     lodgingQuery = "hotel_recommendation"
	lodgingApartments lodgingQuery = "apartment_recommendation"
	lodgingVillas     lodgingQuery = "villa_recommendation"
	lodgingSearch     lodgingQuery = "filtered_search"
	lodgingFamily     lodgingQuery = "family_accommodation"
	lodgingRomantic   lodgingQuery = "romantic_accommodation"
	lodgingDetails    lodgingQuery = "accommodation_details"
	lodgingGeneral    lodgingQuery = "general"
)

// lodgingFlavour is everything that differs between the recommendation branches.
type lodgingFlavour struct {
	accommodationType string
	groupType         string
	deck              deck
	title             string
	questions         questionSet
	emptyMessage      string
	emptyQuestions    []string
}

var lodgingFlavours = map[lodgingQuery]lodgingFlavour{
	lodgingHotels: {
		accommodationType: "hotel",
		deck: deck{
			intro:        recommendIntro,
			fallbackLead: "Lo siento, no he encontrado hoteles que coincidan exactamente con tus preferencias. Te sugiero estas opciones populares en Samaná:",
			singular:     "el hotel %s",
			pluralLead:   "estos hoteles: ",
			describe:     "%s ofrece %s. ",
			closing:      "¿Te gustaría obtener más información sobre alguno de estos hoteles o prefieres ver más opciones?",
		},
		title: "Hoteles en Samaná",
		questions: questionSet{
			first: "¿Qué servicios ofrece %s?",
			pool:  []string{"¿Hay hoteles con piscina?", "¿Cuál es el mejor hotel para familias?", "¿Cuáles son los hoteles más económicos?"},
		},
		emptyMessage: "Lo siento, no he podido encontrar hoteles disponibles que coincidan con tus criterios. ¿Podrías reformular tu búsqueda con otros criterios?",
		emptyQuestions: []string{
			"¿Qué hoteles hay cerca de la playa?",
			"¿Cuáles son los hoteles más económicos?",
			"¿Hay alojamientos tipo apartamento disponibles?",
		},
	},
	lodgingApartments: {
		accommodationType: "apartment",
		deck: deck{
			intro:        recommendIntro,
			fallbackLead: "Lo siento, no he encontrado apartamentos que coincidan exactamente con tus preferencias. Te sugiero estas opciones populares en Samaná:",
			singular:     "el apartamento %s",
			pluralLead:   "estos apartamentos: ",
			describe:     "%s ofrece %s. ",
			closing:      "¿Te gustaría obtener más información sobre alguno de estos apartamentos o prefieres ver más opciones?",
		},
		title: "Apartamentos en Samaná",
		questions: questionSet{
			first: "¿Cuántas habitaciones tiene %s?",
			pool:  []string{"¿Hay apartamentos con vista al mar?", "¿Cuál es el mejor apartamento para grupos?", "¿Cuáles son las opciones más económicas?"},
		},
		emptyMessage: "Lo siento, no he podido encontrar apartamentos disponibles que coincidan con tus criterios. ¿Podrías reformular tu búsqueda o considerar otros tipos de alojamiento?",
		emptyQuestions: []string{
			"¿Qué hoteles hay disponibles?",
			"¿Hay villas o casas para alquilar?",
			"¿Cuáles son las opciones más económicas?",
		},
	},
	lodgingVillas: {
		accommodationType: "villa",
		deck: deck{
			intro:        recommendIntro,
			fallbackLead: "Lo siento, no he encontrado villas que coincidan exactamente con tus preferencias. Te sugiero estas opciones populares en Samaná:",
			singular:     "la villa %s",
			pluralLead:   "estas villas: ",
			describe:     "%s ofrece %s. ",
			closing:      "¿Te gustaría obtener más información sobre alguna de estas villas o prefieres ver más opciones?",
		},
		title: "Villas en Samaná",
		questions: questionSet{
			first: "¿%s tiene piscina privada?",
			pool:  []string{"¿Hay villas cerca de la playa?", "¿Cuál es la capacidad máxima de estas villas?", "¿Cuáles son las opciones más lujosas?"},
		},
		emptyMessage: "Lo siento, no he podido encontrar villas disponibles que coincidan con tus criterios. ¿Podrías reformular tu búsqueda o considerar otros tipos de alojamiento?",
		emptyQuestions: []string{
			"¿Qué apartamentos hay disponibles?",
			"¿Cuáles son las opciones más lujosas?",
			"¿Hay villas con piscina privada?",
		},
	},
	lodgingSearch: {
		deck: deck{
			intro:        recommendIntro,
			fallbackLead: "Lo siento, no he encontrado alojamientos que coincidan exactamente con tus preferencias. Te sugiero estas opciones populares en Samaná:",
			singular:     "el alojamiento %s",
			pluralLead:   "estos alojamientos: ",
			describe:     "%s ofrece %s. ",
			closing:      "¿Te gustaría obtener más información sobre alguno de estos alojamientos o prefieres ver más opciones?",
		},
		title: "Alojamientos en Samaná",
		questions: questionSet{
			first: "¿Puedes darme más detalles sobre %s?",
			pool:  []string{"¿Hay opciones con piscina?", "¿Cuáles son las opciones más económicas?", "¿Hay alojamientos cerca de la playa?"},
		},
		emptyMessage: "Lo siento, no he podido encontrar alojamientos disponibles que coincidan con tus criterios. ¿Podrías reformular tu búsqueda con otros criterios?",
		emptyQuestions: []string{
			"¿Qué hoteles hay cerca de la playa?",
			"¿Hay villas o casas para alquilar?",
			"¿Cuáles son las opciones más económicas?",
		},
	},
	lodgingFamily: {
		groupType: "family",
		deck: deck{
			intro:        "Para familias con niños, recomiendo especialmente ",
			fallbackLead: "Lo siento, no he encontrado alojamientos específicos para familias según tus criterios. Te sugiero estas opciones que suelen ser adecuadas para familias:",
			singular:     "el alojamiento %s",
			singularTail: "Este lugar es ideal para familias porque ofrece amplias habitaciones, actividades para niños y una ubicación segura. ",
			pluralLead:   "estos alojamientos: ",
			pluralTail:   "Estos lugares son ideales para familias porque suelen ofrecer habitaciones espaciosas, actividades para niños, y ubicaciones seguras. ",
			describe:     "En particular, %s ofrece %s. ",
			closing:      "¿Te gustaría obtener más información sobre alguno de estos alojamientos para familias?",
		},
		title: "Alojamientos para Familias en Samaná",
		questions: questionSet{
			first: "¿%s tiene servicios para niños?",
			pool:  []string{"¿Hay actividades para niños incluidas?", "¿Cuál es el mejor para bebés pequeños?", "¿Qué zonas son mejores para familias?"},
		},
		emptyMessage: "Lo siento, no he podido encontrar alojamientos específicos para familias. ¿Podrías indicarme qué características son importantes para ti (como ubicación, presupuesto, etc.)?",
		emptyQuestions: []string{
			"¿Hay hoteles con actividades para niños?",
			"¿Cuáles son los alojamientos más seguros?",
			"¿Qué zonas son mejores para familias?",
		},
	},
	lodgingRomantic: {
		groupType: "couple",
		deck: deck{
			intro:        "Para parejas que buscan un ambiente romántico, recomiendo especialmente ",
			fallbackLead: "Lo siento, no he encontrado alojamientos específicos para parejas según tus criterios. Te sugiero estas opciones que suelen ser adecuadas para una escapada romántica:",
			singular:     "el alojamiento %s",
			singularTail: "Este lugar es ideal para parejas porque ofrece un ambiente íntimo, hermosas vistas y servicios especiales para disfrutar en pareja. ",
			pluralLead:   "estos alojamientos: ",
			pluralTail:   "Estos lugares son ideales para parejas porque suelen ofrecer ambientes íntimos, hermosas vistas y servicios especiales para disfrutar en pareja. ",
			describe:     "En particular, %s ofrece %s. ",
			closing:      "¿Te gustaría obtener más información sobre alguno de estos alojamientos románticos?",
		},
		title: "Alojamientos Románticos en Samaná",
		questions: questionSet{
			first: "¿%s ofrece paquetes románticos?",
			pool:  []string{"¿Hay alojamientos con spa para parejas?", "¿Cuál es el más exclusivo para una luna de miel?", "¿Hay alojamientos solo para adultos?"},
		},
		emptyMessage: "Lo siento, no he podido encontrar alojamientos específicos para parejas. ¿Podrías indicarme qué características son importantes para ti (como ubicación, presupuesto, etc.)?",
		emptyQuestions: []string{
			"¿Hay alojamientos con vistas al mar para parejas?",
			"¿Cuáles son los alojamientos más románticos?",
			"¿Hay alojamientos solo para adultos?",
		},
	},
}

const (
	lodgingDetailsPrompt = "Para darte información detallada sobre un alojamiento específico, necesito saber cuál te interesa. ¿Podrías decirme qué alojamiento te gustaría conocer mejor? Puedo recomendarte opciones populares si lo prefieres."
	lodgingGeneralInfo   = "Samaná ofrece una amplia variedad de opciones de alojamiento para todos los gustos y presupuestos. Puedes encontrar desde hoteles de lujo frente al mar hasta acogedoras villas en las montañas. La zona de Las Terrenas es popular por sus resorts todo incluido y apartamentos cerca de la playa, mientras que Santa Bárbara de Samaná ofrece hoteles con vistas a la bahía. También hay opciones más rurales cerca de El Limón, ideales para quienes buscan tranquilidad en medio de la naturaleza. Los precios varían según la temporada, siendo más altos durante el invierno (diciembre a abril) que es considerada temporada alta. ¿Qué tipo de alojamiento estás buscando o tienes alguna preferencia específica?"
)

var (
	lodgingDetailsQuestions = []string{
		"¿Cuáles son los mejores hoteles en Samaná?",
		"Muéstrame apartamentos cerca de la playa",
		"¿Hay villas con piscina privada?",
	}
	lodgingGeneralQuestions = []string{
		"¿Cuáles son los mejores hoteles en Las Terrenas?",
		"¿Hay opciones económicas cerca de la playa?",
		"¿Qué alojamientos recomiendas para familias?",
	}
)

type Lodging struct {
	catalog catalog.Gateway
	logger  *zap.Logger
}

func NewLodging(c catalog.Gateway, logger *zap.Logger) *Lodging {
	return &Lodging{catalog: c, logger: named(logger, "lodging")}
}

func (l *Lodging) Name() chat.ResponderName { return chat.ResponderLodging }

func (l *Lodging) Respond(ctx context.Context, req Request) chat.Response {
	prefs := withContextLodging(intent.ExtractLodging(req.Message), req.Context)
	kind := classifyLodging(req.Message, prefs)

	var resp chat.Response
	var err error
	switch kind {
	case lodgingDetails:
		resp = fixedText(lodgingDetailsPrompt, chat.BannerAccommodation, "Alojamientos en Samaná", lodgingDetailsQuestions)
	case lodgingGeneral:
		resp = fixedText(lodgingGeneralInfo, chat.BannerAccommodation, "Alojamientos en Samaná", lodgingGeneralQuestions)
	default:
		resp, err = l.recommend(ctx, lodgingFlavours[kind], prefs)
	}
	if err != nil {
		l.logger.Error("lodging lookup failed", zap.String("query", string(kind)), zap.Error(err))
		return chat.Apology(lodgingFailure)
	}
	resp.Context = resp.Context.Then(chat.Patch{Preferences: &chat.Preferences{
		Budget:    prefs.PriceRange,
		GroupType: prefs.GroupType,
		Location:  prefs.Location,
		Interests: prefs.Amenities,
	}})
	return resp
}

func (l *Lodging) recommend(ctx context.Context, fl lodgingFlavour, prefs intent.LodgingPrefs) (chat.Response, error) {
	f := catalog.Filters{
		Limit:             defaultLimit,
		Location:          prefs.Location,
		AccommodationType: fl.accommodationType,
		GroupType:         fl.groupType,
	}
	seg := pricing.ForAccommodation(fl.accommodationType)
	if fl.accommodationType == "" {
		seg = pricing.ForAccommodation(prefs.AccommodationType)
	}
	pricing.Apply(&f, seg, prefs.PriceRange)
	for _, a := range prefs.Amenities {
		if a == "pool" {
			f.HasPool = true
		}
	}

	results, fromFallback, err := searchWithFallback(ctx, l.catalog.QueryLodging, f)
	if err != nil {
		return chat.Response{}, err
	}
	search := lastSearch("accommodation", compactParams(
		"accommodationType", fl.accommodationType,
		"groupType", fl.groupType,
		"location", prefs.Location,
		"priceRange", prefs.PriceRange,
	), len(results))
	if len(results) == 0 {
		resp := noResults(fl.emptyMessage, chat.BannerAccommodation, fl.emptyQuestions)
		resp.Context = chat.Patch{LastSearch: search}
		return resp, nil
	}
	return chat.Response{
		Message: fl.deck.compose(results, fromFallback),
		Results: results,
		UI:      listingUI(results, "accommodation", chat.BannerAccommodation, fl.title, fl.questions.build(results)),
		Context: chat.Patch{LastSearch: search},
	}, nil
}

// withContextLodging fills dimensions the message left open from preferences
// accumulated on earlier turns.
func withContextLodging(p intent.LodgingPrefs, c chat.Context) intent.LodgingPrefs {
	up := c.UserPreferences
	if p.Location == "" && catalog.NormalizeZone(up.Location) != "" {
		p.Location = catalog.NormalizeZone(up.Location)
	}
	if p.PriceRange == "" {
		if t, ok := pricing.ParseTier(up.Budget); ok && t != pricing.TierMedium {
			p.PriceRange = string(t)
		}
	}
	if p.GroupType == "" {
		p.GroupType = up.GroupType
	}
	return p
}

func classifyLodging(msg string, p intent.LodgingPrefs) lodgingQuery {
	recommend := intent.ContainsAny(msg, "recomend", "mejor")
	switch {
	case recommend && intent.ContainsAny(msg, "hotel"):
		return lodgingHotels
	case recommend && intent.ContainsAny(msg, "apartamento", "apartment"):
		return lodgingApartments
	case recommend && intent.ContainsAny(msg, "villa", "casa"):
		return lodgingVillas
	case intent.ContainsAny(msg, "familia", "niños") ||
		(intent.ContainsAny(msg, "family") && intent.ContainsAny(msg, "alojamiento")):
		return lodgingFamily
	case intent.ContainsAny(msg, "pareja", "romántico") ||
		(intent.ContainsAny(msg, "couple") && intent.ContainsAny(msg, "alojamiento")):
		return lodgingRomantic
	case intent.ContainsAny(msg, "detalle", "informacion", "información", "caracteristicas", "características"):
		return lodgingDetails
	}
	// extracted filters are enough to run a search
	pm := p
	pm.GroupType = ""
	if !pm.HasFilters() {
		return lodgingGeneral
	}
	switch p.AccommodationType {
	case "hotel":
		return lodgingHotels
	case "apartment":
		return lodgingApartments
	case "villa":
		return lodgingVillas
	}
	return lodgingSearch
}
