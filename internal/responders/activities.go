// README: Activities specialist (whales, beaches, hiking, El Limón, Los Haitises, tours).
package responders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
	"samanainn/internal/modules/catalog"
)

const (
	activitiesFailure = "Lo siento, he tenido un problema al procesar tu consulta sobre actividades. ¿Puedo ayudarte con algo más?"

	whaleIntro     = "El avistamiento de ballenas jorobadas es una de las actividades más populares en Samaná. Cada año, entre enero y marzo, miles de ballenas jorobadas migran a la Bahía de Samaná para aparearse y dar a luz. Los tours salen generalmente del puerto de Samaná y duran aproximadamente 3-4 horas. Es recomendable llevar protector solar, ropa ligera y cámara fotográfica. "
	whaleInSeason  = "¡Estamos en plena temporada de ballenas! Es un momento perfecto para hacer esta excursión."
	whaleOffSeason = "Actualmente no estamos en temporada de ballenas. La próxima temporada será de enero a marzo %d."
	beachesInfo    = "Samaná está rodeada de algunas de las playas más hermosas del Caribe. Playa Rincón es considerada una de las más bellas del mundo, con arena blanca y aguas cristalinas, ideal para relajarse y nadar. Playa Las Galeras es perfecta para quienes buscan un ambiente más tranquilo y auténtico. Playa Bonita ofrece buenas condiciones para deportes acuáticos. Playa Cosón es extensa y menos concurrida, ideal para largas caminatas. La mayoría de estas playas cuentan con pequeños restaurantes donde puedes disfrutar de pescado fresco y bebidas. ¿Te gustaría conocer más sobre alguna playa específica o cómo llegar a ellas?"
	hikingInfo     = "Samaná ofrece varias opciones para los amantes del senderismo. Las rutas más populares incluyen el sendero hacia la Cascada El Limón, que atraviesa exuberante vegetación tropical, el Sendero del Café en la zona montañosa donde puedes ver cómo se cultiva el café, y las rutas dentro del Parque Nacional Los Haitises, donde puedes explorar cuevas con petroglifos taínos. La mayoría de estas rutas requieren un guía local, que puede ser contratado a través de operadores turísticos o directamente en las comunidades cercanas. La mejor época para hacer senderismo es de noviembre a mayo, cuando hay menos lluvias. ¿Estás interesado en alguna ruta en particular?"
	elLimonInfo    = "La Cascada El Limón es una de las atracciones naturales más impresionantes de Samaná. Con una caída de agua de aproximadamente 40 metros de altura, se encuentra en medio de un exuberante bosque tropical. Para llegar a la cascada, puedes realizar una excursión a caballo o a pie desde el pueblo de El Limón. El sendero toma aproximadamente 30-45 minutos y atraviesa hermosos paisajes rurales. Una vez en la cascada, podrás nadar en las refrescantes aguas de la piscina natural que se forma en su base. Se recomienda llevar calzado cómodo para caminar, traje de baño, toalla y repelente de insectos. La mejor hora para visitar es por la mañana, cuando hay menos visitantes."
	haitisesInfo   = "El Parque Nacional Los Haitises es uno de los tesoros naturales de República Dominicana. Este parque protegido abarca más de 1,600 km² de manglares, bahías, cavernas con arte rupestre indígena y formaciones kársticas que emergen del agua creando un paisaje único. La mejor manera de explorarlo es mediante un tour en bote que sale desde Samaná o Sabana de la Mar. Durante el recorrido, podrás observar aves como el pelícano pardo y el águila pescadora, explorar cuevas con petroglifos taínos, y admirar la exuberante vegetación. Los tours generalmente incluyen guía, transporte en bote y refrigerios. Se recomienda llevar protector solar, repelente de insectos, cámara fotográfica y ropa ligera."
	activitiesInfo = "Samaná ofrece una amplia variedad de actividades para todos los gustos. Entre las más populares están el avistamiento de ballenas jorobadas (de enero a marzo), visitar la impresionante Cascada El Limón, explorar el Parque Nacional Los Haitises con sus cuevas y manglares, relajarse en playas paradisíacas como Playa Rincón, y disfrutar de deportes acuáticos como snorkel, buceo y paddle boarding. También puedes hacer excursiones a caballo, recorridos en quad o buggies, y tours culturales para conocer la vida local. ¿Hay alguna actividad específica que te interese o prefieres recomendaciones según tu tipo de viaje?"

	halfDayMaxHours = 4
	fullDayMinHours = 5
)

var (
	tourDeck = deck{
		intro:        recommendIntro,
		fallbackLead: "Lo siento, no he encontrado tours que coincidan exactamente con tus preferencias. Te sugiero estas opciones populares en Samaná:",
		singular:     `el tour "%s"`,
		pluralLead:   "estos tours: ",
		describe:     "%s %s. ",
		quoteTitles:  true,
		closing:      "¿Te gustaría obtener más información sobre alguno de estos tours o prefieres ver más opciones?",
	}
	tourQuestions = questionSet{
		first: `¿Qué incluye el tour "%s"?`,
		pool:  []string{"¿Hay tours de medio día disponibles?", "¿Cuál es la mejor excursión para familias con niños?", "¿Hay actividades para niños?"},
	}
	tourEmpty          = "Lo siento, no he podido encontrar tours disponibles que coincidan con tus criterios. ¿Podrías reformular tu búsqueda con otros criterios?"
	tourEmptyQuestions = []string{"¿Qué actividades hay en Samaná?", "¿Hay excursiones para ver ballenas?", "¿Cómo puedo visitar Los Haitises?"}
)

// spotlight is a fixed-text activity optionally backed by a tour lookup.
type spotlight struct {
	category  string
	text      string
	title     string
	questions []string
}

var (
	beachesSpot = spotlight{
		text:      beachesInfo,
		title:     "Playas de Samaná",
		questions: []string{"¿Cómo llego a Playa Rincón?", "¿Cuál es la mejor playa para niños?", "¿Hay tours que incluyan visitas a las playas?"},
	}
	hikingSpot = spotlight{
		text:      hikingInfo,
		title:     "Senderismo en Samaná",
		questions: []string{"¿Cuál es la dificultad de estas rutas?", "¿Qué debo llevar para hacer senderismo?", "¿Hay tours guiados disponibles?"},
	}
	elLimonSpot = spotlight{
		category:  "el_limon",
		text:      elLimonInfo,
		title:     "Cascada El Limón",
		questions: []string{"¿Cuánto cuesta la excursión a El Limón?", "¿Es mejor ir a caballo o caminando?", "¿Es adecuado para niños?"},
	}
	haitisesSpot = spotlight{
		category:  "los_haitises",
		text:      haitisesInfo,
		title:     "Parque Nacional Los Haitises",
		questions: []string{"¿Cuánto tiempo dura el tour a Los Haitises?", "¿Qué tipo de vida silvestre puedo ver?", "¿Es adecuado para toda la familia?"},
	}
	whaleQuestions      = []string{"¿Cuánto cuesta un tour de avistamiento de ballenas?", "¿Es seguro para niños?", "¿Qué otras actividades puedo hacer en Samaná?"}
	activitiesQuestions = []string{"¿Qué actividades recomiendas para familias?", "¿Cuáles son las mejores playas?", "¿Puedo hacer avistamiento de ballenas ahora?"}
)

type Activities struct {
	catalog catalog.Gateway
	now     func() time.Time
	logger  *zap.Logger
}

// NewActivities uses now for the whale season; nil means time.Now.
func NewActivities(c catalog.Gateway, now func() time.Time, logger *zap.Logger) *Activities {
	if now == nil {
		now = time.Now
	}
	return &Activities{catalog: c, now: now, logger: named(logger, "activities")}
}

func (a *Activities) Name() chat.ResponderName { return chat.ResponderActivities }

func (a *Activities) Respond(ctx context.Context, req Request) chat.Response {
	prefs := intent.ExtractActivity(req.Message)
	msg := req.Message

	var resp chat.Response
	var err error
	switch {
	case intent.ContainsAny(msg, "ballena", "whale"):
		resp, err = a.whales(ctx)
	case intent.ContainsAny(msg, "playa", "beach"):
		resp, err = a.spotlight(ctx, beachesSpot)
	case intent.ContainsAny(msg, "senderismo", "hiking", "caminata"):
		resp, err = a.spotlight(ctx, hikingSpot)
	case intent.ContainsAny(msg, "limon", "limón"):
		resp, err = a.spotlight(ctx, elLimonSpot)
	case intent.ContainsAny(msg, "haitises"):
		resp, err = a.spotlight(ctx, haitisesSpot)
	case intent.ContainsAny(msg, "tour", "excursion", "excursión", "actividad", "recomend"):
		resp, err = a.recommend(ctx, prefs)
	default:
		resp = fixedText(activitiesInfo, chat.BannerActivities, "Actividades y Excursiones en Samaná", activitiesQuestions)
	}
	if err != nil {
		a.logger.Error("tour lookup failed", zap.Error(err))
		return chat.Apology(activitiesFailure)
	}

	var interests []string
	if prefs.ActivityType != "" {
		interests = []string{prefs.ActivityType}
	}
	resp.Context = resp.Context.Then(chat.Patch{Preferences: &chat.Preferences{
		GroupType: prefs.GroupType,
		Interests: interests,
	}})
	return resp
}

// WhaleSeason reports whether t falls in January through March.
func WhaleSeason(t time.Time) bool {
	return t.Month() >= time.January && t.Month() <= time.March
}

func (a *Activities) whales(ctx context.Context) (chat.Response, error) {
	now := a.now()
	msg := whaleIntro
	if WhaleSeason(now) {
		msg += whaleInSeason
	} else {
		msg += fmt.Sprintf(whaleOffSeason, now.Year()+1)
	}
	tours, err := a.catalog.QueryTours(ctx, catalog.Filters{Category: "whale", Limit: featuredLimit})
	if err != nil {
		return chat.Response{}, err
	}
	return chat.Response{
		Message: msg,
		Results: tours,
		UI:      listingUI(tours, "tour", chat.BannerActivities, "Avistamiento de Ballenas en Samaná", whaleQuestions),
	}, nil
}

func (a *Activities) spotlight(ctx context.Context, s spotlight) (chat.Response, error) {
	var tours []catalog.Record
	if s.category != "" {
		var err error
		tours, err = a.catalog.QueryTours(ctx, catalog.Filters{Category: s.category, Limit: featuredLimit})
		if err != nil {
			return chat.Response{}, err
		}
	}
	return chat.Response{
		Message: s.text,
		Results: tours,
		UI:      listingUI(tours, "tour", chat.BannerActivities, s.title, s.questions),
	}, nil
}

func (a *Activities) recommend(ctx context.Context, prefs intent.ActivityPrefs) (chat.Response, error) {
	f := catalog.Filters{Limit: defaultLimit, Category: prefs.ActivityType}
	switch prefs.Duration {
	case "half_day":
		f.MaxDurationHours = halfDayMaxHours
	case "full_day":
		f.MinDurationHours = fullDayMinHours
	}

	results, fromFallback, err := searchWithFallback(ctx, a.catalog.QueryTours, f)
	if err != nil {
		return chat.Response{}, err
	}
	search := lastSearch("tour", compactParams(
		"activityType", prefs.ActivityType,
		"duration", prefs.Duration,
		"groupType", prefs.GroupType,
	), len(results))
	if len(results) == 0 {
		resp := noResults(tourEmpty, chat.BannerActivities, tourEmptyQuestions)
		resp.Context = chat.Patch{LastSearch: search}
		return resp, nil
	}
	return chat.Response{
		Message: tourDeck.compose(results, fromFallback),
		Results: results,
		UI:      listingUI(results, "tour", chat.BannerActivities, "Tours y Excursiones en Samaná", tourQuestions.build(results)),
		Context: chat.Patch{LastSearch: search},
	}, nil
}
