// README: Listing search used by the query stage when no specialist owns the topic.
package responders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
	"samanainn/internal/modules/catalog"
	"samanainn/internal/modules/pricing"
)

const (
	searchLimit      = 10
	locationMaxRunes = 500
	defaultPlace     = "Samana"

	queryFailure      = "Lo siento, he tenido un problema al buscar la información solicitada. ¿Podrías intentarlo de nuevo?"
	queryUnknown      = "No he podido determinar exactamente qué estás buscando. ¿Podrías ser más específico? Puedo ayudarte con alojamientos, restaurantes, excursiones o información general sobre Samaná."
	samanaOverview    = "Samaná es una hermosa península en el noreste de República Dominicana, conocida por sus playas paradisíacas, naturaleza exuberante y experiencias únicas como el avistamiento de ballenas jorobadas. ¿Hay algo específico sobre Samaná que te gustaría conocer?"
	articlesClosing   = "\n\n¿Te gustaría leer alguno de estos artículos o prefieres información sobre algo específico?"
	lodgingNone       = "Lo siento, no he encontrado alojamientos que coincidan con tus criterios. ¿Te gustaría modificar tu búsqueda o intentar con otros filtros?"
	restaurantNone    = "Lo siento, no he encontrado restaurantes que coincidan con tus criterios. ¿Te gustaría modificar tu búsqueda o intentar con otros filtros?"
	tourNone          = "Lo siento, no he encontrado excursiones o actividades que coincidan con tus criterios. ¿Te gustaría modificar tu búsqueda o intentar con otros filtros?"
	lodgingListEnd    = "¿Te gustaría más información sobre alguno de estos alojamientos o prefieres filtrar más la búsqueda?"
	restaurantListEnd = "¿Te gustaría más información sobre alguno de estos restaurantes o prefieres filtrar más la búsqueda?"
	tourListEnd       = "¿Te gustaría más información sobre alguna de estas actividades o prefieres filtrar más la búsqueda?"
)

var (
	lodgingRefine    = []string{"¿Estos alojamientos incluyen desayuno?", "¿Hay opciones con piscina?", "¿Cuáles tienen las mejores vistas?", "¿Hay opciones para familias con niños?"}
	restaurantRefine = []string{"¿Hay restaurantes con terraza o vistas al mar?", "¿Cuál es el mejor restaurante para cenar romántica?", "¿Qué restaurantes ofrecen cocina local auténtica?", "¿Hay opciones para dietas especiales como vegetarianos?"}
	tourRefine       = []string{"¿Cuáles son las excursiones más populares?", "¿Hay actividades para niños?", "¿Qué excursiones incluyen transporte desde el hotel?", "¿Puedo hacer avistamiento de ballenas en esta época?"}

	lodgingNoneQuestions    = []string{"¿Qué alojamientos hay cerca de la playa?", "¿Dónde puedo encontrar alojamiento para familias?", "¿Cuáles son los alojamientos con mejor relación calidad-precio?"}
	restaurantNoneQuestions = []string{"¿Dónde puedo comer comida típica dominicana?", "¿Cuáles son los mejores restaurantes de mariscos?", "¿Hay restaurantes con vistas al mar?"}
	tourNoneQuestions       = []string{"¿Qué excursiones hay para ver ballenas?", "¿Cómo puedo visitar El Limón?", "¿Qué actividades se recomiendan para familias?"}
	locationQuestions       = []string{"¿Qué lugares debo visitar en Samaná?", "¿Cuál es la mejor época para visitar Samaná?", "¿Cómo llego a Samaná desde Santo Domingo?"}
)

// PlaceLookup describes a place when the catalog knows nothing about it.
type PlaceLookup interface {
	DescribePlace(ctx context.Context, name string) (*catalog.Record, error)
}

type Query struct {
	catalog catalog.Gateway
	places  PlaceLookup
	now     func() time.Time
	logger  *zap.Logger
}

// NewQuery accepts a nil places lookup; now defaults to time.Now.
func NewQuery(c catalog.Gateway, places PlaceLookup, now func() time.Time, logger *zap.Logger) *Query {
	if now == nil {
		now = time.Now
	}
	return &Query{catalog: c, places: places, now: now, logger: named(logger, "query")}
}

func (q *Query) Name() chat.ResponderName { return chat.ResponderQuery }

// searchParams is the extracted preferences layered over the stage seed.
type searchParams struct {
	searchType string
	category   string
	place      string
	prefs      intent.SearchPrefs
}

func (p searchParams) filters() catalog.Filters {
	f := catalog.Filters{Limit: searchLimit, Location: p.prefs.Location, Category: p.category}
	pricing.Apply(&f, pricing.SegmentSearch, p.prefs.Budget)
	return f
}

func (p searchParams) asMap() map[string]string {
	m := compactParams("location", p.prefs.Location, "budget", p.prefs.Budget, "category", p.category,
		"startDate", p.prefs.StartDate, "name", p.place)
	if p.prefs.People > 0 {
		m["people"] = strconv.Itoa(p.prefs.People)
	}
	return m
}

func (q *Query) Respond(ctx context.Context, req Request) chat.Response {
	p := q.params(req)

	var resp chat.Response
	var err error
	switch p.searchType {
	case "accommodation":
		resp, err = q.lodging(ctx, p)
	case "restaurant":
		resp, err = q.restaurants(ctx, p)
	case "tour":
		resp, err = q.tours(ctx, p)
	case "information":
		resp, err = q.location(ctx, p)
	default:
		return chat.Response{
			Message: queryUnknown,
			UI:      &chat.UI{UpdateBanner: true, BannerType: chat.BannerGeneral},
		}
	}
	if err != nil {
		q.logger.Error("search failed", zap.String("searchType", p.searchType), zap.Error(err))
		return chat.Apology(queryFailure)
	}
	resp.Context = resp.Context.Then(chat.Patch{Preferences: &chat.Preferences{
		Budget:   p.prefs.Budget,
		Location: p.prefs.Location,
	}})
	return resp
}

func (q *Query) params(req Request) searchParams {
	p := searchParams{prefs: intent.ExtractSearch(req.Message, q.now())}
	if qp := req.Context.QueryParams; qp != nil {
		p.searchType = qp.SearchType
		p.category = qp.Filters["category"]
		p.place = qp.Filters["location"]
		if p.prefs.Location == "" {
			p.prefs.Location = qp.Filters["zone"]
		}
		if p.prefs.Budget == "" {
			p.prefs.Budget = qp.Filters["budget"]
		}
	}
	if p.searchType == "" && req.Context.Intent != nil {
		p.searchType = req.Context.Intent.Details["searchType"]
	}
	if p.place == "" && req.Context.Intent != nil {
		p.place = req.Context.Intent.Details["location"]
	}
	if p.place == "" {
		p.place = defaultPlace
	}
	return p
}

func (q *Query) lodging(ctx context.Context, p searchParams) (chat.Response, error) {
	results, err := q.catalog.QueryLodging(ctx, p.filters())
	if err != nil {
		return chat.Response{}, err
	}
	search := chat.Patch{LastSearch: lastSearch(p.searchType, p.asMap(), len(results))}
	if len(results) == 0 {
		return chat.Response{
			Message: lodgingNone,
			UI:      listingUI(nil, "accommodation", chat.BannerAccommodation, "Alojamientos en Samaná", lodgingNoneQuestions),
			Context: search,
		}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "He encontrado %d alojamiento%s que podrían interesarte en Samaná", len(results), plural(len(results), "s"))
	if p.prefs.Location != "" {
		fmt.Fprintf(&sb, " cerca de %s", p.prefs.Location)
	}
	sb.WriteString(". ")
	sb.WriteString(mention(results, "entre otros"))
	sb.WriteString(lodgingListEnd)

	lead := []string{fmt.Sprintf("¿Puedes darme más detalles sobre %s?", results[0].Title)}
	if len(results) > 1 {
		lead = append(lead, fmt.Sprintf(compareFormat, results[0].Title, results[1].Title))
	}
	if p.prefs.Location == "" {
		lead = append(lead, "¿Hay alojamientos cerca de la playa?")
	}
	if p.prefs.Budget == "" {
		lead = append(lead, "¿Cuáles son las opciones más económicas?")
	}
	return chat.Response{
		Message: sb.String(),
		Results: results,
		UI:      listingUI(results, "accommodation", chat.BannerAccommodation, "Alojamientos en Samaná", fillQuestions(lead, lodgingRefine, questionCount)),
		Context: search,
	}, nil
}

func (q *Query) restaurants(ctx context.Context, p searchParams) (chat.Response, error) {
	results, err := q.catalog.QueryRestaurants(ctx, p.filters())
	if err != nil {
		return chat.Response{}, err
	}
	search := chat.Patch{LastSearch: lastSearch(p.searchType, p.asMap(), len(results))}
	if len(results) == 0 {
		return chat.Response{
			Message: restaurantNone,
			UI:      listingUI(nil, "restaurant", chat.BannerGastronomy, "Restaurantes en Samaná", restaurantNoneQuestions),
			Context: search,
		}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "He encontrado %d restaurante%s en Samaná", len(results), plural(len(results), "s"))
	if p.category != "" {
		fmt.Fprintf(&sb, " de cocina %s", p.category)
	}
	if p.prefs.Location != "" {
		fmt.Fprintf(&sb, " cerca de %s", p.prefs.Location)
	}
	sb.WriteString(". ")
	sb.WriteString(mention(results, "entre otros"))
	sb.WriteString(restaurantListEnd)

	lead := []string{fmt.Sprintf("¿Qué tipo de comida sirven en %s?", results[0].Title)}
	if len(results) > 1 {
		lead = append(lead, fmt.Sprintf("¿Necesito reservar mesa en %s?", results[1].Title))
	}
	if p.category == "" {
		lead = append(lead, "¿Dónde puedo comer mariscos frescos?")
	}
	return chat.Response{
		Message: sb.String(),
		Results: results,
		UI:      listingUI(results, "restaurant", chat.BannerGastronomy, "Restaurantes en Samaná", fillQuestions(lead, restaurantRefine, questionCount)),
		Context: search,
	}, nil
}

func (q *Query) tours(ctx context.Context, p searchParams) (chat.Response, error) {
	results, err := q.catalog.QueryTours(ctx, p.filters())
	if err != nil {
		return chat.Response{}, err
	}
	search := chat.Patch{LastSearch: lastSearch(p.searchType, p.asMap(), len(results))}
	if len(results) == 0 {
		return chat.Response{
			Message: tourNone,
			UI:      listingUI(nil, "tour", chat.BannerActivities, "Actividades y Excursiones en Samaná", tourNoneQuestions),
			Context: search,
		}, nil
	}

	n := len(results)
	var sb strings.Builder
	fmt.Fprintf(&sb, "He encontrado %d excursion%s/actividad%s en Samaná", n, plural(n, "es"), plural(n, "es"))
	if p.category != "" {
		fmt.Fprintf(&sb, " de tipo %s", p.category)
	}
	if p.prefs.Location != "" {
		fmt.Fprintf(&sb, " cerca de %s", p.prefs.Location)
	}
	sb.WriteString(". ")
	sb.WriteString(strings.Replace(mention(results, "entre otras"), "Entre ellos", "Entre ellas", 1))
	sb.WriteString(tourListEnd)

	lead := []string{fmt.Sprintf("¿Cuánto dura la excursión a %s?", results[0].Title)}
	if n > 1 {
		lead = append(lead, fmt.Sprintf("¿Qué incluye la excursión a %s?", results[1].Title))
	}
	lead = append(lead, "¿Hay excursiones de medio día?")
	return chat.Response{
		Message: sb.String(),
		Results: results,
		UI:      listingUI(results, "tour", chat.BannerActivities, "Actividades y Excursiones en Samaná", fillQuestions(lead, tourRefine, questionCount)),
		Context: search,
	}, nil
}

// location tries the catalog entry, then blog articles, then the place lookup.
func (q *Query) location(ctx context.Context, p searchParams) (chat.Response, error) {
	ui := &chat.UI{
		UpdateBanner:       true,
		BannerType:         chat.BannerInformation,
		BannerTitle:        "Información sobre " + p.place,
		ResultType:         "information",
		SuggestedQuestions: locationQuestions,
	}
	search := chat.Patch{LastSearch: lastSearch("information", p.asMap(), 0)}

	loc, err := q.catalog.QueryLocationInfo(ctx, p.place)
	if err != nil {
		return chat.Response{}, err
	}
	if loc != nil && loc.Content != "" {
		ui.BannerImage = loc.FirstImage()
		search.LastSearch.ResultCount = 1
		return chat.Response{Message: clampRunes(loc.Content, locationMaxRunes), UI: ui, Context: search}, nil
	}

	articles, err := q.catalog.SearchArticles(ctx, p.place)
	if err != nil {
		return chat.Response{}, err
	}
	if len(articles) > 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "He encontrado algunos artículos en nuestro blog sobre %s:", p.place)
		for _, t := range titles(articles, shownTitles, false) {
			sb.WriteString("\n- ")
			sb.WriteString(t)
		}
		sb.WriteString(articlesClosing)
		ui.ShowResults = true
		search.LastSearch.ResultCount = len(articles)
		return chat.Response{Message: sb.String(), Results: articles, UI: ui, Context: search}, nil
	}

	if q.places != nil {
		place, err := q.places.DescribePlace(ctx, p.place)
		if err != nil {
			// the place lookup is best effort
			q.logger.Warn("place lookup failed", zap.String("place", p.place), zap.Error(err))
		} else if place != nil && place.Content != "" {
			search.LastSearch.ResultCount = 1
			return chat.Response{Message: clampRunes(place.Content, locationMaxRunes), UI: ui, Context: search}, nil
		}
	}
	return chat.Response{Message: samanaOverview, UI: ui, Context: search}, nil
}

func mention(results []catalog.Record, more string) string {
	if len(results) <= shownTitles {
		return "Entre ellos están: " + strings.Join(titles(results, shownTitles, false), ", ") + ". "
	}
	return "Entre ellos están: " + strings.Join(titles(results, shownTitles, false), ", ") + ", " + more + ". "
}

func plural(n int, suffix string) string {
	if n == 1 {
		return ""
	}
	return suffix
}

// clampRunes cuts s to max runes and marks the cut with "...".
func clampRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
