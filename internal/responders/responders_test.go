package responders

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samanainn/internal/ai"
	"samanainn/internal/chat"
	"samanainn/internal/modules/catalog"
)

type lookupCall struct {
	kind    catalog.Kind
	filters catalog.Filters
}

// stubCatalog records every filtered lookup and answers from queued results.
type stubCatalog struct {
	mu       sync.Mutex
	calls    []lookupCall
	queued   map[catalog.Kind][][]catalog.Record
	err      error
	location *catalog.Record
	articles []catalog.Record
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{queued: make(map[catalog.Kind][][]catalog.Record)}
}

func (s *stubCatalog) queue(kind catalog.Kind, batches ...[]catalog.Record) *stubCatalog {
	s.queued[kind] = append(s.queued[kind], batches...)
	return s
}

func (s *stubCatalog) next(kind catalog.Kind, f catalog.Filters) ([]catalog.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, lookupCall{kind: kind, filters: f})
	if s.err != nil {
		return nil, s.err
	}
	batches := s.queued[kind]
	if len(batches) == 0 {
		return nil, nil
	}
	s.queued[kind] = batches[1:]
	return batches[0], nil
}

func (s *stubCatalog) QueryLodging(_ context.Context, f catalog.Filters) ([]catalog.Record, error) {
	return s.next(catalog.KindLodging, f)
}

func (s *stubCatalog) QueryRestaurants(_ context.Context, f catalog.Filters) ([]catalog.Record, error) {
	return s.next(catalog.KindRestaurant, f)
}

func (s *stubCatalog) QueryTours(_ context.Context, f catalog.Filters) ([]catalog.Record, error) {
	return s.next(catalog.KindTour, f)
}

func (s *stubCatalog) QueryVehicles(_ context.Context, f catalog.Filters) ([]catalog.Record, error) {
	return s.next(catalog.KindVehicle, f)
}

func (s *stubCatalog) QueryLocationInfo(_ context.Context, _ string) (*catalog.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.location, nil
}

func (s *stubCatalog) SearchArticles(_ context.Context, _ string) ([]catalog.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

func rec(title, desc string) catalog.Record {
	return catalog.Record{Title: title, ShortDesc: desc, Gallery: "/img/" + strings.ReplaceAll(strings.ToLower(title), " ", "-") + ".jpg"}
}

func ask(msg string) Request {
	return Request{ConversationID: "c1", Message: msg}
}

func TestLodgingCheapHotelNearBeach(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindLodging, []catalog.Record{
		rec("Hotel Bahía Azul", "habitaciones sencillas"),
		rec("Hotel Las Ballenas", ""),
	})
	resp := NewLodging(cat, nil).Respond(context.Background(), ask("Busco un hotel barato cerca de la playa"))

	require.Len(t, cat.calls, 1)
	assert.Equal(t, catalog.Filters{
		Limit:             defaultLimit,
		Location:          "beach",
		AccommodationType: "hotel",
		MaxPrice:          100,
	}, cat.calls[0].filters)

	assert.False(t, resp.Error)
	assert.Equal(t,
		"Basándome en tus preferencias, te recomiendo estos hoteles: Hotel Bahía Azul y Hotel Las Ballenas. "+
			"Hotel Bahía Azul ofrece habitaciones sencillas. "+
			"¿Te gustaría obtener más información sobre alguno de estos hoteles o prefieres ver más opciones?",
		resp.Message)
	require.NotNil(t, resp.UI)
	assert.True(t, resp.UI.ShowResults)
	assert.Equal(t, chat.BannerAccommodation, resp.UI.BannerType)
	assert.Equal(t, "/img/hotel-bahía-azul.jpg", resp.UI.BannerImage)
	assert.Equal(t, []string{
		"¿Qué servicios ofrece Hotel Bahía Azul?",
		"¿Cuál es la diferencia entre Hotel Bahía Azul y Hotel Las Ballenas?",
		"¿Hay hoteles con piscina?",
	}, resp.UI.SuggestedQuestions)

	require.NotNil(t, resp.Context.LastSearch)
	assert.Equal(t, 2, resp.Context.LastSearch.ResultCount)
	require.NotNil(t, resp.Context.Preferences)
	assert.Equal(t, "low", resp.Context.Preferences.Budget)
	assert.Equal(t, "beach", resp.Context.Preferences.Location)
}

func TestLodgingListsAtMostThreeTitles(t *testing.T) {
	five := []catalog.Record{
		rec("Hotel Bahía Azul", "habitaciones sencillas"),
		rec("Hotel Las Ballenas", ""),
		rec("Hotel Cayo Levantado", "una isla privada"),
		rec("Hotel Playa Rincón", ""),
		rec("Hotel El Portillo", ""),
	}
	const closing = "¿Te gustaría obtener más información sobre alguno de estos hoteles o prefieres ver más opciones?"

	tests := []struct {
		name    string
		results []catalog.Record
		want    string
	}{
		{
			name:    "three results",
			results: five[:3],
			want: "Basándome en tus preferencias, te recomiendo estos hoteles: " +
				"Hotel Bahía Azul, Hotel Las Ballenas y Hotel Cayo Levantado. " +
				"Hotel Bahía Azul ofrece habitaciones sencillas. " + closing,
		},
		{
			name:    "five results",
			results: five,
			want: "Basándome en tus preferencias, te recomiendo estos hoteles: " +
				"Hotel Bahía Azul, Hotel Las Ballenas y Hotel Cayo Levantado. " +
				"Hotel Bahía Azul ofrece habitaciones sencillas. " + closing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newStubCatalog().queue(catalog.KindLodging, tt.results)
			resp := NewLodging(cat, nil).Respond(context.Background(), ask("Busco un hotel barato cerca de la playa"))

			assert.False(t, resp.Error)
			assert.Equal(t, tt.want, resp.Message)
			assert.Len(t, resp.Results, len(tt.results))
			require.NotNil(t, resp.Context.LastSearch)
			assert.Equal(t, len(tt.results), resp.Context.LastSearch.ResultCount)
		})
	}
}

func TestLodgingFallsBackToFeatured(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindLodging, nil, []catalog.Record{rec("Villa Las Palmeras", "villa privada")})
	resp := NewLodging(cat, nil).Respond(context.Background(), ask("Recomiéndame la mejor villa de lujo"))

	require.Len(t, cat.calls, 2)
	assert.Equal(t, "villa", cat.calls[0].filters.AccommodationType)
	assert.Equal(t, float64(500), cat.calls[0].filters.MinPrice)
	assert.Equal(t, catalog.Filters{IsFeatured: true, Limit: featuredLimit}, cat.calls[1].filters)
	assert.True(t, strings.HasPrefix(resp.Message, "Lo siento, no he encontrado villas que coincidan exactamente con tus preferencias. Te sugiero estas opciones populares en Samaná: la villa Villa Las Palmeras. villa privada "))
	assert.Len(t, resp.Results, 1)
}

func TestLodgingNoResultsAfterFallback(t *testing.T) {
	cat := newStubCatalog()
	resp := NewLodging(cat, nil).Respond(context.Background(), ask("Alojamiento para familia con niños"))

	require.Len(t, cat.calls, 2)
	assert.Equal(t, "family", cat.calls[0].filters.GroupType)
	assert.False(t, resp.Error)
	assert.Empty(t, resp.Results)
	assert.Equal(t, lodgingFlavours[lodgingFamily].emptyMessage, resp.Message)
	require.NotNil(t, resp.UI)
	assert.False(t, resp.UI.ShowResults)
	assert.Len(t, resp.UI.SuggestedQuestions, 3)
}

func TestLodgingLookupFailureApologizes(t *testing.T) {
	cat := newStubCatalog()
	cat.err = errors.New("connection refused")
	resp := NewLodging(cat, nil).Respond(context.Background(), ask("Recomienda un hotel barato"))

	assert.True(t, resp.Error)
	assert.Equal(t, lodgingFailure, resp.Message)
	assert.NotContains(t, resp.Message, "connection refused")
}

func TestLodgingGeneralInfoSkipsCatalog(t *testing.T) {
	cat := newStubCatalog()
	resp := NewLodging(cat, nil).Respond(context.Background(), ask("Háblame del alojamiento en Samaná"))

	assert.Empty(t, cat.calls)
	assert.Equal(t, lodgingGeneralInfo, resp.Message)
}

func TestLodgingUsesAccumulatedPreferences(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindLodging, []catalog.Record{rec("Hotel Las Ballenas", "")})
	req := ask("Quiero un hotel")
	req.Context.UserPreferences = chat.Preferences{Budget: "bajo", Location: "playa"}
	NewLodging(cat, nil).Respond(context.Background(), req)

	require.Len(t, cat.calls, 1)
	assert.Equal(t, "beach", cat.calls[0].filters.Location)
	assert.Equal(t, float64(100), cat.calls[0].filters.MaxPrice)
}

func TestFoodDishNeverQueriesCatalog(t *testing.T) {
	cat := newStubCatalog()
	resp := NewFood(cat, nil).Respond(context.Background(), ask("¿Qué es el mofongo?"))

	assert.Empty(t, cat.calls)
	assert.True(t, strings.HasPrefix(resp.Message, "El mofongo es un plato tradicional dominicano"))
	assert.Contains(t, resp.Message, "Puedes probar excelente mofongo en restaurantes como El Mofongo Loco, Restaurante Luis, La Casa de Doña Chichi.")
	assert.Equal(t, "¿Dónde está ubicado El Mofongo Loco?", resp.UI.SuggestedQuestions[0])
}

func TestFoodUnknownDish(t *testing.T) {
	resp := NewFood(newStubCatalog(), nil).Respond(context.Background(), ask("¿Qué es el chivo guisado?"))
	assert.Equal(t, unknownDish, resp.Message)
}

func TestFoodRecommendation(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindRestaurant, []catalog.Record{rec("El Pescador", "pescado con coco")})
	resp := NewFood(cat, nil).Respond(context.Background(), ask("Recomienda un restaurante barato de mariscos"))

	require.Len(t, cat.calls, 1)
	assert.Equal(t, catalog.Filters{Limit: defaultLimit, Category: "seafood", MaxPrice: 30}, cat.calls[0].filters)
	assert.Equal(t,
		"Basándome en tus preferencias, te recomiendo el restaurante El Pescador. pescado con coco "+
			"¿Te gustaría obtener más información sobre alguno de estos restaurantes o prefieres ver más opciones?",
		resp.Message)
	assert.Equal(t, []string{
		"¿Qué tipo de comida sirven en El Pescador?",
		"¿Hay restaurantes con terraza o vistas al mar?",
		"¿Dónde puedo probar pescado fresco?",
	}, resp.UI.SuggestedQuestions)
}

func TestActivitiesWhaleSeason(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"in season", time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC), whaleInSeason},
		{"off season", time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC), "La próxima temporada será de enero a marzo 2027."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newStubCatalog().queue(catalog.KindTour, []catalog.Record{rec("Tour de ballenas jorobadas", "")})
			a := NewActivities(cat, func() time.Time { return tt.now }, nil)
			resp := a.Respond(context.Background(), ask("¿Cuándo puedo ver ballenas?"))

			assert.True(t, strings.HasPrefix(resp.Message, whaleIntro))
			assert.True(t, strings.HasSuffix(resp.Message, tt.want))
			require.Len(t, cat.calls, 1)
			assert.Equal(t, catalog.Filters{Category: "whale", Limit: featuredLimit}, cat.calls[0].filters)
			assert.Equal(t, []string{"whale_watching"}, resp.Context.Preferences.Interests)
		})
	}
}

func TestActivitiesHalfDayTours(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindTour, []catalog.Record{rec("Salto El Limón", ""), rec("Bahía", "")})
	resp := NewActivities(cat, nil, nil).Respond(context.Background(), ask("Busco una excursión de medio día"))

	require.Len(t, cat.calls, 1)
	assert.Equal(t, float64(halfDayMaxHours), cat.calls[0].filters.MaxDurationHours)
	assert.Contains(t, resp.Message, `estos tours: "Salto El Limón" y "Bahía". `)
	assert.Equal(t, `¿Qué incluye el tour "Salto El Limón"?`, resp.UI.SuggestedQuestions[0])
}

func TestTransportRouting(t *testing.T) {
	tests := []struct {
		msg       string
		want      string
		wantCalls int
	}{
		{"Quiero alquilar un quad 3 días", carRentalInfo, 1},
		{"¿Cómo llego desde el aeropuerto?", transferInfo, 1},
		{"¿Hay guagua a Las Galeras?", publicInfo, 0},
		{"Busco un taxi para esta noche", taxiInfo, 0},
		{"¿Cómo me muevo por la península?", transportInfo, 0},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			cat := newStubCatalog()
			resp := NewTransport(cat, nil).Respond(context.Background(), ask(tt.msg))
			assert.Equal(t, tt.want, resp.Message)
			assert.Len(t, cat.calls, tt.wantCalls)
		})
	}
}

func TestTransportRentalFilters(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindVehicle, []catalog.Record{rec("Quad Polaris 500", "")})
	resp := NewTransport(cat, nil).Respond(context.Background(), ask("Quiero alquilar un quad 3 días"))

	require.Len(t, cat.calls, 1)
	assert.Equal(t, catalog.Filters{Category: "atv", Limit: featuredLimit}, cat.calls[0].filters)
	require.NotNil(t, resp.Context.LastSearch)
	assert.Equal(t, map[string]string{"vehicleType": "atv", "rentalDays": "3"}, resp.Context.LastSearch.Params)
	assert.Equal(t, "transport", resp.UI.ResultType)
}

func queryRequest(msg, searchType string) Request {
	req := ask(msg)
	req.Context.QueryParams = &chat.QueryParams{SearchType: searchType}
	return req
}

func TestQueryLodgingListing(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindLodging, []catalog.Record{
		rec("A", ""), rec("B", ""), rec("C", ""), rec("D", ""),
	})
	q := NewQuery(cat, nil, nil, nil)
	resp := q.Respond(context.Background(), queryRequest("Busco alojamiento", "accommodation"))

	require.Len(t, cat.calls, 1)
	assert.Equal(t, catalog.Filters{Limit: searchLimit}, cat.calls[0].filters)
	assert.Equal(t,
		"He encontrado 4 alojamientos que podrían interesarte en Samaná. Entre ellos están: A, B, C, entre otros. "+lodgingListEnd,
		resp.Message)
	assert.Equal(t, []string{
		"¿Puedes darme más detalles sobre A?",
		"¿Cuál es la diferencia entre A y B?",
		"¿Hay alojamientos cerca de la playa?",
	}, resp.UI.SuggestedQuestions)
	assert.Equal(t, "Alojamientos en Samaná", resp.UI.BannerTitle)
}

func TestQueryLodgingWithBudgetAndZone(t *testing.T) {
	cat := newStubCatalog().queue(catalog.KindLodging, []catalog.Record{rec("A", "")})
	q := NewQuery(cat, nil, nil, nil)
	resp := q.Respond(context.Background(), queryRequest("algo barato en la playa para 2 personas", "accommodation"))

	require.Len(t, cat.calls, 1)
	assert.Equal(t, catalog.Filters{Limit: searchLimit, Location: "playa", MaxPrice: 100}, cat.calls[0].filters)
	assert.Equal(t, "He encontrado 1 alojamiento que podrían interesarte en Samaná cerca de playa. Entre ellos están: A. "+lodgingListEnd, resp.Message)
	assert.Equal(t, "2", resp.Context.LastSearch.Params["people"])
	assert.Equal(t, "bajo", resp.Context.Preferences.Budget)
}

func TestQueryToursEmpty(t *testing.T) {
	q := NewQuery(newStubCatalog(), nil, nil, nil)
	resp := q.Respond(context.Background(), queryRequest("tours", "tour"))

	assert.Equal(t, tourNone, resp.Message)
	assert.Equal(t, tourNoneQuestions, resp.UI.SuggestedQuestions)
	assert.Equal(t, 0, resp.Context.LastSearch.ResultCount)
}

type stubPlaces struct {
	place *catalog.Record
	err   error
	asked []string
}

func (s *stubPlaces) DescribePlace(_ context.Context, name string) (*catalog.Record, error) {
	s.asked = append(s.asked, name)
	return s.place, s.err
}

func TestQueryInformationChain(t *testing.T) {
	long := strings.Repeat("á", 600)

	t.Run("location content is clamped", func(t *testing.T) {
		cat := newStubCatalog()
		cat.location = &catalog.Record{Content: long, Gallery: "/img/samana.jpg"}
		resp := NewQuery(cat, nil, nil, nil).Respond(context.Background(), queryRequest("info", "information"))
		assert.Equal(t, strings.Repeat("á", 500)+"...", resp.Message)
		assert.Equal(t, "/img/samana.jpg", resp.UI.BannerImage)
		assert.Equal(t, "Información sobre Samana", resp.UI.BannerTitle)
	})

	t.Run("articles", func(t *testing.T) {
		cat := newStubCatalog()
		cat.articles = []catalog.Record{{Title: "Uno"}, {Title: "Dos"}, {Title: "Tres"}, {Title: "Cuatro"}}
		resp := NewQuery(cat, nil, nil, nil).Respond(context.Background(), queryRequest("info", "information"))
		assert.Equal(t, "He encontrado algunos artículos en nuestro blog sobre Samana:\n- Uno\n- Dos\n- Tres"+articlesClosing, resp.Message)
		assert.True(t, resp.UI.ShowResults)
	})

	t.Run("place lookup", func(t *testing.T) {
		places := &stubPlaces{place: &catalog.Record{Content: "Las Terrenas, Samaná"}}
		req := queryRequest("info", "information")
		req.Context.QueryParams.Filters = map[string]string{"location": "Las Terrenas"}
		resp := NewQuery(newStubCatalog(), places, nil, nil).Respond(context.Background(), req)
		assert.Equal(t, "Las Terrenas, Samaná", resp.Message)
		assert.Equal(t, []string{"Las Terrenas"}, places.asked)
	})

	t.Run("place lookup failure falls through", func(t *testing.T) {
		places := &stubPlaces{err: errors.New("quota")}
		resp := NewQuery(newStubCatalog(), places, nil, nil).Respond(context.Background(), queryRequest("info", "information"))
		assert.False(t, resp.Error)
		assert.Equal(t, samanaOverview, resp.Message)
	})
}

func TestQueryInformationFromSampleCatalog(t *testing.T) {
	resp := NewQuery(catalog.Sample(), nil, nil, nil).Respond(context.Background(), queryRequest("Información sobre Samaná", "information"))
	assert.True(t, strings.HasPrefix(resp.Message, "La península de Samaná"))
}

func TestQueryUnknownSearchType(t *testing.T) {
	resp := NewQuery(newStubCatalog(), nil, nil, nil).Respond(context.Background(), queryRequest("hola", "car"))
	assert.Equal(t, queryUnknown, resp.Message)
	assert.Equal(t, chat.BannerGeneral, resp.UI.BannerType)
}

func TestQueryFailure(t *testing.T) {
	cat := newStubCatalog()
	cat.err = errors.New("boom")
	resp := NewQuery(cat, nil, nil, nil).Respond(context.Background(), queryRequest("hola", "restaurant"))
	assert.True(t, resp.Error)
	assert.Equal(t, queryFailure, resp.Message)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		params  chat.BookingParams
		want    string
		wantErr error
	}{
		{"hotel", chat.BookingParams{Type: "accommodation", Slug: "hotel-x"}, "https://samanainn.com/hotel/hotel-x", nil},
		{"query order", chat.BookingParams{Type: "tour", Slug: "t", Children: 2, Adults: 3, CheckOut: "2026-02-10", CheckIn: "2026-02-03"},
			"https://samanainn.com/tour/t?check_in=2026-02-03&check_out=2026-02-10&adults=3&children=2", nil},
		{"encoded", chat.BookingParams{Type: "car", Slug: "jeep", CheckIn: "3 feb"}, "https://samanainn.com/car/jeep?check_in=3+feb", nil},
		{"restaurant without slug", chat.BookingParams{Type: "restaurant"}, "https://samanainn.com/restaurant/", nil},
		{"unknown type", chat.BookingParams{Type: "spa", Slug: "x", Adults: 2}, "https://samanainn.com", ErrUnknownBookingType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL("https://samanainn.com/", tt.params)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBookingQueryTypes(t *testing.T) {
	b := NewBooking("", nil)
	req := ask("")
	req.Context.BookingParams = &chat.BookingParams{Type: "accommodation", Slug: "hotel-x"}

	req.Message = "¿Tienen disponibilidad en marzo?"
	resp := b.Respond(context.Background(), req)
	assert.Equal(t, bookingAvailability, resp.Message)
	assert.True(t, resp.UI.ShowBookingButton)
	assert.Equal(t, "https://samanainn.com/hotel/hotel-x", resp.UI.BookingButtonURL)

	req.Message = "Dame más detalles"
	resp = b.Respond(context.Background(), req)
	assert.Equal(t, bookingDetailsKnown, resp.Message)
	assert.Equal(t, "Ver detalles completos", resp.UI.DetailButtonText)

	req.Message = "¿Algo similar?"
	resp = b.Respond(context.Background(), req)
	assert.Contains(t, resp.Message, "Hotel Las Ballenas, Villa Las Palmeras")
	assert.True(t, resp.UI.ShowRecommendations)
	assert.Len(t, resp.Results, 2)

	req.Message = "¿Cuánto cuesta?"
	resp = b.Respond(context.Background(), req)
	assert.Equal(t, bookingPricing, resp.Message)
	assert.Equal(t, "https://samanainn.com/hotel/hotel-x", resp.UI.PricingButtonURL)

	req.Message = "Quiero reservar"
	resp = b.Respond(context.Background(), req)
	assert.Equal(t, bookingGeneral["accommodation"], resp.Message)
	assert.Equal(t, bookingGeneralQuestions, resp.UI.SuggestedQuestions)
}

func TestBookingWithoutParams(t *testing.T) {
	b := NewBooking("https://example.test", nil)

	resp := b.Respond(context.Background(), ask("Necesito información"))
	assert.Equal(t, bookingDetailsVague, resp.Message)
	assert.Equal(t, "https://example.test", resp.UI.DetailButtonURL)

	resp = b.Respond(context.Background(), ask("¿Alguna alternativa?"))
	assert.Equal(t, bookingNoSimilar, resp.Message)
	assert.Equal(t, "general", resp.UI.RecommendationsType)
}

type stubCompleter struct {
	result *ai.CompletionResult
	err    error
	delay  time.Duration
	got    ai.CompletionRequest
}

func (s *stubCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResult, error) {
	s.got = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.result, s.err
}

type recordedCall struct {
	id string
	ok bool
}

type stubRecorder struct{ calls []recordedCall }

func (s *stubRecorder) RecordCompletion(_ context.Context, id string, ok bool) {
	s.calls = append(s.calls, recordedCall{id, ok})
}

func TestGenericUsesProvider(t *testing.T) {
	completer := &stubCompleter{result: &ai.CompletionResult{
		Message:         "Te recomiendo Playa Rincón.",
		Intent:          &ai.IntentGuess{Type: chat.TopicActivities, Confidence: 0.8},
		UserPreferences: &chat.Preferences{Interests: []string{"playa"}},
	}}
	recorder := &stubRecorder{}
	g := NewGeneric(completer, recorder, time.Second, nil)

	req := ask("¿Qué playa me recomiendas?")
	for i := 0; i < 14; i++ {
		req.History = append(req.History, chat.Turn{Role: chat.RoleUser, Content: string(rune('a' + i))})
	}
	req.Context.Intent = &chat.Intent{Type: chat.TopicGeneral}

	resp := g.Respond(context.Background(), req)
	assert.False(t, resp.Error)
	assert.Equal(t, "Te recomiendo Playa Rincón.", resp.Message)
	assert.Equal(t, genericQuestions, resp.UI.SuggestedQuestions)
	assert.Equal(t, chat.BannerActivities, resp.UI.BannerType)
	require.NotNil(t, resp.Context.Intent)
	assert.Equal(t, chat.TopicActivities, resp.Context.Intent.Type)
	assert.Equal(t, []string{"playa"}, resp.Context.Preferences.Interests)

	assert.Len(t, completer.got.History, genericHistory)
	assert.Equal(t, "e", completer.got.History[0].Content)
	assert.Equal(t, chat.TopicGeneral, completer.got.Topic)
	assert.Equal(t, []recordedCall{{"c1", true}}, recorder.calls)
}

func TestGenericDefaultsMissingStructure(t *testing.T) {
	g := NewGeneric(&stubCompleter{result: &ai.CompletionResult{Message: "Hola"}}, nil, 0, nil)
	req := ask("hola")
	req.Context.Intent = &chat.Intent{Type: chat.TopicTransport}
	resp := g.Respond(context.Background(), req)

	assert.Equal(t, chat.TopicTransport, resp.Context.Intent.Type)
	assert.Equal(t, guessedConfidence, resp.Context.Intent.Confidence)
	assert.Nil(t, resp.Context.Preferences)
}

func TestGenericConfidenceOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.85, 0.85},
		{"upper bound", 1, 1},
		{"above one", 7, guessedConfidence},
		{"negative", -0.2, guessedConfidence},
		{"not a number", math.NaN(), guessedConfidence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGeneric(&stubCompleter{result: &ai.CompletionResult{
				Message: "Claro.",
				Intent:  &ai.IntentGuess{Type: chat.TopicGastronomy, Confidence: tc.in},
			}}, nil, time.Second, nil)
			resp := g.Respond(context.Background(), ask("¿algo más?"))
			require.NotNil(t, resp.Context.Intent)
			assert.Equal(t, chat.TopicGastronomy, resp.Context.Intent.Type)
			assert.Equal(t, tc.want, resp.Context.Intent.Confidence)
		})
	}
}

func TestGenericFailures(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		resp := NewGeneric(nil, nil, 0, nil).Respond(context.Background(), ask("hola"))
		assert.True(t, resp.Error)
		assert.Equal(t, genericFailure, resp.Message)
	})

	t.Run("timeout", func(t *testing.T) {
		recorder := &stubRecorder{}
		g := NewGeneric(&stubCompleter{delay: time.Second, result: &ai.CompletionResult{Message: "tarde"}}, recorder, 10*time.Millisecond, nil)
		resp := g.Respond(context.Background(), ask("hola"))
		assert.True(t, resp.Error)
		assert.Equal(t, []recordedCall{{"c1", false}}, recorder.calls)
	})

	t.Run("provider error", func(t *testing.T) {
		g := NewGeneric(&stubCompleter{err: ai.ErrNoCandidates}, nil, time.Second, nil)
		resp := g.Respond(context.Background(), ask("hola"))
		assert.True(t, resp.Error)
		assert.NotContains(t, resp.Message, "candidates")
	})
}
