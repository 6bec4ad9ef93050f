// README: Transport specialist (vehicle rental, airport transfers, public transport, taxis).
package responders

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
	"samanainn/internal/modules/catalog"
)

const (
	transportFailure = "Lo siento, he tenido un problema al procesar tu consulta sobre transporte. ¿Puedo ayudarte con algo más?"

	carRentalInfo = "El alquiler de vehículos es una excelente opción para explorar Samaná con libertad. Puedes alquilar coches, motos, quads o buggies según tus preferencias. Los precios para coches suelen oscilar entre 40-80 USD por día dependiendo del modelo, mientras que las motos y quads son más económicos (25-50 USD/día). Se recomienda reservar con antelación, especialmente en temporada alta. La mayoría de compañías requieren una licencia de conducir válida y un depósito. Las carreteras en Samaná son generalmente buenas en las vías principales, pero pueden ser más accidentadas en zonas rurales. Un coche es ideal para visitar múltiples playas y atracciones, mientras que los quads son populares para rutas de aventura. ¿Te interesa algún tipo de vehículo en particular?"
	transferInfo  = "Para llegar a Samaná desde los aeropuertos cercanos, tienes varias opciones. El aeropuerto más cercano es El Catey (AZS), a unos 30-45 minutos en coche de Las Terrenas. Sin embargo, muchos visitantes llegan a través del Aeropuerto Internacional de Santo Domingo (SDQ) o de Puerto Plata (POP), que están a unas 2-3 horas por carretera. Puedes contratar un servicio de traslado privado, que cuesta aproximadamente 80-150 USD dependiendo del aeropuerto de origen y tu destino final en Samaná. También hay taxis disponibles pero suelen ser más caros. Otra opción es el autobús público (guagua) desde Santo Domingo, que es más económico pero toma más tiempo y solo llega a puntos principales. La opción más cómoda es reservar un traslado con anticipación para que te estén esperando a tu llegada."
	publicInfo    = "El transporte público en Samaná consiste principalmente en 'guaguas' (minibuses locales) y 'motoconchos' (mototaxis). Las guaguas conectan los principales pueblos como Santa Bárbara de Samaná, Las Terrenas, Las Galeras y El Limón. Son económicas (1-3 USD por trayecto) pero no siguen horarios estrictos; salen cuando están llenas. Los motoconchos son abundantes y convenientes para distancias cortas dentro de los pueblos, con precios negociables (generalmente 1-2 USD por trayecto dentro del mismo pueblo). También hay 'carros públicos' (taxis compartidos) que siguen rutas fijas entre pueblos. El transporte público es económico pero puede ser incómodo y lento. Si planeas visitar múltiples lugares o tienes un itinerario ajustado, considera alquilar un vehículo o contratar un taxista para el día."
	taxiInfo      = "Los taxis en Samaná no suelen usar taxímetro, por lo que es recomendable acordar el precio antes de iniciar el viaje. Dentro de los pueblos, un trayecto corto puede costar 5-10 USD, mientras que los viajes entre diferentes localidades (como de Las Terrenas a Playa Rincón) pueden costar 30-50 USD. Algunas alternativas son los 'motoconchos' (mototaxis) para distancias cortas, o contratar un taxista para todo el día (aproximadamente 80-120 USD), lo que puede ser conveniente si planeas visitar varios lugares. Aplicaciones como Uber no están disponibles en Samaná, pero muchos hoteles y restaurantes tienen taxistas de confianza a quienes pueden llamar. También puedes guardar el número de un taxista que te guste para futuros traslados. En general, los taxis son seguros pero asegúrate de usar servicios recomendados por tu alojamiento."
	transportInfo = "Para moverte por Samaná tienes varias opciones según tu presupuesto y preferencias. El alquiler de vehículos (coches, motos o quads) ofrece mayor libertad para explorar la península a tu ritmo. El transporte público incluye 'guaguas' (minibuses) que conectan los principales pueblos y son económicas pero con horarios variables. Los 'motoconchos' (mototaxis) son perfectos para trayectos cortos dentro de los pueblos. Los taxis son convenientes pero más caros y se recomienda acordar el precio antes. Para llegar a Samaná desde los aeropuertos, puedes contratar servicios de traslado privados o utilizar autobuses públicos desde Santo Domingo. La península tiene carreteras bien mantenidas en las rutas principales, pero pueden ser más rústicas en zonas remotas. ¿Hay alguna opción de transporte específica sobre la que te gustaría más información?"
)

var (
	carRentalQuestions = []string{"¿Dónde puedo alquilar un coche en Samaná?", "¿Cuánto cuesta alquilar un quad por día?", "¿Necesito un permiso especial para conducir en República Dominicana?"}
	transferQuestions  = []string{"¿Cuánto cuesta un traslado desde Santo Domingo?", "¿Hay transportes compartidos disponibles?", "¿Cuál es la mejor manera de llegar desde Puerto Plata?"}
	publicQuestions    = []string{"¿Dónde puedo tomar las guaguas en Las Terrenas?", "¿Es seguro usar los motoconchos?", "¿Hay alguna aplicación para pedir taxis en Samaná?"}
	taxiQuestions      = []string{"¿Cuánto cuesta un taxi de Las Terrenas a El Limón?", "¿Cómo puedo encontrar un taxi confiable?", "¿Es mejor contratar un taxista para todo el día?"}
	transportQuestions = []string{"¿Dónde puedo alquilar un coche?", "¿Cómo llego desde el aeropuerto de Santo Domingo?", "¿Es fácil moverse entre las diferentes playas?"}
)

type Transport struct {
	catalog catalog.Gateway
	logger  *zap.Logger
}

func NewTransport(c catalog.Gateway, logger *zap.Logger) *Transport {
	return &Transport{catalog: c, logger: named(logger, "transport")}
}

func (t *Transport) Name() chat.ResponderName { return chat.ResponderTransport }

func (t *Transport) Respond(ctx context.Context, req Request) chat.Response {
	prefs := intent.ExtractTransport(req.Message)
	msg := req.Message

	var resp chat.Response
	var err error
	switch {
	case intent.ContainsAny(msg, "alquiler", "rent", "alquilar") ||
		(intent.ContainsAny(msg, "coche") && intent.ContainsAny(msg, "conseguir", "obtener")):
		resp, err = t.rental(ctx, prefs)
	case intent.ContainsAny(msg, "aeropuerto", "airport", "transfer", "traslado"):
		resp, err = t.transfers(ctx)
	// "bus" alone would also match "busco"
	case intent.ContainsAny(msg, "público", "public", "autobús", "guagua", " bus"):
		resp = fixedText(publicInfo, chat.BannerTransport, "Transporte Público en Samaná", publicQuestions)
	case intent.ContainsAny(msg, "taxi", "uber", "transporte privado"):
		resp = fixedText(taxiInfo, chat.BannerTransport, "Taxis en Samaná", taxiQuestions)
	default:
		resp = fixedText(transportInfo, chat.BannerTransport, "Transporte en Samaná", transportQuestions)
	}
	if err != nil {
		t.logger.Error("transport lookup failed", zap.Error(err))
		return chat.Apology(transportFailure)
	}
	resp.Context = resp.Context.Then(chat.Patch{Preferences: &chat.Preferences{Budget: prefs.PriceRange}})
	return resp
}

func (t *Transport) rental(ctx context.Context, prefs intent.TransportPrefs) (chat.Response, error) {
	vehicles, err := t.catalog.QueryVehicles(ctx, catalog.Filters{Category: prefs.VehicleType, Limit: featuredLimit})
	if err != nil {
		return chat.Response{}, err
	}
	params := compactParams("vehicleType", prefs.VehicleType, "priceRange", prefs.PriceRange)
	if prefs.RentalDays > 0 {
		params["rentalDays"] = strconv.Itoa(prefs.RentalDays)
	}
	return chat.Response{
		Message: carRentalInfo,
		Results: vehicles,
		UI:      listingUI(vehicles, "transport", chat.BannerTransport, "Alquiler de Vehículos en Samaná", carRentalQuestions),
		Context: chat.Patch{LastSearch: lastSearch("car", params, len(vehicles))},
	}, nil
}

// transfers are tours in the transfer category.
func (t *Transport) transfers(ctx context.Context) (chat.Response, error) {
	tours, err := t.catalog.QueryTours(ctx, catalog.Filters{Category: "transfer", Limit: featuredLimit})
	if err != nil {
		return chat.Response{}, err
	}
	return chat.Response{
		Message: transferInfo,
		Results: tours,
		UI:      listingUI(tours, "transport", chat.BannerTransport, "Traslados a Samaná", transferQuestions),
	}, nil
}
