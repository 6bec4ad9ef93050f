// README: Food specialist (restaurant recommendations, local cuisine and dish descriptions).
package responders

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/intent"
	"samanainn/internal/modules/catalog"
	"samanainn/internal/modules/pricing"
)

const (
	foodFailure      = "Lo siento, he tenido un problema al procesar tu consulta sobre gastronomía. ¿Puedo ayudarte con algo más?"
	foodLocalCuisine = "La gastronomía de Samaná está marcada por su ubicación costera, con una fuerte influencia de la cocina dominicana tradicional y toques especiales de la península. Los mariscos frescos y el pescado son protagonistas en muchos restaurantes locales. Platos emblemáticos incluyen el pescado con coco, mofongo (puré de plátano verde con chicharrones), sancocho (guiso tradicional dominicano) y, por supuesto, los dulces de coco característicos de la región. Los restaurantes locales suelen ofrecer estas delicias con un toque auténtico que refleja la cultura y tradiciones de Samaná. ¿Te gustaría conocer más sobre algún plato específico o prefieres recomendaciones de restaurantes donde probar estas especialidades?"
	foodGeneralInfo  = "Samaná ofrece una excelente variedad gastronómica, desde restaurantes de cocina dominicana tradicional hasta opciones internacionales. La cocina local destaca por sus mariscos frescos, el famoso pescado con coco, mofongo y los dulces típicos elaborados con coco. Los restaurantes se encuentran tanto en Las Terrenas como en Santa Bárbara de Samaná, muchos con vistas al mar y ambientes relajados. ¿Te interesa algún tipo de cocina en particular o prefieres una recomendación general?"
	unknownDish      = "Lo siento, no tengo información específica sobre ese plato. Algunos platos típicos de Samaná incluyen el pescado con coco, mofongo, sancocho y los dulces de coco. ¿Te gustaría saber más sobre alguno de estos platos?"
	dishClosing      = " ¿Te gustaría conocer otros platos típicos o saber dónde encontrar los mejores restaurantes para probar esta especialidad?"
)

type dish struct {
	name        string
	description string
	restaurants []string
}

// Detection order matters: the first dish named in the message wins.
var dishes = []dish{
	{
		name:        "pescado con coco",
		description: "El pescado con coco es un plato emblemático de Samaná. Consiste en pescado fresco (generalmente mero o dorado) cocinado en una rica salsa de leche de coco con especias locales, cebolla, pimiento y ajo. Se sirve tradicionalmente con arroz blanco y tostones (plátano verde frito). Este plato refleja perfectamente la fusión de ingredientes locales y la influencia caribeña en la cocina de Samaná.",
		restaurants: []string{"El Pescador", "La Terrasse", "Pueblo de los Pescadores"},
	},
	{
		name:        "mofongo",
		description: "El mofongo es un plato tradicional dominicano hecho de plátano verde frito que se machaca con ajo, chicharrón (piel de cerdo frita) y aceite de oliva hasta formar una masa. Se sirve generalmente en forma de cuenco y puede rellenarse con carne, pollo, mariscos o vegetales en salsa. Es un plato contundente y lleno de sabor que representa la esencia de la cocina dominicana.",
		restaurants: []string{"El Mofongo Loco", "Restaurante Luis", "La Casa de Doña Chichi"},
	},
	{
		name:        "sancocho",
		description: "El sancocho dominicano es un guiso espeso y sustancioso que combina diferentes carnes (pollo, res, cerdo), tubérculos como yuca, ñame, plátano y batata, y verduras como maíz, auyama (calabaza) y cebolla. Se cocina a fuego lento durante horas para que todos los sabores se mezclen. Es considerado el plato nacional de República Dominicana y se sirve tradicionalmente en ocasiones especiales.",
		restaurants: []string{"La Cocina Dominicana", "Comedor Típico", "El Criollo"},
	},
	{
		name:        "dulce de coco",
		description: "Los dulces de coco son una especialidad de Samaná, gracias a la abundancia de cocoteros en la península. Se preparan con coco rallado fresco, azúcar moreno, canela y vainilla, cocinados hasta obtener una textura espesa y caramelizada. Existen muchas variantes, algunas con leche, otras con piña o batata. Estos dulces se pueden encontrar tanto en restaurantes como vendidos por lugareños en las playas y calles de Samaná.",
		restaurants: []string{"Dulcería Samaná", "Café del Mar", "Las Delicias"},
	},
}

var (
	foodDeck = deck{
		intro:        recommendIntro,
		fallbackLead: "Lo siento, no he encontrado restaurantes que coincidan exactamente con tus preferencias. Te sugiero ampliar tu búsqueda o probar estas opciones populares en Samaná:",
		singular:     "el restaurante %s",
		pluralLead:   "estos restaurantes: ",
		describe:     "%s ofrece %s. ",
		closing:      "¿Te gustaría obtener más información sobre alguno de estos restaurantes o prefieres ver más opciones?",
	}
	foodQuestions = questionSet{
		first: "¿Qué tipo de comida sirven en %s?",
		pool:  []string{"¿Hay restaurantes con terraza o vistas al mar?", "¿Dónde puedo probar pescado fresco?", "¿Qué restaurantes ofrecen cocina local auténtica?"},
	}
	foodEmpty          = "Lo siento, no he podido encontrar restaurantes que coincidan con tus criterios. ¿Podrías reformular tu búsqueda con otros criterios?"
	foodEmptyQuestions = []string{
		"¿Qué restaurantes hay cerca de la playa?",
		"¿Dónde puedo comer comida dominicana auténtica?",
		"¿Cuáles son los restaurantes más populares en Samaná?",
	}
	localCuisineQuestions = []string{"¿Qué es el pescado con coco?", "¿Dónde puedo probar mofongo auténtico?", "¿Cuáles son los dulces típicos de Samaná?"}
	unknownDishQuestions  = []string{"¿Qué es el pescado con coco?", "¿Cómo se prepara el mofongo?", "¿Dónde puedo probar la gastronomía local?"}
	foodGeneralQuestions  = []string{"¿Dónde puedo comer mariscos frescos?", "¿Cuáles son los mejores restaurantes para comida dominicana?", "¿Hay restaurantes con vistas al mar?"}
)

type Food struct {
	catalog catalog.Gateway
	logger  *zap.Logger
}

func NewFood(c catalog.Gateway, logger *zap.Logger) *Food {
	return &Food{catalog: c, logger: named(logger, "food")}
}

func (f *Food) Name() chat.ResponderName { return chat.ResponderFood }

func (f *Food) Respond(ctx context.Context, req Request) chat.Response {
	prefs := intent.ExtractFood(req.Message)
	if prefs.PriceRange == "" {
		if t, ok := pricing.ParseTier(req.Context.UserPreferences.Budget); ok && t != pricing.TierMedium {
			prefs.PriceRange = string(t)
		}
	}
	lower := strings.ToLower(req.Message)

	var resp chat.Response
	switch {
	// dish questions never touch the catalog
	case findDish(lower) != nil || intent.ContainsAny(lower, "qué es", "cómo se prepara", "ingredientes"):
		resp = dishInfo(findDish(lower))
	case intent.ContainsAny(lower, "restaurante", "donde comer", "dónde comer", "recomienda"):
		var err error
		resp, err = f.recommend(ctx, prefs)
		if err != nil {
			f.logger.Error("restaurant lookup failed", zap.Error(err))
			return chat.Apology(foodFailure)
		}
	case intent.ContainsAny(lower, "comida típica", "platos dominicanos", "gastronomía local"):
		resp = fixedText(foodLocalCuisine, chat.BannerGastronomy, "Gastronomía de Samaná", localCuisineQuestions)
	default:
		resp = fixedText(foodGeneralInfo, chat.BannerGastronomy, "Gastronomía de Samaná", foodGeneralQuestions)
	}
	resp.Context = resp.Context.Then(chat.Patch{Preferences: &chat.Preferences{Budget: prefs.PriceRange}})
	return resp
}

func (f *Food) recommend(ctx context.Context, prefs intent.FoodPrefs) (chat.Response, error) {
	filters := catalog.Filters{Limit: defaultLimit, Category: prefs.CuisineType}
	pricing.Apply(&filters, pricing.SegmentRestaurant, prefs.PriceRange)

	results, fromFallback, err := searchWithFallback(ctx, f.catalog.QueryRestaurants, filters)
	if err != nil {
		return chat.Response{}, err
	}
	search := lastSearch("restaurant", compactParams(
		"cuisineType", prefs.CuisineType,
		"priceRange", prefs.PriceRange,
		"ambience", prefs.Ambience,
	), len(results))
	if len(results) == 0 {
		resp := noResults(foodEmpty, chat.BannerGastronomy, foodEmptyQuestions)
		resp.Context = chat.Patch{LastSearch: search}
		return resp, nil
	}
	return chat.Response{
		Message: foodDeck.compose(results, fromFallback),
		Results: results,
		UI:      listingUI(results, "restaurant", chat.BannerGastronomy, "Restaurantes en Samaná", foodQuestions.build(results)),
		Context: chat.Patch{LastSearch: search},
	}, nil
}

func findDish(lower string) *dish {
	for i := range dishes {
		if strings.Contains(lower, dishes[i].name) {
			return &dishes[i]
		}
	}
	// plural form of the dessert
	if strings.Contains(lower, "dulces de coco") {
		return &dishes[3]
	}
	return nil
}

func dishInfo(d *dish) chat.Response {
	if d == nil {
		return fixedText(unknownDish, chat.BannerGastronomy, "Gastronomía de Samaná", unknownDishQuestions)
	}
	msg := d.description + " " +
		fmt.Sprintf("Puedes probar excelente %s en restaurantes como %s.", d.name, strings.Join(d.restaurants, ", ")) +
		dishClosing
	return fixedText(msg, chat.BannerGastronomy, "Gastronomía de Samaná", []string{
		fmt.Sprintf("¿Dónde está ubicado %s?", d.restaurants[0]),
		"¿Qué otros platos típicos hay en Samaná?",
		"¿Cuál es el mejor restaurante para comida local?",
	})
}
