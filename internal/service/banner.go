package service

import "samanainn/internal/chat"

type BannerAction struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Banner is the static hero shown above the chat for a topic.
type Banner struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	ImageURL string       `json:"imageUrl"`
	Action   BannerAction `json:"action"`
}

var banners = map[chat.BannerType]Banner{
	chat.BannerGeneral: {
		Title:    "Descubre Samaná",
		Subtitle: "Un paraíso en República Dominicana",
		ImageURL: "/assets/images/banner_general.jpg",
		Action:   BannerAction{Text: "Explorar", URL: "/explore"},
	},
	chat.BannerAccommodation: {
		Title:    "Alojamientos en Samaná",
		Subtitle: "Desde hoteles de lujo hasta villas privadas",
		ImageURL: "/assets/images/banner_accommodation.jpg",
		Action:   BannerAction{Text: "Ver alojamientos", URL: "/hotels"},
	},
	chat.BannerGastronomy: {
		Title:    "Sabores de Samaná",
		Subtitle: "Descubre la gastronomía local",
		ImageURL: "/assets/images/banner_gastronomy.jpg",
		Action:   BannerAction{Text: "Ver restaurantes", URL: "/restaurants"},
	},
	chat.BannerActivities: {
		Title:    "Aventuras en Samaná",
		Subtitle: "Excursiones y actividades para todos",
		ImageURL: "/assets/images/banner_activities.jpg",
		Action:   BannerAction{Text: "Ver actividades", URL: "/tours"},
	},
	chat.BannerTransport: {
		Title:    "Transporte en Samaná",
		Subtitle: "Moverse por la península",
		ImageURL: "/assets/images/banner_transport.jpg",
		Action:   BannerAction{Text: "Ver opciones", URL: "/cars"},
	},
}

// BannerFor falls back to the general banner for unknown types.
func BannerFor(t chat.BannerType) Banner {
	if b, ok := banners[t]; ok {
		return b
	}
	return banners[chat.BannerGeneral]
}
