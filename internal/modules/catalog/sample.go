package catalog

func price(v float64) *float64 { return &v }

// Sample returns a small published catalog of Samaná records.
func Sample() *Memory {
	m := NewMemory()
	for _, r := range []MemoryRecord{
		{Record: Record{ID: 1, Kind: KindLodging, Title: "Hotel Las Ballenas", Slug: "hotel-las-ballenas",
			ShortDesc: "frente a la bahía con vistas a las ballenas en temporada", Category: "hotel", Location: "Las Terrenas",
			Price: price(85), Rating: price(4.4), Gallery: "/img/ballenas-1.jpg,/img/ballenas-2.jpg", IsFeatured: true},
			Zone: "beach", GroupTypes: []string{"family", "couple"}, HasPool: true, Published: true},
		{Record: Record{ID: 2, Kind: KindLodging, Title: "Hotel Bahía Azul", Slug: "hotel-bahia-azul",
			ShortDesc: "habitaciones sencillas a cinco minutos de Playa Bonita", Category: "hotel", Location: "Las Terrenas",
			Price: price(70), Rating: price(4.0), Gallery: "/img/bahia-azul.jpg"},
			Zone: "beach", GroupTypes: []string{"group"}, Published: true},
		{Record: Record{ID: 3, Kind: KindLodging, Title: "Apartamentos Cosón", Slug: "apartamentos-coson",
			ShortDesc: "apartamentos con cocina junto a Playa Cosón", Category: "apartment", Location: "Las Terrenas",
			Price: price(120), Rating: price(4.6)},
			Zone: "beach", GroupTypes: []string{"family", "group"}, HasPool: true, Published: true},
		{Record: Record{ID: 4, Kind: KindLodging, Title: "Villa Las Palmeras", Slug: "villa-las-palmeras",
			ShortDesc: "villa privada con piscina entre cocoteros", Category: "villa", Location: "El Limón",
			Price: price(450), Rating: price(4.8), IsFeatured: true},
			Zone: "mountain", GroupTypes: []string{"couple"}, HasPool: true, Published: true},
		{Record: Record{ID: 10, Kind: KindRestaurant, Title: "El Pescador", Slug: "el-pescador",
			ShortDesc: "pescado con coco y mariscos del día", Category: "seafood", Location: "Las Terrenas",
			Price: price(25), IsFeatured: true},
			Zone: "beach", Published: true},
		{Record: Record{ID: 11, Kind: KindRestaurant, Title: "La Terrasse", Slug: "la-terrasse",
			ShortDesc: "cocina francesa con terraza sobre el mar", Category: "international", Location: "Las Terrenas",
			Price: price(55)},
			Zone: "beach", Published: true},
		{Record: Record{ID: 12, Kind: KindRestaurant, Title: "La Cocina Dominicana", Slug: "la-cocina-dominicana",
			ShortDesc: "sancocho y mofongo como en casa", Category: "local", Location: "Santa Bárbara de Samaná",
			Price: price(15)},
			Zone: "downtown", Published: true},
		{Record: Record{ID: 20, Kind: KindTour, Title: "Tour de ballenas jorobadas", Slug: "tour-ballenas",
			ShortDesc: "sale del puerto de Samaná con guía biólogo", Category: "whale_watching", Location: "Santa Bárbara de Samaná",
			Price: price(65), DurationHours: price(3.5), IsFeatured: true},
			Zone: "downtown", Published: true},
		{Record: Record{ID: 21, Kind: KindTour, Title: "Excursión a Los Haitises", Slug: "excursion-los-haitises",
			ShortDesc: "recorre manglares y cuevas con pinturas taínas", Category: "los_haitises", Location: "Sabana de la Mar",
			Price: price(90), DurationHours: price(7)},
			Published: true},
		{Record: Record{ID: 22, Kind: KindTour, Title: "Salto El Limón a caballo", Slug: "salto-el-limon",
			ShortDesc: "sube a caballo hasta la cascada de 40 metros", Category: "el_limon", Location: "El Limón",
			Price: price(45), DurationHours: price(4)},
			Zone: "mountain", Published: true},
		{Record: Record{ID: 23, Kind: KindTour, Title: "Traslado aeropuerto Santo Domingo", Slug: "traslado-sdq",
			ShortDesc: "traslado privado desde el aeropuerto de Las Américas", Category: "transfer",
			Price: price(180), DurationHours: price(2.5)},
			Published: true},
		{Record: Record{ID: 30, Kind: KindVehicle, Title: "Jeep Wrangler 4x4", Slug: "jeep-wrangler",
			ShortDesc: "ideal para caminos de tierra hacia Playa Rincón", Category: "car", Location: "Las Terrenas",
			Price: price(75), IsFeatured: true},
			Published: true},
		{Record: Record{ID: 31, Kind: KindVehicle, Title: "Quad Polaris 500", Slug: "quad-polaris",
			ShortDesc: "quad para recorrer la costa norte", Category: "atv", Location: "Las Terrenas",
			Price: price(60)},
			Published: true},
		{Record: Record{ID: 40, Kind: KindLocation, Title: "Samana",
			Content: "La península de Samaná está en el noreste de República Dominicana y combina playas vírgenes, montañas cubiertas de cocoteros y la bahía donde llegan las ballenas jorobadas cada invierno.",
			Gallery: "/img/samana.jpg"},
			Published: true},
		{Record: Record{ID: 50, Kind: KindArticle, Title: "Guía de Las Galeras", Slug: "guia-las-galeras",
			Content: "Las Galeras es el pueblo más tranquilo de Samaná."},
			Published: true},
	} {
		m.Add(r)
	}
	return m
}
