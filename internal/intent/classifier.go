// README: Keyword classifier mapping free text onto a travel topic with a fixed confidence per branch.
package intent

import (
	"strings"

	"samanainn/internal/chat"
)

type rule struct {
	topic      chat.Topic
	confidence float64
	keywords   []string
	details    map[string]string
}

// Checked in order; the first rule with any keyword present wins.
var rules = []rule{
	{
		topic:      chat.TopicAccommodation,
		confidence: 0.9,
		keywords:   []string{"alojamiento", "hotel", "apartamento", "casa", "donde dormir", "hospedaje"},
		details:    map[string]string{"searchType": "accommodation"},
	},
	{
		topic:      chat.TopicGastronomy,
		confidence: 0.9,
		keywords:   []string{"restaurante", "comer", "comida", "gastronomía", "plato"},
		details:    map[string]string{"searchType": "restaurant"},
	},
	{
		topic:      chat.TopicActivities,
		confidence: 0.9,
		keywords:   []string{"excursión", "tour", "actividad", "visitar", "qué hacer"},
		details:    map[string]string{"searchType": "tour"},
	},
	{
		topic:      chat.TopicTransport,
		confidence: 0.9,
		keywords:   []string{"vehículo", "coche", "auto", "carro", "alquiler"},
		details:    map[string]string{"searchType": "car"},
	},
	{
		topic:      chat.TopicInformation,
		confidence: 0.8,
		keywords:   []string{"samana", "samaná", "república dominicana", "información"},
		details:    map[string]string{"searchType": "information", "location": "Samana"},
	},
}

const generalConfidence = 0.6

// Classify is a pure function of text.
func Classify(text string) chat.Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if containsAny(lower, r.keywords) {
			return chat.Intent{Type: r.topic, Confidence: r.confidence, Details: cloneDetails(r.details)}
		}
	}
	return chat.Intent{Type: chat.TopicGeneral, Confidence: generalConfidence, Details: map[string]string{}}
}

// Keywords returns the classifier keywords for topic, or nil for general.
func Keywords(topic chat.Topic) []string {
	for _, r := range rules {
		if r.topic == topic {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func cloneDetails(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
