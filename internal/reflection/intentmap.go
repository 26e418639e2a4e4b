package reflection

import (
	"strings"

	"github.com/velours-studio/reflet/internal/features"
)

const (
	intWeightKeywords     = 0.40
	intWeightCompleteness = 0.35
	intWeightSuggestions  = 0.25
)

// requiredFields is the per-intent completeness checklist: marker families a
// complete answer covers.
var requiredFields = map[string][][]string{
	features.IntentReservation: {
		{"nom", "restaurant", "chez"},
		{"heure", "h00", "h30", "date"},
		{"personnes", "couverts"},
		{"confirm"},
	},
	features.IntentRecommandation: {
		{"nom", "chez", "le ", "la "},
		{"adresse", "rue", "quartier", "situé"},
		{"prix", "€", "tarif", "budget"},
	},
	features.IntentInformation: {
		{"horaires", "ouvert"},
		{"adresse", "situé", "rue"},
	},
	features.IntentPlanification: {
		{"programme", "itinéraire", "étape"},
		{"heure", "matin", "après-midi", "soir"},
	},
	features.IntentModification: {
		{"annul", "modifi", "déplac"},
		{"confirm", "nouveau"},
	},
	features.IntentAssistance: {
		{"voici", "étape", "d'abord"},
	},
}

var suggestionMarkers = []string{
	"\n-", "\n*", "1.", "2.", "option", "autre idée", "sinon", "ou bien",
}

func scoreIntent(in Input) SubScore {
	lower := strings.ToLower(in.AssistantText)
	label := in.Features.Intent.Label

	keywords := 60.0 // neutral for general intent
	if markers, ok := intentMarkers[label]; ok {
		if containsAny(lower, markers) {
			keywords = 100
		} else {
			keywords = 30
		}
	}

	completeness := 60.0
	if checklist, ok := requiredFields[label]; ok && len(checklist) > 0 {
		covered := 0
		for _, family := range checklist {
			if containsAny(lower, family) {
				covered++
			}
		}
		completeness = 100 * float64(covered) / float64(len(checklist))
	}

	suggestions := 40.0
	if containsAny(lower, suggestionMarkers) {
		suggestions = 100
	}

	value := clamp100(keywords*intWeightKeywords +
		completeness*intWeightCompleteness +
		suggestions*intWeightSuggestions)

	return SubScore{
		Value: value,
		Evidence: map[string]float64{
			"keywords":     keywords,
			"completeness": completeness,
			"suggestions":  suggestions,
		},
	}
}
