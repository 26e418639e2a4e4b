package reflection

import (
	"strings"

	"github.com/velours-studio/reflet/internal/emotion"
	"github.com/velours-studio/reflet/internal/features"
)

// Fixed blend weights of the semantic sub-score.
const (
	semWeightRelevance = 0.30
	semWeightIntent    = 0.25
	semWeightTone      = 0.20
	semWeightDetail    = 0.15
	semWeightStructure = 0.10
)

// intentMarkers are words a relevant response uses per detected intent.
var intentMarkers = map[string][]string{
	features.IntentReservation:    {"réserv", "table", "confirm", "disponib"},
	features.IntentRecommandation: {"recommande", "suggère", "conseille", "propose"},
	features.IntentInformation:    {"horaires", "adresse", "prix", "situé"},
	features.IntentPlanification:  {"programme", "itinéraire", "organis", "étape"},
	features.IntentModification:   {"modifi", "annul", "déplac", "nouveau créneau"},
	features.IntentAssistance:     {"je m'en occupe", "voici comment", "pas à pas", "je vous aide"},
}

// toneCoherence maps a dominant emotion to vocabulary a coherent response
// should carry.
var toneCoherence = map[emotion.Label][]string{
	emotion.LabelJoy:      {"plaisir", "ravis", "parfait", "excellente"},
	emotion.LabelStress:   {"pas d'inquiétude", "je m'en occupe", "simplement", "rassur"},
	emotion.LabelSadness:  {"je comprends", "navré", "désolé", "autre option"},
	emotion.LabelExcited:  {"formidable", "génial", "vous allez adorer"},
	emotion.LabelHesitant: {"comparons", "deux options", "pour vous aider à choisir"},
	emotion.LabelCurious:  {"en détail", "petite histoire", "à savoir"},
	emotion.LabelUrgent:   {"immédiatement", "tout de suite", "sans attendre", "dès maintenant"},
}

var detailMarkers = [][]string{
	{"rue", "avenue", "boulevard", "quartier", "situé"}, // location
	{"h00", "h30", "heures", "midi", "soir"},            // time
	{"€", "euros", "tarif", "prix"},                     // price
	{"téléphone", "contact", "site", "réservation au"},  // contact
}

var structureMarkers = [][]string{
	{"\n-", "\n*", "•"},            // bullets
	{"\n#", "**"},                  // headers / emphasis
	{"1.", "2.", "1)", "2)"},       // numbered steps
	{"✨", "🍽", "⭐", "👉", "🎉", "📍"}, // emoji
}

func scoreSemantic(in Input) SubScore {
	lower := strings.ToLower(in.AssistantText)

	relevance := 100 * overlapRatio(tokenSet(in.UserText), tokenSet(in.AssistantText))

	intentScore := 60.0 // neutral when intent is general
	if markers, ok := intentMarkers[in.Features.Intent.Label]; ok {
		intentScore = 100 * float64(countAny(lower, markers)) / float64(len(markers))
	}

	tone := 50.0
	if vocab, ok := toneCoherence[in.Features.Emotion.Dominant]; ok {
		if containsAny(lower, vocab) {
			tone = 100
		} else {
			tone = 40
		}
	} else {
		tone = 70 // neutral emotion: no specific vocabulary expected
	}

	detail := 0.0
	for _, family := range detailMarkers {
		if containsAny(lower, family) {
			detail += 25
		}
	}

	structure := 0.0
	for _, family := range structureMarkers {
		if containsAny(in.AssistantText, family) {
			structure += 25
		}
	}

	value := clamp100(relevance*semWeightRelevance +
		intentScore*semWeightIntent +
		tone*semWeightTone +
		detail*semWeightDetail +
		structure*semWeightStructure)

	return SubScore{
		Value: value,
		Evidence: map[string]float64{
			"relevance": relevance,
			"intent":    intentScore,
			"tone":      tone,
			"detail":    detail,
			"structure": structure,
		},
	}
}
