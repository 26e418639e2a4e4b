package reflection

import (
	"strings"

	"github.com/velours-studio/reflet/internal/emotion"
	"github.com/velours-studio/reflet/internal/features"
)

const (
	tonWeightAlignment  = 0.40
	tonWeightBrandVoice = 0.35
	tonWeightVocabulary = 0.25
)

// toneMarkers are the words that betray a tone in the actual response.
var toneMarkers = map[string][]string{
	"apaisant":      {"pas d'inquiétude", "tranquillement", "sereinement", "je m'occupe de tout", "rassur"},
	"enthousiaste":  {"avec plaisir", "formidable", "magnifique", "quelle bonne idée"},
	"bienveillant":  {"je comprends", "prenons le temps", "à votre écoute"},
	"dynamique":     {"allons-y", "c'est parti", "vous allez adorer"},
	"pédagogue":     {"premièrement", "d'une part", "pour faire simple", "deux options"},
	"informatif":    {"à noter", "bon à savoir", "concrètement", "en détail"},
	"direct":        {"immédiatement", "tout de suite", "voici", "dès maintenant"},
	"professionnel": {"je vous propose", "volontiers", "bien entendu"},
}

// brandVoice is the concierge house style.
var brandVoice = []string{
	"avec plaisir", "je vous propose", "volontiers", "à votre service",
	"permettez-moi", "belle journée", "au plaisir",
}

// expectedTone derives the target tone from emotion and intent; urgency-class
// intents override the emotion's tone.
func expectedTone(emo emotion.Label, intent string) string {
	if intent == features.IntentAssistance && emo == emotion.LabelNeutral {
		return "pédagogue"
	}
	if intent == features.IntentModification {
		return "direct"
	}
	return emotion.StrategyFor(emo).TargetTone
}

func scoreTonal(in Input) SubScore {
	lower := strings.ToLower(in.AssistantText)

	expected := expectedTone(in.Features.Emotion.Dominant, in.Features.Intent.Label)

	alignment := 40.0
	if markers, ok := toneMarkers[expected]; ok && containsAny(lower, markers) {
		alignment = 100
	}

	brand := 40.0
	if containsAny(lower, brandVoice) {
		brand = 100
	}

	vocabulary := 60.0
	if vocab, ok := toneCoherence[in.Features.Emotion.Dominant]; ok {
		if containsAny(lower, vocab) {
			vocabulary = 100
		} else {
			vocabulary = 40
		}
	}

	value := clamp100(alignment*tonWeightAlignment +
		brand*tonWeightBrandVoice +
		vocabulary*tonWeightVocabulary)

	return SubScore{
		Value: value,
		Evidence: map[string]float64{
			"alignment":  alignment,
			"brand":      brand,
			"vocabulary": vocabulary,
		},
	}
}
