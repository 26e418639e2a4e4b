package reflection

import (
	"strings"

	"github.com/velours-studio/reflet/internal/features"
)

const (
	ctxWeightRetention       = 0.40
	ctxWeightPersonalization = 0.35
	ctxWeightContinuity      = 0.25
)

// personalizationPhrases reference a remembered preference.
var personalizationPhrases = []string{
	"comme vous aimez", "comme la dernière fois", "vos préférences",
	"votre précédent", "fidèle à vos habitudes", "comme d'habitude",
	"vous aviez apprécié",
}

func scoreContextual(in Input) SubScore {
	lower := strings.ToLower(in.AssistantText)
	responseTokens := tokenSet(in.AssistantText)

	// Retention: overlap with the last up to 3 prior turns.
	retention := 50.0 // neutral when there is no history to retain
	if prior := lastTurns(in.PriorTurns, 3); len(prior) > 0 {
		var joined strings.Builder
		for _, t := range prior {
			joined.WriteString(t.Text)
			joined.WriteString(" ")
		}
		retention = 100 * overlapRatio(tokenSet(joined.String()), responseTokens)
	}

	personalization := 40.0
	if containsAny(lower, personalizationPhrases) {
		personalization = 100
	}

	// Continuity: does the current theme appear anywhere in the prior turns?
	continuity := 50.0
	if len(in.PriorTurns) > 0 {
		continuity = 40
		theme := in.Features.Theme.Label
		for _, t := range in.PriorTurns {
			if themeOf(t.Text) == theme {
				continuity = 100
				break
			}
		}
	}

	value := clamp100(retention*ctxWeightRetention +
		personalization*ctxWeightPersonalization +
		continuity*ctxWeightContinuity)

	return SubScore{
		Value: value,
		Evidence: map[string]float64{
			"retention":       retention,
			"personalization": personalization,
			"continuity":      continuity,
		},
	}
}

func lastTurns(turns []features.Turn, n int) []features.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func themeOf(text string) string {
	return features.Extract(features.Input{UserText: text}).Theme.Label
}
