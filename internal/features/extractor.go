package features

import (
	"strings"

	"github.com/velours-studio/reflet/internal/emotion"
)

// Extract derives all tagged features for one exchange. Pure function of its
// input: no side effects, never fails. Unmatched input degrades to the
// general/général defaults rather than erroring.
func Extract(in Input) Features {
	lower := strings.ToLower(in.UserText)

	return Features{
		Emotion: emotion.Detect(in.UserText),
		Intent:  classifyIntent(lower),
		Theme:   classifyTheme(lower),
		Signals: deriveSignals(lower),
	}
}

func classifyIntent(lower string) IntentAssessment {
	best := IntentAssessment{Label: IntentGeneral, Confidence: 0.3}
	bestHits := 0
	for _, label := range intentOrder {
		hits := 0
		for _, kw := range intentKeywords[label] {
			hits += strings.Count(lower, kw)
		}
		if hits > bestHits {
			bestHits = hits
			conf := 0.5 + 0.15*float64(hits)
			if conf > 0.95 {
				conf = 0.95
			}
			best = IntentAssessment{Label: label, Confidence: conf}
		}
	}
	return best
}

func classifyTheme(lower string) ThemeClassification {
	scores := make(map[string]float64, len(themeOrder))
	total := 0.0
	for _, label := range themeOrder {
		hits := 0.0
		for _, kw := range themeKeywords[label] {
			hits += float64(strings.Count(lower, kw))
		}
		if hits > 0 {
			scores[label] = hits
			total += hits
		}
	}

	if total == 0 {
		return ThemeClassification{Label: ThemeGeneral, Scores: map[string]float64{ThemeGeneral: 1}}
	}

	bestLabel := ThemeGeneral
	bestScore := 0.0
	for _, label := range themeOrder {
		if scores[label] > bestScore {
			bestScore = scores[label]
			bestLabel = label
		}
		if s, ok := scores[label]; ok {
			scores[label] = s / total
		}
	}
	return ThemeClassification{Label: bestLabel, Scores: scores}
}

func deriveSignals(lower string) Signals {
	words := strings.Fields(lower)
	wc := len(words)

	hits := 0
	for _, m := range specificityMarkers {
		hits += strings.Count(lower, m)
	}

	var specificity float64
	if wc > 0 {
		specificity = float64(hits) / float64(wc)
	}

	return Signals{
		WordCount:   wc,
		HasQuestion: strings.Contains(lower, "?"),
		Clear:       wc >= 3 && wc <= 60,
		Structured:  strings.Contains(lower, ",") || strings.Contains(lower, " et ") || strings.Contains(lower, " puis "),
		Specificity: specificity,
	}
}
