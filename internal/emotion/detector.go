package emotion

import (
	"regexp"
	"sort"
	"strings"
)

// Assessment is the result of emotion detection for one user message.
// Derived purely from the text; identical input always yields an identical
// assessment.
type Assessment struct {
	Dominant   Label     `json:"dominant"`
	Confidence float64   `json:"confidence"`
	Intensity  Intensity `json:"intensity"`
	Evidence   []string  `json:"evidence,omitempty"`
}

// rawScoreCap is the raw score at which normalized confidence saturates at 1.0.
const rawScoreCap = 8.0

// Go's regexp (RE2) has no backreferences, so "same letter repeated 3+
// times" is spelled out as one x{3,} alternative per letter.
var elongationRe = regexp.MustCompile(`a{3,}|b{3,}|c{3,}|d{3,}|e{3,}|f{3,}|g{3,}|h{3,}|i{3,}|j{3,}|k{3,}|l{3,}|m{3,}|n{3,}|o{3,}|p{3,}|q{3,}|r{3,}|s{3,}|t{3,}|u{3,}|v{3,}|w{3,}|x{3,}|y{3,}|z{3,}|à{3,}|é{3,}|è{3,}|ê{3,}|ë{3,}|î{3,}|ï{3,}|ô{3,}|û{3,}|ù{3,}`)

// Detect scores every catalogue emotion against the text and returns the
// dominant one. An exact tie between the two best emotions, or no match at
// all, resolves to LabelNeutral.
func Detect(text string) Assessment {
	lower := strings.ToLower(text)

	type candidate struct {
		label    Label
		raw      float64
		evidence []string
	}

	var best, second candidate
	for _, label := range catalogueOrder {
		sp := catalogue[label]
		raw, evidence := rawScore(lower, sp)
		if raw > best.raw {
			second = best
			best = candidate{label, raw, evidence}
		} else if raw > second.raw {
			second = candidate{label, raw, evidence}
		}
	}

	if best.raw == 0 || best.raw == second.raw {
		return Assessment{Dominant: LabelNeutral, Confidence: 0.5, Intensity: IntensityLow}
	}

	norm := best.raw / rawScoreCap
	if norm > 1 {
		norm = 1
	}
	sort.Strings(best.evidence)

	return Assessment{
		Dominant:   best.label,
		Confidence: norm * catalogue[best.label].BaseConfidence,
		Intensity:  detectIntensity(lower, best.raw),
		Evidence:   best.evidence,
	}
}

func rawScore(lower string, sp entry) (float64, []string) {
	var raw float64
	var evidence []string

	kwHits := 0
	for _, kw := range sp.Keywords {
		if n := strings.Count(lower, kw); n > 0 {
			kwHits += n
			evidence = append(evidence, kw)
		}
	}
	raw += 2.0 * float64(kwHits)

	for _, w := range sp.Intensifiers {
		raw += 1.5 * float64(strings.Count(lower, w))
	}
	for _, w := range sp.ContextWords {
		if n := strings.Count(lower, w); n > 0 {
			raw += 1.0 * float64(n)
			evidence = append(evidence, w)
		}
	}

	// Pattern and punctuation amplify a matched emotion; they never create one.
	if kwHits > 0 {
		if elongationRe.MatchString(lower) {
			raw += 1.0
		}
		exclaims := strings.Count(lower, "!")
		if exclaims > 3 {
			exclaims = 3
		}
		raw += 0.5 * float64(exclaims)
	}

	return raw, evidence
}

// detectIntensity derives the tier from modifier words, repetition and the
// strength of the raw match.
func detectIntensity(lower string, raw float64) Intensity {
	tier := IntensityLow
	for _, t := range intensityTiers {
		for _, w := range t.Words {
			if strings.Contains(lower, w) {
				return promote(tier, t.Tier)
			}
		}
	}

	if elongationRe.MatchString(lower) || strings.Contains(lower, "!!!") {
		tier = promote(tier, IntensityHigh)
	}
	if raw >= 3 {
		tier = promote(tier, IntensityMedium)
	}
	return tier
}

var intensityRank = map[Intensity]int{
	IntensityLow:     0,
	IntensityMedium:  1,
	IntensityHigh:    2,
	IntensityIntense: 3,
}

func promote(current, proposed Intensity) Intensity {
	if intensityRank[proposed] > intensityRank[current] {
		return proposed
	}
	return current
}
