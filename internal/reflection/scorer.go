package reflection

import "strings"

// Evaluate runs the five sub-scorers and aggregates them with the fixed
// overall weights.
func Evaluate(in Input) Score {
	s := Score{
		Semantic:   scoreSemantic(in),
		Contextual: scoreContextual(in),
		Tonal:      scoreTonal(in),
		Temporal:   scoreTemporal(in),
		Intent:     scoreIntent(in),
	}
	s.Overall = Overall(s)
	return s
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', '.', ';', ':', '!', '?', '(', ')', '\'', '"':
			return true
		}
		return false
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 { // drop stop-word-sized tokens
			out = append(out, f)
		}
	}
	return out
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(text) {
		set[tok] = true
	}
	return set
}

// overlapRatio is the share of a's tokens that also appear in b.
func overlapRatio(a, b map[string]bool) float64 {
	if len(a) == 0 {
		return 0
	}
	shared := 0
	for tok := range a {
		if b[tok] {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func countAny(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
