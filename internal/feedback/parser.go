package feedback

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var explicitRatingRe = regexp.MustCompile(`([1-5])\s*/\s*5`)

// textualRatings maps rating words to a 1–5 value. Checked in order so the
// strongest phrasing wins over a substring.
var textualRatings = []struct {
	Words []string
	Value int
}{
	{[]string{"excellent", "parfait", "incroyable", "exceptionnel"}, 5},
	{[]string{"très bien", "très bon", "super", "génial"}, 4},
	{[]string{"décevant", "bof", "moyen", "sans plus"}, 2},
	{[]string{"horrible", "nul", "très mauvais", "catastrophique"}, 1},
	{[]string{"bien", "bon", "correct"}, 3},
}

// ExtractRating finds a rating in order of reliability: explicit "N/5", then
// star emoji count, then textual rating words. Returns nil when nothing
// matches.
func ExtractRating(text string) *Rating {
	if m := explicitRatingRe.FindStringSubmatch(text); m != nil {
		v, _ := strconv.Atoi(m[1])
		return &Rating{Value: v, Method: "explicit"}
	}

	stars := strings.Count(text, "⭐") + strings.Count(text, "★")
	if stars > 0 {
		if stars > 5 {
			stars = 5
		}
		return &Rating{Value: stars, Method: "emoji"}
	}

	lower := strings.ToLower(text)
	for _, tier := range textualRatings {
		for _, w := range tier.Words {
			if strings.Contains(lower, w) {
				return &Rating{Value: tier.Value, Method: "textual"}
			}
		}
	}
	return nil
}

var positiveWords = []string{
	"merci", "excellent", "parfait", "super", "génial", "adoré", "ravi",
	"ravie", "top", "bravo", "très bien", "très bon", "j'aime",
}

var negativeWords = []string{
	"déçu", "déçue", "décevant", "nul", "mauvais", "horrible", "lent",
	"trop long", "pas aimé", "dommage", "problème", "raté",
}

// ExtractSentiment tallies positive and negative keywords.
func ExtractSentiment(text string) Sentiment {
	lower := strings.ToLower(text)

	pos, neg := 0, 0
	for _, w := range positiveWords {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(lower, w)
	}

	switch {
	case pos == 0 && neg == 0:
		return Sentiment{Label: "neutral", Confidence: 0.5}
	case pos > neg:
		return Sentiment{Label: "positive", Confidence: ratio(pos, neg)}
	case neg > pos:
		return Sentiment{Label: "negative", Confidence: ratio(neg, pos)}
	default:
		return Sentiment{Label: "neutral", Confidence: 0.5}
	}
}

func ratio(major, minor int) float64 {
	return 0.5 + 0.5*float64(major-minor)/float64(major+minor)
}

var tonePhrases = map[string][]string{
	"plus_chaleureux": {"plus chaleureux", "plus humain", "moins froid"},
	"plus_direct":     {"plus direct", "droit au but", "moins de blabla"},
	"plus_formel":     {"plus formel", "plus professionnel"},
	"plus_leger":      {"plus décontracté", "plus léger", "moins formel"},
}

var stylePhrases = map[string][]string{
	"plus_court":  {"plus court", "trop long", "plus concis"},
	"plus_detail": {"plus de détails", "plus détaillé", "plus précis"},
	"moins_emoji": {"moins d'emoji", "trop d'emoji", "sans emoji"},
	"plus_struct": {"des listes", "plus structuré", "par étapes"},
}

var contentPhrases = map[string][]string{
	"moins_cher": {"moins cher", "trop cher", "budget"},
	"vegetarien": {"végétarien", "végétarienne", "vegan"},
	"plus_choix": {"plus de choix", "plus d'options", "d'autres idées"},
	"plus_local": {"plus local", "moins touristique", "authentique"},
}

// ExtractPreferences pulls tone/style/content tags out of free text.
func ExtractPreferences(text string) Preferences {
	lower := strings.ToLower(text)
	return Preferences{
		Tone:    matchTags(lower, tonePhrases),
		Style:   matchTags(lower, stylePhrases),
		Content: matchTags(lower, contentPhrases),
	}
}

func matchTags(lower string, families map[string][]string) []string {
	var tags []string
	for tag, phrases := range families {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

var suggestionMarkers = []string{
	"vous devriez", "il faudrait", "ce serait bien", "pourquoi pas",
	"j'aimerais", "pensez à", "une idée :",
}

// ExtractSuggestions returns the sentences that carry a suggestion marker.
func ExtractSuggestions(text string) []string {
	var out []string
	for _, sentence := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '\n'
	}) {
		trimmed := strings.TrimSpace(sentence)
		lower := strings.ToLower(trimmed)
		for _, m := range suggestionMarkers {
			if strings.Contains(lower, m) {
				out = append(out, trimmed)
				break
			}
		}
	}
	return out
}
