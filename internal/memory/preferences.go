package memory

import (
	"sort"
	"strings"
)

// Inference of style and content preferences by re-scanning the assistant
// response the user engaged with.

var cuisineWords = []string{
	"italien", "japonais", "français", "libanais", "mexicain", "indien",
	"végétarien", "fruits de mer", "gastronomique", "bistrot",
}

var activityWords = []string{
	"concert", "exposition", "spa", "randonnée", "dégustation", "croisière",
	"atelier", "spectacle",
}

var formalMarkers = []string{"vous ", "permettez-moi", "je vous prie", "cordialement"}
var casualMarkers = []string{"tu ", "salut", "cool", "top !"}

var emojiMarkers = []string{"✨", "🍽", "⭐", "🎉", "😊", "👍", "📍"}

// inferStyle buckets the response the exchange was built around.
func inferStyle(assistantText string) StylePreferences {
	lower := strings.ToLower(assistantText)
	words := len(strings.Fields(assistantText))

	length := "moyen"
	switch {
	case words < 40:
		length = "court"
	case words > 120:
		length = "long"
	}

	detail := "synthétique"
	if words > 80 || strings.Contains(lower, "en détail") {
		detail = "détaillé"
	}

	emoji := false
	for _, e := range emojiMarkers {
		if strings.Contains(assistantText, e) {
			emoji = true
			break
		}
	}

	formality := "formel"
	if countHits(lower, casualMarkers) > countHits(lower, formalMarkers) {
		formality = "décontracté"
	}

	return StylePreferences{Length: length, Detail: detail, Emoji: emoji, Formality: formality}
}

// inferContent extracts cuisine/price/activity tags from the response.
func inferContent(assistantText string) ContentPreferences {
	lower := strings.ToLower(assistantText)

	var cuisines []string
	for _, w := range cuisineWords {
		if strings.Contains(lower, w) {
			cuisines = append(cuisines, w)
		}
	}

	var activities []string
	for _, w := range activityWords {
		if strings.Contains(lower, w) {
			activities = append(activities, w)
		}
	}

	band := ""
	switch {
	case containsOne(lower, "étoilé", "prestige", "premium", "gastronomique"):
		band = "premium"
	case containsOne(lower, "abordable", "bon marché", "petit prix", "économique"):
		band = "économique"
	case containsOne(lower, "€", "prix", "tarif"):
		band = "modéré"
	}

	return ContentPreferences{Cuisines: cuisines, PriceBand: band, Activities: activities}
}

// mergeStyle replaces scalar tiers with the fresh inference.
func mergeStyle(current, inferred StylePreferences) StylePreferences {
	return inferred
}

// mergeContent unions categorical sets and replaces the price band when the
// inference found one.
func mergeContent(current, inferred ContentPreferences) ContentPreferences {
	out := ContentPreferences{
		Cuisines:   unionSorted(current.Cuisines, inferred.Cuisines),
		Activities: unionSorted(current.Activities, inferred.Activities),
		PriceBand:  current.PriceBand,
	}
	if inferred.PriceBand != "" {
		out.PriceBand = inferred.PriceBand
	}
	return out
}

func unionSorted(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func countHits(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(lower, w)
	}
	return n
}

func containsOne(lower string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
