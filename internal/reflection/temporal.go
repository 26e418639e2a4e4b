package reflection

import (
	"strings"
	"time"

	"github.com/velours-studio/reflet/internal/emotion"
)

const (
	tmpWeightTimeOfDay = 0.40
	tmpWeightSeasonal  = 0.35
	tmpWeightUrgency   = 0.25
)

type dayPart struct {
	from, to int
	words    []string
}

var dayParts = []dayPart{
	{5, 11, []string{"matin", "petit-déjeuner", "brunch", "matinée"}},
	{11, 14, []string{"midi", "déjeuner"}},
	{14, 18, []string{"après-midi", "goûter"}},
	{18, 24, []string{"soir", "dîner", "soirée", "nocturne"}},
	{0, 5, []string{"nuit", "nocturne"}},
}

var seasonWords = map[time.Month][]string{
	time.December:  {"hiver", "fêtes", "chalet", "vin chaud"},
	time.January:   {"hiver", "nouvelle année"},
	time.February:  {"hiver", "saint-valentin"},
	time.March:     {"printemps", "terrasse"},
	time.April:     {"printemps", "terrasse"},
	time.May:       {"printemps", "terrasse", "plein air"},
	time.June:      {"été", "terrasse", "plein air", "rooftop"},
	time.July:      {"été", "terrasse", "rooftop", "bord de mer"},
	time.August:    {"été", "terrasse", "rooftop", "bord de mer"},
	time.September: {"rentrée", "vendanges"},
	time.October:   {"automne", "vendanges"},
	time.November:  {"automne", "cocooning"},
}

var urgencyWords = []string{"urgent", "vite", "tout de suite", "immédiatement", "rapidement", "sans attendre", "dès maintenant"}

func scoreTimeOfDay(hour int, lower string) float64 {
	var expected []string
	for _, p := range dayParts {
		if hour >= p.from && hour < p.to {
			expected = p.words
			break
		}
	}
	if containsAny(lower, expected) {
		return 100
	}
	// Referencing another day part is worse than referencing none.
	for _, p := range dayParts {
		if containsAny(lower, p.words) {
			return 30
		}
	}
	return 60
}

func scoreTemporal(in Input) SubScore {
	lower := strings.ToLower(in.AssistantText)
	userLower := strings.ToLower(in.UserText)

	timeOfDay := scoreTimeOfDay(in.HourOfDay, lower)

	seasonal := 60.0
	if words, ok := seasonWords[in.Now.Month()]; ok && containsAny(lower, words) {
		seasonal = 100
	}

	// Urgency echo: if the request is urgent, the response must acknowledge it.
	urgency := 70.0
	userUrgent := in.Features.Emotion.Dominant == emotion.LabelUrgent ||
		in.Features.Emotion.Dominant == emotion.LabelStress ||
		containsAny(userLower, urgencyWords)
	if userUrgent {
		if containsAny(lower, urgencyWords) {
			urgency = 100
		} else {
			urgency = 20
		}
	}

	value := clamp100(timeOfDay*tmpWeightTimeOfDay +
		seasonal*tmpWeightSeasonal +
		urgency*tmpWeightUrgency)

	return SubScore{
		Value: value,
		Evidence: map[string]float64{
			"time_of_day": timeOfDay,
			"seasonal":    seasonal,
			"urgency":     urgency,
		},
	}
}
