package memory

import (
	"math"
	"time"
)

// decayHalfLifeDays is the time constant of the exponential decay applied to
// interaction history.
const decayHalfLifeDays = 7.0

// DecayWeight is e^(-daysSince/7), the influence an interaction retains at
// time now.
func DecayWeight(ts, now time.Time) float64 {
	days := now.Sub(ts).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / decayHalfLifeDays)
}

// Consolidate recomputes context weights as decayed-frequency shares of the
// timestamped history, scaled by the per-emotion multiplier. Pure function of
// (history, now): running it twice with no new interactions yields identical
// weights, and the result always sums to the number of distinct themes.
func Consolidate(history []Interaction, now time.Time) map[string]float64 {
	return consolidateBy(history, now, func(it Interaction) string { return it.Theme })
}

// ConsolidateZones is Consolidate over the location hints carried by the
// history. Interactions without a zone contribute nothing.
func ConsolidateZones(history []Interaction, now time.Time) map[string]float64 {
	return consolidateBy(history, now, func(it Interaction) string { return it.Zone })
}

func consolidateBy(history []Interaction, now time.Time, key func(Interaction) string) map[string]float64 {
	contributions := make(map[string]float64)
	total := 0.0
	for _, it := range history {
		k := key(it)
		if k == "" {
			continue
		}
		c := DecayWeight(it.Timestamp, now) * emotionMultiplier(it.Emotion)
		contributions[k] += c
		total += c
	}

	weights := make(map[string]float64, len(contributions))
	if total == 0 {
		for k := range contributions {
			weights[k] = 1.0
		}
		return weights
	}

	count := float64(len(contributions))
	for k, c := range contributions {
		weights[k] = c / total * count
	}
	return weights
}

// personalizationScore is the unweighted mean of five [0,1] components.
func personalizationScore(p *Profile) float64 {
	interactions := clamp01(float64(len(p.RecentInteractions)) / 20.0)
	feedback := clamp01(float64(len(p.FeedbackHistory)) / 5.0)

	themes := make(map[string]bool)
	for _, it := range p.RecentInteractions {
		themes[it.Theme] = true
	}
	diversity := clamp01(float64(len(themes)) / 5.0)

	consistency := styleConsistency(p.RecentInteractions)

	specificity := clamp01((float64(len(p.Content.Cuisines)+len(p.Content.Activities)) + priceBandBit(p.Content.PriceBand)) / 5.0)

	return (interactions + feedback + diversity + consistency + specificity) / 5.0
}

// styleConsistency is the share of recent interactions carrying the modal
// intent: a user who always asks the same way is highly consistent.
func styleConsistency(history []Interaction) float64 {
	if len(history) == 0 {
		return 0
	}
	counts := make(map[string]int)
	max := 0
	for _, it := range history {
		counts[it.Intent]++
		if counts[it.Intent] > max {
			max = counts[it.Intent]
		}
	}
	return float64(max) / float64(len(history))
}

func priceBandBit(band string) float64 {
	if band == "" {
		return 0
	}
	return 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
