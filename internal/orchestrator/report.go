package orchestrator

import "time"

const reportHistorySize = 20

// Trend classifications for the performance report.
const (
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"
)

// Recommendation flags a metric running under 90% of its target.
type Recommendation struct {
	Metric   string  `json:"metric"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`
	Priority string  `json:"priority"`
	Action   string  `json:"action"`
}

// PerformanceReport is the reporting-boundary payload: current metrics,
// recent history, trend classification, and prioritized recommendations.
type PerformanceReport struct {
	GeneratedAt     time.Time             `json:"generated_at"`
	Metrics         map[string]float64    `json:"metrics"`
	Targets         map[string]float64    `json:"targets"`
	History         []PerformanceSnapshot `json:"history"`
	Trend           string                `json:"trend"`
	Recommendations []Recommendation      `json:"recommendations,omitempty"`
}

var recommendedActions = map[string]string{
	MetricSuccessRate:   "Revoir les seuils de score et les tables de mots-clés des dimensions faibles",
	MetricIntelligence:  "Enrichir les tables d'intentions et de thèmes avec le vocabulaire récent",
	MetricEmotionalIQ:   "Étendre le catalogue émotionnel et ses intensificateurs",
	MetricContext:       "Renforcer la reprise des tours précédents dans les réponses",
	MetricPrecision:     "Compléter les champs requis par intention dans les réponses",
	MetricMemory:        "Encourager le feedback explicite pour densifier les profils",
	MetricResponseTime:  "Réduire le délai du service de complétion ou abaisser son timeout",
	MetricToneCoherence: "Aligner le ton des réponses sur la stratégie d'adaptation émise",
}

// GeneratePerformanceReport builds the report from the current rolling
// metrics and the bounded snapshot history.
func (o *Orchestrator) GeneratePerformanceReport() PerformanceReport {
	values := o.metrics.Values()
	history := o.metrics.History(reportHistorySize)

	report := PerformanceReport{
		GeneratedAt: o.now(),
		Metrics:     values,
		Targets:     copyValues(targets),
		History:     history,
		Trend:       classifyTrend(history),
	}

	for _, name := range metricOrder {
		current, ok := values[name]
		if !ok {
			continue
		}
		target := targets[name]
		if !underTarget(name, current, target) {
			continue
		}
		report.Recommendations = append(report.Recommendations, Recommendation{
			Metric:   name,
			Current:  current,
			Target:   target,
			Priority: recommendationPriority(name, current, target),
			Action:   recommendedActions[name],
		})
	}
	return report
}

// underTarget reports whether a metric misses 90% of its target. For
// lower-is-better metrics the bound inverts: flagged above 110% of target.
func underTarget(name string, current, target float64) bool {
	if lowerIsBetter[name] {
		return current > target*1.1
	}
	return current < target*0.9
}

func recommendationPriority(name string, current, target float64) string {
	if lowerIsBetter[name] {
		if current > target*1.5 {
			return "high"
		}
		return "medium"
	}
	if current < target*0.7 {
		return "high"
	}
	return "medium"
}

// classifyTrend compares the older and newer halves of the success_rate
// history.
func classifyTrend(history []PerformanceSnapshot) string {
	if len(history) < minVarianceWindow {
		return TrendInsufficient
	}

	mid := len(history) / 2
	older := meanOf(history[:mid], MetricSuccessRate)
	newer := meanOf(history[mid:], MetricSuccessRate)

	switch {
	case newer > older+2:
		return TrendImproving
	case newer < older-2:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanOf(history []PerformanceSnapshot, metric string) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, snap := range history {
		sum += snap.Values[metric]
	}
	return sum / float64(len(history))
}

// StatusSummary is the lightweight status payload for the API layer.
type StatusSummary struct {
	Conversations int                `json:"conversations_tracked"`
	Metrics       map[string]float64 `json:"metrics"`
	LastDiag      time.Time          `json:"last_diagnostics,omitzero"`
	Multipliers   map[string]float64 `json:"intent_multipliers,omitempty"`
}

// Status returns a snapshot of the orchestrator's observable state.
func (o *Orchestrator) Status() StatusSummary {
	o.mu.Lock()
	mult := copyValues(o.multipliers)
	lastDiag := o.lastDiag
	tracked := len(o.recent)
	o.mu.Unlock()

	return StatusSummary{
		Conversations: tracked,
		Metrics:       o.metrics.Values(),
		LastDiag:      lastDiag,
		Multipliers:   mult,
	}
}
