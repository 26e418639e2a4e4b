package orchestrator

import (
	"sync"
	"time"
)

// The eight rolling metrics tracked against fixed targets.
const (
	MetricSuccessRate   = "success_rate"
	MetricIntelligence  = "intelligence_score"
	MetricEmotionalIQ   = "emotional_intelligence"
	MetricContext       = "context_understanding"
	MetricPrecision     = "precision"
	MetricMemory        = "memory_conversationnelle"
	MetricResponseTime  = "response_time_ms"
	MetricToneCoherence = "tone_coherence"
)

var metricOrder = []string{
	MetricSuccessRate, MetricIntelligence, MetricEmotionalIQ, MetricContext,
	MetricPrecision, MetricMemory, MetricResponseTime, MetricToneCoherence,
}

// targets are the fixed goals each metric converges toward. response_time_ms
// is lower-is-better; everything else is a 0–100 scale aiming at 100.
var targets = map[string]float64{
	MetricSuccessRate:   100,
	MetricIntelligence:  100,
	MetricEmotionalIQ:   100,
	MetricContext:       100,
	MetricPrecision:     100,
	MetricMemory:        100,
	MetricResponseTime:  1200,
	MetricToneCoherence: 100,
}

var lowerIsBetter = map[string]bool{
	MetricResponseTime: true,
}

const maxSnapshots = 100

// PerformanceSnapshot is a timestamped copy of all metric values.
type PerformanceSnapshot struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Observation is one conversation's contribution to the rolling metrics.
type Observation struct {
	Values       map[string]float64
	Intent       string
	IntentConf   float64
	Overall      float64
	Satisfaction float64
}

type IntentStat struct {
	Samples       int
	DetectionConf float64 // running average
	AvgOverall    float64
	Satisfaction  float64
}

// Metrics holds the rolling metric values and the bounded snapshot history.
// Every value is an exponential moving average: new = (old + sample) / 2.
type Metrics struct {
	mu      sync.Mutex
	values  map[string]float64
	history []PerformanceSnapshot
	intents map[string]*IntentStat
	now     func() time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		values:  make(map[string]float64),
		intents: make(map[string]*IntentStat),
		now:     time.Now,
	}
}

// Observe folds one conversation's samples into the rolling averages and
// appends a snapshot to the history.
func (m *Metrics) Observe(obs Observation) PerformanceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, sample := range obs.Values {
		if _, known := targets[name]; !known {
			continue
		}
		old, seen := m.values[name]
		if !seen {
			m.values[name] = sample
			continue
		}
		m.values[name] = (old + sample) / 2
	}

	if obs.Intent != "" {
		st, ok := m.intents[obs.Intent]
		if !ok {
			st = &IntentStat{}
			m.intents[obs.Intent] = st
		}
		n := float64(st.Samples)
		st.DetectionConf = (st.DetectionConf*n + obs.IntentConf) / (n + 1)
		st.AvgOverall = (st.AvgOverall*n + obs.Overall) / (n + 1)
		st.Satisfaction = (st.Satisfaction*n + obs.Satisfaction) / (n + 1)
		st.Samples++
	}

	snap := PerformanceSnapshot{Timestamp: m.now(), Values: copyValues(m.values)}
	m.history = append(m.history, snap)
	if len(m.history) > maxSnapshots {
		m.history = m.history[len(m.history)-maxSnapshots:]
	}
	return snap
}

// Values returns a copy of the current metric values.
func (m *Metrics) Values() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyValues(m.values)
}

// History returns a copy of the most recent n snapshots, oldest first.
func (m *Metrics) History(n int) []PerformanceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := 0
	if n > 0 && len(m.history) > n {
		start = len(m.history) - n
	}
	out := make([]PerformanceSnapshot, 0, len(m.history)-start)
	for _, snap := range m.history[start:] {
		out = append(out, PerformanceSnapshot{Timestamp: snap.Timestamp, Values: copyValues(snap.Values)})
	}
	return out
}

// IntentStats returns a copy of the per-intent performance aggregates.
func (m *Metrics) IntentStats() map[string]IntentStat {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]IntentStat, len(m.intents))
	for intent, st := range m.intents {
		out[intent] = *st
	}
	return out
}

func copyValues(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
