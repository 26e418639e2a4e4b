package reflection

import (
	"time"

	"github.com/velours-studio/reflet/internal/features"
)

// Dimension names the five quality axes.
type Dimension string

const (
	DimSemantic   Dimension = "semantic"
	DimContextual Dimension = "contextual"
	DimTonal      Dimension = "tonal"
	DimTemporal   Dimension = "temporal"
	DimIntent     Dimension = "intent"
)

// Weights of each dimension in the overall score. They sum to 1.
var overallWeights = map[Dimension]float64{
	DimSemantic:   0.25,
	DimContextual: 0.25,
	DimTonal:      0.20,
	DimTemporal:   0.15,
	DimIntent:     0.15,
}

// Input is everything one scoring pass needs. Scoring is a pure function of
// this value.
type Input struct {
	UserText      string
	AssistantText string
	Features      features.Features
	PriorTurns    []features.Turn
	HourOfDay     int
	Now           time.Time
}

// SubScore is one dimension's result with its evidence breakdown.
type SubScore struct {
	Value    float64            `json:"value"` // [0,100]
	Evidence map[string]float64 `json:"evidence,omitempty"`
}

// Score is the five-dimension assessment of one exchange.
type Score struct {
	Semantic   SubScore `json:"semantic"`
	Contextual SubScore `json:"contextual"`
	Tonal      SubScore `json:"tonal"`
	Temporal   SubScore `json:"temporal"`
	Intent     SubScore `json:"intent"`
	Overall    float64  `json:"overall"`
}

// Priority of an auto-adjustment directive.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Directive is an advisory instruction to improve a weak dimension in future
// responses. Emitted only; never applied automatically.
type Directive struct {
	Dimension Dimension `json:"dimension"`
	Priority  Priority  `json:"priority"`
	Action    string    `json:"action"`
	Target    float64   `json:"target"`
	Current   float64   `json:"current"`
}

// Overall recomputes the weighted sum from the five sub-scores. Score.Overall
// is always equal to this within floating-point tolerance.
func Overall(s Score) float64 {
	return s.Semantic.Value*overallWeights[DimSemantic] +
		s.Contextual.Value*overallWeights[DimContextual] +
		s.Tonal.Value*overallWeights[DimTonal] +
		s.Temporal.Value*overallWeights[DimTemporal] +
		s.Intent.Value*overallWeights[DimIntent]
}
