package reflection

// threshold is the floor under which a dimension emits a directive.
type threshold struct {
	floor    float64
	priority Priority
	action   string
}

var thresholds = map[Dimension]threshold{
	DimContextual: {70, PriorityCritical, "réinjecter les éléments des tours précédents dans la réponse"},
	DimSemantic:   {75, PriorityHigh, "recentrer la réponse sur les termes de la demande"},
	DimIntent:     {75, PriorityHigh, "couvrir les champs attendus pour l'intention détectée"},
	DimTonal:      {80, PriorityHigh, "aligner le ton sur l'émotion dominante"},
	DimTemporal:   {70, PriorityMedium, "ancrer la réponse dans le moment de la journée et l'urgence exprimée"},
}

// dimensionOrder fixes directive emission order for deterministic output.
var dimensionOrder = []Dimension{DimSemantic, DimContextual, DimTonal, DimTemporal, DimIntent}

// Directives derives the advisory auto-adjustments for every underperforming
// dimension of a score.
func Directives(s Score) []Directive {
	values := map[Dimension]float64{
		DimSemantic:   s.Semantic.Value,
		DimContextual: s.Contextual.Value,
		DimTonal:      s.Tonal.Value,
		DimTemporal:   s.Temporal.Value,
		DimIntent:     s.Intent.Value,
	}

	var out []Directive
	for _, dim := range dimensionOrder {
		th := thresholds[dim]
		if values[dim] < th.floor {
			out = append(out, Directive{
				Dimension: dim,
				Priority:  th.priority,
				Action:    th.action,
				Target:    th.floor,
				Current:   values[dim],
			})
		}
	}
	return out
}
