package emotion

import "strings"

// Strategy describes how a response should be adapted for a dominant emotion:
// target tone, style descriptor, vocabulary substitutions and the structural
// template to favour.
type Strategy struct {
	TargetTone string            `json:"target_tone"`
	Style      string            `json:"style"`
	Vocabulary map[string]string `json:"vocabulary,omitempty"`
	Template   string            `json:"template"`
}

var strategies = map[Label]Strategy{
	LabelJoy: {
		TargetTone: "enthousiaste",
		Style:      "chaleureux",
		Vocabulary: map[string]string{"d'accord": "avec grand plaisir", "bien": "parfaitement"},
		Template:   "celebration",
	},
	LabelStress: {
		TargetTone: "apaisant",
		Style:      "rassurant",
		Vocabulary: map[string]string{"problème": "point à régler", "compliqué": "tout à fait gérable"},
		Template:   "etapes_simples",
	},
	LabelSadness: {
		TargetTone: "bienveillant",
		Style:      "empathique",
		Vocabulary: map[string]string{"malheureusement": "je comprends, et"},
		Template:   "soutien",
	},
	LabelExcited: {
		TargetTone: "dynamique",
		Style:      "complice",
		Vocabulary: map[string]string{"bien": "absolument génial"},
		Template:   "montee_en_puissance",
	},
	LabelHesitant: {
		TargetTone: "pédagogue",
		Style:      "structurant",
		Vocabulary: map[string]string{"choisir": "comparer sereinement"},
		Template:   "options_comparees",
	},
	LabelCurious: {
		TargetTone: "informatif",
		Style:      "narratif",
		Vocabulary: map[string]string{"voici": "laissez-moi vous raconter"},
		Template:   "anecdote",
	},
	LabelUrgent: {
		TargetTone: "direct",
		Style:      "efficace",
		Vocabulary: map[string]string{"nous pourrions": "je vous propose immédiatement"},
		Template:   "action_immediate",
	},
	LabelNeutral: {
		TargetTone: "professionnel",
		Style:      "équilibré",
		Template:   "standard",
	},
}

// StrategyFor returns the adaptation strategy for a label. Unknown labels get
// the neutral strategy.
func StrategyFor(label Label) Strategy {
	if s, ok := strategies[label]; ok {
		return s
	}
	return strategies[LabelNeutral]
}

// Apply rewrites a candidate response according to the strategy's vocabulary
// substitutions. Applying it twice yields the same text as applying it once:
// a substitution is skipped when the replacement is already present.
func (s Strategy) Apply(text string) string {
	out := text
	for from, to := range s.Vocabulary {
		if strings.Contains(out, to) {
			continue
		}
		out = strings.ReplaceAll(out, from, to)
	}
	return out
}
