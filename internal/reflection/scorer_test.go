package reflection

import (
	"math"
	"testing"
	"time"

	"github.com/velours-studio/reflet/internal/features"
)

func scoringInput(userText, assistantText string, hour int) Input {
	return Input{
		UserText:      userText,
		AssistantText: assistantText,
		Features:      features.Extract(features.Input{UserText: userText, AssistantText: assistantText}),
		HourOfDay:     hour,
		Now:           time.Date(2026, time.June, 15, 19, 0, 0, 0, time.UTC),
	}
}

func TestEvaluate_OverallIsWeightedSum(t *testing.T) {
	inputs := []Input{
		scoringInput("Je voudrais réserver une table pour deux ce soir", "Avec plaisir, je vous propose une table chez Hélène à 20h30, confirmation pour 2 personnes.", 19),
		scoringInput("Je suis stressé, aide-moi vite", "Bien sûr.", 10),
		scoringInput("", "", 0),
	}

	for _, in := range inputs {
		s := Evaluate(in)
		want := s.Semantic.Value*0.25 + s.Contextual.Value*0.25 +
			s.Tonal.Value*0.20 + s.Temporal.Value*0.15 + s.Intent.Value*0.15
		if math.Abs(s.Overall-want) > 1e-9 {
			t.Errorf("overall = %f, want weighted sum %f", s.Overall, want)
		}
		if math.Abs(s.Overall-Overall(s)) > 1e-9 {
			t.Errorf("Overall(s) does not recompute the stored overall")
		}
	}
}

func TestEvaluate_SubScoresInRange(t *testing.T) {
	s := Evaluate(scoringInput(
		"Un restaurant gastronomique pour samedi soir, budget 80€ par personne ?",
		"Je vous propose Le Clarence, rue du quartier des Champs : menu dégustation à 95€, table à 20h00 pour 2 personnes, confirmation immédiate.\n- Option 1 : Le Clarence\n- Option 2 : Substance",
		20,
	))

	for name, v := range map[string]float64{
		"semantic":   s.Semantic.Value,
		"contextual": s.Contextual.Value,
		"tonal":      s.Tonal.Value,
		"temporal":   s.Temporal.Value,
		"intent":     s.Intent.Value,
		"overall":    s.Overall,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s out of range: %f", name, v)
		}
	}
}

func TestScoreTemporal_UrgencyEcho(t *testing.T) {
	// An urgent request must be echoed in the response.
	echoed := Evaluate(scoringInput(
		"Je suis stressé, aide-moi vite",
		"Je m'en occupe immédiatement, pas d'inquiétude.",
		10,
	))
	ignored := Evaluate(scoringInput(
		"Je suis stressé, aide-moi vite",
		"Voici quelques idées pour plus tard.",
		10,
	))

	if echoed.Temporal.Evidence["urgency"] != 100 {
		t.Errorf("echoed urgency = %f, want 100", echoed.Temporal.Evidence["urgency"])
	}
	if ignored.Temporal.Evidence["urgency"] != 20 {
		t.Errorf("ignored urgency = %f, want 20", ignored.Temporal.Evidence["urgency"])
	}
	if echoed.Temporal.Value <= ignored.Temporal.Value {
		t.Error("echoing urgency should raise the temporal score")
	}
}

func TestScoreTimeOfDay(t *testing.T) {
	tests := []struct {
		name string
		hour int
		text string
		want float64
	}{
		{"evening matches dîner", 20, "une table pour le dîner", 100},
		{"morning mismatch", 9, "une table pour le dîner", 30},
		{"no time reference is neutral", 9, "une excellente adresse", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreTimeOfDay(tt.hour, tt.text)
			if got != tt.want {
				t.Errorf("scoreTimeOfDay(%d, %q) = %f, want %f", tt.hour, tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreContextual_Retention(t *testing.T) {
	in := scoringInput("Et pour le dessert ?", "Pour votre dîner chez Hélène, je vous propose une table et leur soufflé.", 20)
	in.PriorTurns = []features.Turn{
		{Role: "user", Text: "Je cherche un dîner gastronomique"},
		{Role: "assistant", Text: "Je vous propose une table chez Hélène"},
	}
	with := scoreContextual(in)

	in.PriorTurns = nil
	without := scoreContextual(in)

	if with.Evidence["retention"] <= without.Evidence["retention"] {
		t.Errorf("retention with history (%f) should exceed the no-history neutral (%f)",
			with.Evidence["retention"], without.Evidence["retention"])
	}
}
