package emotion

import (
	"reflect"
	"testing"
)

func TestDetect_DominantLabels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Label
	}{
		{"stress with urgency context", "Je suis stressé, aide-moi vite", LabelStress},
		{"joy", "C'était parfait, je suis ravie, merci !", LabelJoy},
		{"sadness", "Je suis très déçu, le dîner a été annulé", LabelSadness},
		{"excitement", "J'ai trop hâte de découvrir ce restaurant, incroyable !", LabelExcited},
		{"hesitation", "Euh, je ne sais pas trop, peut-être", LabelHesitant},
		{"curiosity", "Comment choisissez-vous vos adresses ? Je suis curieux", LabelCurious},
		{"urgency", "C'est urgent, il me faut une table immédiatement", LabelUrgent},
		{"no match falls back to neutral", "Bonjour", LabelNeutral},
		{"empty text", "", LabelNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)
			if got.Dominant != tt.want {
				t.Errorf("Detect(%q).Dominant = %s, want %s", tt.text, got.Dominant, tt.want)
			}
		})
	}
}

func TestDetect_StressScenario(t *testing.T) {
	got := Detect("Je suis stressé, aide-moi vite")

	if got.Dominant != LabelStress {
		t.Fatalf("expected stress, got %s", got.Dominant)
	}
	if intensityRank[got.Intensity] < intensityRank[IntensityMedium] {
		t.Errorf("expected intensity >= medium, got %s", got.Intensity)
	}
	if got.Confidence <= 0 || got.Confidence > 1 {
		t.Errorf("confidence out of range: %f", got.Confidence)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	text := "Je suis vraiment stressée par ce dîner, vite !"
	first := Detect(text)
	for i := 0; i < 5; i++ {
		if got := Detect(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestDetect_ConfidenceBounded(t *testing.T) {
	// Heavy repetition should saturate, not overflow.
	text := "urgent urgent urgent urgent urgent vite vite vite !!!!"
	got := Detect(text)
	if got.Confidence > 1.0 {
		t.Errorf("confidence exceeds 1.0: %f", got.Confidence)
	}
	if got.Dominant != LabelUrgent {
		t.Errorf("expected urgence, got %s", got.Dominant)
	}
}

func TestDetectIntensity_Tiers(t *testing.T) {
	tests := []struct {
		name string
		text string
		raw  float64
		want Intensity
	}{
		{"no signal", "bonjour", 0, IntensityLow},
		{"medium word", "c'est assez important", 0, IntensityMedium},
		{"high word", "vraiment important", 0, IntensityHigh},
		{"intense word", "extrêmement important", 0, IntensityIntense},
		{"strong raw match promotes to medium", "stressé aide vite", 4, IntensityMedium},
		{"elongation promotes to high", "c'est troooop bon", 2, IntensityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectIntensity(tt.text, tt.raw)
			if got != tt.want {
				t.Errorf("detectIntensity(%q, %f) = %s, want %s", tt.text, tt.raw, got, tt.want)
			}
		})
	}
}
