package emotion

// Label is a closed emotion label. Detection never produces a label outside
// this set; LabelNeutral is the deterministic fallback.
type Label string

const (
	LabelJoy      Label = "joie"
	LabelStress   Label = "stress"
	LabelSadness  Label = "tristesse"
	LabelExcited  Label = "excitation"
	LabelHesitant Label = "hésitation"
	LabelCurious  Label = "curiosité"
	LabelUrgent   Label = "urgence"
	LabelNeutral  Label = "neutre"
)

// Intensity tiers, ordered.
type Intensity string

const (
	IntensityLow     Intensity = "low"
	IntensityMedium  Intensity = "medium"
	IntensityHigh    Intensity = "high"
	IntensityIntense Intensity = "intense"
)

// entry describes one catalogue emotion: keyword families and the base
// confidence applied after normalization.
type entry struct {
	Keywords       []string
	Intensifiers   []string
	ContextWords   []string
	BaseConfidence float64
}

// catalogueOrder fixes iteration order so detection is deterministic.
var catalogueOrder = []Label{
	LabelJoy, LabelStress, LabelSadness, LabelExcited,
	LabelHesitant, LabelCurious, LabelUrgent,
}

var catalogue = map[Label]entry{
	LabelJoy: {
		Keywords:       []string{"content", "contente", "heureux", "heureuse", "ravi", "ravie", "génial", "super", "parfait", "parfaite", "excellent", "excellente", "merveilleux", "magnifique"},
		Intensifiers:   []string{"très", "vraiment", "tellement", "trop"},
		ContextWords:   []string{"merci", "fête", "célébrer", "anniversaire", "cadeau"},
		BaseConfidence: 0.9,
	},
	LabelStress: {
		Keywords:       []string{"stressé", "stressée", "stress", "débordé", "débordée", "inquiet", "inquiète", "angoissé", "angoissée", "pressé", "pressée", "paniqué", "paniquée"},
		Intensifiers:   []string{"très", "vraiment", "complètement", "totalement"},
		ContextWords:   []string{"vite", "retard", "travail", "réunion", "deadline", "aide"},
		BaseConfidence: 0.9,
	},
	LabelSadness: {
		Keywords:       []string{"triste", "déçu", "déçue", "dommage", "malheureusement", "déprimé", "déprimée", "seul", "seule"},
		Intensifiers:   []string{"très", "vraiment", "tellement", "profondément"},
		ContextWords:   []string{"annulé", "raté", "perdu", "fini"},
		BaseConfidence: 0.85,
	},
	LabelExcited: {
		Keywords:       []string{"hâte", "impatient", "impatiente", "excité", "excitée", "incroyable", "wow", "waouh", "enthousiaste"},
		Intensifiers:   []string{"trop", "tellement", "vraiment"},
		ContextWords:   []string{"bientôt", "première", "découverte", "surprise"},
		BaseConfidence: 0.85,
	},
	LabelHesitant: {
		Keywords:       []string{"peut-être", "hésite", "incertain", "incertaine", "bof", "mouais", "euh", "indécis", "indécise"},
		Intensifiers:   []string{"un peu", "assez", "plutôt"},
		ContextWords:   []string{"je ne sais pas", "sais pas", "aucune idée", "difficile de choisir"},
		BaseConfidence: 0.75,
	},
	LabelCurious: {
		Keywords:       []string{"curieux", "curieuse", "intéressant", "intéressante", "découvrir", "apprendre", "pourquoi", "comment"},
		Intensifiers:   []string{"vraiment", "très", "particulièrement"},
		ContextWords:   []string{"raconte", "explique", "détails", "en savoir plus"},
		BaseConfidence: 0.7,
	},
	LabelUrgent: {
		Keywords:       []string{"urgent", "urgence", "immédiatement", "rapidement", "asap", "dépêche", "maintenant"},
		Intensifiers:   []string{"très", "vraiment", "absolument"},
		ContextWords:   []string{"vite", "tout de suite", "dernière minute", "ce soir"},
		BaseConfidence: 0.9,
	},
}

// intensityTiers maps modifier words to the tier they promote to.
// Checked from strongest to weakest.
var intensityTiers = []struct {
	Tier  Intensity
	Words []string
}{
	{IntensityIntense, []string{"extrêmement", "totalement", "complètement", "absolument"}},
	{IntensityHigh, []string{"très", "vraiment", "tellement", "trop"}},
	{IntensityMedium, []string{"assez", "plutôt", "bien", "pas mal"}},
}
