package features

// Closed intent set. IntentGeneral is the default when no family matches.
const (
	IntentReservation    = "reservation"
	IntentRecommandation = "recommandation"
	IntentInformation    = "information"
	IntentPlanification  = "planification"
	IntentModification   = "modification"
	IntentAssistance     = "assistance"
	IntentGeneral        = "general"
)

// intentOrder fixes the tie-break: first family in this order wins.
var intentOrder = []string{
	IntentReservation, IntentRecommandation, IntentInformation,
	IntentPlanification, IntentModification, IntentAssistance,
}

var intentKeywords = map[string][]string{
	IntentReservation:    {"réserver", "réservation", "une table", "book", "disponibilité", "réserve"},
	IntentRecommandation: {"conseille", "recommande", "suggère", "suggestion", "que me proposez", "une idée", "meilleur"},
	IntentInformation:    {"horaires", "adresse", "prix", "combien", "où se trouve", "c'est quoi", "quel est"},
	IntentPlanification:  {"organiser", "planifier", "programme", "itinéraire", "week-end", "séjour", "soirée"},
	IntentModification:   {"modifier", "changer", "annuler", "déplacer", "reporter"},
	IntentAssistance:     {"aide", "aidez", "besoin de", "comment faire", "problème", "je n'arrive pas"},
}

// Closed theme set. ThemeGeneral is the default.
const (
	ThemeGastronomie = "gastronomie"
	ThemeEvenement   = "événement"
	ThemeVoyage      = "voyage"
	ThemeBienEtre    = "bien-être"
	ThemeCulture     = "culture"
	ThemeGeneral     = "général"
)

var themeOrder = []string{
	ThemeGastronomie, ThemeEvenement, ThemeVoyage, ThemeBienEtre, ThemeCulture,
}

var themeKeywords = map[string][]string{
	ThemeGastronomie: {"restaurant", "dîner", "déjeuner", "menu", "chef", "cuisine", "gastronomique", "bistrot", "table", "dégustation", "vin"},
	ThemeEvenement:   {"concert", "événement", "spectacle", "festival", "soirée", "anniversaire", "exposition", "vernissage", "billet"},
	ThemeVoyage:      {"voyage", "hôtel", "vol", "séjour", "week-end", "destination", "escapade", "valise"},
	ThemeBienEtre:    {"spa", "massage", "détente", "yoga", "bien-être", "relaxation", "soin"},
	ThemeCulture:     {"musée", "théâtre", "livre", "galerie", "opéra", "cinéma", "patrimoine"},
}

// Specificity markers: named-entity-like hits (places, times, amounts) that
// make a request precise.
var specificityMarkers = []string{
	"€", "euros", "heures", "h30", "personnes", "demain", "ce soir", "samedi",
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi",
	"paris", "lyon", "bordeaux", "marseille", "midi", "janvier", "février",
	"mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre",
	"novembre", "décembre",
}
