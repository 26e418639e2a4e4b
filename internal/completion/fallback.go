package completion

import "github.com/velours-studio/reflet/internal/features"

// Deterministic fallback texts, keyed by intent. Used whenever the completion
// service is unreachable so a conversation always gets a response.
var fallbacks = map[string]string{
	features.IntentReservation:    "Je prends note de votre demande de réservation et je reviens vers vous avec une confirmation dans les plus brefs délais.",
	features.IntentRecommandation: "Je vous prépare une sélection d'adresses qui devraient vous plaire, un instant.",
	features.IntentInformation:    "Je rassemble ces informations pour vous et je vous les transmets tout de suite.",
	features.IntentPlanification:  "Je m'occupe d'organiser cela pour vous et je vous propose un programme très vite.",
	features.IntentModification:   "C'est noté, je procède à la modification et je vous confirme dès que c'est fait.",
	features.IntentAssistance:     "Je suis là pour vous aider, je m'en occupe immédiatement.",
}

const defaultFallback = "Merci pour votre message, je m'en occupe et je reviens vers vous rapidement."

// Fallback returns the canned response for an intent. Pure and deterministic.
func Fallback(intent string) string {
	if text, ok := fallbacks[intent]; ok {
		return text
	}
	return defaultFallback
}
