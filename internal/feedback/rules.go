package feedback

// integrationRules maps a rating band to how the personalization layer should
// react. Rating 5 reinforces, 1 forces a full review.
var integrationRules = map[int]IntegrationRule{
	5: {Priority: "low", WeightFactor: 1.2, LearningMode: "reinforce", Adaptation: "maintenir l'approche actuelle"},
	4: {Priority: "low", WeightFactor: 1.1, LearningMode: "minor_tune", Adaptation: "ajustements légers de ton"},
	3: {Priority: "medium", WeightFactor: 1.0, LearningMode: "tone_precision_review", Adaptation: "revoir ton et précision"},
	2: {Priority: "high", WeightFactor: 0.9, LearningMode: "major_restructuring", Adaptation: "restructurer les réponses"},
	1: {Priority: "critical", WeightFactor: 0.8, LearningMode: "full_review", Adaptation: "revue complète de l'approche"},
}

// RuleForRating returns the integration rule for a 1–5 rating.
// Out-of-band values get the neutral rating-3 rule.
func RuleForRating(rating int) IntegrationRule {
	if r, ok := integrationRules[rating]; ok {
		return r
	}
	return integrationRules[3]
}

// RuleForSentiment approximates a rule when the answer carried no numeric
// rating: sentiment alone decides the band.
func RuleForSentiment(s Sentiment) IntegrationRule {
	switch s.Label {
	case "positive":
		return integrationRules[4]
	case "negative":
		return integrationRules[2]
	default:
		return integrationRules[3]
	}
}
