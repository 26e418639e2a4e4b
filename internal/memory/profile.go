package memory

import (
	"time"

	"github.com/velours-studio/reflet/internal/emotion"
)

// Bounds on the rolling parts of a profile.
const (
	maxInteractions    = 50
	maxFeedbackEntries = 20
)

// Interaction is one bounded history entry. Weight is the decay factor,
// recomputed on every consolidation.
type Interaction struct {
	Timestamp    time.Time     `json:"timestamp"`
	Theme        string        `json:"theme"`
	Zone         string        `json:"zone,omitempty"` // location hint from the exchange context
	Confidence   float64       `json:"confidence"`     // theme classification confidence, [0,1]
	Emotion      emotion.Label `json:"emotion"`
	Intent       string        `json:"intent"`
	Satisfaction float64       `json:"satisfaction"` // estimated, [0,1]
	Quality      float64       `json:"quality"`      // structural-quality score, [0,100]
	Weight       float64       `json:"weight"`
}

// StylePreferences are scalar tiers inferred from the responses a user
// engages with. Replace-on-update.
type StylePreferences struct {
	Length    string `json:"length"` // court | moyen | long
	Detail    string `json:"detail"` // synthétique | détaillé
	Emoji     bool   `json:"emoji"`
	Formality string `json:"formality"` // formel | décontracté
}

// ContentPreferences are categorical sets. Union-on-update.
type ContentPreferences struct {
	Cuisines   []string `json:"cuisines,omitempty"`
	PriceBand  string   `json:"price_band,omitempty"` // économique | modéré | premium
	Activities []string `json:"activities,omitempty"`
}

// FeedbackEntry is one bounded feedback-history item.
type FeedbackEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Rating      int       `json:"rating"` // 0 when the answer had none
	Sentiment   string    `json:"sentiment"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// LearningInsights summarise what works and what does not for this user.
type LearningInsights struct {
	SuccessThemes []string `json:"success_themes,omitempty"`
	FailureThemes []string `json:"failure_themes,omitempty"`
	Adaptations   []string `json:"adaptations,omitempty"`
}

// Metadata carries the aggregate counters and the personalization score.
type Metadata struct {
	TotalConversations   int     `json:"total_conversations"`
	TotalFeedback        int     `json:"total_feedback"`
	AverageRating        float64 `json:"average_rating"`
	EngagementTier       string  `json:"engagement_tier"` // new | active | regular | vip
	PersonalizationScore float64 `json:"personalization_score"`
}

// Profile is the durable, decaying preference state for one user. Never
// deleted; only decayed and consolidated.
type Profile struct {
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
	Language     string    `json:"language"`
	ToneStyle    string    `json:"tone_style"`
	LastFeedback time.Time `json:"last_feedback,omitzero"`

	ContextWeights map[string]float64 `json:"context_weights"`
	ZoneWeights    map[string]float64 `json:"zone_weights,omitempty"`

	RecentInteractions []Interaction      `json:"recent_interactions,omitempty"`
	Style              StylePreferences   `json:"style"`
	Content            ContentPreferences `json:"content"`
	FeedbackHistory    []FeedbackEntry    `json:"feedback_history,omitempty"`
	Insights           LearningInsights   `json:"insights"`
	Metadata           Metadata           `json:"metadata"`
}

func newProfile(userID string, now time.Time) *Profile {
	return &Profile{
		UserID:         userID,
		CreatedAt:      now,
		LastUpdated:    now,
		Language:       "fr",
		ToneStyle:      "professionnel",
		ContextWeights: make(map[string]float64),
		ZoneWeights:    make(map[string]float64),
		Style:          StylePreferences{Length: "moyen", Detail: "détaillé", Formality: "formel"},
		Metadata:       Metadata{EngagementTier: "new"},
	}
}

// engagementTier buckets the conversation count.
func engagementTier(totalConversations int) string {
	switch {
	case totalConversations < 3:
		return "new"
	case totalConversations < 10:
		return "active"
	case totalConversations < 30:
		return "regular"
	default:
		return "vip"
	}
}

// emotionMultipliers scale how strongly an interaction's theme is reinforced.
var emotionMultipliers = map[emotion.Label]float64{
	emotion.LabelJoy:      1.2,
	emotion.LabelExcited:  1.3,
	emotion.LabelCurious:  1.1,
	emotion.LabelNeutral:  1.0,
	emotion.LabelHesitant: 0.9,
	emotion.LabelStress:   0.8,
	emotion.LabelUrgent:   0.8,
	emotion.LabelSadness:  0.7,
}

func emotionMultiplier(label emotion.Label) float64 {
	if m, ok := emotionMultipliers[label]; ok {
		return m
	}
	return 1.0
}
