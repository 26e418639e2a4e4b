package features

import (
	"time"

	"github.com/google/uuid"

	"github.com/velours-studio/reflet/internal/emotion"
)

// Turn is one prior message in the conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// Context is the caller-supplied snapshot for one exchange.
type Context struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	Location   string `json:"location,omitempty"`
	HourOfDay  int    `json:"hour_of_day"` // 0–23
	PriorTurns []Turn `json:"prior_turns,omitempty"`
}

// Input is what the extractor works on. UserText is required; everything else
// is optional.
type Input struct {
	UserText      string
	AssistantText string
	Context       Context
}

// IntentAssessment is the dominant intent with its confidence.
type IntentAssessment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ThemeClassification is the dominant theme plus the per-theme score map.
type ThemeClassification struct {
	Label  string             `json:"label"`
	Scores map[string]float64 `json:"scores,omitempty"`
}

// Signals are the clarity/structure/precision flags derived from the text.
type Signals struct {
	WordCount   int     `json:"word_count"`
	HasQuestion bool    `json:"has_question"`
	Clear       bool    `json:"clear"`
	Structured  bool    `json:"structured"`
	Specificity float64 `json:"specificity"` // specificity-marker hits per word
}

// Features is the full extraction result for one exchange.
type Features struct {
	Emotion emotion.Assessment  `json:"emotion"`
	Intent  IntentAssessment    `json:"intent"`
	Theme   ThemeClassification `json:"theme"`
	Signals Signals             `json:"signals"`
}

// Record is the durable trace of one processed exchange. Immutable after
// creation; owned by the pipeline run that created it.
type Record struct {
	ID            uuid.UUID           `json:"id"`
	Timestamp     time.Time           `json:"timestamp"`
	UserText      string              `json:"user_text"`
	AssistantText string              `json:"assistant_text"`
	Context       Context             `json:"context"`
	Emotion       emotion.Assessment  `json:"emotion"`
	Intent        IntentAssessment    `json:"intent"`
	Theme         ThemeClassification `json:"theme"`
}
