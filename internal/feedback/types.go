package feedback

import (
	"time"

	"github.com/google/uuid"
)

// TriggerEvent is the closed set of moments the hosting surface can ask
// feedback for.
type TriggerEvent string

const (
	TriggerAfterBooking        TriggerEvent = "after_booking"
	TriggerAfterEvent          TriggerEvent = "after_event"
	TriggerAfterRecommendation TriggerEvent = "after_recommendation"
	TriggerAfterService        TriggerEvent = "after_service"
)

// ValidTriggerEvent reports whether t is one of the closed trigger events.
func ValidTriggerEvent(t string) bool {
	switch TriggerEvent(t) {
	case TriggerAfterBooking, TriggerAfterEvent, TriggerAfterRecommendation, TriggerAfterService:
		return true
	}
	return false
}

// SessionStatus is the session state machine: pending → answered | expired.
type SessionStatus string

const (
	StatusPending  SessionStatus = "pending"
	StatusAnswered SessionStatus = "answered"
	StatusExpired  SessionStatus = "expired"
)

// Session is one solicited feedback prompt.
type Session struct {
	ID         uuid.UUID     `json:"id"`
	UserID     string        `json:"user_id"`
	Trigger    TriggerEvent  `json:"trigger"`
	Prompt     string        `json:"prompt"`
	Status     SessionStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

// Rating is an extracted 1–5 rating and the method that found it.
type Rating struct {
	Value  int    `json:"value"`
	Method string `json:"method"` // explicit | emoji | textual
}

// Sentiment is the keyword-tally sentiment of a free-text answer.
type Sentiment struct {
	Label      string  `json:"label"` // positive | neutral | negative
	Confidence float64 `json:"confidence"`
}

// Preferences are the tone/style/content tags extracted from an answer.
type Preferences struct {
	Tone    []string `json:"tone,omitempty"`
	Style   []string `json:"style,omitempty"`
	Content []string `json:"content,omitempty"`
}

// IntegrationRule tells the personalization layer how to fold a piece of
// feedback in.
type IntegrationRule struct {
	Priority     string  `json:"priority"`
	WeightFactor float64 `json:"weight_factor"`
	LearningMode string  `json:"learning_mode"`
	Adaptation   string  `json:"adaptation"`
}

// Record is the parsed result of an answered session. Immutable once created.
type Record struct {
	SessionID   uuid.UUID       `json:"session_id"`
	UserID      string          `json:"user_id"`
	RawText     string          `json:"raw_text"`
	Rating      *Rating         `json:"rating,omitempty"`
	Sentiment   Sentiment       `json:"sentiment"`
	Preferences Preferences     `json:"preferences"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Plan        IntegrationRule `json:"plan"`
	CreatedAt   time.Time       `json:"created_at"`
}
