package feedback

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velours-studio/reflet/internal/features"
)

// ErrNotPending is returned when an answer arrives for a session that is
// already resolved or unknown. First valid answer wins; later ones are
// rejected without mutating anything.
var ErrNotPending = errors.New("feedback session not pending")

// Source provides the sampling randomness. Injectable so tests can force
// both branches.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 { return f() }

// NewRandSource returns a Source backed by its own seeded generator.
func NewRandSource() Source {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return SourceFunc(r.Float64)
}

const (
	// sampleRate is the fixed probability of soliciting feedback when no
	// other trigger condition holds.
	sampleRate = 0.10

	// recencyWindow is how far back a previous feedback counts as recent
	// for prompt selection.
	recencyWindow = 24 * time.Hour

	// defaultTTL is how long a session stays answerable.
	defaultTTL = 48 * time.Hour
)

var prompts = map[string]string{
	"rating":     "Sur une note de 1 à 5, comment s'est passée cette expérience ?",
	"preference": "J'aimerais mieux vous connaître : qu'est-ce qui vous a plu ou déplu cette fois-ci ?",
	"save":       "Souhaitez-vous que je retienne cette préférence pour vos prochaines demandes ?",
}

// Engine owns the feedback session state machine.
type Engine struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	rand   Source
	now    func() time.Time
	ttl    time.Duration
	logger *slog.Logger
}

func NewEngine(rand Source, logger *slog.Logger) *Engine {
	return &Engine{
		sessions: make(map[uuid.UUID]*Session),
		rand:     rand,
		now:      time.Now,
		ttl:      defaultTTL,
		logger:   logger,
	}
}

// SetTTL overrides how long a session stays answerable.
func (e *Engine) SetTTL(d time.Duration) {
	if d > 0 {
		e.ttl = d
	}
}

// ShouldTrigger is the trigger predicate: reservation intent, event theme, an
// explicit caller flag, or the fixed-probability sample.
func (e *Engine) ShouldTrigger(f features.Features, explicit bool) bool {
	if explicit {
		return true
	}
	if f.Intent.Label == features.IntentReservation {
		return true
	}
	if f.Theme.Label == features.ThemeEvenement {
		return true
	}
	return e.rand.Float64() < sampleRate
}

// SelectPrompt picks the prompt flavour from the user's feedback history:
// recent feedback favours preference learning, light users get the simple
// rating prompt, everyone else gets the save-preference prompt.
func SelectPrompt(lastFeedback time.Time, totalInteractions int, now time.Time) string {
	if !lastFeedback.IsZero() && now.Sub(lastFeedback) < recencyWindow {
		return prompts["preference"]
	}
	if totalInteractions < 3 {
		return prompts["rating"]
	}
	return prompts["save"]
}

// Open creates a pending session for a user.
func (e *Engine) Open(userID string, trigger TriggerEvent, lastFeedback time.Time, totalInteractions int) *Session {
	now := e.now()
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Trigger:   trigger,
		Prompt:    SelectPrompt(lastFeedback, totalInteractions, now),
		Status:    StatusPending,
		CreatedAt: now,
	}

	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()

	e.logger.Info("feedback session opened",
		"session_id", s.ID,
		"user_id", userID,
		"trigger", string(trigger),
	)

	snapshot := *s
	return &snapshot
}

// Answer resolves a pending session with a free-text response and parses it
// into a Record. The transition is atomic: a second answer for the same
// session gets ErrNotPending.
func (e *Engine) Answer(sessionID uuid.UUID, rawText string) (*Record, error) {
	now := e.now()

	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	if !ok || s.Status != StatusPending {
		e.mu.Unlock()
		return nil, ErrNotPending
	}
	s.Status = StatusAnswered
	s.ResolvedAt = &now
	userID := s.UserID
	e.mu.Unlock()

	rating := ExtractRating(rawText)
	sentiment := ExtractSentiment(rawText)

	var plan IntegrationRule
	if rating != nil {
		plan = RuleForRating(rating.Value)
	} else {
		plan = RuleForSentiment(sentiment)
	}

	rec := &Record{
		SessionID:   sessionID,
		UserID:      userID,
		RawText:     rawText,
		Rating:      rating,
		Sentiment:   sentiment,
		Preferences: ExtractPreferences(rawText),
		Suggestions: ExtractSuggestions(rawText),
		Plan:        plan,
		CreatedAt:   now,
	}

	e.logger.Info("feedback session answered",
		"session_id", sessionID,
		"has_rating", rating != nil,
		"sentiment", sentiment.Label,
	)
	return rec, nil
}

// Expire marks a pending session expired. Resolved sessions are left alone.
func (e *Engine) Expire(sessionID uuid.UUID) error {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[sessionID]
	if !ok || s.Status != StatusPending {
		return ErrNotPending
	}
	s.Status = StatusExpired
	s.ResolvedAt = &now
	return nil
}

// ExpireStale expires every pending session older than the TTL and returns
// snapshots of the sessions it touched, so callers can persist the change.
func (e *Engine) ExpireStale() []Session {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	var expired []Session
	for _, s := range e.sessions {
		if s.Status == StatusPending && now.Sub(s.CreatedAt) > e.ttl {
			resolved := now
			s.Status = StatusExpired
			s.ResolvedAt = &resolved
			expired = append(expired, *s)
		}
	}
	return expired
}

// Get returns a snapshot of a session.
func (e *Engine) Get(sessionID uuid.UUID) (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}
