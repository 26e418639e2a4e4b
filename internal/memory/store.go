package memory

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/velours-studio/reflet/internal/feedback"
)

// Store owns every user profile in the process. Lifecycle-scoped: construct
// one per process and inject it, never reach for ambient state.
//
// All profile mutation for a given user is serialized through a per-user
// mutex, so rapid successive messages from the same user cannot lose updates.
// Different users proceed fully concurrently.
type Store struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	locks    map[string]*sync.Mutex

	loader Loader
	now    func() time.Time
	logger *slog.Logger
}

// Loader fetches a previously persisted profile on first in-memory access.
// Returning nil means the user has no stored profile.
type Loader func(userID string) *Profile

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		profiles: make(map[string]*Profile),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
		logger:   logger,
	}
}

// SetLoader installs the durable-storage hydration hook. Call before the
// store starts serving requests.
func (s *Store) SetLoader(l Loader) {
	s.loader = l
}

func (s *Store) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// getOrCreateLocked returns the live profile, hydrating from the loader on
// first access. Caller must hold the user lock, which keeps the loader call
// off the map mutex and serialized per user.
func (s *Store) getOrCreateLocked(userID string) *Profile {
	s.mu.Lock()
	p, ok := s.profiles[userID]
	s.mu.Unlock()
	if ok {
		return p
	}

	if s.loader != nil {
		p = s.loader(userID)
	}
	if p == nil {
		p = newProfile(userID, s.now())
	} else {
		if p.ContextWeights == nil {
			p.ContextWeights = make(map[string]float64)
		}
		if p.ZoneWeights == nil {
			p.ZoneWeights = make(map[string]float64)
		}
		s.logger.Debug("profile hydrated from storage",
			"user_id", userID,
			"conversations", p.Metadata.TotalConversations,
		)
	}

	s.mu.Lock()
	s.profiles[userID] = p
	s.mu.Unlock()
	return p
}

// GetOrCreate returns a snapshot of the user's profile, creating a default
// one on first access.
func (s *Store) GetOrCreate(userID string) Profile {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()
	return clone(s.getOrCreateLocked(userID))
}

// Update folds one conversation (and optionally its feedback) into the
// profile, then consolidates. Returns the post-update snapshot.
func (s *Store) Update(userID string, it Interaction, assistantText string, fb *feedback.Record) Profile {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	p := s.getOrCreateLocked(userID)

	// 1. Counters.
	p.Metadata.TotalConversations++
	p.LastUpdated = now

	// 2. Nudge the theme weight by classification confidence scaled by the
	// emotion multiplier. Consolidation below recomputes the weights from
	// the decayed history; the nudge keeps the invariant meaningful for
	// callers that read between the two.
	nudgeWeight(p.ContextWeights, it.Theme, it.Confidence*emotionMultiplier(it.Emotion))

	// 3. Style and content inference from the response.
	p.Style = mergeStyle(p.Style, inferStyle(assistantText))
	p.Content = mergeContent(p.Content, inferContent(assistantText))

	// 4. Bounded interaction history.
	if it.Timestamp.IsZero() {
		it.Timestamp = now
	}
	it.Weight = DecayWeight(it.Timestamp, now)
	p.RecentInteractions = append(p.RecentInteractions, it)
	if len(p.RecentInteractions) > maxInteractions {
		p.RecentInteractions = p.RecentInteractions[len(p.RecentInteractions)-maxInteractions:]
	}

	// 5. Feedback integration.
	if fb != nil {
		s.applyFeedbackLocked(p, fb, now)
	}

	// Consolidation: decayed-frequency shares, idempotent on the history.
	p.ContextWeights = Consolidate(p.RecentInteractions, now)
	p.ZoneWeights = ConsolidateZones(p.RecentInteractions, now)
	for i := range p.RecentInteractions {
		p.RecentInteractions[i].Weight = DecayWeight(p.RecentInteractions[i].Timestamp, now)
	}

	p.Insights = deriveInsights(p)
	p.Metadata.EngagementTier = engagementTier(p.Metadata.TotalConversations)
	p.Metadata.PersonalizationScore = personalizationScore(p)

	s.logger.Debug("profile updated",
		"user_id", userID,
		"theme", it.Theme,
		"conversations", p.Metadata.TotalConversations,
		"personalization", p.Metadata.PersonalizationScore,
	)
	return clone(p)
}

// Consolidate re-runs decay and weight recomputation without new input.
// Applying it twice in a row yields the same profile as applying it once.
func (s *Store) Consolidate(userID string) Profile {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	p := s.getOrCreateLocked(userID)
	p.ContextWeights = Consolidate(p.RecentInteractions, now)
	p.ZoneWeights = ConsolidateZones(p.RecentInteractions, now)
	for i := range p.RecentInteractions {
		p.RecentInteractions[i].Weight = DecayWeight(p.RecentInteractions[i].Timestamp, now)
	}
	p.Metadata.PersonalizationScore = personalizationScore(p)
	return clone(p)
}

// ApplyFeedback folds a resolved feedback record into the profile without
// counting a new conversation. Used when the answer arrives after the
// exchange that triggered it was already folded in.
func (s *Store) ApplyFeedback(userID string, fb *feedback.Record) Profile {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	p := s.getOrCreateLocked(userID)
	s.applyFeedbackLocked(p, fb, now)
	p.LastUpdated = now
	p.Insights = deriveInsights(p)
	p.Metadata.PersonalizationScore = personalizationScore(p)

	s.logger.Debug("feedback applied",
		"user_id", userID,
		"sentiment", fb.Sentiment.Label,
		"total_feedback", p.Metadata.TotalFeedback,
	)
	return clone(p)
}

func (s *Store) applyFeedbackLocked(p *Profile, fb *feedback.Record, now time.Time) {
	entry := FeedbackEntry{
		Timestamp:   now,
		Sentiment:   fb.Sentiment.Label,
		Suggestions: fb.Suggestions,
	}
	if fb.Rating != nil {
		entry.Rating = fb.Rating.Value
	}
	p.FeedbackHistory = append(p.FeedbackHistory, entry)
	if len(p.FeedbackHistory) > maxFeedbackEntries {
		p.FeedbackHistory = p.FeedbackHistory[len(p.FeedbackHistory)-maxFeedbackEntries:]
	}
	p.LastFeedback = now
	p.Metadata.TotalFeedback++

	rated, sum := 0, 0
	for _, e := range p.FeedbackHistory {
		if e.Rating > 0 {
			rated++
			sum += e.Rating
		}
	}
	if rated > 0 {
		p.Metadata.AverageRating = float64(sum) / float64(rated)
	}

	// Preference tags land in tone/style state.
	if len(fb.Preferences.Tone) > 0 {
		p.ToneStyle = fb.Preferences.Tone[0]
	}
}

// nudgeWeight bumps one theme then renormalizes so the weights sum to the
// number of themes present.
func nudgeWeight(weights map[string]float64, theme string, delta float64) {
	if _, ok := weights[theme]; !ok {
		weights[theme] = 1.0
	}
	weights[theme] += delta

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return
	}
	n := float64(len(weights))
	for t, w := range weights {
		weights[t] = w / total * n
	}
}

// deriveInsights recomputes success/failure theme patterns from the decayed
// history and the adaptations suggested by feedback plans.
func deriveInsights(p *Profile) LearningInsights {
	satisfaction := make(map[string][]float64)
	for _, it := range p.RecentInteractions {
		satisfaction[it.Theme] = append(satisfaction[it.Theme], it.Satisfaction)
	}

	var success, failure []string
	for theme, vals := range satisfaction {
		if len(vals) < 2 {
			continue
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		avg := sum / float64(len(vals))
		switch {
		case avg >= 0.7:
			success = append(success, theme)
		case avg <= 0.4:
			failure = append(failure, theme)
		}
	}
	sort.Strings(success)
	sort.Strings(failure)

	var adaptations []string
	seen := make(map[string]bool)
	for _, e := range p.FeedbackHistory {
		if e.Sentiment == "negative" && !seen["revoir ton et précision"] {
			adaptations = append(adaptations, "revoir ton et précision")
			seen["revoir ton et précision"] = true
		}
		for _, sug := range e.Suggestions {
			if !seen[sug] {
				adaptations = append(adaptations, sug)
				seen[sug] = true
			}
		}
	}

	return LearningInsights{SuccessThemes: success, FailureThemes: failure, Adaptations: adaptations}
}

func clone(p *Profile) Profile {
	out := *p
	out.ContextWeights = copyMap(p.ContextWeights)
	out.ZoneWeights = copyMap(p.ZoneWeights)
	out.RecentInteractions = append([]Interaction(nil), p.RecentInteractions...)
	out.FeedbackHistory = append([]FeedbackEntry(nil), p.FeedbackHistory...)
	out.Content.Cuisines = append([]string(nil), p.Content.Cuisines...)
	out.Content.Activities = append([]string(nil), p.Content.Activities...)
	out.Insights.SuccessThemes = append([]string(nil), p.Insights.SuccessThemes...)
	out.Insights.FailureThemes = append([]string(nil), p.Insights.FailureThemes...)
	out.Insights.Adaptations = append([]string(nil), p.Insights.Adaptations...)
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
