package memory

import (
	"io"
	"log/slog"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/velours-studio/reflet/internal/emotion"
	"github.com/velours-studio/reflet/internal/features"
	"github.com/velours-studio/reflet/internal/feedback"
)

func testStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func interactionAt(ts time.Time, theme string, emo emotion.Label, satisfaction float64) Interaction {
	return Interaction{
		Timestamp:    ts,
		Theme:        theme,
		Confidence:   0.8,
		Emotion:      emo,
		Intent:       features.IntentReservation,
		Satisfaction: satisfaction,
		Quality:      75,
	}
}

func TestGetOrCreate_Defaults(t *testing.T) {
	s := testStore()
	p := s.GetOrCreate("user-1")

	if p.UserID != "user-1" {
		t.Errorf("user id = %s", p.UserID)
	}
	if p.Language != "fr" {
		t.Errorf("language = %s, want fr", p.Language)
	}
	if p.Metadata.EngagementTier != "new" {
		t.Errorf("tier = %s, want new", p.Metadata.EngagementTier)
	}
	if len(p.ContextWeights) != 0 {
		t.Errorf("fresh profile has weights: %v", p.ContextWeights)
	}
}

func TestGetOrCreate_HydratesFromLoader(t *testing.T) {
	s := testStore()
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	calls := 0
	s.SetLoader(func(userID string) *Profile {
		calls++
		p := newProfile(userID, created)
		p.Metadata.TotalConversations = 12
		p.Metadata.EngagementTier = "regular"
		p.ToneStyle = "chaleureux"
		return p
	})

	p := s.GetOrCreate("user-db")
	if p.Metadata.TotalConversations != 12 {
		t.Errorf("conversations = %d, want 12 from storage", p.Metadata.TotalConversations)
	}
	if p.ToneStyle != "chaleureux" {
		t.Errorf("tone style = %q, want chaleureux", p.ToneStyle)
	}

	// Second access hits the in-memory copy.
	s.GetOrCreate("user-db")
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}

	// Users the loader does not know still get a fresh default.
	s.SetLoader(func(string) *Profile { return nil })
	fresh := s.GetOrCreate("user-new")
	if fresh.Metadata.TotalConversations != 0 {
		t.Errorf("fresh profile has %d conversations", fresh.Metadata.TotalConversations)
	}
}

func TestUpdate_OnHydratedProfile(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// A stored document decoded from JSON can carry nil weight maps.
	s.SetLoader(func(userID string) *Profile {
		return &Profile{
			UserID:    userID,
			Language:  "fr",
			CreatedAt: now.AddDate(0, -1, 0),
			Metadata:  Metadata{TotalConversations: 9},
		}
	})

	p := s.Update("user-db", interactionAt(now, "gastronomie", emotion.LabelJoy, 0.8), "Une réponse.", nil)
	if p.Metadata.TotalConversations != 10 {
		t.Errorf("conversations = %d, want 10", p.Metadata.TotalConversations)
	}
	if p.Metadata.EngagementTier != "regular" {
		t.Errorf("tier = %s, want regular", p.Metadata.EngagementTier)
	}
	if _, ok := p.ContextWeights["gastronomie"]; !ok {
		t.Error("gastronomie weight missing after update on hydrated profile")
	}
}

func TestUpdate_WeightNormalizationInvariant(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	themes := []string{"gastronomie", "voyage", "gastronomie", "culture", "bien-être", "gastronomie"}
	for i, theme := range themes {
		p := s.Update("user-1", interactionAt(now, theme, emotion.LabelNeutral, 0.6), "Une réponse.", nil)

		sum := 0.0
		for _, w := range p.ContextWeights {
			sum += w
		}
		if math.Abs(sum-float64(len(p.ContextWeights))) > 1e-9 {
			t.Fatalf("after update %d: weights sum %f, want %d", i, sum, len(p.ContextWeights))
		}
	}
}

func TestConsolidate_Idempotent(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Update("user-1", interactionAt(now.Add(-48*time.Hour), "gastronomie", emotion.LabelJoy, 0.8), "Réponse.", nil)
	s.Update("user-1", interactionAt(now.Add(-24*time.Hour), "voyage", emotion.LabelNeutral, 0.5), "Réponse.", nil)

	once := s.Consolidate("user-1")
	twice := s.Consolidate("user-1")

	if !reflect.DeepEqual(once.ContextWeights, twice.ContextWeights) {
		t.Errorf("consolidation not idempotent:\nonce:  %v\ntwice: %v", once.ContextWeights, twice.ContextWeights)
	}
	if !reflect.DeepEqual(once.RecentInteractions, twice.RecentInteractions) {
		t.Error("interaction weights changed on second consolidation")
	}
}

func TestUpdate_RepeatedThemeGrowsWeight(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	// Seed a competing theme, then five gastronomie conversations.
	s.Update("user-1", interactionAt(now.Add(-time.Hour), "voyage", emotion.LabelNeutral, 0.5), "Réponse.", nil)

	prev := 0.0
	for i := 0; i < 5; i++ {
		p := s.Update("user-1", interactionAt(now, "gastronomie", emotion.LabelJoy, 0.8), "Réponse.", nil)
		w := p.ContextWeights["gastronomie"]
		if w <= prev {
			t.Fatalf("update %d: gastronomie weight %f did not grow past %f", i, w, prev)
		}
		if w <= p.ContextWeights["voyage"] {
			t.Fatalf("update %d: gastronomie (%f) not above voyage (%f)", i, w, p.ContextWeights["voyage"])
		}
		prev = w
	}
}

func TestUpdate_ZoneWeights(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	it := interactionAt(now, "gastronomie", emotion.LabelNeutral, 0.6)
	it.Zone = "marais"
	s.Update("user-1", it, "Réponse.", nil)
	it.Zone = "marais"
	s.Update("user-1", it, "Réponse.", nil)
	it.Zone = "bastille"
	p := s.Update("user-1", it, "Réponse.", nil)

	if p.ZoneWeights["marais"] <= p.ZoneWeights["bastille"] {
		t.Errorf("marais (%f) should outweigh bastille (%f)", p.ZoneWeights["marais"], p.ZoneWeights["bastille"])
	}
	sum := 0.0
	for _, w := range p.ZoneWeights {
		sum += w
	}
	if math.Abs(sum-float64(len(p.ZoneWeights))) > 1e-9 {
		t.Errorf("zone weights sum %f, want %d", sum, len(p.ZoneWeights))
	}
}

func TestDecayWeight(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"fresh", 0, 1.0},
		{"seven days", 7 * 24 * time.Hour, math.Exp(-1)},
		{"fourteen days", 14 * 24 * time.Hour, math.Exp(-2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecayWeight(now.Add(-tt.age), now)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DecayWeight = %f, want %f", got, tt.want)
			}
		})
	}

	// Future timestamps are clamped rather than amplified.
	if got := DecayWeight(now.Add(time.Hour), now); got != 1.0 {
		t.Errorf("future timestamp weight = %f, want 1.0", got)
	}
}

func TestUpdate_FeedbackIntegration(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	rec := &feedback.Record{
		UserID:      "user-1",
		RawText:     "4/5, mais soyez plus direct",
		Rating:      &feedback.Rating{Value: 4, Method: "explicit"},
		Sentiment:   feedback.Sentiment{Label: "positive", Confidence: 0.8},
		Preferences: feedback.Preferences{Tone: []string{"plus_direct"}},
	}
	p := s.Update("user-1", interactionAt(now, "gastronomie", emotion.LabelJoy, 0.8), "Réponse.", rec)

	if p.Metadata.TotalFeedback != 1 {
		t.Errorf("total feedback = %d, want 1", p.Metadata.TotalFeedback)
	}
	if p.Metadata.AverageRating != 4.0 {
		t.Errorf("average rating = %f, want 4.0", p.Metadata.AverageRating)
	}
	if p.ToneStyle != "plus_direct" {
		t.Errorf("tone style = %s, want plus_direct", p.ToneStyle)
	}
	if p.LastFeedback != now {
		t.Errorf("last feedback = %v, want %v", p.LastFeedback, now)
	}
}

func TestUpdate_BoundedHistories(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < maxInteractions+10; i++ {
		fb := &feedback.Record{Sentiment: feedback.Sentiment{Label: "neutral"}}
		s.Update("user-1", interactionAt(now, "gastronomie", emotion.LabelNeutral, 0.5), "Réponse.", fb)
	}

	p := s.GetOrCreate("user-1")
	if len(p.RecentInteractions) != maxInteractions {
		t.Errorf("interactions = %d, want %d", len(p.RecentInteractions), maxInteractions)
	}
	if len(p.FeedbackHistory) != maxFeedbackEntries {
		t.Errorf("feedback history = %d, want %d", len(p.FeedbackHistory), maxFeedbackEntries)
	}
	if p.Metadata.TotalConversations != maxInteractions+10 {
		t.Errorf("total conversations = %d", p.Metadata.TotalConversations)
	}
}

func TestUpdate_ConcurrentSameUser(t *testing.T) {
	s := testStore()

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("user-1", interactionAt(time.Now(), "gastronomie", emotion.LabelNeutral, 0.5), "Réponse.", nil)
		}()
	}
	wg.Wait()

	p := s.GetOrCreate("user-1")
	if p.Metadata.TotalConversations != n {
		t.Errorf("lost updates: total = %d, want %d", p.Metadata.TotalConversations, n)
	}
}

func TestEngagementTier(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "new"}, {2, "new"}, {3, "active"}, {9, "active"},
		{10, "regular"}, {29, "regular"}, {30, "vip"}, {100, "vip"},
	}
	for _, tt := range tests {
		if got := engagementTier(tt.count); got != tt.want {
			t.Errorf("engagementTier(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestPersonalizationScore_Bounded(t *testing.T) {
	s := testStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	var p Profile
	for i := 0; i < 30; i++ {
		fb := &feedback.Record{Sentiment: feedback.Sentiment{Label: "positive"}}
		p = s.Update("user-1", interactionAt(now, "gastronomie", emotion.LabelJoy, 0.9),
			"Un dîner gastronomique italien avec dégustation, menu premium.", fb)
	}

	if p.Metadata.PersonalizationScore <= 0 || p.Metadata.PersonalizationScore > 1 {
		t.Errorf("personalization score out of range: %f", p.Metadata.PersonalizationScore)
	}
}
