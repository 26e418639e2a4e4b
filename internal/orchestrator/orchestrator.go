package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velours-studio/reflet/internal/bus"
	"github.com/velours-studio/reflet/internal/completion"
	"github.com/velours-studio/reflet/internal/emotion"
	"github.com/velours-studio/reflet/internal/features"
	"github.com/velours-studio/reflet/internal/feedback"
	"github.com/velours-studio/reflet/internal/memory"
	"github.com/velours-studio/reflet/internal/reflection"
	"github.com/velours-studio/reflet/internal/store"
)

const (
	maxRecentRecords         = 50
	defaultCompletionTimeout = 8 * time.Second
	defaultDiagInterval      = 6 * time.Hour
)

// Orchestrator sequences the pipeline for each exchange: extraction,
// adaptation, reflection scoring, memory update, feedback triggering, and
// rolling metrics. Store and bus are optional; a nil dependency is skipped.
type Orchestrator struct {
	memory     *memory.Store
	engine     *feedback.Engine
	completion *completion.Client
	store      *store.Store
	bus        *bus.Client
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time

	completionTimeout time.Duration
	diagInterval      time.Duration

	mu          sync.Mutex
	lastDiag    time.Time
	multipliers map[string]float64 // per-intent confidence multipliers, [0.5,2.0]
	recent      []recentEntry
}

// recentEntry pairs a processed record with its overall score for the
// in-memory history fallback.
type recentEntry struct {
	rec     features.Record
	overall float64
}

func New(mem *memory.Store, eng *feedback.Engine, comp *completion.Client, st *store.Store, b *bus.Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		memory:            mem,
		engine:            eng,
		completion:        comp,
		store:             st,
		bus:               b,
		metrics:           NewMetrics(),
		logger:            logger,
		now:               time.Now,
		completionTimeout: defaultCompletionTimeout,
		diagInterval:      defaultDiagInterval,
		multipliers:       make(map[string]float64),
	}
}

// Metrics exposes the rolling metrics, mainly for the API layer.
func (o *Orchestrator) Metrics() *Metrics { return o.metrics }

// SetCompletionTimeout overrides the per-call completion deadline.
func (o *Orchestrator) SetCompletionTimeout(d time.Duration) {
	if d > 0 {
		o.completionTimeout = d
	}
}

// SetDiagInterval overrides the self-diagnostics cadence.
func (o *Orchestrator) SetDiagInterval(d time.Duration) {
	if d > 0 {
		o.diagInterval = d
	}
}

// Result is the composite outcome of one processed exchange.
type Result struct {
	Record        features.Record        `json:"record"`
	Features      features.Features      `json:"features"`
	Strategy      emotion.Strategy       `json:"strategy"`
	AssistantText string                 `json:"assistant_text"`
	Adapted       bool                   `json:"adapted"`
	Score         reflection.Score       `json:"score"`
	Directives    []reflection.Directive `json:"directives,omitempty"`
	Profile       memory.Profile         `json:"profile"`
	Feedback      *feedback.Session      `json:"feedback_session,omitempty"`
	Elapsed       time.Duration          `json:"elapsed"`
}

// ProcessConversation runs the full pipeline for one exchange. It always
// returns a result; degraded inputs and failed dependencies fall back to
// defaults rather than erroring.
func (o *Orchestrator) ProcessConversation(ctx context.Context, userText string, fctx features.Context) *Result {
	start := o.now()

	fx := features.Extract(features.Input{UserText: userText, Context: fctx})
	fx.Intent.Confidence = o.adjustConfidence(fx.Intent)

	strategy := emotion.StrategyFor(fx.Emotion.Dominant)
	assistantText, adapted := o.generate(ctx, strategy, fctx.PriorTurns, userText, fx.Intent.Label)
	if adapted {
		assistantText = strategy.Apply(assistantText)
	}

	score := reflection.Evaluate(reflection.Input{
		UserText:      userText,
		AssistantText: assistantText,
		Features:      fx,
		PriorTurns:    fctx.PriorTurns,
		HourOfDay:     fctx.HourOfDay,
		Now:           start,
	})
	directives := reflection.Directives(score)

	profile := o.memory.Update(fctx.UserID, memory.Interaction{
		Timestamp:    start,
		Theme:        fx.Theme.Label,
		Zone:         fctx.Location,
		Confidence:   themeConfidence(fx.Theme),
		Emotion:      fx.Emotion.Dominant,
		Intent:       fx.Intent.Label,
		Satisfaction: score.Overall / 100,
		Quality:      score.Semantic.Value,
	}, assistantText, nil)
	o.persistProfile(ctx, profile)

	var session *feedback.Session
	if o.engine.ShouldTrigger(fx, false) {
		session = o.engine.Open(fctx.UserID, triggerFor(fx), profile.LastFeedback, profile.Metadata.TotalConversations)
		o.persistSession(ctx, session)
		o.publish(bus.SubjectFeedbackRequested, map[string]any{
			"session_id": session.ID.String(),
			"user_id":    fctx.UserID,
			"trigger":    session.Trigger,
			"prompt":     session.Prompt,
		})
	}

	rec := features.Record{
		ID:            uuid.New(),
		Timestamp:     start,
		UserText:      userText,
		AssistantText: assistantText,
		Context:       fctx,
		Emotion:       fx.Emotion,
		Intent:        fx.Intent,
		Theme:         fx.Theme,
	}
	o.remember(rec, score.Overall)
	o.persistConversation(ctx, rec, score)

	elapsed := o.now().Sub(start)
	o.metrics.Observe(Observation{
		Values: map[string]float64{
			MetricSuccessRate:   successSample(score.Overall),
			MetricIntelligence:  score.Overall,
			MetricEmotionalIQ:   fx.Emotion.Confidence * 100,
			MetricContext:       score.Contextual.Value,
			MetricPrecision:     score.Intent.Value,
			MetricMemory:        profile.Metadata.PersonalizationScore * 100,
			MetricResponseTime:  float64(elapsed.Milliseconds()),
			MetricToneCoherence: score.Tonal.Value,
		},
		Intent:       fx.Intent.Label,
		IntentConf:   fx.Intent.Confidence,
		Overall:      score.Overall,
		Satisfaction: score.Overall / 100,
	})

	o.publish(bus.SubjectConversationDone, map[string]any{
		"record_id": rec.ID.String(),
		"user_id":   fctx.UserID,
		"overall":   score.Overall,
		"emotion":   fx.Emotion.Dominant,
		"intent":    fx.Intent.Label,
		"theme":     fx.Theme.Label,
	})
	if len(directives) > 0 {
		o.publish(bus.SubjectAdjustment, map[string]any{
			"record_id":  rec.ID.String(),
			"user_id":    fctx.UserID,
			"directives": directives,
		})
	}

	o.logger.Info("conversation processed",
		"user_id", fctx.UserID,
		"emotion", fx.Emotion.Dominant,
		"intent", fx.Intent.Label,
		"theme", fx.Theme.Label,
		"overall", score.Overall,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &Result{
		Record:        rec,
		Features:      fx,
		Strategy:      strategy,
		AssistantText: assistantText,
		Adapted:       adapted,
		Score:         score,
		Directives:    directives,
		Profile:       profile,
		Feedback:      session,
		Elapsed:       elapsed,
	}
}

// TriggerFeedbackPrompt opens a feedback session on an explicit event from
// the hosting chat surface.
func (o *Orchestrator) TriggerFeedbackPrompt(ctx context.Context, event feedback.TriggerEvent, userID string) (*feedback.Session, error) {
	if !feedback.ValidTriggerEvent(string(event)) {
		return nil, fmt.Errorf("unknown trigger event %q", event)
	}
	profile := o.memory.GetOrCreate(userID)
	session := o.engine.Open(userID, event, profile.LastFeedback, profile.Metadata.TotalConversations)
	o.persistSession(ctx, session)
	o.publish(bus.SubjectFeedbackRequested, map[string]any{
		"session_id": session.ID.String(),
		"user_id":    userID,
		"trigger":    session.Trigger,
		"prompt":     session.Prompt,
	})
	return session, nil
}

// ProcessUserFeedback resolves a pending session with the user's free-text
// answer and folds the parsed record into their memory profile.
func (o *Orchestrator) ProcessUserFeedback(ctx context.Context, sessionID uuid.UUID, rawText string) (*feedback.Record, error) {
	rec, err := o.engine.Answer(sessionID, rawText)
	if err != nil {
		return nil, err
	}

	profile := o.memory.ApplyFeedback(rec.UserID, rec)

	if o.store != nil {
		if sess, ok := o.engine.Get(sessionID); ok {
			if err := o.store.UpsertFeedbackSession(ctx, sess); err != nil {
				o.logger.Error("failed to persist feedback session", "session_id", sessionID, "error", err)
			}
		}
		if err := o.store.WriteFeedbackRecord(ctx, *rec); err != nil {
			o.logger.Error("failed to persist feedback record", "session_id", sessionID, "error", err)
		}
	}
	o.persistProfile(ctx, profile)

	o.publish(bus.SubjectFeedbackDone, map[string]any{
		"session_id": rec.SessionID.String(),
		"user_id":    rec.UserID,
		"sentiment":  rec.Sentiment.Label,
		"plan":       rec.Plan,
	})

	o.logger.Info("feedback integrated",
		"session_id", sessionID,
		"user_id", rec.UserID,
		"sentiment", rec.Sentiment.Label,
		"adaptation", rec.Plan.Adaptation,
	)
	return rec, nil
}

// Recent returns a copy of the bounded rolling log of processed records.
func (o *Orchestrator) Recent() []features.Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]features.Record, len(o.recent))
	for i, e := range o.recent {
		out[i] = e.rec
	}
	return out
}

// ConversationHistory returns a user's most recent conversations, newest
// first. Prefers the durable store and falls back to the in-memory log when
// running without one.
func (o *Orchestrator) ConversationHistory(ctx context.Context, userID string, limit int) ([]store.ConversationSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if o.store != nil {
		return o.store.ConversationsByUser(ctx, userID, limit)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	var out []store.ConversationSummary
	for i := len(o.recent) - 1; i >= 0 && len(out) < limit; i-- {
		e := o.recent[i]
		if e.rec.Context.UserID != userID {
			continue
		}
		out = append(out, store.ConversationSummary{
			ID:        e.rec.ID,
			CreatedAt: e.rec.Timestamp,
			UserText:  e.rec.UserText,
			Intent:    e.rec.Intent.Label,
			Theme:     e.rec.Theme.Label,
			Overall:   e.overall,
		})
	}
	return out, nil
}

// generate produces the assistant text, preferring the completion service
// and falling back to canned intent responses on failure. The second return
// reports whether adaptation should run (fallback text is already final).
func (o *Orchestrator) generate(ctx context.Context, strategy emotion.Strategy, priorTurns []features.Turn, userText, intent string) (string, bool) {
	if o.completion == nil {
		return completion.Fallback(intent), false
	}

	cctx, cancel := context.WithTimeout(ctx, o.completionTimeout)
	defer cancel()

	text, err := o.completion.Complete(cctx, systemPrompt(strategy), priorTurns, userText)
	if err != nil {
		o.logger.Warn("completion failed, using fallback", "intent", intent, "error", err)
		o.recordError(ctx, "completion", err)
		return completion.Fallback(intent), false
	}
	return text, true
}

func systemPrompt(strategy emotion.Strategy) string {
	return fmt.Sprintf(
		"Tu es le concierge Reflet. Réponds en français avec un ton %s et un style %s. Structure attendue : %s.",
		strategy.TargetTone, strategy.Style, strategy.Template,
	)
}

// adjustConfidence applies the per-intent multiplier maintained by the
// diagnostics recalibration pass.
func (o *Orchestrator) adjustConfidence(intent features.IntentAssessment) float64 {
	o.mu.Lock()
	mult, ok := o.multipliers[intent.Label]
	o.mu.Unlock()
	if !ok {
		return intent.Confidence
	}
	adjusted := intent.Confidence * mult
	if adjusted > 1 {
		return 1
	}
	return adjusted
}

func (o *Orchestrator) remember(rec features.Record, overall float64) {
	o.mu.Lock()
	o.recent = append(o.recent, recentEntry{rec: rec, overall: overall})
	if len(o.recent) > maxRecentRecords {
		o.recent = o.recent[len(o.recent)-maxRecentRecords:]
	}
	o.mu.Unlock()
}

func (o *Orchestrator) persistConversation(ctx context.Context, rec features.Record, score reflection.Score) {
	if o.store == nil {
		return
	}
	if err := o.store.WriteConversation(ctx, rec, score); err != nil {
		o.logger.Error("failed to persist conversation", "record_id", rec.ID, "error", err)
	}
}

func (o *Orchestrator) persistSession(ctx context.Context, sess *feedback.Session) {
	if o.store == nil || sess == nil {
		return
	}
	if err := o.store.UpsertFeedbackSession(ctx, *sess); err != nil {
		o.logger.Error("failed to persist feedback session", "session_id", sess.ID, "error", err)
	}
}

func (o *Orchestrator) persistProfile(ctx context.Context, p memory.Profile) {
	if o.store == nil {
		return
	}
	if err := o.store.UpsertProfile(ctx, p); err != nil {
		o.logger.Error("failed to persist profile", "user_id", p.UserID, "error", err)
	}
}

func (o *Orchestrator) recordError(ctx context.Context, component string, cause error) {
	if o.store == nil {
		return
	}
	if err := o.store.WriteErrorRecord(ctx, component, cause.Error()); err != nil {
		o.logger.Error("failed to persist error record", "component", component, "error", err)
	}
}

func (o *Orchestrator) publish(subject string, payload any) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Publish(subject, payload); err != nil {
		o.logger.Error("failed to publish", "subject", subject, "error", err)
	}
}

// HandleExchange is the NATS handler for concierge.chat.exchange.
func (o *Orchestrator) HandleExchange(subject string, data []byte) {
	var evt struct {
		UserText string           `json:"user_text"`
		Context  features.Context `json:"context"`
	}
	if err := json.Unmarshal(data, &evt); err != nil {
		o.logger.Error("failed to parse exchange event", "error", err)
		return
	}
	if evt.UserText == "" || evt.Context.UserID == "" {
		o.logger.Warn("exchange event missing user_text or user_id")
		return
	}
	o.ProcessConversation(context.Background(), evt.UserText, evt.Context)
}

func triggerFor(fx features.Features) feedback.TriggerEvent {
	switch {
	case fx.Intent.Label == features.IntentReservation:
		return feedback.TriggerAfterBooking
	case fx.Theme.Label == features.ThemeEvenement:
		return feedback.TriggerAfterEvent
	case fx.Intent.Label == features.IntentRecommandation:
		return feedback.TriggerAfterRecommendation
	default:
		return feedback.TriggerAfterService
	}
}

func themeConfidence(theme features.ThemeClassification) float64 {
	return theme.Scores[theme.Label]
}

func successSample(overall float64) float64 {
	if overall >= 70 {
		return 100
	}
	return 0
}
