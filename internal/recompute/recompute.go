// Package recompute drives the scoring engine over the store. Sessions whose
// inputs are unchanged since they were last published are skipped.
package recompute

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/bridge-scorer/internal/events"
	"github.com/ramonehamilton/bridge-scorer/internal/metrics"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/storage"
	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// Store is the part of the storage service the recomputer needs.
type Store interface {
	Sessions(ctx context.Context) ([]*models.Session, error)
	LoadSession(ctx context.Context, number int) (*storage.SessionSnapshot, error)
	SaveSessionOutcome(ctx context.Context, res *engine.SessionResults, fingerprint, runID string, at time.Time) error
	LoadCompetition(ctx context.Context, pairCount int) (engine.CompetitionInput, error)
}

// SessionOutcome describes one session recompute.
type SessionOutcome struct {
	Session     int
	Results     *engine.SessionResults
	Fingerprint string
	RunID       string
	Skipped     bool // Inputs unchanged, nothing was written
	Duration    time.Duration
}

// RunSummary describes a full recompute.
type RunSummary struct {
	RunID       string
	Sessions    []SessionOutcome
	Competition *engine.CompetitionResults
}

type memoEntry struct {
	fingerprint string
	results     *engine.SessionResults
}

// Recomputer scores sessions and the competition and publishes the results.
// Safe for concurrent use; runs are serialized.
type Recomputer struct {
	store      Store
	dispatcher *events.EventDispatcher
	metrics    *metrics.EngineMetrics

	runMu sync.Mutex // serializes runs

	mu     sync.RWMutex
	cfg    engine.Config
	memo   map[int]memoEntry
	latest *engine.CompetitionResults

	now   func() time.Time
	newID func() string
}

// Option configures a Recomputer.
type Option func(*Recomputer)

// WithDispatcher publishes events to d.
func WithDispatcher(d *events.EventDispatcher) Option {
	return func(r *Recomputer) { r.dispatcher = d }
}

// WithMetrics records timings and counters in m.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(r *Recomputer) { r.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recomputer) { r.now = now }
}

// New creates a Recomputer.
func New(store Store, cfg engine.Config, opts ...Option) *Recomputer {
	r := &Recomputer{
		store:   store,
		cfg:     cfg,
		memo:    make(map[int]memoEntry),
		metrics: metrics.NewEngineMetrics(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the engine configuration in use.
func (r *Recomputer) Config() engine.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// SetConfig replaces the engine configuration. Cached session results are
// dropped.
func (r *Recomputer) SetConfig(cfg engine.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.memo = make(map[int]memoEntry)
}

// Metrics returns the metrics collector.
func (r *Recomputer) Metrics() *metrics.EngineMetrics {
	return r.metrics
}

// Latest returns the last competition results, or nil before the first run.
func (r *Recomputer) Latest() *engine.CompetitionResults {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// SessionResults returns the cached full results of a session, if any.
func (r *Recomputer) SessionResults(session int) (*engine.SessionResults, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.memo[session]
	return entry.results, ok
}

// RunSession rescores one session. Unless force is set, a session whose
// fingerprint matches the published one is not written again.
func (r *Recomputer) RunSession(ctx context.Context, session int, force bool) (*SessionOutcome, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.runSession(ctx, session, force, r.newID())
}

// RunCompetition recomputes the multi-session totals and club ranking.
func (r *Recomputer) RunCompetition(ctx context.Context) (*engine.CompetitionResults, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.runCompetition(ctx, r.newID())
}

// RunAll rescores every stored session and then the competition.
func (r *Recomputer) RunAll(ctx context.Context, force bool) (*RunSummary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	summary := &RunSummary{RunID: r.newID()}

	sessions, err := r.store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for _, s := range sessions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		out, err := r.runSession(ctx, s.Number, force, summary.RunID)
		if err != nil {
			return summary, err
		}
		summary.Sessions = append(summary.Sessions, *out)
	}

	summary.Competition, err = r.runCompetition(ctx, summary.RunID)
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Recomputer) runSession(ctx context.Context, session int, force bool, runID string) (*SessionOutcome, error) {
	start := time.Now()
	cfg := r.Config()

	snap, err := r.store.LoadSession(ctx, session)
	if err != nil {
		r.fail(ctx, session, runID, err)
		return nil, fmt.Errorf("load session %d: %w", session, err)
	}

	fp := Fingerprint(cfg, snap.Input)
	out := &SessionOutcome{Session: session, Fingerprint: fp, RunID: runID}

	r.mu.RLock()
	cached, ok := r.memo[session]
	r.mu.RUnlock()
	if ok && cached.fingerprint == fp {
		out.Results = cached.results
	} else {
		out.Results = engine.ScoreSession(cfg, snap.Input)
	}

	if !force && snap.Session.Fingerprint == fp {
		out.Skipped = true
		out.RunID = snap.Session.RunID
		r.remember(session, fp, out.Results)
		r.metrics.RecordSkip()
		r.dispatch(ctx, events.TypeSessionSkipped, events.SessionSkippedEvent{Session: session, Fingerprint: fp})
		return out, nil
	}

	if err := r.store.SaveSessionOutcome(ctx, out.Results, fp, runID, r.now()); err != nil {
		r.fail(ctx, session, runID, err)
		return nil, fmt.Errorf("save session %d: %w", session, err)
	}
	r.remember(session, fp, out.Results)

	out.Duration = time.Since(start)
	diagnostics := len(out.Results.Diagnostics) + len(out.Results.BadData)
	r.metrics.RecordSession(out.Duration, diagnostics)

	scored := 0
	for _, p := range out.Results.Pairs {
		if p.Pair != 0 && p.Played() {
			scored++
		}
	}
	log.Printf("[Recompute] Session %d scored: %d pairs, %d diagnostics (run %s)", session, scored, diagnostics, runID)
	r.dispatch(ctx, events.TypeSessionScored, events.SessionScoredEvent{
		Session:     session,
		Method:      cfg.Method.String(),
		Pairs:       scored,
		Diagnostics: diagnostics,
		Fingerprint: fp,
		RunID:       runID,
	})
	return out, nil
}

func (r *Recomputer) runCompetition(ctx context.Context, runID string) (*engine.CompetitionResults, error) {
	start := time.Now()
	cfg := r.Config()

	in, err := r.store.LoadCompetition(ctx, cfg.PairCount)
	if err != nil {
		r.fail(ctx, 0, runID, err)
		return nil, fmt.Errorf("load competition: %w", err)
	}
	in.PairCount = competitionPairCount(in)

	res := engine.ScoreCompetition(cfg, in)

	r.mu.Lock()
	r.latest = res
	r.mu.Unlock()
	r.metrics.RecordTotals(time.Since(start))

	leader := 0
	if res.Rank.Len() > 0 {
		leader = res.Rank.PairAt[1]
	}
	log.Printf("[Recompute] Totals updated: %d sessions, %d ranked pairs (run %s)", len(in.Sessions), res.Rank.Ranked(), runID)
	r.dispatch(ctx, events.TypeTotalsUpdated, events.TotalsUpdatedEvent{
		Sessions: len(in.Sessions),
		Ranked:   res.Rank.Ranked(),
		Clubs:    len(res.Clubs),
		Leader:   leader,
		RunID:    runID,
	})
	return res, nil
}

// competitionPairCount is the highest global pair with a stored result or a
// club, or the configured count when that is larger. End corrections do not
// extend it so that corrections for unknown pairs are reported.
func competitionPairCount(in engine.CompetitionInput) int {
	highest := in.PairCount
	for _, sess := range in.Sessions {
		for p := range sess {
			highest = max(highest, p)
		}
	}
	for p := range in.Clubs {
		highest = max(highest, p)
	}
	return highest
}

func (r *Recomputer) remember(session int, fp string, res *engine.SessionResults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo[session] = memoEntry{fingerprint: fp, results: res}
}

func (r *Recomputer) fail(ctx context.Context, session int, runID string, err error) {
	r.metrics.RecordFailure()
	log.Printf("[Recompute] Run %s failed: %v", runID, err)
	r.dispatch(ctx, events.TypeRecomputeFailed, events.RecomputeFailedEvent{Session: session, Error: err.Error(), RunID: runID})
}

func (r *Recomputer) dispatch(ctx context.Context, eventType string, data interface{ Map() map[string]interface{} }) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Dispatch(events.Event{Type: eventType, Data: data.Map(), TypedData: data, Context: ctx})
}
