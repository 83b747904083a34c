// Package engine owns the round and progress state machine: target
// selection, stage sequencing, guess evaluation, and per-entity mastery
// tracking. The presentation layer only ever sees read-only projections
// and feeds back discrete intents.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/playperu/geoquiz/internal/catalog"
	"github.com/playperu/geoquiz/internal/geoquiz"
	"github.com/playperu/geoquiz/internal/provider"
)

// ErrorMessage is the single user-visible message shown when a dataset
// cannot be loaded from any source.
const ErrorMessage = "could not load map data"

// SettingsStore persists the difficulty toggles across sessions.
type SettingsStore interface {
	Load(ctx context.Context) (geoquiz.Settings, error)
	Save(ctx context.Context, cfg geoquiz.Settings) error
}

// Engine is the quiz state machine. All mutations are serialized behind a
// single mutex; the only operation that suspends is the dataset fetch,
// which runs outside the lock and is keyed by a generation counter so a
// stale load can never overwrite state belonging to a newer one.
type Engine struct {
	mu       sync.Mutex
	logger   *slog.Logger
	provider provider.Provider
	catalog  *catalog.Catalog
	store    SettingsStore
	rng      *rand.Rand
	notify   func(Projection)

	cfg geoquiz.Settings

	entry    catalog.Entry
	hasEntry bool
	entities map[geoquiz.Code]geoquiz.EntityInfo
	loadGen  int
	loading  bool
	loadErr  string

	progress map[geoquiz.Code]*geoquiz.Progress
	queues   map[geoquiz.Code][]geoquiz.Stage
	found    map[geoquiz.Code]struct{}
	failed   map[geoquiz.Code]struct{}

	target      geoquiz.Code
	selected    geoquiz.Code
	stage       geoquiz.Stage
	revealed    bool
	scored      bool
	lastCorrect bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the random source. Tests inject a seeded source to
// make target and stage selection deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithNotify registers a callback invoked with a fresh projection after
// every state-changing intent. The callback runs with the engine lock
// held and must not call back into the engine.
func WithNotify(fn func(Projection)) Option {
	return func(e *Engine) { e.notify = fn }
}

// New constructs an engine and hydrates the persisted difficulty settings.
func New(ctx context.Context, logger *slog.Logger, prov provider.Provider, cat *catalog.Catalog, store SettingsStore, opts ...Option) *Engine {
	e := &Engine{
		logger:   logger,
		provider: prov,
		catalog:  cat,
		store:    store,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	e.clearPerEntityLocked()

	cfg, err := store.Load(ctx)
	if err != nil {
		logger.Warn("loading settings failed, using defaults", "error", err)
	}
	e.cfg = cfg
	return e
}

// LoadDataset switches the active dataset: clears all per-entity and
// session state, reconciles the toggles against the entry's capabilities,
// fetches entity data, and picks the first target. A load superseded by a
// newer LoadDataset call is discarded without touching state.
func (e *Engine) LoadDataset(ctx context.Context, entryID string) error {
	e.mu.Lock()

	entry, err := e.catalog.Get(entryID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if err := entry.Validate(); err != nil {
		// Config errors fail before any fetch but surface to the player
		// exactly like a load failure.
		e.clearPerEntityLocked()
		e.entities = nil
		e.entry = entry
		e.hasEntry = true
		e.loadGen++
		e.loading = false
		e.loadErr = ErrorMessage
		e.logger.Error("invalid dataset entry", "dataset", entryID, "error", err)
		e.publishLocked()
		e.mu.Unlock()
		return err
	}

	e.clearPerEntityLocked()
	e.entities = nil
	e.entry = entry
	e.hasEntry = true

	cfg := e.cfg
	if !entry.SupportsFlags {
		cfg.FlagsEnabled = false
	}
	if !entry.SupportsCapitals {
		cfg.CapitalsEnabled = false
	}
	if cfg != e.cfg {
		e.cfg = cfg
		e.saveSettingsLocked(ctx)
	}

	e.loadGen++
	gen := e.loadGen
	e.loading = true
	e.loadErr = ""
	e.publishLocked()
	e.mu.Unlock()

	var entities map[geoquiz.Code]geoquiz.EntityInfo
	var loadErr error
	if entry.FeatureBacked() {
		entities, loadErr = e.provider.LoadByFeatureKeys(ctx, entry.FeatureURL, entry.FeatureCodeKey, entry.FeatureNameKey, entry.CacheKey)
	} else {
		entities, loadErr = e.provider.Load(ctx, entry.Codes, entry.CacheKey)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.loadGen {
		e.logger.Info("discarding stale dataset load", "dataset", entry.ID)
		return nil
	}

	e.loading = false
	if loadErr != nil {
		e.loadErr = ErrorMessage
		e.logger.Error("dataset load failed", "dataset", entry.ID, "error", loadErr)
		e.publishLocked()
		return loadErr
	}

	e.entities = entities
	e.logger.Info("dataset loaded", "dataset", entry.ID, "entities", len(entities))
	e.pickNewTargetLocked()
	e.publishLocked()
	return nil
}

// SelectCandidate records the player's current pick. Ignored while a
// revealed round is waiting to advance, while loading, or when the code
// is not part of the active dataset.
func (e *Engine) SelectCandidate(code geoquiz.Code) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading || e.loadErr != "" || e.target == "" || e.revealed {
		return
	}
	if _, ok := e.entities[code]; !ok {
		return
	}
	e.selected = code
	e.publishLocked()
}

// ConfirmOrAdvance is the single primary affordance: it scores the current
// pick if the round is not yet revealed, or starts the next round if it
// is. No-op while loading, on load error, or pre-reveal with no pick.
func (e *Engine) ConfirmOrAdvance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading || e.loadErr != "" || e.target == "" {
		return
	}
	if e.revealed {
		e.pickNewTargetLocked()
		e.publishLocked()
		return
	}
	if e.selected == "" {
		return
	}
	e.confirmLocked()
	e.publishLocked()
}

// SetFlagsEnabled flips the flag-stage toggle, persists it, and
// reconciles all derived state under the new applicability rules.
func (e *Engine) SetFlagsEnabled(ctx context.Context, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.FlagsEnabled == enabled {
		return
	}
	if enabled && e.hasEntry && !e.entry.SupportsFlags {
		return
	}
	e.cfg.FlagsEnabled = enabled
	e.saveSettingsLocked(ctx)
	e.reconcileLocked()
	e.publishLocked()
}

// SetCapitalsEnabled flips the capital-stage toggle, persists it, and
// reconciles all derived state under the new applicability rules.
func (e *Engine) SetCapitalsEnabled(ctx context.Context, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.CapitalsEnabled == enabled {
		return
	}
	if enabled && e.hasEntry && !e.entry.SupportsCapitals {
		return
	}
	e.cfg.CapitalsEnabled = enabled
	e.saveSettingsLocked(ctx)
	e.reconcileLocked()
	e.publishLocked()
}

// ResetGame starts the session over on the already-loaded dataset: all
// progress, queues, and found/failed sets are cleared and a fresh target
// is picked. No data is re-fetched.
func (e *Engine) ResetGame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearPerEntityLocked()
	e.pickNewTargetLocked()
	e.publishLocked()
}

// --- internal transitions (callers hold e.mu) ---

func (e *Engine) clearPerEntityLocked() {
	e.progress = make(map[geoquiz.Code]*geoquiz.Progress)
	e.queues = make(map[geoquiz.Code][]geoquiz.Stage)
	e.found = make(map[geoquiz.Code]struct{})
	e.failed = make(map[geoquiz.Code]struct{})
	e.clearRoundLocked()
	e.target = ""
	e.stage = ""
}

func (e *Engine) clearRoundLocked() {
	e.selected = ""
	e.revealed = false
	e.scored = false
	e.lastCorrect = false
}

// pickNewTarget selects the next target uniformly from the loaded codes
// minus found and failed. An empty pool leaves the session in its last
// state; the pool is exhausted and no further rounds start.
func (e *Engine) pickNewTargetLocked() {
	pool := make([]geoquiz.Code, 0, len(e.entities))
	for code := range e.entities {
		if _, ok := e.found[code]; ok {
			continue
		}
		if _, ok := e.failed[code]; ok {
			continue
		}
		pool = append(pool, code)
	}
	if len(pool) == 0 {
		return
	}
	// Map iteration order is random; sort before drawing so a seeded
	// random source yields reproducible sessions.
	sortCodes(pool)

	e.target = pool[e.rng.Intn(len(pool))]
	e.clearRoundLocked()
	e.stage = e.stageForLocked(e.target)
}

// applicableStages returns the stages currently testable for code: name
// always, flag and capital only when the toggle is on and the entity's
// data supports them.
func (e *Engine) applicableStagesLocked(code geoquiz.Code) []geoquiz.Stage {
	info := e.entities[code]
	stages := []geoquiz.Stage{geoquiz.StageName}
	if e.cfg.FlagsEnabled && info.HasFlag() {
		stages = append(stages, geoquiz.StageFlag)
	}
	if e.cfg.CapitalsEnabled && info.HasCapital() {
		stages = append(stages, geoquiz.StageCapital)
	}
	return stages
}

// resyncQueue rebuilds the entity's remaining-stage queue: drops stages
// that are no longer applicable or already done, and appends (shuffled)
// any applicable, not-done stages the queue is missing.
func (e *Engine) resyncQueueLocked(code geoquiz.Code) {
	applicable := e.applicableStagesLocked(code)
	p := e.progressForLocked(code)

	var kept []geoquiz.Stage
	for _, s := range e.queues[code] {
		if containsStage(applicable, s) && !p.Done(s) && !containsStage(kept, s) {
			kept = append(kept, s)
		}
	}

	var missing []geoquiz.Stage
	for _, s := range applicable {
		if !p.Done(s) && !containsStage(kept, s) {
			missing = append(missing, s)
		}
	}
	e.shuffleStages(missing)

	e.queues[code] = append(kept, missing...)
}

// stageFor resynchronizes the entity's queue and returns its head. When
// the queue is empty — every applicable stage already done this session —
// the full applicable list is reshuffled and served again. That branch is
// ordinarily unreachable (a fully-done entity lands in found and leaves
// the pool) and matters right after a difficulty change.
func (e *Engine) stageForLocked(code geoquiz.Code) geoquiz.Stage {
	e.resyncQueueLocked(code)
	if q := e.queues[code]; len(q) > 0 {
		return q[0]
	}

	applicable := e.applicableStagesLocked(code)
	q := make([]geoquiz.Stage, len(applicable))
	copy(q, applicable)
	e.shuffleStages(q)
	e.queues[code] = q
	return q[0]
}

// confirm scores the current pick: one guess per round, correct or not.
func (e *Engine) confirmLocked() {
	if e.selected == "" || e.target == "" {
		return
	}
	e.revealed = true
	correct := e.selected == e.target
	e.lastCorrect = correct
	e.scored = true

	if !correct {
		// A single wrong guess retires the entity from target selection
		// for the rest of the session, whatever progress it had.
		e.failed[e.target] = struct{}{}
		return
	}

	p := e.progressForLocked(e.target)
	p.MarkDone(e.stage)
	e.queues[e.target] = removeStage(e.queues[e.target], e.stage)
	if e.isCompleteLocked(e.target) {
		e.found[e.target] = struct{}{}
	}
}

// isComplete reports whether every applicable stage for code has been
// answered correctly at least once this session.
func (e *Engine) isCompleteLocked(code geoquiz.Code) bool {
	p, ok := e.progress[code]
	if !ok {
		return false
	}
	for _, s := range e.applicableStagesLocked(code) {
		if !p.Done(s) {
			return false
		}
	}
	return true
}

// reconcile recomputes derived state after a toggle flip: found is
// rebuilt from scratch under the new applicability rules, and the current
// round is invalidated if its stage is no longer applicable.
func (e *Engine) reconcileLocked() {
	e.found = make(map[geoquiz.Code]struct{})
	for code := range e.progress {
		if e.isCompleteLocked(code) {
			e.found[code] = struct{}{}
		}
	}

	if e.target == "" {
		return
	}
	if !containsStage(e.applicableStagesLocked(e.target), e.stage) {
		e.stage = e.stageForLocked(e.target)
		e.clearRoundLocked()
		return
	}
	// Same stage, but the queue must still reflect the new applicability.
	e.resyncQueueLocked(e.target)
}

func (e *Engine) progressForLocked(code geoquiz.Code) *geoquiz.Progress {
	p, ok := e.progress[code]
	if !ok {
		p = &geoquiz.Progress{}
		e.progress[code] = p
	}
	return p
}

func (e *Engine) saveSettingsLocked(ctx context.Context) {
	if err := e.store.Save(ctx, e.cfg); err != nil {
		e.logger.Warn("persisting settings failed", "error", err)
	}
}

func (e *Engine) publishLocked() {
	if e.notify != nil {
		e.notify(e.snapshotLocked())
	}
}

// shuffleStages is an in-place Fisher–Yates shuffle.
func (e *Engine) shuffleStages(stages []geoquiz.Stage) {
	for i := len(stages) - 1; i > 0; i-- {
		j := e.rng.Intn(i + 1)
		stages[i], stages[j] = stages[j], stages[i]
	}
}

func containsStage(stages []geoquiz.Stage, s geoquiz.Stage) bool {
	for _, x := range stages {
		if x == s {
			return true
		}
	}
	return false
}

func removeStage(stages []geoquiz.Stage, s geoquiz.Stage) []geoquiz.Stage {
	out := stages[:0]
	for _, x := range stages {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}
