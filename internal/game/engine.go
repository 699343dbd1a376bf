/*
Package game
File: engine.go
Description:
    The Engine owns the single authoritative State and serializes every
    access to it. Player intents (click, buy, reset, ...) and the periodic
    tick all take the same lock, so a purchase can never interleave with
    production or a reset.

    After every mutation the engine "settles": it rebuilds the effect
    table, recomputes the production rate, latches gates and pays out
    achievements. Failed intents are reported both as a returned error and
    as a player notification.
*/

package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/everforgeworks/study-ascension/internal/numeric"
)

// Store persists opaque save blobs by slot.
type Store interface {
	Save(ctx context.Context, slot string, blob []byte) error
	// Load reports found=false, with no error, for a slot that was never saved.
	Load(ctx context.Context, slot string) (blob []byte, found bool, err error)
	Delete(ctx context.Context, slot string) error
}

// EngineConfig wires an Engine. Only Catalog is required.
type EngineConfig struct {
	Catalog  *Catalog
	Store    Store  // nil disables persistence
	Slot     string // defaults to "default"
	Clock    Clock
	Notifier Notifier
	Messages *Messages
	Logger   *slog.Logger
}

type pendingSave struct {
	gen  uint64
	blob []byte
}

type Engine struct {
	mu       sync.Mutex
	catalog  *Catalog
	state    *State
	fx       *Effects
	rate     numeric.Value
	lastTick time.Time

	clock    Clock
	notifier Notifier
	messages *Messages
	logger   *slog.Logger

	store Store
	slot  string
	ioMu  sync.Mutex // serializes store I/O
	gen   atomic.Uint64
	saves chan pendingSave
}

// NewEngine starts a fresh game. Call Load to resume a saved one.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		catalog:  cfg.Catalog,
		clock:    cfg.Clock,
		notifier: cfg.Notifier,
		messages: cfg.Messages,
		logger:   cfg.Logger,
		store:    cfg.Store,
		slot:     cfg.Slot,
		saves:    make(chan pendingSave, 1),
	}
	if e.clock == nil {
		e.clock = RealClock{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.notifier == nil {
		e.notifier = NotifierFunc(func(Notification) {})
	}
	if e.slot == "" {
		e.slot = "default"
	}

	e.state = NewState()
	e.lastTick = e.clock.Now()
	e.settleLocked()
	return e
}

// Load resumes the saved game in the engine's slot and credits offline
// production. A missing save keeps the fresh game. An unreadable one also
// keeps the fresh game but is reported.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	e.ioMu.Lock()
	blob, found, err := e.store.Load(ctx, e.slot)
	e.ioMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("%w: load %s: %w", ErrPersistence, e.slot, err)
		e.failLocked(err)
		return err
	}
	if !found {
		e.logger.Info("no save found, starting a new game", "slot", e.slot)
		return nil
	}
	st, err := DecodeSnapshot(blob)
	if err != nil {
		e.logger.Error("save is unreadable, starting a new game", "slot", e.slot, "err", err)
		e.notifyLocked(SeverityError, MsgSaveCorrupt)
		return err
	}

	e.state = st
	e.rebuildLocked()
	now := e.clock.Now()
	if !st.SavedAt.IsZero() {
		away := now.Sub(st.SavedAt)
		if gained := offlineGain(st, e.rate, e.fx, e.catalog.Balance, away); gained.IsPositive() {
			e.notifyLocked(SeverityInfo, MsgOfflineGain, gained.StringFixed(0), away.Truncate(time.Second).String())
		}
	}
	e.lastTick = now
	e.settleLocked()
	e.logger.Info("save loaded", "slot", e.slot, "save_id", st.SaveID)
	return nil
}

// Save writes the current state synchronously.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	p, err := e.snapshotLocked()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.write(ctx, p)
}

// RequestSave queues an asynchronous save. Only the newest pending save is kept.
func (e *Engine) RequestSave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queueSaveLocked()
}

// RunSaver drains queued saves until ctx is done.
func (e *Engine) RunSaver(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-e.saves:
			_ = e.write(ctx, p)
		}
	}
}

func (e *Engine) snapshotLocked() (pendingSave, error) {
	e.state.SavedAt = e.clock.Now()
	blob, err := EncodeSnapshot(e.state)
	if err != nil {
		return pendingSave{}, err
	}
	return pendingSave{gen: e.gen.Load(), blob: blob}, nil
}

func (e *Engine) queueSaveLocked() {
	if e.store == nil {
		return
	}
	p, err := e.snapshotLocked()
	if err != nil {
		e.logger.Error("snapshot failed", "err", err)
		return
	}
	select {
	case e.saves <- p:
	default:
		// Replace the stale pending save.
		select {
		case <-e.saves:
		default:
		}
		select {
		case e.saves <- p:
		default:
		}
	}
}

// write stores a snapshot unless a hard reset happened after it was taken.
func (e *Engine) write(ctx context.Context, p pendingSave) error {
	if e.store == nil {
		return nil
	}
	e.ioMu.Lock()
	defer e.ioMu.Unlock()
	if p.gen != e.gen.Load() {
		return nil
	}
	if err := e.store.Save(ctx, e.slot, p.blob); err != nil {
		err = fmt.Errorf("%w: save %s: %w", ErrPersistence, e.slot, err)
		e.mu.Lock()
		e.failLocked(err)
		e.mu.Unlock()
		return err
	}
	e.logger.Debug("game saved", "slot", e.slot, "bytes", len(p.blob))
	return nil
}

// Tick advances the simulation to the clock's current time.
// A panic in one step is logged and the remaining steps still run.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	elapsed := now.Sub(e.lastTick)
	e.lastTick = now
	if elapsed <= 0 {
		return
	}

	// 1. Production
	e.safely("production", func() {
		produce(e.state, e.rate, elapsed)
	})

	// 2. Auto-buy
	e.safely("automation", func() {
		if bought := runAutomation(e.evalLocked()); len(bought) > 0 {
			e.rebuildLocked()
		}
	})

	// 3. Gates, achievements, quests
	e.safely("progression", e.settleLocked)
}

func (e *Engine) safely(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick step panicked", "step", step, "panic", r)
			e.notifyLocked(SeverityError, MsgErrInternal, step)
		}
	}()
	fn()
}

// Click grants one click worth of points and returns the amount.
func (e *Engine) Click() numeric.Value {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := ClickValue(e.rate, e.fx, e.catalog.Balance)
	e.state.credit(CurrencyPoints, v)
	e.state.RunTotal = e.state.RunTotal.Add(v)
	e.state.Clicks = e.state.Clicks.Add(numeric.One)
	e.settleLocked()
	return v
}

// Buy purchases units of an ownable.
func (e *Engine) Buy(key string, q Quantity) (Resolution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, res, err := buy(e.evalLocked(), key, q, false)
	if err != nil {
		e.failLocked(err)
		return res, err
	}
	e.notifyLocked(SeveritySuccess, MsgPurchase, res.Bought, o.Name, res.Total.StringFixed(0), o.Currency)
	e.settleLocked()
	e.queueSaveLocked()
	return res, nil
}

// ToggleAutomation flips auto-buy for a unit and returns whether it is now on.
func (e *Engine) ToggleAutomation(key string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	on, err := toggleAutomation(e.state, e.catalog, e.fx, key)
	if err != nil {
		e.failLocked(err)
		return false, err
	}
	if on {
		e.notifyLocked(SeverityInfo, MsgAutomationOn, key)
	} else {
		e.notifyLocked(SeverityInfo, MsgAutomationOff, key)
	}
	e.settleLocked()
	e.queueSaveLocked()
	return on, nil
}

// UnlockFeature buys a one-off feature such as bulk purchasing.
func (e *Engine) UnlockFeature(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := unlockFeature(e.state, e.catalog, e.fx, key)
	if err != nil {
		e.failLocked(err)
		return err
	}
	e.notifyLocked(SeveritySuccess, MsgFeatureUnlocked, f.Name)
	e.settleLocked()
	e.queueSaveLocked()
	return nil
}

// LevelSkill raises a skill node by one level and returns the new level.
func (e *Engine) LevelSkill(tree Tree, id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, level, err := levelSkill(e.state, e.catalog, tree, id)
	if err != nil {
		e.failLocked(err)
		return level, err
	}
	e.notifyLocked(SeveritySuccess, MsgSkillLevel, n.Name, level)
	e.settleLocked()
	e.queueSaveLocked()
	return level, nil
}

// ResetSkills clears a tree and refunds its points.
func (e *Engine) ResetSkills(tree Tree) (numeric.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := ParseTree(string(tree)); err != nil {
		e.failLocked(err)
		return numeric.Zero, err
	}
	refund := resetSkills(e.state, e.catalog, tree)
	e.notifyLocked(SeverityInfo, MsgSkillsReset, string(tree), refund.String())
	e.settleLocked()
	e.queueSaveLocked()
	return refund, nil
}

// Ascend trades the run for ascension points.
func (e *Engine) Ascend() (numeric.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	grant, err := ascend(e.state, e.catalog, e.fx)
	if err != nil {
		e.failLocked(err)
		return grant, err
	}
	e.notifyLocked(SeveritySuccess, MsgAscension, grant.String())
	e.settleLocked()
	e.queueSaveLocked()
	return grant, nil
}

// Prestige trades earned ascension points for prestige points.
func (e *Engine) Prestige() (numeric.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	grant, err := prestige(e.state, e.catalog, e.fx)
	if err != nil {
		e.failLocked(err)
		return grant, err
	}
	e.notifyLocked(SeveritySuccess, MsgPrestige, grant.String())
	e.settleLocked()
	e.queueSaveLocked()
	return grant, nil
}

// HardReset wipes everything, including permanent progress, and deletes the save.
func (e *Engine) HardReset(ctx context.Context) error {
	e.mu.Lock()
	e.state = NewState()
	e.lastTick = e.clock.Now()
	e.gen.Add(1)
	select {
	case <-e.saves:
	default:
	}
	e.settleLocked()
	e.notifyLocked(SeverityWarning, MsgHardReset)
	e.mu.Unlock()

	if e.store == nil {
		return nil
	}
	e.ioMu.Lock()
	err := e.store.Delete(ctx, e.slot)
	e.ioMu.Unlock()
	if err != nil {
		err = fmt.Errorf("%w: delete %s: %w", ErrPersistence, e.slot, err)
		e.mu.Lock()
		e.failLocked(err)
		e.mu.Unlock()
		return err
	}
	return nil
}

// ClaimQuest pays out a completed quest.
func (e *Engine) ClaimQuest(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := claimQuest(e.state, e.catalog, e.fx, key)
	if err != nil {
		e.failLocked(err)
		return err
	}
	e.notifyLocked(SeveritySuccess, MsgQuestClaimed, q.Name)
	e.settleLocked()
	e.queueSaveLocked()
	return nil
}

// SetOfflineProgress toggles crediting production for time spent away.
func (e *Engine) SetOfflineProgress(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Settings.OfflineProgress = enabled
	e.notifyLocked(SeverityInfo, MsgSettingsSaved)
	e.queueSaveLocked()
}

// ReloadCatalog swaps in new balance data without touching progress.
func (e *Engine) ReloadCatalog(c *Catalog) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = c
	e.settleLocked()
	e.notifyLocked(SeverityInfo, MsgCatalogReloaded)
}

// Catalog returns the active catalog. Callers must treat it as read-only.
func (e *Engine) Catalog() *Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog
}

// Snapshot returns the save blob of the current state.
func (e *Engine) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EncodeSnapshot(e.state)
}

// ScopeView flattens one reset scope of the current state.
func (e *Engine) ScopeView(scope Scope) map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.View(e.catalog, scope)
}

// settleLocked brings every derived value up to date after a mutation.
// Unlocks can enable further unlocks (a completed quest counts toward an
// achievement), so it repeats until a pass latches nothing. Every pass
// latches at least one flag, which bounds the loop.
func (e *Engine) settleLocked() {
	e.rebuildLocked()
	for {
		changed := false
		for _, g := range unlockGates(e.evalLocked()) {
			e.notifyLocked(SeverityInfo, MsgGateUnlocked, g.Name)
			changed = true
		}
		if unlocked := evaluateAchievements(e.evalLocked()); len(unlocked) > 0 {
			for _, a := range unlocked {
				e.notifyLocked(SeveritySuccess, MsgAchievement, a.Name)
			}
			e.rebuildLocked()
			changed = true
		}
		for _, q := range evaluateQuests(e.evalLocked()) {
			e.notifyLocked(SeverityInfo, MsgQuestCompleted, q.Name)
			changed = true
		}
		if !changed {
			return
		}
	}
}

func (e *Engine) rebuildLocked() {
	e.fx = RebuildEffects(e.state, e.catalog)
	e.rate = ProductionRate(e.state, e.catalog, e.fx)
}

func (e *Engine) evalLocked() evalContext {
	return evalContext{state: e.state, catalog: e.catalog, fx: e.fx, rate: e.rate}
}

func (e *Engine) notifyLocked(sev Severity, key string, args ...interface{}) {
	e.notifier.Notify(Notification{
		Severity: sev,
		Key:      key,
		Message:  e.messages.Text(key, args...),
		Time:     e.clock.Now(),
	})
}

// failLocked reports a failed player operation. Auto-buy never calls it.
func (e *Engine) failLocked(err error) {
	if errors.Is(err, ErrUnknownEntity) || errors.Is(err, ErrPersistence) {
		e.logger.Error("operation failed", "err", err)
	} else {
		e.logger.Debug("operation failed", "err", err)
	}
	sev := SeverityError
	if errors.Is(err, ErrInsufficientResources) {
		sev = SeverityWarning
	}
	e.notifyLocked(sev, errorMessage(err), err.Error())
}
