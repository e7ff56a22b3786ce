// Package syncer orchestrates sync cycles: fetch remote items, diff them
// against the previous snapshot, apply the plan to the bookmark store, and
// report the outcome.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nhle/marksync/internal/diff"
	"github.com/nhle/marksync/internal/format"
	"github.com/nhle/marksync/internal/logger"
	"github.com/nhle/marksync/internal/model"
	"github.com/nhle/marksync/internal/notify"
	"github.com/nhle/marksync/internal/provider"
	"github.com/nhle/marksync/internal/settings"
	"github.com/nhle/marksync/internal/store"
)

// ErrUnknownProvider is returned when RunSync names an unregistered provider.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrSyncInProgress is returned when a cycle for the same provider is
// already running. Cycles for one provider must not overlap; callers either
// serialize them (the poller does, by construction) or handle this error.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncResult is the outcome of one sync cycle.
type SyncResult struct {
	ProviderID string
	Provider   model.ProviderType
	Success    bool
	Added      int
	Updated    int
	Removed    int
	Message    string
	Err        error
	Elapsed    time.Duration
}

// Engine runs sync cycles against registered providers. Cycles for
// different providers touch disjoint keyed state and may run concurrently;
// cycles for the same provider are serialized via an active-run flag.
type Engine struct {
	store    store.Store
	settings settings.Reader
	notifier *notify.Service
	log      *logger.Logger

	mu        sync.Mutex
	providers map[string]provider.Provider
	active    map[string]bool
}

// New creates a sync engine.
func New(
	st store.Store,
	reader settings.Reader,
	notifier *notify.Service,
	log *logger.Logger,
) *Engine {
	return &Engine{
		store:     st,
		settings:  reader,
		notifier:  notifier,
		log:       log.Child("Sync"),
		providers: make(map[string]provider.Provider),
		active:    make(map[string]bool),
	}
}

// Register adds a provider. Registering the same instance ID twice
// replaces the earlier registration.
func (e *Engine) Register(p provider.Provider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.providers[p.ID()] = p
}

// ProviderIDs returns the registered provider instance IDs.
func (e *Engine) ProviderIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.providers))
	for id := range e.providers {
		ids = append(ids, id)
	}
	return ids
}

// RunSync executes one complete sync cycle for the named provider:
// fetch → diff → apply → snapshot → notify → log. The cycle runs to
// completion or failure; cancellation mid-cycle is not a first-class
// concept beyond the context passed to blocking steps.
func (e *Engine) RunSync(ctx context.Context, providerID string) SyncResult {
	start := time.Now()

	e.mu.Lock()
	p, ok := e.providers[providerID]
	if !ok {
		e.mu.Unlock()
		return SyncResult{
			ProviderID: providerID,
			Err:        fmt.Errorf("%w: %s", ErrUnknownProvider, providerID),
		}
	}
	if e.active[providerID] {
		e.mu.Unlock()
		return SyncResult{
			ProviderID: providerID,
			Provider:   p.Type(),
			Err:        fmt.Errorf("%w: %s", ErrSyncInProgress, providerID),
		}
	}
	e.active[providerID] = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, providerID)
		e.mu.Unlock()
	}()

	log := e.log.Child(providerID)
	result := e.runCycle(ctx, p, log)
	result.Elapsed = time.Since(start)

	if result.Success {
		log.Info("sync completed",
			logger.Int("added", result.Added),
			logger.Int("updated", result.Updated),
			logger.Int("removed", result.Removed),
			logger.Duration("elapsed", result.Elapsed))
	} else {
		log.Error("sync failed",
			logger.Error(result.Err),
			logger.Duration("elapsed", result.Elapsed))
	}

	return result
}

// runCycle performs the fetch/diff/apply/snapshot/notify sequence.
func (e *Engine) runCycle(
	ctx context.Context,
	p provider.Provider,
	log *logger.Logger,
) SyncResult {
	result := SyncResult{ProviderID: p.ID(), Provider: p.Type()}

	// Fetch. A failure aborts the cycle before any local mutation; the
	// previous snapshot stays untouched.
	var items []model.RemoteItem
	err := log.Timed("fetch remote items", func() error {
		var fetchErr error
		items, fetchErr = p.FetchItems(ctx)
		return fetchErr
	})
	if err != nil {
		result.Err = fmt.Errorf("fetching items from %s: %w", p.ID(), err)
		e.notifyOutcome(ctx, result)
		return result
	}
	log.Debug("fetched remote items", logger.Int("count", len(items)))

	previous, err := e.store.LoadSnapshot(ctx, p.ID())
	if err != nil {
		result.Err = fmt.Errorf("loading snapshot for %s: %w", p.ID(), err)
		e.notifyOutcome(ctx, result)
		return result
	}

	// Title format options are read fresh each cycle so toggles apply to
	// the next run without a restart.
	cfg, err := e.settings.Current()
	if err != nil {
		result.Err = fmt.Errorf("reading settings: %w", err)
		e.notifyOutcome(ctx, result)
		return result
	}
	render := func(item model.RemoteItem) string {
		return format.Render(item, cfg.TitleFormat)
	}

	plan := diff.Compute(previous, items, render)
	result.Added = len(plan.Adds)
	result.Updated = len(plan.Updates)
	result.Removed = len(plan.Deletes)

	// Apply in add → update → delete order. A store rejection is fatal for
	// the cycle and leaves the snapshot unreplaced, so the next cycle
	// recomputes the same plan against the old baseline. Every mutation is
	// idempotent (upserts; deletes tolerate already-gone rows), so the
	// replay converges instead of tripping over its own partial progress.
	if err := e.applyPlan(ctx, p.ID(), plan); err != nil {
		result.Err = fmt.Errorf("applying plan for %s: %w", p.ID(), err)
		e.notifyOutcome(ctx, result)
		return result
	}

	snapshot := buildSnapshot(p.ID(), items, previous, render)
	if err := e.store.ReplaceSnapshot(ctx, p.ID(), snapshot); err != nil {
		result.Err = fmt.Errorf("replacing snapshot for %s: %w", p.ID(), err)
		e.notifyOutcome(ctx, result)
		return result
	}

	result.Success = true
	result.Message = plan.Summary()
	e.notifyOutcome(ctx, result)
	return result
}

// applyPlan mutates the bookmark store according to the plan. Adds come
// first so identifiers exist before any sibling-referencing update logic;
// deletes come last to avoid transiently dropping an item that is being
// replaced under a changed identifier. The plan may be a replay of a
// partially applied one, so adds and updates upsert, and a delete whose row
// is already gone counts as done.
func (e *Engine) applyPlan(
	ctx context.Context,
	providerID string,
	plan diff.Plan,
) error {
	now := time.Now()

	for _, add := range plan.Adds {
		bm := model.SyncedBookmark{
			ProviderID: providerID,
			ItemID:     add.Item.ID,
			Title:      add.Title,
			URL:        add.Item.URL,
			Status:     add.Item.Status,
			Priority:   add.Item.Priority,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := e.store.UpsertBookmark(ctx, bm); err != nil {
			return err
		}
	}

	for _, upd := range plan.Updates {
		bm := upd.Bookmark
		bm.Title = upd.Title
		bm.URL = upd.Item.URL
		bm.Status = upd.Item.Status
		bm.Priority = upd.Item.Priority
		if err := e.store.UpsertBookmark(ctx, bm); err != nil {
			return err
		}
	}

	for _, del := range plan.Deletes {
		err := e.store.DeleteBookmark(ctx, del.ProviderID, del.ItemID)
		if err != nil && !store.IsNotFound(err) {
			return err
		}
	}

	return nil
}

// buildSnapshot produces the instance's new SyncedBookmark set from the
// fetched items, in fetch order, preserving creation times for items that
// were already tracked. Duplicate identifiers resolve last-write-wins, in
// line with the diff.
func buildSnapshot(
	providerID string,
	items []model.RemoteItem,
	previous []model.SyncedBookmark,
	render func(model.RemoteItem) string,
) []model.SyncedBookmark {
	prevByID := make(map[string]model.SyncedBookmark, len(previous))
	for _, bm := range previous {
		bm := bm
		prevByID[bm.ItemID] = bm
	}

	lastIndex := make(map[string]int, len(items))
	for i, item := range items {
		lastIndex[item.ID] = i
	}

	now := time.Now()
	snapshot := make([]model.SyncedBookmark, 0, len(items))
	for i, item := range items {
		if lastIndex[item.ID] != i {
			continue
		}

		createdAt := now
		if prev, ok := prevByID[item.ID]; ok {
			createdAt = prev.CreatedAt
		}

		snapshot = append(snapshot, model.SyncedBookmark{
			ProviderID: providerID,
			ItemID:     item.ID,
			Title:      render(item),
			URL:        item.URL,
			Status:     item.Status,
			Priority:   item.Priority,
			Position:   len(snapshot) + 1,
			CreatedAt:  createdAt,
			UpdatedAt:  now,
		})
	}

	return snapshot
}

// notifyOutcome emits zero or one notification for the cycle. Gating and
// rate limiting live in the notification service.
func (e *Engine) notifyOutcome(ctx context.Context, result SyncResult) {
	if e.notifier == nil {
		return
	}

	if result.Success {
		e.notifier.Notify(ctx, notify.Event{
			Type:       notify.EventSuccess,
			ProviderID: result.ProviderID,
			Title:      fmt.Sprintf("marksync: %s", result.ProviderID),
			Message:    result.Message,
		})
		return
	}

	message := "sync failed"
	if result.Err != nil {
		message = result.Err.Error()
	}
	e.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventError,
		ProviderID: result.ProviderID,
		Title:      fmt.Sprintf("marksync: %s sync failed", result.ProviderID),
		Message:    message,
	})
}
