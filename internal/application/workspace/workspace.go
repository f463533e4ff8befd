// Package workspace owns the application state the UI works against: the saved
// results list, the pending (analyzed but unsaved) result and the current
// selection. Nothing is served before the saved list has been loaded.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/chat-pattern-explorer/internal/application"
	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
)

// State is the workspace lifecycle.
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

type Workspace struct {
	Store domain.ResultStore
	Clock application.Clock
	Log   *zap.Logger

	// saveMu serializes SavePending so the store write can run without mu.
	saveMu  sync.Mutex
	mu      sync.RWMutex
	state   State
	saved   []domain.SavedEntry
	pending *domain.SavedEntry
	current *domain.Result
}

func New(store domain.ResultStore, clock application.Clock, log *zap.Logger) *Workspace {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Workspace{Store: store, Clock: clock, Log: log}
}

// State reports the lifecycle state.
func (w *Workspace) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Load reads the saved list from the store once and moves the workspace to
// Ready. Later calls are no-ops. Entries from older lists without an id get one
// in memory; it is persisted with the next save.
func (w *Workspace) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Ready {
		return nil
	}

	entries, err := w.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load saved results: %w", err)
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = domain.EntryID(uuid.NewString())
		}
	}

	w.saved = entries
	w.state = Ready
	w.Log.Info("workspace ready", zap.Int("saved_results", len(entries)))
	return nil
}

// SetAnalyzed records a fresh analysis of the named file. It becomes both the
// pending result for SavePending and the current result.
func (w *Workspace) SetAnalyzed(name string, res domain.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Ready {
		return domain.ErrNotReady
	}
	w.pending = &domain.SavedEntry{Name: name, Result: res}
	cur := res
	w.current = &cur
	return nil
}

// Pending returns the last analyzed, not yet saved result.
func (w *Workspace) Pending() (domain.SavedEntry, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state != Ready {
		return domain.SavedEntry{}, false, domain.ErrNotReady
	}
	if w.pending == nil {
		return domain.SavedEntry{}, false, nil
	}
	return *w.pending, true, nil
}

// SavePending appends the pending result to the saved list and persists the
// whole list. name overrides the file name when not empty. The in-memory list
// only changes when the store accepted the write. Readers are not blocked while
// the store is written.
func (w *Workspace) SavePending(ctx context.Context, name string) (domain.SavedEntry, error) {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.RLock()
	if w.state != Ready {
		w.mu.RUnlock()
		return domain.SavedEntry{}, domain.ErrNotReady
	}
	if w.pending == nil {
		w.mu.RUnlock()
		return domain.SavedEntry{}, domain.ErrNothingToSave
	}
	entry := *w.pending
	next := make([]domain.SavedEntry, len(w.saved), len(w.saved)+1)
	copy(next, w.saved)
	w.mu.RUnlock()

	entry.ID = domain.EntryID(uuid.NewString())
	entry.SavedAt = w.Clock.Now()
	if name != "" {
		entry.Name = name
	}
	next = append(next, entry)

	if err := w.Store.Replace(ctx, next); err != nil {
		return domain.SavedEntry{}, fmt.Errorf("persist saved results: %w", err)
	}

	// only SavePending writes w.saved once Ready, and saveMu is held
	w.mu.Lock()
	w.saved = next
	w.mu.Unlock()

	w.Log.Info("result saved", zap.String("id", string(entry.ID)), zap.String("name", entry.Name), zap.Int("saved_results", len(next)))
	return entry, nil
}

// Saved returns a copy of the saved list in save order.
func (w *Workspace) Saved() ([]domain.SavedEntry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state != Ready {
		return nil, domain.ErrNotReady
	}
	out := make([]domain.SavedEntry, len(w.saved))
	copy(out, w.saved)
	return out, nil
}

// Entry looks a saved entry up by id.
func (w *Workspace) Entry(id domain.EntryID) (domain.SavedEntry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state != Ready {
		return domain.SavedEntry{}, domain.ErrNotReady
	}
	i := w.indexOf(id)
	if i < 0 {
		return domain.SavedEntry{}, domain.ErrEntryNotFound
	}
	return w.saved[i], nil
}

// Current returns the result currently on display.
func (w *Workspace) Current() (domain.Result, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state != Ready {
		return domain.Result{}, false, domain.ErrNotReady
	}
	if w.current == nil {
		return domain.Result{}, false, nil
	}
	return *w.current, true, nil
}

// Select makes the saved entry at index (0-based, save order) current. The saved
// list itself is left untouched.
func (w *Workspace) Select(index int) (domain.SavedEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Ready {
		return domain.SavedEntry{}, domain.ErrNotReady
	}
	if index < 0 || index >= len(w.saved) {
		return domain.SavedEntry{}, domain.ErrEntryNotFound
	}
	return w.selectLocked(index), nil
}

// SelectID is Select by entry id.
func (w *Workspace) SelectID(id domain.EntryID) (domain.SavedEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Ready {
		return domain.SavedEntry{}, domain.ErrNotReady
	}
	i := w.indexOf(id)
	if i < 0 {
		return domain.SavedEntry{}, domain.ErrEntryNotFound
	}
	return w.selectLocked(i), nil
}

func (w *Workspace) selectLocked(i int) domain.SavedEntry {
	entry := w.saved[i]
	cur := entry.Result
	w.current = &cur
	return entry
}

func (w *Workspace) indexOf(id domain.EntryID) int {
	for i := range w.saved {
		if w.saved[i].ID == id {
			return i
		}
	}
	return -1
}
