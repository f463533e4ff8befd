package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/chat-pattern-explorer/internal/application"
	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/storage"
)

var fixedNow = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() application.Clock {
	return application.ClockFunc(func() time.Time { return fixedNow })
}

// failingStore accepts loads and refuses every write.
type failingStore struct{ entries []domain.SavedEntry }

func (s *failingStore) Load(ctx context.Context) ([]domain.SavedEntry, error) {
	return s.entries, nil
}

func (s *failingStore) Replace(ctx context.Context, entries []domain.SavedEntry) error {
	return errors.New("disk full")
}

// blockingStore holds every Replace until release is closed.
type blockingStore struct {
	storage.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) Replace(ctx context.Context, entries []domain.SavedEntry) error {
	close(s.entered)
	<-s.release
	return s.MemoryStore.Replace(ctx, entries)
}

func result(theme string) domain.Result {
	return domain.Result{Themes: []string{theme}}
}

func TestNotReady(t *testing.T) {
	ws := New(storage.NewMemoryStore(), nil, nil)
	assert.Equal(t, Uninitialized, ws.State())
	assert.Equal(t, "uninitialized", ws.State().String())

	assert.ErrorIs(t, ws.SetAnalyzed("a.txt", result("x")), domain.ErrNotReady)
	_, err := ws.SavePending(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotReady)
	_, err = ws.Saved()
	assert.ErrorIs(t, err, domain.ErrNotReady)
	_, _, err = ws.Current()
	assert.ErrorIs(t, err, domain.ErrNotReady)
	_, err = ws.Select(0)
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestSavePersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	ws := New(store, fixedClock(), nil)
	require.NoError(t, ws.Load(ctx))
	assert.Equal(t, Ready, ws.State())

	_, err := ws.SavePending(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNothingToSave)

	require.NoError(t, ws.SetAnalyzed("family.txt", result("family")))
	first, err := ws.SavePending(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "family.txt", first.Name)
	assert.Equal(t, fixedNow, first.SavedAt)
	assert.NotEmpty(t, first.ID)

	require.NoError(t, ws.SetAnalyzed("work.txt", result("work")))
	second, err := ws.SavePending(ctx, "Work group")
	require.NoError(t, err)
	assert.Equal(t, "Work group", second.Name)
	assert.Equal(t, 2, store.Writes())

	saved, err := ws.Saved()
	require.NoError(t, err)
	require.Len(t, saved, 2)

	reloaded := New(store, nil, nil)
	require.NoError(t, reloaded.Load(ctx))
	again, err := reloaded.Saved()
	require.NoError(t, err)
	assert.Equal(t, saved, again)
}

func TestSelectChangesCurrentOnly(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	ws := New(store, fixedClock(), nil)
	require.NoError(t, ws.Load(ctx))

	require.NoError(t, ws.SetAnalyzed("a.txt", result("a")))
	a, err := ws.SavePending(ctx, "")
	require.NoError(t, err)
	require.NoError(t, ws.SetAnalyzed("b.txt", result("b")))
	_, err = ws.SavePending(ctx, "")
	require.NoError(t, err)

	before, err := ws.Saved()
	require.NoError(t, err)

	got, err := ws.Select(0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	cur, ok, err := ws.Current()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, cur.Themes)

	_, err = ws.SelectID(a.ID)
	require.NoError(t, err)

	after, err := ws.Saved()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, store.Writes())

	_, err = ws.Select(2)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	_, err = ws.SelectID("nope")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSetAnalyzedBecomesCurrent(t *testing.T) {
	ws := New(storage.NewMemoryStore(), nil, nil)
	require.NoError(t, ws.Load(context.Background()))

	_, ok, err := ws.Current()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ws.SetAnalyzed("chat.txt", result("t")))
	cur, ok, err := ws.Current()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"t"}, cur.Themes)

	p, ok, err := ws.Pending()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chat.txt", p.Name)
}

func TestFailedPersistLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	ws := New(&failingStore{entries: []domain.SavedEntry{{ID: "old", Name: "old.txt"}}}, nil, nil)
	require.NoError(t, ws.Load(ctx))
	require.NoError(t, ws.SetAnalyzed("new.txt", result("n")))

	_, err := ws.SavePending(ctx, "")
	require.Error(t, err)

	saved, err := ws.Saved()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "old.txt", saved[0].Name)

	_, ok, err := ws.Pending()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadBackfillsMissingIDs(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{entries: []domain.SavedEntry{{Name: "legacy.txt"}, {ID: "keep", Name: "b.txt"}}}
	ws := New(store, nil, nil)
	require.NoError(t, ws.Load(ctx))
	require.NoError(t, ws.Load(ctx))

	saved, err := ws.Saved()
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEmpty(t, saved[0].ID)
	assert.Equal(t, domain.EntryID("keep"), saved[1].ID)
}

func TestSavedReturnsCopy(t *testing.T) {
	ctx := context.Background()
	ws := New(storage.NewMemoryStore(), nil, nil)
	require.NoError(t, ws.Load(ctx))
	require.NoError(t, ws.SetAnalyzed("a.txt", result("a")))
	_, err := ws.SavePending(ctx, "")
	require.NoError(t, err)

	saved, err := ws.Saved()
	require.NoError(t, err)
	saved[0].Name = "mutated"

	again, err := ws.Saved()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", again[0].Name)
}

func TestReadsNotBlockedDuringSave(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	ws := New(store, nil, nil)
	require.NoError(t, ws.Load(ctx))
	require.NoError(t, ws.SetAnalyzed("a.txt", result("a")))

	done := make(chan error, 1)
	go func() {
		_, err := ws.SavePending(ctx, "")
		done <- err
	}()
	<-store.entered

	read := make(chan struct{})
	go func() {
		defer close(read)
		saved, err := ws.Saved()
		assert.NoError(t, err)
		assert.Empty(t, saved)
		_, ok, err := ws.Current()
		assert.NoError(t, err)
		assert.True(t, ok)
	}()
	select {
	case <-read:
	case <-time.After(2 * time.Second):
		t.Fatal("reads blocked by an in-flight save")
	}

	close(store.release)
	require.NoError(t, <-done)
	saved, err := ws.Saved()
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}
