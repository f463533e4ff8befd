package analysis

import "context"

// ResultStore persists the whole saved list under a single key. Load is called
// once at startup; Replace rewrites the full list on every mutation.
type ResultStore interface {
	Load(ctx context.Context) ([]SavedEntry, error)
	Replace(ctx context.Context, entries []SavedEntry) error
}
