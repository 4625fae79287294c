package repositories

import (
	"context"

	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

// countingStore wraps a store and counts calls, so tests can prove that a
// denied or locally rejected operation never reached the store.
type countingStore struct {
	inner store.Store
	calls int
}

func newCountingStore(inner store.Store) *countingStore {
	return &countingStore{inner: inner}
}

func (c *countingStore) Query(ctx context.Context, collection string, opts store.Options) ([]store.Row, error) {
	c.calls++
	return c.inner.Query(ctx, collection, opts)
}

func (c *countingStore) Insert(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	c.calls++
	return c.inner.Insert(ctx, collection, row)
}

func (c *countingStore) Upsert(ctx context.Context, collection string, row store.Row, conflictColumns []string) (store.Row, error) {
	c.calls++
	return c.inner.Upsert(ctx, collection, row, conflictColumns)
}

func (c *countingStore) Update(ctx context.Context, collection string, id string, patch store.Row) (store.Row, error) {
	c.calls++
	return c.inner.Update(ctx, collection, id, patch)
}

func (c *countingStore) Delete(ctx context.Context, collection string, id string) error {
	c.calls++
	return c.inner.Delete(ctx, collection, id)
}

var (
	adminSession   = session.Session{UserID: "u-admin", Email: "admin@example.com", Role: "admin"}
	facultySession = session.Session{UserID: "u-faculty", Email: "faculty@example.com", Role: "faculty"}
	studentSession = session.Session{UserID: "u-student", Email: "student@example.com", Role: "student"}
	unknownSession = session.Session{UserID: "u-new", Email: "new@example.com"}
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
