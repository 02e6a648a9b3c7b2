// Package repository implements data access for users and films over a
// single MySQL connection pool. Every operation is atomic for one row;
// nothing here spans entities, so callers needing cross-entity consistency
// sequence their own calls and accept the window in between.
package repository

import "context"

// Filter restricts a query to rows where one field equals a value. Keys are
// whitelisted per repository; an unsupported key is a classified
// validation error rather than raw SQL.
type Filter struct {
	Key   string
	Value any
}

// Repository is the capability set shared by the entity repositories. One
// concrete type exists per entity; handlers hold the interface so tests can
// substitute fakes.
type Repository[T any] interface {
	// Query returns one page of entities in stable id order, optionally
	// restricted by a single equality filter. Film queries populate the
	// owner reference.
	Query(ctx context.Context, page, limit int, f *Filter) ([]T, error)
	// Count returns the number of entities matching the same filter
	// semantics as Query.
	Count(ctx context.Context, f *Filter) (int64, error)
	// QueryByID fails with a NotFound error when no entity has that id.
	QueryByID(ctx context.Context, id uint64) (T, error)
	// Search is an equality filter on an arbitrary whitelisted field; no
	// match yields an empty slice, not an error.
	Search(ctx context.Context, f Filter) ([]T, error)
	// Create persists data and returns the stored entity including its
	// generated id.
	Create(ctx context.Context, data T) (T, error)
	// Update applies a partial update and returns the post-update entity
	// with references re-populated. NotFound when id does not exist.
	Update(ctx context.Context, id uint64, patch map[string]any) (T, error)
	// Delete fails with NotFound when id does not exist.
	Delete(ctx context.Context, id uint64) error
}
