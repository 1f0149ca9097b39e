// Package paging turns forward-only batch cursors over a remote store into
// bounded pages. Cursors are lazy and not restartable: each pull consumes
// upstream results.
package paging

import "context"

// Item is one decode result of an upstream row. A row that failed schema
// decoding travels through the pipeline as an Item with Err set; callers
// decide whether a failed item invalidates the whole page.
type Item[T any] struct {
	Value T
	Err   error
}

// Ok returns an Item carrying a successfully decoded value.
func Ok[T any](v T) Item[T] { return Item[T]{Value: v} }

// Fail returns an Item carrying a per-row error.
func Fail[T any](err error) Item[T] {
	return Item[T]{Err: err}
}

// Cursor pulls batches of decode results from an upstream ordered query.
// Next returns ok=false once the cursor is exhausted; a non-nil error means
// the pull itself failed (as opposed to individual rows failing to decode).
type Cursor[T any] interface {
	Next(ctx context.Context) (batch []Item[T], ok bool, err error)
}

// CursorFunc adapts a function to the Cursor interface.
type CursorFunc[T any] func(ctx context.Context) ([]Item[T], bool, error)

func (f CursorFunc[T]) Next(ctx context.Context) ([]Item[T], bool, error) {
	return f(ctx)
}

// MapBatches derives a cursor that transforms each pulled batch through f.
// Laziness is preserved: f runs once per upstream pull, so no transformation
// happens for batches never requested.
func MapBatches[A, B any](cur Cursor[A], f func(ctx context.Context, batch []Item[A]) []Item[B]) Cursor[B] {
	return CursorFunc[B](func(ctx context.Context) ([]Item[B], bool, error) {
		batch, ok, err := cur.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		return f(ctx, batch), true, nil
	})
}

// FromBatches builds a cursor over pre-materialized batches. Used in tests
// and wherever an in-memory result set must enter a paging pipeline.
func FromBatches[T any](batches ...[]Item[T]) Cursor[T] {
	i := 0
	return CursorFunc[T](func(context.Context) ([]Item[T], bool, error) {
		if i >= len(batches) {
			return nil, false, nil
		}
		b := batches[i]
		i++
		return b, true, nil
	})
}
