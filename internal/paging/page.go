package paging

import "context"

// Page is one realized page of decode results plus a flag telling whether
// the upstream cursor had more results past the page boundary.
type Page[T any] struct {
	Results        []Item[T]
	HasMoreResults bool
}

// ToPage drains cur into a page of up to pageSize items. It never decodes
// more upstream batches than needed: pulling stops as soon as one item past
// the boundary proves more results remain. Failed items count toward the
// page size like successful ones.
func ToPage[T any](ctx context.Context, cur Cursor[T], pageSize int) (Page[T], error) {
	page := Page[T]{}
	for !page.HasMoreResults {
		batch, ok, err := cur.Next(ctx)
		if err != nil {
			return Page[T]{}, err
		}
		if !ok {
			break
		}
		for _, item := range batch {
			if len(page.Results) == pageSize {
				page.HasMoreResults = true
				break
			}
			page.Results = append(page.Results, item)
		}
	}
	return page, nil
}

// PageResults is the pagination envelope returned to callers: the page items
// plus the id cursors to request the adjacent pages.
type PageResults[T any] struct {
	Items []T
	Prev  string
	Next  string
}

// ToPageResults computes prev/next continuation ids for a realized page.
// Items must already be in the upstream descending-id order; prev is the
// first item's id, next the last item's id when more results remain.
func ToPageResults[T any](items []T, hasMoreResults bool, id func(T) string) PageResults[T] {
	out := PageResults[T]{Items: items}
	if len(items) == 0 {
		return out
	}
	out.Prev = id(items[0])
	if hasMoreResults {
		out.Next = id(items[len(items)-1])
	}
	return out
}

// Values extracts the successful values of a batch, discarding failed items.
func Values[T any](batch []Item[T]) []T {
	out := make([]T, 0, len(batch))
	for _, item := range batch {
		if item.Err == nil {
			out = append(out, item.Value)
		}
	}
	return out
}

// FirstError returns the first per-item error in a realized page, if any.
func FirstError[T any](items []Item[T]) error {
	for _, item := range items {
		if item.Err != nil {
			return item.Err
		}
	}
	return nil
}
