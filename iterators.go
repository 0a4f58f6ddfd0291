package directory

import (
	"iter"
)

// Walk returns an iterator over copies of the entry at baseDN and all of its
// descendants, in depth-first order. An unknown base yields an empty
// sequence. Iteration supports early termination by the caller.
//
// The subtree is captured when iteration starts; mutations made while
// consuming the sequence are not reflected in it.
func (d *Directory) Walk(baseDN string) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, entry := range d.GetSubtree(baseDN) {
			if !yield(entry) {
				return
			}
		}
	}
}

// SearchIter runs the search and returns an iterator over the results,
// allowing callers to stop consuming early. A search problem is yielded as
// the final element's error with a nil entry.
func (d *Directory) SearchIter(req SearchRequest) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		results, err := d.Search(req)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, entry := range results {
			if !yield(entry, nil) {
				return
			}
		}
	}
}
