package directory

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SearchScope controls how far below the base DN a search reaches.
type SearchScope string

const (
	// ScopeBase matches only the base entry itself.
	ScopeBase SearchScope = "base"
	// ScopeOneLevel matches the direct children of the base entry, never the
	// base itself or any grandchild.
	ScopeOneLevel SearchScope = "one-level"
	// ScopeSubtree matches the base entry and every descendant.
	ScopeSubtree SearchScope = "subtree"
)

// SearchRequest describes one search: where to start, how deep to go, what
// to match and how to shape the result.
type SearchRequest struct {
	// BaseDN anchors the search. An unknown base yields an empty result,
	// not an error.
	BaseDN string
	// Scope selects base, one-level or subtree candidates; defaults to
	// subtree when empty.
	Scope SearchScope
	// Filter prunes candidates; nil matches everything.
	Filter *Filter
	// Attributes, when non-empty, projects each result's attribute map down
	// to the listed keys. Top-level fields are unaffected by projection.
	Attributes []string
	// SizeLimit truncates the result after filtering and sorting; zero
	// means unlimited.
	SizeLimit int
	// SortBy orders results ascending by the resolved field value. Entries
	// without the sort key compare as equal and keep traversal order.
	SortBy string
	// SortDescending reverses the sort order.
	SortDescending bool
}

// Search resolves the scope around BaseDN, applies the filter, then sorts,
// truncates and projects the result. Every returned entry is an independent
// copy. Dangling child references are skipped silently.
func (d *Directory) Search(req SearchRequest) ([]*Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.stats.record(opSearch, false)

	scope := req.Scope
	if scope == "" {
		scope = ScopeSubtree
	}
	baseDN := NormalizeDN(req.BaseDN)
	base, ok := d.entries[baseDN]
	if !ok {
		return []*Entry{}, nil
	}

	var candidates []*Entry
	switch scope {
	case ScopeBase:
		candidates = []*Entry{base}
	case ScopeOneLevel:
		for _, childDN := range base.Children {
			if child, ok := d.entries[childDN]; ok {
				candidates = append(candidates, child)
			}
		}
	default:
		if fast, ok := d.indexedCandidates(baseDN, req.Filter); ok {
			candidates = fast
		} else {
			candidates = d.collectSubtree(base)
		}
	}

	var matched []*Entry
	for _, entry := range candidates {
		if req.Filter.Matches(entry) {
			matched = append(matched, entry)
		}
	}

	if req.SortBy != "" {
		sortEntries(matched, req.SortBy, req.SortDescending)
	}
	if req.SizeLimit > 0 && len(matched) > req.SizeLimit {
		matched = matched[:req.SizeLimit]
	}

	results := make([]*Entry, len(matched))
	for i, entry := range matched {
		results[i] = projectEntry(entry, req.Attributes)
	}
	d.logger.Debug("search_completed",
		slog.String("base_dn", baseDN),
		slog.String("scope", string(scope)),
		slog.Int("result_count", len(results)))
	return results, nil
}

// indexedCandidates serves a subtree search whose filter is a single
// equality leaf on an indexed attribute straight from the attribute index.
// The second return is false when the fast path does not apply. Results are
// identical either way; the index only narrows the candidate set.
func (d *Directory) indexedCandidates(baseDN string, f *Filter) ([]*Entry, bool) {
	if !d.indexingOn || f == nil || f.Logic != "" || f.Operator != OpEquals || f.Value.IsList() {
		return nil, false
	}
	attr := strings.ToLower(f.Attribute)
	if _, indexed := d.indexedAttrs[attr]; !indexed {
		return nil, false
	}
	dns, ok := d.index.lookup(attr, f.Value)
	if !ok {
		return []*Entry{}, true
	}
	var candidates []*Entry
	for _, dn := range dns {
		if dn != baseDN && !IsDescendantDN(dn, baseDN) {
			continue
		}
		if entry, ok := d.entries[dn]; ok {
			candidates = append(candidates, entry)
		}
	}
	return candidates, true
}

// sortEntries orders entries ascending by the resolved sort key. Entries
// lacking the key compare as equal, and the sort is stable, so they retain
// traversal order among themselves. String keys are ordered by a
// case-insensitive, locale-neutral collator so results are stable across
// platforms. The collator is per-call; collate.Collator keeps internal
// buffers and must not be shared between concurrent searches.
func sortEntries(entries []*Entry, sortBy string, descending bool) {
	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		vi, oki := entries[i].Resolve(sortBy)
		vj, okj := entries[j].Resolve(sortBy)
		if !oki || !okj {
			return false
		}
		if descending {
			return compareForSort(coll, vj, vi) < 0
		}
		return compareForSort(coll, vi, vj) < 0
	})
}

// compareForSort orders two values: numerically when both are numbers,
// otherwise by collated string rendering.
func compareForSort(coll *collate.Collator, a, b Value) int {
	if an, ok := a.numeric(); ok {
		if bn, ok := b.numeric(); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return coll.CompareString(a.Render(), b.Render())
}

// projectEntry clones entry and, when attributes are requested, restricts
// the clone's attribute map to the requested keys. Top-level fields are
// never added or removed by projection.
func projectEntry(entry *Entry, attributes []string) *Entry {
	clone := entry.Clone()
	if len(attributes) == 0 {
		return clone
	}
	projected := make(map[string]Value, len(attributes))
	for _, name := range attributes {
		for key, value := range clone.Attributes {
			if strings.EqualFold(key, name) {
				projected[key] = value
				break
			}
		}
	}
	clone.Attributes = projected
	return clone
}

// Compare resolves attribute on the entry at dn exactly as the filter
// evaluator would and applies type-aware equality against value. It returns
// ErrEntryNotFound for an unknown DN.
func (d *Directory) Compare(dn, attribute string, value Value) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[NormalizeDN(dn)]
	d.stats.record(opCompare, !ok)
	if !ok {
		return false, operationError("Compare", NormalizeDN(dn), ErrEntryNotFound)
	}
	resolved, ok := entry.Resolve(attribute)
	if !ok {
		return false, nil
	}
	return resolved.Equal(value), nil
}
