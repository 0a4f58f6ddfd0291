package directory

import (
	"sort"
	"strings"
)

// posting records one indexed (attribute, value) pair carried by a DN, kept
// so un-indexing and re-keying touch only the owning entry's postings.
type posting struct {
	attr  string
	value string
}

// attributeIndex is an equality index over attribute values, maintained for
// attribute types a registered schema marks as indexed. It serves subtree
// equality searches in O(matches) instead of O(subtree).
type attributeIndex struct {
	// values maps attribute name → folded value → set of DNs.
	values map[string]map[string]map[string]struct{}
	// byDN maps DN → its postings, for cheap removal and re-keying.
	byDN map[string][]posting
}

func newAttributeIndex() *attributeIndex {
	return &attributeIndex{
		values: make(map[string]map[string]map[string]struct{}),
		byDN:   make(map[string][]posting),
	}
}

// foldIndexValue normalizes a value element for indexing the same way the
// equality operator folds strings.
func foldIndexValue(v Value) string {
	return strings.ToLower(v.Render())
}

func (ix *attributeIndex) add(dn, attr string, v Value) {
	folded := foldIndexValue(v)
	byValue, ok := ix.values[attr]
	if !ok {
		byValue = make(map[string]map[string]struct{})
		ix.values[attr] = byValue
	}
	dns, ok := byValue[folded]
	if !ok {
		dns = make(map[string]struct{})
		byValue[folded] = dns
	}
	dns[dn] = struct{}{}
	ix.byDN[dn] = append(ix.byDN[dn], posting{attr: attr, value: folded})
}

func (ix *attributeIndex) removeDN(dn string) {
	for _, p := range ix.byDN[dn] {
		if byValue, ok := ix.values[p.attr]; ok {
			if dns, ok := byValue[p.value]; ok {
				delete(dns, dn)
				if len(dns) == 0 {
					delete(byValue, p.value)
				}
			}
		}
	}
	delete(ix.byDN, dn)
}

func (ix *attributeIndex) rekey(oldDN, newDN string) {
	if oldDN == newDN {
		return
	}
	postings, ok := ix.byDN[oldDN]
	if !ok {
		return
	}
	for _, p := range postings {
		if dns, ok := ix.values[p.attr][p.value]; ok {
			delete(dns, oldDN)
			dns[newDN] = struct{}{}
		}
	}
	delete(ix.byDN, oldDN)
	ix.byDN[newDN] = postings
}

// lookup returns the DNs carrying value under attr, sorted for determinism.
// The second return is false when nothing matches.
func (ix *attributeIndex) lookup(attr string, v Value) ([]string, bool) {
	dns, ok := ix.values[attr][foldIndexValue(v)]
	if !ok || len(dns) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(dns))
	for dn := range dns {
		out = append(out, dn)
	}
	sort.Strings(out)
	return out, true
}

func (ix *attributeIndex) reset() {
	ix.values = make(map[string]map[string]map[string]struct{})
	ix.byDN = make(map[string][]posting)
}

// indexEntry adds entry's indexed attribute values to the index. Values are
// resolved through Entry.Resolve so the index sees exactly what the equality
// operator sees, top-level fields included. Caller holds the write lock.
func (d *Directory) indexEntry(entry *Entry) {
	if !d.indexingOn || len(d.indexedAttrs) == 0 {
		return
	}
	for attr := range d.indexedAttrs {
		value, ok := entry.Resolve(attr)
		if !ok {
			continue
		}
		for _, elem := range value.Elements() {
			d.index.add(entry.DN, attr, elem)
		}
	}
}

// unindexEntry removes entry's postings. Caller holds the write lock.
func (d *Directory) unindexEntry(entry *Entry) {
	if !d.indexingOn {
		return
	}
	d.index.removeDN(entry.DN)
}

// rebuildIndex recomputes the indexed attribute set from every registered
// schema and re-indexes all entries. Called when schemas change. Caller
// holds the write lock.
func (d *Directory) rebuildIndex() {
	d.indexedAttrs = make(map[string]struct{})
	for _, id := range d.schemaOrder {
		for _, at := range d.schemas[id].AttributeTypes {
			if at.Indexed {
				d.indexedAttrs[strings.ToLower(at.Name)] = struct{}{}
			}
		}
	}
	d.index.reset()
	if !d.indexingOn || len(d.indexedAttrs) == 0 {
		return
	}
	for _, entry := range d.entries {
		d.indexEntry(entry)
	}
}
