package directory

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// EntryUUIDAttribute is the operational attribute holding the immutable
// unique identifier stamped on every entry at add time.
const EntryUUIDAttribute = "entryUUID"

// AddEntry inserts a new entry into the tree. The entry's DN is normalized
// and must be unused. When the DN names a parent, the parent must exist if
// any ancestor of the DN is stored; a DN none of whose ancestors are stored
// becomes a new root, so naming-context suffixes like "dc=example,dc=com" can
// seed an empty tree without their dc components existing as entries.
// The entry type is inferred from the objectClass list when not set, the
// children list is reset, timestamps are stamped and an entryUUID attribute
// is assigned when absent.
//
// The stored entry is detached from the argument; AddEntry returns an
// independent copy of what was stored. On failure nothing is mutated.
func (d *Directory) AddEntry(entry *Entry) (*Entry, error) {
	const op = "AddEntry"
	if entry == nil || strings.TrimSpace(entry.DN) == "" {
		d.stats.record(opAdd, true)
		return nil, operationError(op, "", ErrInvalidDN)
	}
	dn := NormalizeDN(entry.DN)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.entries[dn]; exists {
		d.stats.record(opAdd, true)
		return nil, operationError(op, dn, ErrDuplicateEntry)
	}
	rdn, parentDN := ParseDN(dn)
	var parent *Entry
	if parentDN != "" {
		var ok bool
		parent, ok = d.entries[parentDN]
		if !ok {
			if d.anyAncestorStored(dn) {
				d.stats.record(opAdd, true)
				return nil, operationError(op, dn, ErrParentNotFound).WithContext("parent_dn", parentDN)
			}
			// No stored ancestor at all: the DN starts a new naming
			// context and is stored as a root.
			parentDN = ""
		}
	}

	stored := entry.Clone()
	stored.DN = dn
	stored.ParentDN = parentDN
	stored.Children = []string{}
	if stored.EntryType == "" {
		stored.EntryType = InferEntryType(stored.ObjectClass)
	}
	if stored.Attributes == nil {
		stored.Attributes = make(map[string]Value)
	}
	if _, ok := stored.Resolve(EntryUUIDAttribute); !ok {
		stored.Attributes[EntryUUIDAttribute] = String(uuid.NewString())
	}
	now := d.clock()
	stored.CreatedAt = now
	stored.ModifiedAt = now

	d.entries[dn] = stored
	if parent != nil {
		parent.Children = append(parent.Children, dn)
	}
	d.indexEntry(stored)
	d.stats.record(opAdd, false)
	d.logger.Debug("entry_added",
		slog.String("dn", dn),
		slog.String("rdn", rdn),
		slog.String("entry_type", string(stored.EntryType)))
	return stored.Clone(), nil
}

// anyAncestorStored reports whether any ancestor DN of dn, however distant,
// exists in the store. Caller holds the lock.
func (d *Directory) anyAncestorStored(dn string) bool {
	for _, ancestor := range AncestorDNs(dn) {
		if _, ok := d.entries[ancestor]; ok {
			return true
		}
	}
	return false
}

// GetEntry returns a copy of the entry at dn, or ErrEntryNotFound.
func (d *Directory) GetEntry(dn string) (*Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[NormalizeDN(dn)]
	d.stats.record(opGet, !ok)
	if !ok {
		return nil, operationError("GetEntry", NormalizeDN(dn), ErrEntryNotFound)
	}
	return entry.Clone(), nil
}

// ModifyEntry applies attribute changes to the entry at dn. An absent (zero)
// Value deletes its key; any other value replaces it. The reserved key
// "modifiedBy" updates the entry's ModifiedBy field instead of the attribute
// map. ModifiedAt is refreshed. Schema validation is not re-run; call
// ValidateEntry explicitly when conformance matters.
func (d *Directory) ModifyEntry(dn string, changes map[string]Value) (*Entry, error) {
	const op = "ModifyEntry"
	normalized := NormalizeDN(dn)

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[normalized]
	if !ok {
		d.stats.record(opModify, true)
		return nil, operationError(op, normalized, ErrEntryNotFound)
	}

	d.unindexEntry(entry)
	for key, value := range changes {
		if strings.EqualFold(key, "modifiedby") {
			entry.ModifiedBy = value.Render()
			continue
		}
		if value.IsAbsent() {
			deleteAttribute(entry.Attributes, key)
			continue
		}
		if entry.Attributes == nil {
			entry.Attributes = make(map[string]Value)
		}
		deleteAttribute(entry.Attributes, key)
		entry.Attributes[key] = value.Clone()
	}
	entry.ModifiedAt = d.clock()
	d.indexEntry(entry)
	d.stats.record(opModify, false)
	d.logger.Debug("entry_modified",
		slog.String("dn", normalized),
		slog.Int("change_count", len(changes)))
	return entry.Clone(), nil
}

// deleteAttribute removes key from attrs, matching case-insensitively so a
// change addressed as "Department" clears a stored "department".
func deleteAttribute(attrs map[string]Value, key string) {
	if attrs == nil {
		return
	}
	if _, ok := attrs[key]; ok {
		delete(attrs, key)
		return
	}
	for k := range attrs {
		if strings.EqualFold(k, key) {
			delete(attrs, k)
			return
		}
	}
}

// DeleteEntry removes the leaf entry at dn, unlinking it from its parent.
// Entries with children cannot be deleted; remove or move the subtree first.
func (d *Directory) DeleteEntry(dn string) error {
	const op = "DeleteEntry"
	normalized := NormalizeDN(dn)

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[normalized]
	if !ok {
		d.stats.record(opDelete, true)
		return operationError(op, normalized, ErrEntryNotFound)
	}
	if len(entry.Children) > 0 {
		d.stats.record(opDelete, true)
		return operationError(op, normalized, ErrNotLeaf).WithContext("child_count", len(entry.Children))
	}

	if entry.ParentDN != "" {
		if parent, ok := d.entries[entry.ParentDN]; ok {
			parent.Children = removeString(parent.Children, normalized)
		}
	}
	d.unindexEntry(entry)
	delete(d.entries, normalized)
	d.stats.record(opDelete, false)
	d.logger.Debug("entry_deleted", slog.String("dn", normalized))
	return nil
}

// GetChildren returns copies of the direct children of dn in insertion
// order. An unknown base DN yields an empty result; dangling child
// references are skipped.
func (d *Directory) GetChildren(dn string) []*Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[NormalizeDN(dn)]
	if !ok {
		return []*Entry{}
	}
	children := make([]*Entry, 0, len(entry.Children))
	for _, childDN := range entry.Children {
		if child, ok := d.entries[childDN]; ok {
			children = append(children, child.Clone())
		}
	}
	return children
}

// GetParent returns a copy of the parent of the entry at dn. A root entry
// has no parent, yielding (nil, nil). A missing entry yields
// ErrEntryNotFound.
func (d *Directory) GetParent(dn string) (*Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[NormalizeDN(dn)]
	if !ok {
		return nil, operationError("GetParent", NormalizeDN(dn), ErrEntryNotFound)
	}
	if entry.ParentDN == "" {
		return nil, nil
	}
	parent, ok := d.entries[entry.ParentDN]
	if !ok {
		return nil, nil
	}
	return parent.Clone(), nil
}

// GetAncestors returns copies of every ancestor of dn, nearest first,
// following structural parent links. An unknown DN yields an empty result.
func (d *Directory) GetAncestors(dn string) []*Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var ancestors []*Entry
	entry, ok := d.entries[NormalizeDN(dn)]
	if !ok {
		return ancestors
	}
	for entry.ParentDN != "" {
		parent, ok := d.entries[entry.ParentDN]
		if !ok {
			break
		}
		ancestors = append(ancestors, parent.Clone())
		entry = parent
	}
	return ancestors
}

// GetSubtree returns copies of the entry at dn and all of its descendants.
// An unknown base DN yields an empty result. The base entry comes first;
// descendant order follows the depth-first walk.
func (d *Directory) GetSubtree(dn string) []*Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	base, ok := d.entries[NormalizeDN(dn)]
	if !ok {
		return []*Entry{}
	}
	subtree := d.collectSubtree(base)
	copies := make([]*Entry, len(subtree))
	for i, entry := range subtree {
		copies[i] = entry.Clone()
	}
	return copies
}

// collectSubtree gathers base and every descendant using an explicit stack
// rather than recursion, bounding stack growth on deep trees. Dangling child
// references are skipped. Callers must hold the lock; the returned slice
// aliases stored entries.
func (d *Directory) collectSubtree(base *Entry) []*Entry {
	var result []*Entry
	stack := []*Entry{base}
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, entry)
		// Children pushed in reverse so the walk visits them in insertion
		// order.
		for i := len(entry.Children) - 1; i >= 0; i-- {
			if child, ok := d.entries[entry.Children[i]]; ok {
				stack = append(stack, child)
			}
		}
	}
	return result
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
