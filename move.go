package directory

import (
	"log/slog"
)

// MoveEntry re-parents the entry at dn under newParentDN, carrying its whole
// subtree along. The entry keeps its RDN; its new DN is the RDN joined with
// the new parent DN. Moving an entry under itself or one of its own
// descendants is rejected before any mutation, as is a move onto a DN that
// is already occupied by a different entry.
//
// Every descendant is re-keyed one node at a time during a depth-first walk
// of the structural child links. Each new DN is computed from the
// descendant's own RDN chain joined to its re-keyed parent, never by
// substring replacement on the old DN text, which would corrupt names when
// the old prefix text recurs inside a descendant's RDN chain.
//
// Returns an independent copy of the moved entry at its new DN.
func (d *Directory) MoveEntry(dn, newParentDN string) (*Entry, error) {
	const op = "MoveEntry"
	oldDN := NormalizeDN(dn)
	parentDN := NormalizeDN(newParentDN)

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[oldDN]
	if !ok {
		d.stats.record(opMove, true)
		return nil, operationError(op, oldDN, ErrEntryNotFound)
	}
	newParent, ok := d.entries[parentDN]
	if !ok {
		d.stats.record(opMove, true)
		return nil, operationError(op, oldDN, ErrParentNotFound).WithContext("new_parent_dn", parentDN)
	}
	if parentDN == oldDN || IsDescendantDN(parentDN, oldDN) {
		d.stats.record(opMove, true)
		return nil, operationError(op, oldDN, ErrHierarchyViolation).WithContext("new_parent_dn", parentDN)
	}

	rdn, _ := ParseDN(oldDN)
	newDN := BuildDN(rdn, parentDN)
	if _, occupied := d.entries[newDN]; occupied && newDN != oldDN {
		d.stats.record(opMove, true)
		return nil, operationError(op, oldDN, ErrTargetCollision).WithContext("target_dn", newDN)
	}

	// All checks passed; from here the move runs to completion.
	if entry.ParentDN != "" {
		if oldParent, ok := d.entries[entry.ParentDN]; ok {
			oldParent.Children = removeString(oldParent.Children, oldDN)
		}
	}
	d.rekeyEntry(entry, newDN, parentDN)
	newParent.Children = append(newParent.Children, newDN)
	entry.ModifiedAt = d.clock()

	// Re-key descendants depth-first, one node at a time, so no transient
	// state ever has two entries under one key.
	stack := []*Entry{entry}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, childDN := range node.Children {
			child, ok := d.entries[childDN]
			if !ok {
				continue
			}
			childRDN, _ := ParseDN(childDN)
			newChildDN := BuildDN(childRDN, node.DN)
			d.rekeyEntry(child, newChildDN, node.DN)
			node.Children[i] = newChildDN
			stack = append(stack, child)
		}
	}

	d.stats.record(opMove, false)
	d.logger.Debug("entry_moved",
		slog.String("old_dn", oldDN),
		slog.String("new_dn", newDN))
	return entry.Clone(), nil
}

// rekeyEntry moves a stored entry to a new map key and updates its DN and
// parent link, keeping the attribute index in step. Caller holds the lock.
func (d *Directory) rekeyEntry(entry *Entry, newDN, newParentDN string) {
	oldDN := entry.DN
	if oldDN != newDN {
		delete(d.entries, oldDN)
	}
	entry.DN = newDN
	entry.ParentDN = newParentDN
	d.entries[newDN] = entry
	d.index.rekey(oldDN, newDN)
}
