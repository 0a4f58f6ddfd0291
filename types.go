package directory

import (
	"strings"
	"time"
)

// EntryType categorizes a directory entry by the kind of object it holds.
type EntryType string

const (
	EntryTypeUser               EntryType = "user"
	EntryTypeGroup              EntryType = "group"
	EntryTypeOrganizationalUnit EntryType = "organizational-unit"
	EntryTypeOrganization       EntryType = "organization"
	EntryTypeDomain             EntryType = "domain"
	EntryTypeApplication        EntryType = "application"
	EntryTypeDevice             EntryType = "device"
	EntryTypeServicePrincipal   EntryType = "service-principal"
)

// entryTypeKeywords maps objectClass keywords to entry types in priority
// order. InferEntryType scans keywords outer-first, so an entry whose classes
// match several keywords gets the highest-priority type. Longer keywords
// precede their prefixes (organizationalunit before organization).
var entryTypeKeywords = []struct {
	keyword string
	typ     EntryType
}{
	{"inetorgperson", EntryTypeUser},
	{"person", EntryTypeUser},
	{"user", EntryTypeUser},
	{"account", EntryTypeUser},
	{"group", EntryTypeGroup},
	{"organizationalunit", EntryTypeOrganizationalUnit},
	{"organization", EntryTypeOrganization},
	{"domain", EntryTypeDomain},
	{"dcobject", EntryTypeDomain},
	{"application", EntryTypeApplication},
	{"device", EntryTypeDevice},
	{"computer", EntryTypeDevice},
	{"serviceprincipal", EntryTypeServicePrincipal},
}

// InferEntryType derives an entry type from an objectClass list using a
// fixed first-match keyword table. Entries matching nothing default to
// organizational-unit.
func InferEntryType(objectClasses []string) EntryType {
	for _, kw := range entryTypeKeywords {
		for _, oc := range objectClasses {
			if strings.Contains(strings.ToLower(oc), kw.keyword) {
				return kw.typ
			}
		}
	}
	return EntryTypeOrganizationalUnit
}

// Entry is a node in the directory tree, uniquely keyed by its normalized
// distinguished name.
//
// ParentDN is empty only for root entries. Children always holds the DNs of
// exactly those entries whose ParentDN equals this entry's DN; the store
// maintains that invariant on every structural mutation.
type Entry struct {
	// DN is the normalized distinguished name, the entry's unique key.
	DN string
	// ObjectClass lists the entry's schema classes in the order given.
	ObjectClass []string
	// EntryType categorizes the entry; inferred from ObjectClass when not
	// set explicitly on add.
	EntryType EntryType
	// CN is the common name used for display and top-level search.
	CN string
	// Attributes holds the entry's attribute values.
	Attributes map[string]Value
	// ParentDN names the parent entry, empty for roots.
	ParentDN string
	// Children lists direct child DNs in insertion order.
	Children []string

	CreatedAt  time.Time
	ModifiedAt time.Time
	ModifiedBy string
}

// Clone returns a deep copy of the entry. Mutating the clone never affects
// the original, including its attribute lists and children slice. Empty
// slices stay empty rather than collapsing to nil, so the "children list is
// reset" shape AddEntry installs survives the copy.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.ObjectClass != nil {
		clone.ObjectClass = make([]string, len(e.ObjectClass))
		copy(clone.ObjectClass, e.ObjectClass)
	}
	if e.Children != nil {
		clone.Children = make([]string, len(e.Children))
		copy(clone.Children, e.Children)
	}
	if e.Attributes != nil {
		clone.Attributes = make(map[string]Value, len(e.Attributes))
		for k, v := range e.Attributes {
			clone.Attributes[k] = v.Clone()
		}
	}
	return &clone
}

// HasObjectClass reports whether the entry carries the named class,
// compared case-insensitively.
func (e *Entry) HasObjectClass(name string) bool {
	for _, oc := range e.ObjectClass {
		if strings.EqualFold(oc, name) {
			return true
		}
	}
	return false
}

// RDN returns the entry's relative distinguished name, its leftmost DN
// component.
func (e *Entry) RDN() string {
	rdn, _ := ParseDN(e.DN)
	return rdn
}

// Resolve looks up an attribute by name for filtering, sorting and compare
// operations. Top-level fields (dn, cn, objectClass, entryType, parentDn,
// createdAt, modifiedAt, modifiedBy) take precedence over the attributes
// map; names are matched case-insensitively. The second return is false when
// the name resolves to nothing.
func (e *Entry) Resolve(name string) (Value, bool) {
	switch strings.ToLower(name) {
	case "dn":
		return String(e.DN), true
	case "cn":
		if e.CN == "" {
			return Value{}, false
		}
		return String(e.CN), true
	case "objectclass":
		if len(e.ObjectClass) == 0 {
			return Value{}, false
		}
		return Strings(e.ObjectClass...), true
	case "entrytype":
		if e.EntryType == "" {
			return Value{}, false
		}
		return String(string(e.EntryType)), true
	case "parentdn":
		if e.ParentDN == "" {
			return Value{}, false
		}
		return String(e.ParentDN), true
	case "createdat":
		if e.CreatedAt.IsZero() {
			return Value{}, false
		}
		return String(e.CreatedAt.UTC().Format(time.RFC3339)), true
	case "modifiedat":
		if e.ModifiedAt.IsZero() {
			return Value{}, false
		}
		return String(e.ModifiedAt.UTC().Format(time.RFC3339)), true
	case "modifiedby":
		if e.ModifiedBy == "" {
			return Value{}, false
		}
		return String(e.ModifiedBy), true
	}
	if e.Attributes == nil {
		return Value{}, false
	}
	if v, ok := e.Attributes[name]; ok && !v.IsAbsent() {
		return v, true
	}
	for k, v := range e.Attributes {
		if strings.EqualFold(k, name) && !v.IsAbsent() {
			return v, true
		}
	}
	return Value{}, false
}

// HasAttribute reports whether name resolves to a present value, either as a
// top-level field or an attributes-map key.
func (e *Entry) HasAttribute(name string) bool {
	_, ok := e.Resolve(name)
	return ok
}
