package directory

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ToLDAPEntry converts a directory entry into a go-ldap entry. The
// objectClass list, common name and entry type travel as regular attributes;
// list values flatten element-wise and scalars become single-element value
// lists. Useful when the store backs tests or tooling that already speak
// go-ldap types.
func ToLDAPEntry(entry *Entry) *ldap.Entry {
	if entry == nil {
		return nil
	}
	attrs := make(map[string][]string, len(entry.Attributes)+3)
	if len(entry.ObjectClass) > 0 {
		attrs["objectClass"] = append([]string(nil), entry.ObjectClass...)
	}
	if entry.CN != "" {
		attrs["cn"] = []string{entry.CN}
	}
	if entry.EntryType != "" {
		attrs["entryType"] = []string{string(entry.EntryType)}
	}
	for name, value := range entry.Attributes {
		elems := value.Elements()
		strs := make([]string, len(elems))
		for i, e := range elems {
			strs[i] = e.Render()
		}
		attrs[name] = strs
	}
	return ldap.NewEntry(entry.DN, attrs)
}

// FromLDAPEntry converts a go-ldap entry into a directory entry suitable for
// AddEntry. The objectClass, cn and entryType attributes map onto top-level
// fields; everything else lands in the attributes map, single values as
// scalars and multi-values as lists.
func FromLDAPEntry(le *ldap.Entry) *Entry {
	if le == nil {
		return nil
	}
	entry := &Entry{
		DN:         le.DN,
		Attributes: make(map[string]Value),
	}
	for _, attr := range le.Attributes {
		switch strings.ToLower(attr.Name) {
		case "objectclass":
			entry.ObjectClass = append([]string(nil), attr.Values...)
		case "cn":
			if len(attr.Values) > 0 {
				entry.CN = attr.Values[0]
			}
		case "entrytype":
			if len(attr.Values) > 0 {
				entry.EntryType = EntryType(attr.Values[0])
			}
		default:
			entry.Attributes[attr.Name] = stringValuesToValue(attr.Values)
		}
	}
	return entry
}

// FromAddRequest converts a go-ldap add request into a directory entry.
func FromAddRequest(req *ldap.AddRequest) *Entry {
	if req == nil {
		return nil
	}
	entry := &Entry{
		DN:         req.DN,
		Attributes: make(map[string]Value),
	}
	for _, attr := range req.Attributes {
		switch strings.ToLower(attr.Type) {
		case "objectclass":
			entry.ObjectClass = append([]string(nil), attr.Vals...)
		case "cn":
			if len(attr.Vals) > 0 {
				entry.CN = attr.Vals[0]
			}
		default:
			entry.Attributes[attr.Type] = stringValuesToValue(attr.Vals)
		}
	}
	return entry
}

func stringValuesToValue(values []string) Value {
	if len(values) == 1 {
		return String(values[0])
	}
	return Strings(values...)
}
