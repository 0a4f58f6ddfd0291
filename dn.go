package directory

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// NormalizeDN returns the canonical form of a distinguished name: each
// comma-delimited component has its attribute name lower-cased and its value
// trimmed of surrounding whitespace.
//
// The codec is purely positional and does not interpret escape sequences, so
// commas embedded in attribute values are treated as component separators.
// Use ValidateDN when strict RFC 4514 syntax checking is needed.
//
// NormalizeDN is idempotent: NormalizeDN(NormalizeDN(x)) == NormalizeDN(x).
func NormalizeDN(dn string) string {
	if dn == "" {
		return ""
	}
	parts := strings.Split(dn, ",")
	for i, part := range parts {
		name, value, found := strings.Cut(part, "=")
		if !found {
			parts[i] = strings.TrimSpace(part)
			continue
		}
		parts[i] = strings.ToLower(strings.TrimSpace(name)) + "=" + strings.TrimSpace(value)
	}
	return strings.Join(parts, ",")
}

// ParseDN normalizes dn and splits it at the first component boundary,
// returning the relative distinguished name and the parent DN. The parent DN
// is empty for a root DN (one without a comma).
func ParseDN(dn string) (rdn, parentDN string) {
	normalized := NormalizeDN(dn)
	rdn, parentDN, found := strings.Cut(normalized, ",")
	if !found {
		return normalized, ""
	}
	return rdn, parentDN
}

// BuildDN joins an RDN with a parent DN. An empty parent yields the RDN
// itself, making the entry a root.
//
// For a non-empty parent, ParseDN(BuildDN(rdn, parent)) returns the inputs
// unchanged provided both were already in normalized form.
func BuildDN(rdn, parentDN string) string {
	if parentDN == "" {
		return rdn
	}
	return rdn + "," + parentDN
}

// SplitDN returns the normalized components of a DN in leaf-to-root order.
func SplitDN(dn string) []string {
	normalized := NormalizeDN(dn)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, ",")
}

// AncestorDNs returns every ancestor DN of dn in nearest-first order,
// computed positionally from the DN text. The result is empty for a root DN.
func AncestorDNs(dn string) []string {
	var ancestors []string
	_, parent := ParseDN(dn)
	for parent != "" {
		ancestors = append(ancestors, parent)
		_, parent = ParseDN(parent)
	}
	return ancestors
}

// IsDescendantDN reports whether dn sits strictly below ancestor in the
// naming hierarchy. The check is component-aligned: "ou=x,dc=example" is a
// descendant of "dc=example" but "dc=notexample" is not, even though the
// latter shares a textual suffix.
func IsDescendantDN(dn, ancestor string) bool {
	dn = NormalizeDN(dn)
	ancestor = NormalizeDN(ancestor)
	if dn == "" || ancestor == "" || dn == ancestor {
		return false
	}
	return strings.HasSuffix(dn, ","+ancestor)
}

// ValidateDN checks dn against RFC 4514 syntax, including escape handling
// the positional codec deliberately ignores. It returns ErrInvalidDN with
// the underlying parse failure attached when the DN is malformed.
func ValidateDN(dn string) error {
	if strings.TrimSpace(dn) == "" {
		return operationError("ValidateDN", dn, ErrInvalidDN)
	}
	if _, err := ldap.ParseDN(dn); err != nil {
		return operationError("ValidateDN", dn, ErrInvalidDN).WithContext("cause", err.Error())
	}
	return nil
}
