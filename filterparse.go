package directory

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFilter parses an RFC 4515 LDAP filter string into a Filter tree:
//
//   - (attr=value)     equality
//   - (attr=*)         presence
//   - (attr=*val*)     substring, mapped onto contains/startsWith/endsWith
//   - (attr>=value)    greater or equal
//   - (attr<=value)    less or equal
//   - (attr~=value)    approximate match
//   - (&(f1)(f2)...)   AND
//   - (|(f1)(f2)...)   OR
//   - (!(filter))      NOT
//
// Substring patterns with several wildcard segments become a conjunction of
// prefix, contains and suffix leaves. Malformed input yields
// ErrInvalidFilter.
func ParseFilter(filterStr string) (*Filter, error) {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" {
		return nil, invalidFilter("empty filter")
	}
	return parseFilterExpr(filterStr)
}

func invalidFilter(detail string) error {
	return operationError("ParseFilter", "", ErrInvalidFilter).WithContext("detail", detail)
}

func parseFilterExpr(s string) (*Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, invalidFilter("empty expression")
	}
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		// Bare attr=value input is tolerated by wrapping it.
		if !strings.ContainsAny(s, "()") {
			s = "(" + s + ")"
		} else {
			return nil, invalidFilter("expression must be parenthesized")
		}
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, invalidFilter("empty parentheses")
	}

	switch inner[0] {
	case '&':
		children, err := parseFilterList(inner[1:])
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, invalidFilter("AND requires at least one child")
		}
		return And(children...), nil
	case '|':
		children, err := parseFilterList(inner[1:])
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, invalidFilter("OR requires at least one child")
		}
		return Or(children...), nil
	case '!':
		child, err := parseFilterExpr(strings.TrimSpace(inner[1:]))
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	default:
		return parseFilterLeaf(inner)
	}
}

func parseFilterList(s string) ([]*Filter, error) {
	var filters []*Filter
	s = strings.TrimSpace(s)
	for len(s) > 0 {
		if s[0] != '(' {
			return nil, invalidFilter("expected '(' in filter list")
		}
		depth := 0
		end := -1
		for i, c := range s {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			return nil, invalidFilter("unbalanced parentheses")
		}
		child, err := parseFilterExpr(s[:end+1])
		if err != nil {
			return nil, err
		}
		filters = append(filters, child)
		s = strings.TrimSpace(s[end+1:])
	}
	return filters, nil
}

func parseFilterLeaf(s string) (*Filter, error) {
	// The attribute ends at the first '='. The character before it selects
	// the operator, so an ordering token later in the value, as in
	// (desc=a>=b), stays part of the value.
	idx := strings.Index(s, "=")
	if idx <= 0 {
		return nil, invalidFilter("missing '=' in " + strconv.Quote(s))
	}

	var operator FilterOperator
	attrEnd := idx
	switch s[idx-1] {
	case '>':
		operator, attrEnd = OpGreaterOrEqual, idx-1
	case '<':
		operator, attrEnd = OpLessOrEqual, idx-1
	case '~':
		operator, attrEnd = OpApproximate, idx-1
	}
	if operator != "" {
		attr := strings.TrimSpace(s[:attrEnd])
		if attr == "" {
			return nil, invalidFilter("missing attribute in " + strconv.Quote(s))
		}
		value, err := unescapeFilterValue(s[idx+1:])
		if err != nil {
			return nil, err
		}
		if value == "" {
			return nil, invalidFilter("missing value for " + attr)
		}
		return &Filter{Attribute: attr, Operator: operator, Value: String(value)}, nil
	}

	attr := strings.TrimSpace(s[:idx])
	raw := s[idx+1:]

	if raw == "*" {
		return Present(attr), nil
	}
	if !strings.Contains(raw, "*") {
		value, err := unescapeFilterValue(raw)
		if err != nil {
			return nil, err
		}
		return Eq(attr, String(value)), nil
	}
	return parseSubstringLeaf(attr, raw)
}

// parseSubstringLeaf maps a wildcard pattern onto prefix/contains/suffix
// leaves, combining several segments with AND.
func parseSubstringLeaf(attr, raw string) (*Filter, error) {
	segments := strings.Split(raw, "*")
	var children []*Filter
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		value, err := unescapeFilterValue(segment)
		if err != nil {
			return nil, err
		}
		switch {
		case i == 0:
			children = append(children, StartsWith(attr, value))
		case i == len(segments)-1:
			children = append(children, EndsWith(attr, value))
		default:
			children = append(children, Contains(attr, value))
		}
	}
	if len(children) == 0 {
		return Present(attr), nil
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return And(children...), nil
}

// unescapeFilterValue decodes RFC 4515 backslash-hex escapes (\2a, \28 ...) in
// a filter value.
func unescapeFilterValue(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		if i+2 > len(s)-1 {
			return "", invalidFilter("truncated escape sequence")
		}
		b, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", invalidFilter(fmt.Sprintf("invalid escape sequence %q", s[i:i+3]))
		}
		sb.WriteByte(byte(b))
		i += 2
	}
	return sb.String(), nil
}
