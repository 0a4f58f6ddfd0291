package directory

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// FilterOperator names a leaf comparison in a filter tree.
type FilterOperator string

const (
	OpEquals         FilterOperator = "equals"
	OpContains       FilterOperator = "contains"
	OpStartsWith     FilterOperator = "startsWith"
	OpEndsWith       FilterOperator = "endsWith"
	OpPresent        FilterOperator = "present"
	OpApproximate    FilterOperator = "approximate"
	OpGreaterOrEqual FilterOperator = "greaterOrEqual"
	OpLessOrEqual    FilterOperator = "lessOrEqual"
)

// FilterLogic names a compound combinator in a filter tree.
type FilterLogic string

const (
	LogicAnd FilterLogic = "AND"
	LogicOr  FilterLogic = "OR"
	LogicNot FilterLogic = "NOT"
)

// Filter is one node of a compound boolean filter. A node is compound when
// Logic is set and Children is non-empty; otherwise it is a leaf comparing
// the resolved Attribute against Value under Operator.
//
// NOT applies only to Children[0]; any further children under a NOT node are
// ignored, not evaluated.
type Filter struct {
	// Leaf fields.
	Attribute string
	Operator  FilterOperator
	Value     Value

	// Compound fields.
	Logic    FilterLogic
	Children []*Filter
}

// Eq builds an equality leaf. String comparison is case-insensitive; lists
// compare element-wise, and a scalar against a list is a membership test.
func Eq(attribute string, value Value) *Filter {
	return &Filter{Attribute: attribute, Operator: OpEquals, Value: value}
}

// Contains builds a case-insensitive substring leaf.
func Contains(attribute, substring string) *Filter {
	return &Filter{Attribute: attribute, Operator: OpContains, Value: String(substring)}
}

// StartsWith builds a case-insensitive prefix leaf.
func StartsWith(attribute, prefix string) *Filter {
	return &Filter{Attribute: attribute, Operator: OpStartsWith, Value: String(prefix)}
}

// EndsWith builds a case-insensitive suffix leaf.
func EndsWith(attribute, suffix string) *Filter {
	return &Filter{Attribute: attribute, Operator: OpEndsWith, Value: String(suffix)}
}

// Present builds a presence leaf matching entries where the attribute
// resolves to any value.
func Present(attribute string) *Filter {
	return &Filter{Attribute: attribute, Operator: OpPresent}
}

// Approx builds an approximate-match leaf: a bidirectional,
// whitespace-stripped, case-insensitive substring test. It is a coarse fuzzy
// heuristic, not phonetic matching.
func Approx(attribute, value string) *Filter {
	return &Filter{Attribute: attribute, Operator: OpApproximate, Value: String(value)}
}

// Ge builds a greater-or-equal ordering leaf.
func Ge(attribute string, value Value) *Filter {
	return &Filter{Attribute: attribute, Operator: OpGreaterOrEqual, Value: value}
}

// Le builds a less-or-equal ordering leaf.
func Le(attribute string, value Value) *Filter {
	return &Filter{Attribute: attribute, Operator: OpLessOrEqual, Value: value}
}

// And builds a conjunction; it matches when every child matches.
func And(children ...*Filter) *Filter {
	return &Filter{Logic: LogicAnd, Children: children}
}

// Or builds a disjunction; it matches when at least one child matches.
func Or(children ...*Filter) *Filter {
	return &Filter{Logic: LogicOr, Children: children}
}

// Not builds a negation of its single child.
func Not(child *Filter) *Filter {
	return &Filter{Logic: LogicNot, Children: []*Filter{child}}
}

// Matches evaluates the filter against one entry. A nil filter matches
// everything.
func (f *Filter) Matches(entry *Entry) bool {
	if f == nil {
		return true
	}
	if entry == nil {
		return false
	}
	if f.Logic != "" && len(f.Children) > 0 {
		switch f.Logic {
		case LogicAnd:
			for _, child := range f.Children {
				if !child.Matches(entry) {
					return false
				}
			}
			return true
		case LogicOr:
			for _, child := range f.Children {
				if child.Matches(entry) {
					return true
				}
			}
			return false
		case LogicNot:
			return !f.Children[0].Matches(entry)
		}
	}
	return f.matchesLeaf(entry)
}

func (f *Filter) matchesLeaf(entry *Entry) bool {
	resolved, ok := entry.Resolve(f.Attribute)
	switch f.Operator {
	case OpPresent:
		return ok
	case OpEquals:
		return ok && resolved.Equal(f.Value)
	case OpContains:
		return ok && anyElement(resolved, func(s string) bool {
			return strings.Contains(strings.ToLower(s), strings.ToLower(f.Value.Render()))
		})
	case OpStartsWith:
		return ok && anyElement(resolved, func(s string) bool {
			return strings.HasPrefix(strings.ToLower(s), strings.ToLower(f.Value.Render()))
		})
	case OpEndsWith:
		return ok && anyElement(resolved, func(s string) bool {
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(f.Value.Render()))
		})
	case OpApproximate:
		if !ok {
			return false
		}
		pattern := squash(f.Value.Render())
		return anyElement(resolved, func(s string) bool {
			candidate := squash(s)
			return strings.Contains(candidate, pattern) || strings.Contains(pattern, candidate)
		})
	case OpGreaterOrEqual:
		return ok && anyOrdered(resolved, f.Value, func(cmp int) bool { return cmp >= 0 })
	case OpLessOrEqual:
		return ok && anyOrdered(resolved, f.Value, func(cmp int) bool { return cmp <= 0 })
	default:
		return false
	}
}

// anyElement applies pred to each scalar element of v, rendered as a string.
func anyElement(v Value, pred func(string) bool) bool {
	for _, e := range v.Elements() {
		if pred(e.Render()) {
			return true
		}
	}
	return false
}

// anyOrdered compares each scalar element of v with target and reports
// whether any comparison satisfies accept.
func anyOrdered(v, target Value, accept func(int) bool) bool {
	for _, e := range v.Elements() {
		if cmp, ok := e.Compare(target); ok && accept(cmp) {
			return true
		}
	}
	return false
}

// squash lowercases s and removes all whitespace, the normalization behind
// approximate matching.
func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// String renders the filter tree in standard LDAP filter syntax, escaping
// values per RFC 4515. Useful for logging and for handing filters to
// external LDAP tooling.
func (f *Filter) String() string {
	if f == nil {
		return "(objectClass=*)"
	}
	if f.Logic != "" && len(f.Children) > 0 {
		var symbol string
		switch f.Logic {
		case LogicAnd:
			symbol = "&"
		case LogicOr:
			symbol = "|"
		case LogicNot:
			return fmt.Sprintf("(!%s)", f.Children[0].String())
		}
		var sb strings.Builder
		sb.WriteString("(")
		sb.WriteString(symbol)
		for _, child := range f.Children {
			sb.WriteString(child.String())
		}
		sb.WriteString(")")
		return sb.String()
	}
	escaped := ldap.EscapeFilter(f.Value.Render())
	switch f.Operator {
	case OpPresent:
		return fmt.Sprintf("(%s=*)", f.Attribute)
	case OpContains:
		return fmt.Sprintf("(%s=*%s*)", f.Attribute, escaped)
	case OpStartsWith:
		return fmt.Sprintf("(%s=%s*)", f.Attribute, escaped)
	case OpEndsWith:
		return fmt.Sprintf("(%s=*%s)", f.Attribute, escaped)
	case OpApproximate:
		return fmt.Sprintf("(%s~=%s)", f.Attribute, escaped)
	case OpGreaterOrEqual:
		return fmt.Sprintf("(%s>=%s)", f.Attribute, escaped)
	case OpLessOrEqual:
		return fmt.Sprintf("(%s<=%s)", f.Attribute, escaped)
	default:
		return fmt.Sprintf("(%s=%s)", f.Attribute, escaped)
	}
}
