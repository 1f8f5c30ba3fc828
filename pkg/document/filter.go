package document

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MatchKind identifies how a Filter compares an attribute.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"    // attribute equals value
	MatchPresent  MatchKind = "present"  // attribute exists, value ignored
	MatchContains MatchKind = "contains" // attribute contains value
	MatchClass    MatchKind = "class"    // class attribute holds every listed token
	MatchFunc     MatchKind = "func"     // attribute satisfies a predicate
)

// Filter restricts lookups to elements whose attribute satisfies a condition.
type Filter struct {
	Attr  string
	Kind  MatchKind
	Value string

	pred func(string) bool
}

// Exact matches elements whose attribute equals value.
func Exact(attr, value string) Filter {
	return Filter{Attr: attr, Kind: MatchExact, Value: value}
}

// Present matches elements that carry the attribute at all.
func Present(attr string) Filter {
	return Filter{Attr: attr, Kind: MatchPresent}
}

// Contains matches elements whose attribute contains substr.
func Contains(attr, substr string) Filter {
	return Filter{Attr: attr, Kind: MatchContains, Value: substr}
}

// Predicate matches elements whose attribute exists and satisfies fn.
func Predicate(attr string, fn func(string) bool) Filter {
	return Filter{Attr: attr, Kind: MatchFunc, pred: fn}
}

// Class matches elements carrying every class in names. A single name may
// hold several space-separated classes ("purchase loaded collapsed").
func Class(names ...string) Filter {
	return Filter{Attr: "class", Kind: MatchClass, Value: strings.Join(names, " ")}
}

// Matches reports whether the first element of s satisfies the filter.
func (f Filter) Matches(s *goquery.Selection) bool {
	value, ok := s.Attr(f.Attr)
	if !ok {
		return false
	}

	switch f.Kind {
	case MatchPresent:
		return true
	case MatchExact:
		return value == f.Value
	case MatchContains:
		return strings.Contains(value, f.Value)
	case MatchClass:
		classes := strings.Fields(value)
		for _, want := range strings.Fields(f.Value) {
			if !slices.Contains(classes, want) {
				return false
			}
		}
		return true
	case MatchFunc:
		return f.pred != nil && f.pred(value)
	default:
		return false
	}
}

// String renders the filter as a CSS-like attribute selector for log output.
func (f Filter) String() string {
	switch f.Kind {
	case MatchPresent:
		return "[" + f.Attr + "]"
	case MatchExact:
		return "[" + f.Attr + "=" + f.Value + "]"
	case MatchContains:
		return "[" + f.Attr + "*=" + f.Value + "]"
	case MatchClass:
		return "." + strings.Join(strings.Fields(f.Value), ".")
	default:
		return "[" + f.Attr + "?]"
	}
}
