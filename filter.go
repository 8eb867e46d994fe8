package vfskit

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// FilterPattern is a compiled matcher over a single path name segment.
//
// Supported specials are "*" (any run of characters) and "?" (exactly one
// character); everything else matches literally. Directory separators are
// rejected at parse time. The filters "", "*" and "*.*" all match every
// non-empty name, and a trailing ".*" makes the extension optional, so
// "foo.*" matches both "foo" and "foo.bar".
type FilterPattern struct {
	filter   string
	matchAll bool
	exact    string
	compiled glob.Glob
}

// ParseFilter compiles a name filter. Filters containing a directory
// separator fail with ErrInvalidFilter.
func ParseFilter(filter string) (FilterPattern, error) {
	if strings.ContainsAny(filter, "/\\") {
		return FilterPattern{}, fmt.Errorf("%w: %q must not contain a directory separator", ErrInvalidFilter, filter)
	}

	switch filter {
	case "", "*", "*.*":
		return FilterPattern{filter: filter, matchAll: true}, nil
	}

	if !strings.ContainsAny(filter, "*?") {
		return FilterPattern{filter: filter, exact: filter}, nil
	}

	g, err := glob.Compile(translateFilter(filter))
	if err != nil {
		return FilterPattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidFilter, filter, err)
	}
	return FilterPattern{filter: filter, compiled: g}, nil
}

// MustParseFilter is ParseFilter that panics on a bad filter. Intended for
// literals.
func MustParseFilter(filter string) FilterPattern {
	p, err := ParseFilter(filter)
	if err != nil {
		panic(err)
	}
	return p
}

// translateFilter rewrites a name filter into gobwas/glob syntax: literal
// runs are quoted so only "*" and "?" stay special, and a trailing ".*"
// becomes an alternation that also matches the bare name.
func translateFilter(filter string) string {
	if base, ok := strings.CutSuffix(filter, ".*"); ok && base != "" {
		b := translateLiteral(base)
		return "{" + b + "," + b + `\.*}`
	}
	return translateLiteral(filter)
}

func translateLiteral(filter string) string {
	var b strings.Builder
	start := 0
	for i, r := range filter {
		if r != '*' && r != '?' {
			continue
		}
		b.WriteString(glob.QuoteMeta(filter[start:i]))
		b.WriteRune(r)
		start = i + 1
	}
	b.WriteString(glob.QuoteMeta(filter[start:]))
	return b.String()
}

// String returns the original filter text.
func (p FilterPattern) String() string { return p.filter }

// IsMatchAll reports whether the pattern matches every non-empty name.
func (p FilterPattern) IsMatchAll() bool { return p.matchAll }

// Match reports whether name satisfies the pattern. The empty name never
// matches.
func (p FilterPattern) Match(name string) bool {
	if name == "" {
		return false
	}
	switch {
	case p.matchAll:
		return true
	case p.compiled != nil:
		return p.compiled.Match(name)
	default:
		return p.exact == name
	}
}
