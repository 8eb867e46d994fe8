package vfskit

import (
	"errors"
	"testing"
)

func TestParseFilterMatchAll(t *testing.T) {
	for _, filter := range []string{"", "*", "*.*"} {
		p, err := ParseFilter(filter)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", filter, err)
		}
		if !p.IsMatchAll() {
			t.Errorf("ParseFilter(%q) should be match-all", filter)
		}
		for _, name := range []string{"a", "a.txt", "noext", ".hidden", "a.b.c"} {
			if !p.Match(name) {
				t.Errorf("filter %q should match %q", filter, name)
			}
		}
		if p.Match("") {
			t.Errorf("filter %q must not match the empty name", filter)
		}
	}
}

func TestParseFilterRejectsSeparators(t *testing.T) {
	for _, filter := range []string{"a/b", "/", `a\b`, "*/x"} {
		if _, err := ParseFilter(filter); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("ParseFilter(%q) = %v, want ErrInvalidFilter", filter, err)
		}
	}
}

func TestFilterPatternMatch(t *testing.T) {
	tests := []struct {
		filter string
		name   string
		want   bool
	}{
		// exact form
		{"exact.txt", "exact.txt", true},
		{"exact.txt", "exactXtxt", false},
		{"exact.txt", "exact.txt.bak", false},

		// optional-extension suffix
		{"foo.*", "foo", true},
		{"foo.*", "foo.bar", true},
		{"foo.*", "foo.tar.gz", true},
		{"foo.*", "fooX", false},
		{"foo.*", "xfoo", false},

		// star
		{"*.txt", "a.txt", true},
		{"*.txt", ".txt", true},
		{"*.txt", "a.txt.bak", false},
		{"*.txt", "atxt", false},

		// question mark
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"a?c", "abbc", false},

		// literal brackets are not character classes
		{"[ab].txt", "[ab].txt", true},
		{"[ab].txt", "a.txt", false},
	}
	for _, tt := range tests {
		p, err := ParseFilter(tt.filter)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", tt.filter, err)
		}
		if got := p.Match(tt.name); got != tt.want {
			t.Errorf("filter %q match %q = %v, want %v", tt.filter, tt.name, got, tt.want)
		}
	}
}
