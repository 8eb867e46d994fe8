package vfskit

import "testing"

func TestNewPathCanonicalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"root", "/", "/"},
		{"simple absolute", "/a/b", "/a/b"},
		{"simple relative", "a/b", "a/b"},
		{"backslashes", `\a\b`, "/a/b"},
		{"mixed separators", `/a\b/c`, "/a/b/c"},
		{"collapse runs", "/a//b///c", "/a/b/c"},
		{"trailing slash", "/a/b/", "/a/b"},
		{"root trailing", "///", "/"},
		{"dot segments", "/a/./b/.", "/a/b"},
		{"dotdot resolves", "/a/b/../c", "/a/c"},
		{"dotdot at root stays", "/../..", "/"},
		{"dotdot of root", "/..", "/"},
		{"relative dotdot kept", "../a", "../a"},
		{"relative dotdot chain", "a/../../b", "../b"},
		{"dotdot eats all", "a/b/../..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPath(tt.in)
			if got.String() != tt.want {
				t.Errorf("NewPath(%q) = %q, want %q", tt.in, got.String(), tt.want)
			}
			// canonicalization is idempotent
			again := NewPath(got.String())
			if again != got {
				t.Errorf("NewPath(%q) not idempotent: %q", tt.in, again.String())
			}
		})
	}
}

func TestPathStates(t *testing.T) {
	var null UPath
	if !null.IsNull() || null.IsEmpty() || null.IsAbsolute() || null.IsRelative() {
		t.Errorf("zero value should be null only")
	}
	empty := NewPath("")
	if empty.IsNull() || !empty.IsEmpty() || empty.IsAbsolute() {
		t.Errorf("NewPath(\"\") should be empty, not null")
	}
	if null == empty {
		t.Errorf("null and empty paths must differ")
	}
	abs := NewPath("/a")
	if !abs.IsAbsolute() || abs.IsRelative() {
		t.Errorf("/a should be absolute")
	}
	rel := NewPath("a")
	if rel.IsAbsolute() || !rel.IsRelative() {
		t.Errorf("a should be relative")
	}
}

func TestPathJoin(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"/a", "b", "/a/b"},
		{"/a", "b/c", "/a/b/c"},
		{"/a", "/b", "/b"}, // absolute b wins
		{"", "b", "b"},
		{"/", "b", "/b"},
		{"/a", "", "/a"},
		{"/a/b", "../c", "/a/c"},
		{"a", "b", "a/b"},
	}
	for _, tt := range tests {
		got := NewPath(tt.a).Join(NewPath(tt.b))
		if got.String() != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.a, tt.b, got.String(), tt.want)
		}
	}

	// join keeps the result inside the base unless b escapes with ".."
	for _, b := range []string{"x", "x/y", "x/../y"} {
		a := NewPath("/base")
		if !a.Join(NewPath(b)).IsInDirectory(a, true) {
			t.Errorf("(%q / %q) should stay inside %q", a, b, a)
		}
	}
}

func TestPathParentNameExtension(t *testing.T) {
	tests := []struct {
		in, parent, name, stem, ext string
	}{
		{"/a/b/c.txt", "/a/b", "c.txt", "c", ".txt"},
		{"/a", "/", "a", "a", ""},
		{"/", "/", "", "", ""},
		{"a.tar.gz", "", "a.tar.gz", "a.tar", ".gz"},
		{"/d/.hidden", "/d", ".hidden", "", ".hidden"},
	}
	for _, tt := range tests {
		p := NewPath(tt.in)
		if got := p.Parent().String(); got != tt.parent {
			t.Errorf("Parent(%q) = %q, want %q", tt.in, got, tt.parent)
		}
		if got := p.Name(); got != tt.name {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.name)
		}
		if got := p.NameWithoutExtension(); got != tt.stem {
			t.Errorf("NameWithoutExtension(%q) = %q, want %q", tt.in, got, tt.stem)
		}
		if got := p.Extension(); got != tt.ext {
			t.Errorf("Extension(%q) = %q, want %q", tt.in, got, tt.ext)
		}
	}
}

func TestPathIsInDirectory(t *testing.T) {
	tests := []struct {
		p, dir    string
		recursive bool
		want      bool
	}{
		{"/a/b", "/a", false, true},
		{"/a/b/c", "/a", false, false},
		{"/a/b/c", "/a", true, true},
		{"/a", "/a", false, true},
		{"/ab", "/a", true, false},
		{"/b", "/a", true, false},
		{"/x", "/", false, true},
		{"/x/y", "/", false, false},
		{"/x/y", "/", true, true},
	}
	for _, tt := range tests {
		got := NewPath(tt.p).IsInDirectory(NewPath(tt.dir), tt.recursive)
		if got != tt.want {
			t.Errorf("IsInDirectory(%q, %q, %v) = %v, want %v", tt.p, tt.dir, tt.recursive, got, tt.want)
		}
	}
}

func TestPathToRelativeToAbsolute(t *testing.T) {
	if got := NewPath("/a/b").ToRelative().String(); got != "a/b" {
		t.Errorf("ToRelative(/a/b) = %q", got)
	}
	if got := NewPath("/").ToRelative().String(); got != "" {
		t.Errorf("ToRelative(/) = %q", got)
	}
	if got := NewPath("a/b").ToAbsolute().String(); got != "/a/b" {
		t.Errorf("ToAbsolute(a/b) = %q", got)
	}
	if got := NewPath("/a").ToAbsolute().String(); got != "/a" {
		t.Errorf("ToAbsolute(/a) = %q", got)
	}
}

func TestPathAsserts(t *testing.T) {
	var null UPath
	if err := null.AssertNotNull(); !IsInvalidPath(err) {
		t.Errorf("AssertNotNull on null = %v, want ErrInvalidPath", err)
	}
	if err := NewPath("a/b").AssertAbsolute(); !IsInvalidPath(err) {
		t.Errorf("AssertAbsolute on relative = %v, want ErrInvalidPath", err)
	}
	if err := NewPath("/a").AssertAbsolute(); err != nil {
		t.Errorf("AssertAbsolute on absolute = %v", err)
	}
}

func TestPathEqualityAndHashing(t *testing.T) {
	a := NewPath("/a//b/../c")
	b := NewPath("/a/c")
	if a != b {
		t.Fatalf("%q and %q should compare equal", a, b)
	}
	m := map[UPath]int{a: 1}
	if m[b] != 1 {
		t.Errorf("equal paths must hash to the same key")
	}
}
