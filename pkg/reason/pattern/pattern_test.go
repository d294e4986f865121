package pattern

import "testing"

func TestNewTermClassification(t *testing.T) {
	cases := []struct {
		token string
		isVar bool
	}{
		{"?x", true},
		{"?name", true},
		{"car", false},
		{"?", false},  // lone sigil is a literal
		{"x?", false}, // sigil must lead
		{"??", true},
	}
	for _, tc := range cases {
		if got := NewTerm(tc.token).Var; got != tc.isVar {
			t.Errorf("NewTerm(%q).Var = %v, want %v", tc.token, got, tc.isVar)
		}
	}
}

func TestEqualStructural(t *testing.T) {
	a := New("is", "?x", "car")
	b := New("is", "?x", "car")
	if !a.Equal(b) {
		t.Error("identical patterns should be equal")
	}

	if a.Equal(New("was", "?x", "car")) {
		t.Error("different predicates should not be equal")
	}
	if a.Equal(New("is", "?x")) {
		t.Error("different arity should not be equal")
	}
	if a.Equal(New("is", "car", "?x")) {
		t.Error("argument order must matter")
	}
}

func TestKeyMatchesEquality(t *testing.T) {
	a := New("is", "?x", "car")
	b := New("is", "?x", "car")
	c := New("is", "car", "?x")

	if a.Key() != b.Key() {
		t.Error("equal patterns must share a key")
	}
	if a.Key() == c.Key() {
		t.Error("reordered arguments must change the key")
	}
	if New("is", "a", "b").Key() == New("is", "a b").Key() {
		t.Error("argument boundaries must be preserved in the key")
	}
}

func TestStringRendering(t *testing.T) {
	p := New("is", "?x", "car")
	if got := p.String(); got != "(is ?x car)" {
		t.Errorf("String() = %q, want %q", got, "(is ?x car)")
	}
	if got := New("halt").String(); got != "(halt)" {
		t.Errorf("String() = %q, want %q", got, "(halt)")
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, text := range []string{"(is ?x car)", "(halt)", "(needs ?x ?y fuel)"} {
		p, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		if got := p.String(); got != text {
			t.Errorf("round trip of %q = %q", text, got)
		}
	}
}

func TestParseWithoutParens(t *testing.T) {
	p, err := Parse("is ?x car")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.Equal(New("is", "?x", "car")) {
		t.Errorf("got %s", p)
	}
	if !p.Args[0].Var {
		t.Error("?x should parse as a variable")
	}
}

func TestParseEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "()"} {
		if _, err := Parse(text); err == nil {
			t.Errorf("Parse(%q) should fail", text)
		}
	}
}
