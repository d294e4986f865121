// Package pattern defines the value types the inference engine works
// on: patterns, consequents and rules, plus the textual grammar used
// to persist them.
package pattern

import (
	"fmt"
	"strings"
)

// Sigil marks an argument token as a variable. A token is a variable
// iff it is longer than one character and starts with the sigil;
// the classification happens once, at construction.
const Sigil = '?'

// Term is one argument slot in a pattern or consequent.
type Term struct {
	Text string
	Var  bool
}

// NewTerm classifies a raw token as a literal or a variable.
func NewTerm(token string) Term {
	return Term{
		Text: token,
		Var:  len(token) > 1 && token[0] == Sigil,
	}
}

// String returns the raw token text.
func (t Term) String() string { return t.Text }

// Pattern is a predicate with ordered argument terms. It is used both
// as a query/fact and as a rule's antecedent. Patterns are value
// types and are never mutated after construction.
type Pattern struct {
	Predicate string
	Args      []Term
}

// Consequent has the same shape as a Pattern but is produced as
// inference output. A derived consequent can be fed back in as a fact.
type Consequent = Pattern

// New builds a pattern from a predicate and raw argument tokens.
func New(predicate string, args ...string) Pattern {
	terms := make([]Term, len(args))
	for i, a := range args {
		terms[i] = NewTerm(a)
	}
	return Pattern{Predicate: predicate, Args: terms}
}

// Equal reports structural equality: same predicate and the same
// ordered argument tokens.
func (p Pattern) Equal(other Pattern) bool {
	if p.Predicate != other.Predicate || len(p.Args) != len(other.Args) {
		return false
	}
	for i := range p.Args {
		if p.Args[i].Text != other.Args[i].Text {
			return false
		}
	}
	return true
}

// Key returns an order-sensitive structural key combining the
// predicate and argument tokens. Two patterns share a key iff they
// are Equal, so the key is safe for aggregation maps.
func (p Pattern) Key() string {
	var b strings.Builder
	b.WriteString(p.Predicate)
	for _, a := range p.Args {
		b.WriteByte(0x1f)
		b.WriteString(a.Text)
	}
	return b.String()
}

// String renders the pattern in the persisted grammar: a
// parenthesized, whitespace-separated token list, predicate first.
func (p Pattern) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(p.Predicate)
	for _, a := range p.Args {
		b.WriteByte(' ')
		b.WriteString(a.Text)
	}
	b.WriteByte(')')
	return b.String()
}

// Parse reads a pattern from the parenthesized grammar, e.g.
// "(is ?x car)". The surrounding parentheses are optional.
func Parse(s string) (Pattern, error) {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return Pattern{}, fmt.Errorf("parse pattern %q: empty", s)
	}
	return New(fields[0], fields[1:]...), nil
}

// Rule pairs an antecedent pattern with a consequent and a learned
// bias added to the match score before attention weighting. Rules are
// constructed once and never mutated.
type Rule struct {
	ID         int
	Pattern    Pattern
	Consequent Consequent
	Bias       float64
}

// NewRule builds a rule from already-parsed parts.
func NewRule(id int, pat Pattern, cons Consequent, bias float64) Rule {
	return Rule{ID: id, Pattern: pat, Consequent: cons, Bias: bias}
}
