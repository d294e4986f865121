// Package match is the canonical matching and substitution module.
// Matching is flat, positional and single-pass: no function terms, no
// recursive unification. Non-matches are plain (0, nil) results, never
// errors.
package match

import (
	"github.com/cognicore/reason/pkg/reason/pattern"
)

// Bindings maps a variable token to the literal it matched during one
// match attempt. A bindings map is built fresh per attempt and is not
// retained across calls.
type Bindings map[string]string

// DefaultFuzzyThreshold is the confidence floor FuzzyMatch applies
// when callers have no better value.
const DefaultFuzzyThreshold = 0.7

// Score matches a query against a rule pattern and returns a
// confidence score with the variable bindings established along the
// way. Predicate or arity mismatch, a literal clash, or an
// inconsistent re-binding of a variable all yield (0, nil).
//
// A full match scores 1.0. Confidence is a hook for future
// partial-credit scoring; today only exact matches succeed.
func Score(query, pat pattern.Pattern) (float64, Bindings) {
	if !Compatible(query, pat) {
		return 0, nil
	}

	var bindings Bindings
	for i, arg := range pat.Args {
		queryText := query.Args[i].Text
		if arg.Var {
			if bound, ok := bindings[arg.Text]; ok {
				if bound != queryText {
					return 0, nil
				}
				continue
			}
			if bindings == nil {
				bindings = make(Bindings)
			}
			bindings[arg.Text] = queryText
			continue
		}
		if arg.Text != queryText {
			return 0, nil
		}
	}

	return 1.0, bindings
}

// FuzzyMatch is Score with a confidence floor: results scoring below
// the threshold are reported as non-matches.
func FuzzyMatch(query, pat pattern.Pattern, threshold float64) (float64, Bindings) {
	score, bindings := Score(query, pat)
	if score >= threshold {
		return score, bindings
	}
	return 0, nil
}

// Compatible reports whether two patterns could match at all: same
// predicate and same argument count. No binding work is done.
func Compatible(query, pat pattern.Pattern) bool {
	return query.Predicate == pat.Predicate && len(query.Args) == len(pat.Args)
}

// Variables returns the variable tokens of a pattern in argument
// order. Repeated variables appear once per occurrence.
func Variables(p pattern.Pattern) []string {
	var vars []string
	for _, arg := range p.Args {
		if arg.Var {
			vars = append(vars, arg.Text)
		}
	}
	return vars
}

// Validate reports whether a pattern is well formed: non-empty
// predicate and no empty argument tokens.
func Validate(p pattern.Pattern) bool {
	if p.Predicate == "" {
		return false
	}
	for _, arg := range p.Args {
		if arg.Text == "" {
			return false
		}
	}
	return true
}

// Substitute replaces every bound variable in the consequent's
// arguments with its literal. Unbound variables pass through
// unchanged; not every consequent variable need appear in the matched
// pattern.
func Substitute(c pattern.Consequent, bindings Bindings) pattern.Consequent {
	args := make([]pattern.Term, len(c.Args))
	for i, arg := range c.Args {
		if arg.Var {
			if value, ok := bindings[arg.Text]; ok {
				args[i] = pattern.NewTerm(value)
				continue
			}
		}
		args[i] = arg
	}
	return pattern.Consequent{Predicate: c.Predicate, Args: args}
}

// FullyBound reports whether every variable in the consequent has an
// entry in bindings.
func FullyBound(c pattern.Consequent, bindings Bindings) bool {
	for _, arg := range c.Args {
		if !arg.Var {
			continue
		}
		if _, ok := bindings[arg.Text]; !ok {
			return false
		}
	}
	return true
}
