// Package engine implements attention-weighted forward-chaining
// inference over an immutable rule set.
package engine

import (
	"github.com/cognicore/reason/pkg/reason/attention"
	"github.com/cognicore/reason/pkg/reason/match"
	"github.com/cognicore/reason/pkg/reason/pattern"
)

// Weighted pairs a substituted consequent with its weight. Weights
// from Infer and InferContext come from a softmax over the whole rule
// set; weights from InferMultiLayer are raw cumulative score+bias
// sums. The two schemes are not numerically comparable.
type Weighted struct {
	Consequent pattern.Consequent
	Weight     float64
}

// Engine answers single, contextual and multi-layer queries against a
// fixed rule set. The rule slice is copied at construction and never
// mutated afterwards, so a single Engine may be shared by concurrent
// callers without locking. A new rule set requires a new Engine.
type Engine struct {
	rules []pattern.Rule
}

// New creates an engine owning a private copy of the given rules.
func New(rules []pattern.Rule) *Engine {
	owned := make([]pattern.Rule, len(rules))
	copy(owned, rules)
	return &Engine{rules: owned}
}

// Len returns the number of rules in the set.
func (e *Engine) Len() int { return len(e.rules) }

// Rules returns a copy of the rule set.
func (e *Engine) Rules() []pattern.Rule {
	out := make([]pattern.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Infer scores the query against every rule, forms one logit per rule
// (match score plus rule bias) and softmaxes over the full logit
// sequence. Every rule contributes one weighted consequent, matching
// or not, so the result length always equals the rule count: the
// output is a relevance distribution over the whole rule set, not a
// filtered match list. A query with an entirely unrelated predicate
// therefore still yields one (non-matching) entry per rule.
//
// An empty rule set yields an empty result.
func (e *Engine) Infer(query pattern.Pattern) []Weighted {
	if len(e.rules) == 0 {
		return nil
	}

	logits := make([]float64, len(e.rules))
	bindings := make([]match.Bindings, len(e.rules))
	for i, rule := range e.rules {
		score, b := match.Score(query, rule.Pattern)
		logits[i] = score + rule.Bias
		bindings[i] = b
	}

	weights := attention.Softmax(logits)

	results := make([]Weighted, len(e.rules))
	for i, rule := range e.rules {
		results[i] = Weighted{
			Consequent: match.Substitute(rule.Consequent, bindings[i]),
			Weight:     weights[i],
		}
	}
	return results
}

// InferContext runs Infer once per fact and aggregates the resulting
// pairs by consequent structural identity, summing weights across
// duplicates. The summed weights are no longer a probability
// distribution; callers must treat them as relative scores. Output
// order is first-seen.
func (e *Engine) InferContext(facts []pattern.Pattern) []Weighted {
	acc := newAccumulator()
	for _, fact := range facts {
		for _, res := range e.Infer(fact) {
			acc.add(res.Consequent, res.Weight)
		}
	}
	return acc.results()
}

// InferMultiLayer forward-chains breadth-first from the initial facts
// for at most maxLayers rounds. Unlike Infer, only rules with a
// strictly positive match score fire; each firing adds score+bias into
// the accumulator entry for its substituted consequent, cumulatively
// across layers, and the consequent becomes a new fact for the next
// layer. Chaining stops early once a layer derives nothing new, but
// termination never depends on that fixed point alone: the layer cap
// bounds cyclic rule sets too.
//
// maxLayers <= 0 applies no rule at all. Returned weights are raw,
// unnormalized sums.
func (e *Engine) InferMultiLayer(initialFacts []pattern.Pattern, maxLayers int) []Weighted {
	known := make([]pattern.Pattern, 0, len(initialFacts))
	knownSet := make(map[string]struct{}, len(initialFacts))
	for _, fact := range initialFacts {
		key := fact.Key()
		if _, ok := knownSet[key]; ok {
			continue
		}
		knownSet[key] = struct{}{}
		known = append(known, fact)
	}

	acc := newAccumulator()
	for layer := 0; layer < maxLayers; layer++ {
		var newFacts []pattern.Pattern
		newSet := make(map[string]struct{})

		for _, fact := range known {
			for _, rule := range e.rules {
				score, b := match.Score(fact, rule.Pattern)
				if score <= 0 {
					continue
				}
				cons := match.Substitute(rule.Consequent, b)
				acc.add(cons, score+rule.Bias)

				key := cons.Key()
				if _, ok := knownSet[key]; ok {
					continue
				}
				if _, ok := newSet[key]; ok {
					continue
				}
				newSet[key] = struct{}{}
				newFacts = append(newFacts, cons)
			}
		}

		if len(newFacts) == 0 {
			break
		}
		for _, fact := range newFacts {
			knownSet[fact.Key()] = struct{}{}
			known = append(known, fact)
		}
	}

	return acc.results()
}

// accumulator sums weights by consequent structural key, preserving
// first-seen order.
type accumulator struct {
	index map[string]int
	pairs []Weighted
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(c pattern.Consequent, weight float64) {
	key := c.Key()
	if i, ok := a.index[key]; ok {
		a.pairs[i].Weight += weight
		return
	}
	a.index[key] = len(a.pairs)
	a.pairs = append(a.pairs, Weighted{Consequent: c, Weight: weight})
}

func (a *accumulator) results() []Weighted {
	if len(a.pairs) == 0 {
		return nil
	}
	return a.pairs
}
