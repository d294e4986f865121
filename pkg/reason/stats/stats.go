// Package stats aggregates rule-usage statistics across queries:
// which rules fire, how often, and how much attention weight they
// attract. Useful for spotting dead or underweighted rules before
// pruning a rule set.
package stats

import (
	"github.com/cognicore/reason/pkg/reason/attention"
	"github.com/cognicore/reason/pkg/reason/match"
	"github.com/cognicore/reason/pkg/reason/pattern"
)

// Analyzer accumulates per-rule usage over a stream of queries. It is
// not safe for concurrent use; feed it from one goroutine.
type Analyzer struct {
	rules   []pattern.Rule
	queries int64
	fired   map[int]int64   // rule ID → strictly-positive match count
	weight  map[int]float64 // rule ID → cumulative softmax weight
}

// NewAnalyzer creates an analyzer over a private copy of the rules.
func NewAnalyzer(rules []pattern.Rule) *Analyzer {
	owned := make([]pattern.Rule, len(rules))
	copy(owned, rules)
	return &Analyzer{
		rules:  owned,
		fired:  make(map[int]int64),
		weight: make(map[int]float64),
	}
}

// Process scores one query against every rule, exactly as inference
// does: the softmax runs over score+bias logits for the whole rule
// set, while the fire count only moves for strictly positive match
// scores.
func (a *Analyzer) Process(query pattern.Pattern) {
	a.queries++

	logits := make([]float64, len(a.rules))
	for i, rule := range a.rules {
		score, _ := match.Score(query, rule.Pattern)
		logits[i] = score + rule.Bias
		if score > 0 {
			a.fired[rule.ID]++
		}
	}

	for i, w := range attention.Softmax(logits) {
		a.weight[a.rules[i].ID] += w
	}
}

// RuleUsage reports one rule's accumulated usage.
type RuleUsage struct {
	RuleID     int
	Fired      int64
	FireRate   float64 // fired / queries processed
	MeanWeight float64 // mean softmax weight across queries
}

// Stats is a point-in-time snapshot of the analyzer.
type Stats struct {
	Queries int64
	Rules   []RuleUsage // in rule-set order
}

// Snapshot returns the current per-rule usage, in rule-set order.
func (a *Analyzer) Snapshot() Stats {
	stats := Stats{
		Queries: a.queries,
		Rules:   make([]RuleUsage, 0, len(a.rules)),
	}
	for _, rule := range a.rules {
		usage := RuleUsage{
			RuleID: rule.ID,
			Fired:  a.fired[rule.ID],
		}
		if a.queries > 0 {
			usage.FireRate = float64(usage.Fired) / float64(a.queries)
			usage.MeanWeight = a.weight[rule.ID] / float64(a.queries)
		}
		stats.Rules = append(stats.Rules, usage)
	}
	return stats
}

// Unused returns the IDs of rules that never fired.
func (s Stats) Unused() []int {
	var ids []int
	for _, usage := range s.Rules {
		if usage.Fired == 0 {
			ids = append(ids, usage.RuleID)
		}
	}
	return ids
}
