// Package reason is an attention-weighted rule inference engine.
// Candidate rules are scored against a query by flat positional
// matching with variable binding; a softmax over score+bias logits
// turns the scores into a relevance distribution used to weight the
// substituted consequents.
package reason

import (
	"context"
	"fmt"

	"github.com/cognicore/reason/pkg/reason/engine"
	"github.com/cognicore/reason/pkg/reason/internalerr"
	"github.com/cognicore/reason/pkg/reason/pattern"
	"github.com/cognicore/reason/pkg/reason/rulecfg"
	"github.com/cognicore/reason/pkg/reason/store"
)

// Reasoner is the main facade: an inference engine over the current
// rule set, optionally backed by a RuleStore for named, versioned
// rule sets.
type Reasoner struct {
	store store.RuleStore
	eng   *engine.Engine
}

// Options configures a Reasoner instance.
type Options struct {
	Rules []pattern.Rule
	Store store.RuleStore // optional
}

// New creates a Reasoner with the given dependencies.
func New(opts Options) *Reasoner {
	return &Reasoner{
		store: opts.Store,
		eng:   engine.New(opts.Rules),
	}
}

// FromFile creates a Reasoner from a rule file (JSON or YAML).
func FromFile(path string) (*Reasoner, error) {
	rules, err := rulecfg.Load(path)
	if err != nil {
		return nil, err
	}
	return New(Options{Rules: rules}), nil
}

// Close cleanly shuts down the backing store, if any.
func (r *Reasoner) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// Rules returns a copy of the current rule set.
func (r *Reasoner) Rules() []pattern.Rule { return r.eng.Rules() }

// Infer answers a single query; see engine.Engine.Infer.
func (r *Reasoner) Infer(query pattern.Pattern) []engine.Weighted {
	return r.eng.Infer(query)
}

// InferContext aggregates inference over a fact set; see
// engine.Engine.InferContext.
func (r *Reasoner) InferContext(facts []pattern.Pattern) []engine.Weighted {
	return r.eng.InferContext(facts)
}

// InferMultiLayer forward-chains from the initial facts; see
// engine.Engine.InferMultiLayer.
func (r *Reasoner) InferMultiLayer(initialFacts []pattern.Pattern, maxLayers int) []engine.Weighted {
	return r.eng.InferMultiLayer(initialFacts, maxLayers)
}

// SaveRuleSet snapshots the current rule set under a name in the
// backing store and returns the snapshot ID.
func (r *Reasoner) SaveRuleSet(ctx context.Context, name string) (string, error) {
	if r.store == nil {
		return "", fmt.Errorf("save rule set %q: %w", name, internalerr.ErrStoreUnavailable)
	}
	return r.store.SaveRuleSet(ctx, name, r.eng.Rules())
}

// LoadRuleSet replaces the engine with one built from the latest
// snapshot of the named set. The previous engine is unaffected;
// callers holding it keep their immutable rule set.
func (r *Reasoner) LoadRuleSet(ctx context.Context, name string) error {
	if r.store == nil {
		return fmt.Errorf("load rule set %q: %w", name, internalerr.ErrStoreUnavailable)
	}
	rules, found, err := r.store.GetRuleSet(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("load rule set %q: %w", name, internalerr.ErrNotFound)
	}
	r.eng = engine.New(rules)
	return nil
}

// ExportFile writes the current rule set to a rule file (JSON or
// YAML, by extension).
func (r *Reasoner) ExportFile(path string) error {
	return rulecfg.Save(r.eng.Rules(), path)
}
