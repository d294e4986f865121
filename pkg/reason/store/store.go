// Package store defines persistence for named rule sets. Every save
// creates an immutable snapshot; loading a rule set returns its most
// recent snapshot. Engines are constructed from loaded rules and stay
// decoupled from the store.
package store

import (
	"context"
	"time"

	"github.com/cognicore/reason/pkg/reason/pattern"
)

// RuleStore persists ordered rule sets under a name.
type RuleStore interface {
	Close() error

	// SaveRuleSet stores the rules as a new snapshot of the named set
	// and returns the snapshot ID (a ULID; IDs sort by creation time).
	SaveRuleSet(ctx context.Context, name string, rules []pattern.Rule) (string, error)

	// GetRuleSet returns the latest snapshot of the named set, or
	// found=false if the set has never been saved.
	GetRuleSet(ctx context.Context, name string) ([]pattern.Rule, bool, error)

	// GetSnapshot returns the rules of one specific snapshot.
	GetSnapshot(ctx context.Context, snapshotID string) ([]pattern.Rule, error)

	// ListSnapshots returns the snapshots of the named set, newest
	// first.
	ListSnapshots(ctx context.Context, name string) ([]Snapshot, error)

	// ListRuleSets returns the distinct rule set names.
	ListRuleSets(ctx context.Context) ([]string, error)
}

// Snapshot describes one saved version of a rule set.
type Snapshot struct {
	ID        string
	Name      string
	CreatedAt time.Time
	RuleCount int
}
