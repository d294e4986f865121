// Package memstore is an in-memory RuleStore for tests and embedded
// use.
package memstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/reason/pkg/reason/internalerr"
	"github.com/cognicore/reason/pkg/reason/pattern"
	"github.com/cognicore/reason/pkg/reason/store"
)

// Store is an in-memory implementation of store.RuleStore.
type Store struct {
	mu        sync.RWMutex
	entropy   *ulid.MonotonicEntropy
	snapshots map[string]snapshot // snapshot ID → contents
	latest    map[string]string   // set name → latest snapshot ID
}

type snapshot struct {
	meta  store.Snapshot
	rules []pattern.Rule
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entropy:   ulid.Monotonic(rand.Reader, 0),
		snapshots: make(map[string]snapshot),
		latest:    make(map[string]string),
	}
}

// Close implements store.RuleStore.
func (s *Store) Close() error { return nil }

// SaveRuleSet stores a new snapshot of the named set.
func (s *Store) SaveRuleSet(ctx context.Context, name string, rules []pattern.Rule) (string, error) {
	if name == "" {
		return "", fmt.Errorf("save rule set: empty name: %w", internalerr.ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.MustNew(ulid.Now(), s.entropy).String()
	s.snapshots[id] = snapshot{
		meta: store.Snapshot{
			ID:        id,
			Name:      name,
			CreatedAt: time.Now().UTC(),
			RuleCount: len(rules),
		},
		rules: copyRules(rules),
	}
	s.latest[name] = id
	return id, nil
}

// GetRuleSet returns the latest snapshot of the named set.
func (s *Store) GetRuleSet(ctx context.Context, name string) ([]pattern.Rule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.latest[name]
	if !ok {
		return nil, false, nil
	}
	snap := s.snapshots[id]
	return copyRules(snap.rules), true, nil
}

// GetSnapshot returns the rules of one snapshot.
func (s *Store) GetSnapshot(ctx context.Context, snapshotID string) ([]pattern.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[snapshotID]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, internalerr.ErrNotFound)
	}
	return copyRules(snap.rules), nil
}

// ListSnapshots returns the named set's snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, name string) ([]store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []store.Snapshot
	for _, snap := range s.snapshots {
		if snap.meta.Name == name {
			metas = append(metas, snap.meta)
		}
	}
	// ULIDs sort lexicographically by creation time.
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].ID > metas[j].ID
	})
	return metas, nil
}

// ListRuleSets returns the distinct set names, sorted.
func (s *Store) ListRuleSets(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.latest))
	for name := range s.latest {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func copyRules(rules []pattern.Rule) []pattern.Rule {
	out := make([]pattern.Rule, len(rules))
	copy(out, rules)
	return out
}
