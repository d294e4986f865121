// Package sqlite implements store.RuleStore on SQLite.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/reason/pkg/reason/internalerr"
	"github.com/cognicore/reason/pkg/reason/pattern"
	"github.com/cognicore/reason/pkg/reason/store"
)

// sqliteStore implements the RuleStore interface using SQLite
type sqliteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens a SQLite rule store with WAL mode enabled, creating the
// schema on first use.
func Open(ctx context.Context, path string) (store.RuleStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name);

CREATE TABLE IF NOT EXISTS snapshot_rules (
	snapshot_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	rule_id INTEGER NOT NULL,
	pattern TEXT NOT NULL,
	consequent TEXT NOT NULL,
	bias REAL NOT NULL,
	PRIMARY KEY(snapshot_id, position),
	FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRuleSet stores the rules as a new snapshot of the named set.
func (s *sqliteStore) SaveRuleSet(ctx context.Context, name string, rules []pattern.Rule) (string, error) {
	if name == "" {
		return "", fmt.Errorf("save rule set: empty name: %w", internalerr.ErrInvalidConfig)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := ulid.MustNew(ulid.Now(), s.entropy).String()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, createdAt,
	); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_rules (snapshot_id, position, rule_id, pattern, consequent, bias) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, rule := range rules {
		if _, err := stmt.ExecContext(ctx,
			id, i, rule.ID, rule.Pattern.String(), rule.Consequent.String(), rule.Bias,
		); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetRuleSet returns the latest snapshot of the named set.
func (s *sqliteStore) GetRuleSet(ctx context.Context, name string) ([]pattern.Rule, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT 1`, name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rules, err := s.GetSnapshot(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return rules, true, nil
}

// GetSnapshot returns the rules of one snapshot.
func (s *sqliteStore) GetSnapshot(ctx context.Context, snapshotID string) ([]pattern.Rule, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE id = ?`, snapshotID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, internalerr.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, pattern, consequent, bias FROM snapshot_rules WHERE snapshot_id = ? ORDER BY position`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []pattern.Rule
	for rows.Next() {
		var (
			ruleID  int
			patStr  string
			consStr string
			bias    float64
		)
		if err := rows.Scan(&ruleID, &patStr, &consStr, &bias); err != nil {
			return nil, err
		}
		pat, err := pattern.Parse(patStr)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: rule %d: %w", snapshotID, ruleID, err)
		}
		cons, err := pattern.Parse(consStr)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: rule %d: %w", snapshotID, ruleID, err)
		}
		rules = append(rules, pattern.NewRule(ruleID, pat, cons, bias))
	}
	return rules, rows.Err()
}

// ListSnapshots returns the named set's snapshots, newest first.
func (s *sqliteStore) ListSnapshots(ctx context.Context, name string) ([]store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT s.id, s.name, s.created_at, COUNT(r.snapshot_id)
FROM snapshots s
LEFT JOIN snapshot_rules r ON r.snapshot_id = s.id
WHERE s.name = ?
GROUP BY s.id
ORDER BY s.id DESC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []store.Snapshot
	for rows.Next() {
		var (
			snap      store.Snapshot
			createdAt string
		)
		if err := rows.Scan(&snap.ID, &snap.Name, &createdAt, &snap.RuleCount); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad created_at %q: %w", snap.ID, createdAt, err)
		}
		snap.CreatedAt = ts
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// ListRuleSets returns the distinct rule set names.
func (s *sqliteStore) ListRuleSets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT name FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
