package reason

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/reason/pkg/reason/engine"
	"github.com/cognicore/reason/pkg/reason/internalerr"
	"github.com/cognicore/reason/pkg/reason/pattern"
	"github.com/cognicore/reason/pkg/reason/store/memstore"
)

const vehicleRulesYAML = `
- id: 1
  pattern: "(is ?x car)"
  consequent: "(can ?x drive)"
  bias: 0.0
- id: 2
  pattern: "(is ?x electricCar)"
  consequent: "(needs ?x fuel)"
  bias: -5.0
- id: 3
  pattern: "(is ?x damaged)"
  consequent: "(can ?x drive)"
  bias: -3.0
- id: 4
  pattern: "(can ?x drive)"
  consequent: "(needs ?x engine)"
  bias: 0.0
`

func findWeight(results []engine.Weighted, want pattern.Consequent) (float64, bool) {
	for _, res := range results {
		if res.Consequent.Equal(want) {
			return res.Weight, true
		}
	}
	return 0, false
}

// TestEndToEnd exercises the complete workflow: rule file loading,
// the three inference modes, store snapshots, and file export.
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	rulesPath := filepath.Join(dir, "vehicles.yaml")
	if err := os.WriteFile(rulesPath, []byte(vehicleRulesYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := FromFile(rulesPath)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(r.Rules()) != 4 {
		t.Fatalf("loaded %d rules, want 4", len(r.Rules()))
	}

	// Single query: one entry per rule, the match dominating.
	results := r.Infer(pattern.New("is", "vehicle", "car"))
	if len(results) != 4 {
		t.Fatalf("Infer returned %d entries, want 4", len(results))
	}
	if w, ok := findWeight(results, pattern.New("can", "vehicle", "drive")); !ok || w <= 0 {
		t.Errorf("missing dominant consequent, weight %v", w)
	}

	facts := []pattern.Pattern{
		pattern.New("is", "vehicle1", "car"),
		pattern.New("is", "vehicle2", "electricCar"),
	}
	ctxResults := r.InferContext(facts)
	if len(ctxResults) == 0 {
		t.Fatal("InferContext returned nothing")
	}

	// Multi-layer: layer 2 reaches the chained consequent.
	multi := r.InferMultiLayer([]pattern.Pattern{pattern.New("is", "v", "car")}, 2)
	if w, ok := findWeight(multi, pattern.New("needs", "v", "engine")); !ok || w <= 0 {
		t.Errorf("chained derivation missing, weight %v", w)
	}

	// Persist to a store and load back into a fresh engine.
	r2 := New(Options{Rules: r.Rules(), Store: memstore.New()})
	defer r2.Close()

	snapID, err := r2.SaveRuleSet(ctx, "vehicles")
	if err != nil {
		t.Fatalf("SaveRuleSet: %v", err)
	}
	if snapID == "" {
		t.Fatal("empty snapshot ID")
	}

	if err := r2.LoadRuleSet(ctx, "vehicles"); err != nil {
		t.Fatalf("LoadRuleSet: %v", err)
	}
	reloaded := r2.Infer(pattern.New("is", "vehicle", "car"))
	w1, _ := findWeight(results, pattern.New("can", "vehicle", "drive"))
	w2, ok := findWeight(reloaded, pattern.New("can", "vehicle", "drive"))
	if !ok || math.Abs(w1-w2) > 1e-9 {
		t.Errorf("reloaded rule set behaves differently: %v vs %v", w1, w2)
	}

	// Export and reload through the JSON encoding.
	exportPath := filepath.Join(dir, "export.json")
	if err := r2.ExportFile(exportPath); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	r3, err := FromFile(exportPath)
	if err != nil {
		t.Fatalf("FromFile(export): %v", err)
	}
	if len(r3.Rules()) != 4 {
		t.Errorf("export round trip lost rules: %d", len(r3.Rules()))
	}
}

func TestInferExactSingleRuleContract(t *testing.T) {
	r := New(Options{Rules: []pattern.Rule{
		pattern.NewRule(1, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0.0),
	}})

	results := r.Infer(pattern.New("is", "vehicle", "car"))
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
	if !results[0].Consequent.Equal(pattern.New("can", "vehicle", "drive")) {
		t.Errorf("consequent = %s", results[0].Consequent)
	}
	if math.Abs(results[0].Weight-1.0) > 1e-9 {
		t.Errorf("weight = %v, want 1.0", results[0].Weight)
	}
}

func TestStoreOperationsWithoutStore(t *testing.T) {
	r := New(Options{})
	if _, err := r.SaveRuleSet(context.Background(), "x"); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("SaveRuleSet: want ErrStoreUnavailable, got %v", err)
	}
	if err := r.LoadRuleSet(context.Background(), "x"); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("LoadRuleSet: want ErrStoreUnavailable, got %v", err)
	}
}

func TestLoadRuleSetUnknownName(t *testing.T) {
	r := New(Options{Store: memstore.New()})
	defer r.Close()

	if err := r.LoadRuleSet(context.Background(), "absent"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}
