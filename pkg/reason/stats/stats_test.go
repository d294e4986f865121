package stats

import (
	"math"
	"reflect"
	"testing"

	"github.com/cognicore/reason/pkg/reason/pattern"
)

func analyzerRules() []pattern.Rule {
	return []pattern.Rule{
		pattern.NewRule(1, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0.0),
		pattern.NewRule(2, pattern.New("is", "?x", "boat"), pattern.New("can", "?x", "sail"), 0.0),
		pattern.NewRule(3, pattern.New("orbit", "?x"), pattern.New("is", "?x", "satellite"), -1.0),
	}
}

func TestAnalyzerEmpty(t *testing.T) {
	a := NewAnalyzer(analyzerRules())
	stats := a.Snapshot()
	if stats.Queries != 0 {
		t.Errorf("queries = %d, want 0", stats.Queries)
	}
	if len(stats.Rules) != 3 {
		t.Fatalf("got %d rule entries, want 3", len(stats.Rules))
	}
	for _, usage := range stats.Rules {
		if usage.Fired != 0 || usage.FireRate != 0 || usage.MeanWeight != 0 {
			t.Errorf("zero queries should leave usage zeroed: %+v", usage)
		}
	}
	if got := stats.Unused(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Unused = %v, want all rules", got)
	}
}

func TestAnalyzerFireCounts(t *testing.T) {
	a := NewAnalyzer(analyzerRules())
	a.Process(pattern.New("is", "v", "car"))
	a.Process(pattern.New("is", "w", "car"))
	a.Process(pattern.New("is", "b", "boat"))
	a.Process(pattern.New("launch", "x")) // matches nothing

	stats := a.Snapshot()
	if stats.Queries != 4 {
		t.Fatalf("queries = %d, want 4", stats.Queries)
	}

	byID := make(map[int]RuleUsage)
	for _, usage := range stats.Rules {
		byID[usage.RuleID] = usage
	}
	if byID[1].Fired != 2 || byID[2].Fired != 1 || byID[3].Fired != 0 {
		t.Errorf("fire counts = %d, %d, %d", byID[1].Fired, byID[2].Fired, byID[3].Fired)
	}
	if math.Abs(byID[1].FireRate-0.5) > 1e-9 {
		t.Errorf("fire rate = %v, want 0.5", byID[1].FireRate)
	}
	if got := stats.Unused(); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("Unused = %v, want [3]", got)
	}
}

func TestAnalyzerMeanWeights(t *testing.T) {
	a := NewAnalyzer(analyzerRules())
	a.Process(pattern.New("is", "v", "car"))

	stats := a.Snapshot()
	byID := make(map[int]RuleUsage)
	sum := 0.0
	for _, usage := range stats.Rules {
		byID[usage.RuleID] = usage
		if usage.MeanWeight <= 0 {
			t.Errorf("rule %d mean weight = %v, want > 0 (softmax runs over all rules)", usage.RuleID, usage.MeanWeight)
		}
		sum += usage.MeanWeight
	}
	if math.Abs(sum-1.0) > 1e-3 {
		t.Errorf("mean weights over one query should sum to 1, got %v", sum)
	}
	if byID[1].MeanWeight <= byID[2].MeanWeight {
		t.Errorf("matching rule should attract more weight: %v <= %v", byID[1].MeanWeight, byID[2].MeanWeight)
	}
}

func TestAnalyzerSnapshotOrder(t *testing.T) {
	a := NewAnalyzer(analyzerRules())
	stats := a.Snapshot()
	ids := make([]int, len(stats.Rules))
	for i, usage := range stats.Rules {
		ids[i] = usage.RuleID
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3}) {
		t.Errorf("snapshot order = %v, want rule-set order", ids)
	}
}
