// Command reason-bench times the three inference operations over
// synthetic rule sets and emits a JSON report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cognicore/reason/pkg/reason/engine"
	"github.com/cognicore/reason/pkg/reason/pattern"
)

type report struct {
	Rules      int        `json:"rules"`
	Iterations int        `json:"iterations"`
	Operations []opTiming `json:"operations"`
}

type opTiming struct {
	Name    string  `json:"name"`
	TotalMS float64 `json:"total_ms"`
	PerOpUS float64 `json:"per_op_us"`
	Results int     `json:"results_last_run"`
}

func main() {
	var (
		ruleCount  = flag.Int("rules", 50, "Number of synthetic rules")
		iterations = flag.Int("iterations", 1000, "Iterations per operation")
		layers     = flag.Int("layers", 3, "Max layers for multi-layer inference")
	)
	flag.Parse()

	if *ruleCount < 5 {
		log.Fatal("--rules must be at least 5")
	}

	eng := engine.New(benchmarkRules(*ruleCount))

	queries := []pattern.Pattern{
		pattern.New("is", "vehicle", "car"),
		pattern.New("is", "tesla", "electricCar"),
		pattern.New("is", "truck", "damaged"),
		pattern.New("can", "vehicle", "drive"),
		pattern.New("needs", "vehicle", "engine"),
	}

	rep := report{Rules: *ruleCount, Iterations: *iterations}

	rep.Operations = append(rep.Operations, timeOp("infer", *iterations, func() int {
		var n int
		for _, q := range queries {
			n = len(eng.Infer(q))
		}
		return n
	}))

	rep.Operations = append(rep.Operations, timeOp("infer_context", *iterations, func() int {
		return len(eng.InferContext(queries))
	}))

	rep.Operations = append(rep.Operations, timeOp("infer_multi_layer", *iterations, func() int {
		return len(eng.InferMultiLayer(queries[:1], *layers))
	}))

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func timeOp(name string, iterations int, run func() int) opTiming {
	var results int
	start := time.Now()
	for i := 0; i < iterations; i++ {
		results = run()
	}
	total := time.Since(start)
	return opTiming{
		Name:    name,
		TotalMS: float64(total.Microseconds()) / 1e3,
		PerOpUS: float64(total.Microseconds()) / float64(iterations),
		Results: results,
	}
}

// benchmarkRules builds a small chained core plus generated filler
// rules with spread-out biases.
func benchmarkRules(n int) []pattern.Rule {
	rules := []pattern.Rule{
		pattern.NewRule(1, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0.0),
		pattern.NewRule(2, pattern.New("is", "?x", "electricCar"), pattern.New("needs", "?x", "fuel"), -5.0),
		pattern.NewRule(3, pattern.New("is", "?x", "damaged"), pattern.New("can", "?x", "drive"), -3.0),
		pattern.NewRule(4, pattern.New("can", "?x", "drive"), pattern.New("needs", "?x", "engine"), 0.0),
		pattern.NewRule(5, pattern.New("needs", "?x", "engine"), pattern.New("has", "?x", "parts"), 0.0),
	}
	for i := 6; i <= n; i++ {
		rules = append(rules, pattern.NewRule(
			i,
			pattern.New(fmt.Sprintf("rule%d", i), "?x", "?y"),
			pattern.New(fmt.Sprintf("result%d", i), "?x", "?y"),
			float64(i%10-5),
		))
	}
	return rules
}
