// Command reason-demo runs the three inference modes over a rule file
// or one of the built-in demo rule sets and prints the weighted
// consequents.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cognicore/reason/pkg/reason"
	"github.com/cognicore/reason/pkg/reason/engine"
	"github.com/cognicore/reason/pkg/reason/pattern"
)

func main() {
	var (
		rulesPath = flag.String("rules", "", "Path to a rule file (.json/.yaml); overrides --set")
		set       = flag.String("set", "vehicles", "Built-in rule set: vehicles or medical")
		query     = flag.String("query", "", "Single query, e.g. '(is vehicle car)'; empty runs the full demo")
		layers    = flag.Int("layers", 3, "Max layers for multi-layer inference")
	)
	flag.Parse()

	r, err := buildReasoner(*rulesPath, *set)
	if err != nil {
		log.Fatalf("load rules: %v", err)
	}
	fmt.Printf("Loaded %d rules\n", len(r.Rules()))

	if *query != "" {
		q, err := pattern.Parse(*query)
		if err != nil {
			log.Fatalf("parse query: %v", err)
		}
		runTimed(fmt.Sprintf("Inference for %s", q), func() []engine.Weighted {
			return r.Infer(q)
		})
		return
	}

	demoQueries, context := demoInputs(*set)

	for _, q := range demoQueries {
		runTimed(fmt.Sprintf("Query %s", q), func() []engine.Weighted {
			return r.Infer(q)
		})
	}

	fmt.Println("\nContext facts:")
	for _, fact := range context {
		fmt.Printf("  %s\n", fact)
	}
	runTimed("Context inference", func() []engine.Weighted {
		return r.InferContext(context)
	})

	runTimed(fmt.Sprintf("Multi-layer inference (%d layers)", *layers), func() []engine.Weighted {
		return r.InferMultiLayer(context, *layers)
	})
}

func buildReasoner(rulesPath, set string) (*reason.Reasoner, error) {
	if rulesPath != "" {
		return reason.FromFile(rulesPath)
	}
	switch set {
	case "vehicles":
		return reason.New(reason.Options{Rules: vehicleRules()}), nil
	case "medical":
		return reason.New(reason.Options{Rules: medicalRules()}), nil
	default:
		return nil, fmt.Errorf("unknown built-in rule set %q", set)
	}
}

func runTimed(title string, run func() []engine.Weighted) {
	start := time.Now()
	results := run()
	elapsed := time.Since(start)

	fmt.Printf("\n%s:\n%s\n", title, strings.Repeat("=", len(title)+1))
	if len(results) == 0 {
		fmt.Println("No results.")
	} else {
		fmt.Printf("%-30s %s\n", "Consequent", "Weight")
		fmt.Println(strings.Repeat("-", 45))
		for _, res := range results {
			fmt.Printf("%-30s %.4f\n", res.Consequent, res.Weight)
		}
	}
	fmt.Printf("Took %s\n", elapsed)
}

func vehicleRules() []pattern.Rule {
	return []pattern.Rule{
		pattern.NewRule(1, pattern.New("is", "?x", "car"), pattern.New("can", "?x", "drive"), 0.0),
		pattern.NewRule(2, pattern.New("is", "?x", "electricCar"), pattern.New("needs", "?x", "fuel"), -5.0),
		pattern.NewRule(3, pattern.New("is", "?x", "damaged"), pattern.New("can", "?x", "drive"), -3.0),
		pattern.NewRule(4, pattern.New("can", "?x", "drive"), pattern.New("needs", "?x", "engine"), 0.0),
		pattern.NewRule(5, pattern.New("needs", "?x", "engine"), pattern.New("has", "?x", "parts"), 0.0),
	}
}

func medicalRules() []pattern.Rule {
	return []pattern.Rule{
		pattern.NewRule(1, pattern.New("has", "?p", "fever"), pattern.New("may-have", "?p", "infection"), 0.0),
		pattern.NewRule(2, pattern.New("has", "?p", "cough"), pattern.New("may-have", "?p", "flu"), -0.5),
		pattern.NewRule(3, pattern.New("has", "?p", "rash"), pattern.New("may-have", "?p", "allergy"), -1.0),
		pattern.NewRule(4, pattern.New("may-have", "?p", "infection"), pattern.New("needs", "?p", "bloodTest"), 0.0),
		pattern.NewRule(5, pattern.New("may-have", "?p", "flu"), pattern.New("needs", "?p", "rest"), 0.0),
		pattern.NewRule(6, pattern.New("needs", "?p", "bloodTest"), pattern.New("visit", "?p", "lab"), 0.0),
	}
}

func demoInputs(set string) (queries, context []pattern.Pattern) {
	if set == "medical" {
		return []pattern.Pattern{
				pattern.New("has", "alice", "fever"),
				pattern.New("has", "bob", "cough"),
				pattern.New("has", "carol", "headache"),
			}, []pattern.Pattern{
				pattern.New("has", "alice", "fever"),
				pattern.New("has", "alice", "cough"),
			}
	}
	return []pattern.Pattern{
			pattern.New("is", "vehicle", "car"),
			pattern.New("is", "tesla", "electricCar"),
			pattern.New("is", "truck", "damaged"),
			pattern.New("is", "plane", "aircraft"),
		}, []pattern.Pattern{
			pattern.New("is", "vehicle1", "car"),
			pattern.New("is", "vehicle2", "electricCar"),
			pattern.New("is", "vehicle3", "damaged"),
		}
}
