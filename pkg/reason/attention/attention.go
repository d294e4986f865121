// Package attention converts raw rule scores into a normalized
// relevance distribution.
package attention

import "math"

// Softmax maps a score sequence to a weight distribution of the same
// length. The maximum score is subtracted before exponentiating, so
// the result is shift-invariant and safe for large inputs. For
// non-empty input every output is strictly positive, the outputs sum
// to 1, and the relative ordering of the inputs is preserved.
//
// An empty input yields an empty (nil) output.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	maxVal := scores[0]
	for _, s := range scores[1:] {
		if s > maxVal {
			maxVal = s
		}
	}

	exps := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		exps[i] = math.Exp(s - maxVal)
		sum += exps[i]
	}

	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
