package domain

import (
	"fmt"
	"sort"
)

// AspectWeights maps aspect names to strictly positive weights used when
// aggregating scores and when shaping rewrite emphasis.
type AspectWeights map[string]float64

// DefaultWeights returns a fresh uniform weighting. Callers get their own
// map so mutating it never leaks into other calls.
func DefaultWeights() AspectWeights {
	return AspectWeights{
		"task":    2,
		"role":    2,
		"style":   2,
		"output":  2,
		"rules":   2,
		"context": 2,
	}
}

// Validate rejects weights for unknown aspect names and non-positive values.
func (w AspectWeights) Validate() error {
	for name, weight := range w {
		if _, ok := (AspectSet{}).Aspect(name); !ok {
			return ConfigError{Msg: fmt.Sprintf("unknown aspect name %q in weights", name)}
		}
		if weight <= 0 {
			return ConfigError{Msg: fmt.Sprintf("weight for %q must be strictly positive, got %g", name, weight)}
		}
	}
	if w.Total() <= 0 {
		return ConfigError{Msg: "total weight must be positive"}
	}
	return nil
}

func (w AspectWeights) Total() float64 {
	var total float64
	for _, weight := range w {
		total += weight
	}
	return total
}

// ByEmphasis returns the six aspect names ordered by descending weight.
// Unlisted aspects sort last; ties keep canonical order.
func (w AspectWeights) ByEmphasis() []string {
	names := make([]string, len(AspectNames))
	copy(names, AspectNames)
	rank := make(map[string]int, len(names))
	for i, name := range names {
		rank[name] = i
	}
	sort.SliceStable(names, func(i, j int) bool {
		wi, wj := w[names[i]], w[names[j]]
		if wi != wj {
			return wi > wj
		}
		return rank[names[i]] < rank[names[j]]
	})
	return names
}
