package appraisal

import (
	"fmt"
	"math"

	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// weightEpsilon is the tolerance for the weights-sum-to-one invariant.
const weightEpsilon = 1e-6

// WeightedComponent pairs a normalized sample with its weight in a
// composite index.
type WeightedComponent struct {
	MetricName      string
	Weight          float64
	NormalizedValue float64
}

// ComputeIndex combines normalized components into a named composite
// index via a weighted sum. The weights must sum to 1.0 within epsilon;
// anything else is a ConfigError, never a silent renormalization.
// The result is monotonic in every component: raising one normalized
// value, holding the rest fixed, never lowers the index.
func ComputeIndex(name string, components []WeightedComponent) (CompositeIndex, error) {
	if len(components) == 0 {
		return CompositeIndex{}, apperrors.NewIncompleteDataError(name)
	}

	sum := 0.0
	for _, c := range components {
		if c.Weight < 0 {
			return CompositeIndex{}, apperrors.NewConfigError(
				fmt.Sprintf("%s.%s", name, c.MetricName), "negative weight")
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return CompositeIndex{}, apperrors.NewConfigError(name,
			fmt.Sprintf("component weights sum to %.6f, must sum to 1.0", sum))
	}

	value := 0.0
	out := make([]Component, len(components))
	for i, c := range components {
		v := clamp(c.NormalizedValue, 0, 100)
		value += c.Weight * v
		out[i] = Component{
			MetricName:      c.MetricName,
			Weight:          c.Weight,
			NormalizedValue: v,
		}
	}

	return CompositeIndex{
		Name:       name,
		Value:      clamp(value, 0, 100),
		Components: out,
	}, nil
}
