package appraisal

import (
	"log/slog"

	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// rangeTolerance is how far outside the declared scale a raw value may
// stray (as a fraction of the scale span) before the sample is reported
// as a domain error. Inside the tolerance the value is clamped quietly;
// outside it the clamp still happens but the caller gets the error.
const rangeTolerance = 0.05

// Normalize linearly rescales a raw value onto [0,100] with higher
// always better. For lower_is_better metrics the rescaled value is
// complemented. Out-of-range input is clamped to [0,100] post-scale as
// the recovery policy; if it exceeds the tolerance a DomainError
// describing the offending metric is returned alongside the clamped
// result. Pure function, no side effects beyond the warning log.
func Normalize(sample RawMetricSample) (float64, error) {
	span := sample.Scale.Max - sample.Scale.Min
	if span <= 0 {
		return 0, apperrors.NewConfigError(sample.MetricName, "scale max must exceed min")
	}

	var rangeErr error
	tolerance := span * rangeTolerance
	if sample.Value < sample.Scale.Min-tolerance || sample.Value > sample.Scale.Max+tolerance {
		rangeErr = apperrors.NewDomainError(sample.MetricName, sample.Value, sample.Scale.Min, sample.Scale.Max)
		slog.Warn("raw metric outside declared scale, clamping",
			"metric", sample.MetricName,
			"value", sample.Value,
			"min", sample.Scale.Min,
			"max", sample.Scale.Max)
	}

	n := (sample.Value - sample.Scale.Min) / span * 100
	if sample.Direction == LowerIsBetter {
		n = 100 - n
	}

	return clamp(n, 0, 100), rangeErr
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
