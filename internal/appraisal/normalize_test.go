package appraisal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/talentops/pulsemark/internal/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		sample   RawMetricSample
		expected float64
	}{
		{
			name:     "min maps to zero",
			sample:   RawMetricSample{MetricName: "sleep", Value: 0, Scale: Scale{Min: 0, Max: 10}, Direction: HigherIsBetter},
			expected: 0,
		},
		{
			name:     "max maps to one hundred",
			sample:   RawMetricSample{MetricName: "sleep", Value: 10, Scale: Scale{Min: 0, Max: 10}, Direction: HigherIsBetter},
			expected: 100,
		},
		{
			name:     "midpoint maps to fifty",
			sample:   RawMetricSample{MetricName: "energy", Value: 5, Scale: Scale{Min: 0, Max: 10}, Direction: HigherIsBetter},
			expected: 50,
		},
		{
			name:     "nonzero minimum rescales linearly",
			sample:   RawMetricSample{MetricName: "aop_attainment", Value: 75, Scale: Scale{Min: 50, Max: 150}, Direction: HigherIsBetter},
			expected: 25,
		},
		{
			name:     "lower is better complements the scale",
			sample:   RawMetricSample{MetricName: "stress", Value: 3, Scale: Scale{Min: 0, Max: 10}, Direction: LowerIsBetter},
			expected: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.sample)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestNormalizeDirectionFlipIsExactComplement(t *testing.T) {
	for _, v := range []float64{0, 1.5, 4, 7.25, 10} {
		up := RawMetricSample{MetricName: "m", Value: v, Scale: Scale{Min: 0, Max: 10}, Direction: HigherIsBetter}
		down := up
		down.Direction = LowerIsBetter

		nUp, err := Normalize(up)
		require.NoError(t, err)
		nDown, err := Normalize(down)
		require.NoError(t, err)

		assert.InDelta(t, 100-nUp, nDown, 1e-9)
	}
}

func TestNormalizeOutOfRangeClampsWithDomainError(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		expected  float64
		wantError bool
	}{
		{name: "slightly above max stays within tolerance", value: 10.3, expected: 100, wantError: false},
		{name: "far above max clamps and reports", value: 14, expected: 100, wantError: true},
		{name: "far below min clamps and reports", value: -4, expected: 0, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(RawMetricSample{
				MetricName: "satisfaction",
				Value:      tt.value,
				Scale:      Scale{Min: 0, Max: 10},
				Direction:  HigherIsBetter,
			})
			assert.InDelta(t, tt.expected, got, 1e-9)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, apperrors.IsDomain(err))
				assert.Contains(t, err.Error(), "satisfaction")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeRejectsDegenerateScale(t *testing.T) {
	_, err := Normalize(RawMetricSample{
		MetricName: "broken",
		Value:      1,
		Scale:      Scale{Min: 5, Max: 5},
		Direction:  HigherIsBetter,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConfig(err))
}

func TestNormalizeOutputAlwaysInRange(t *testing.T) {
	scale := Scale{Min: 2, Max: 9}
	for v := scale.Min; v <= scale.Max; v += 0.5 {
		n, err := Normalize(RawMetricSample{MetricName: "m", Value: v, Scale: scale, Direction: HigherIsBetter})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0.0)
		assert.LessOrEqual(t, n, 100.0)
	}
}
