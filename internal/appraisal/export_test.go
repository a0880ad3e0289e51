package appraisal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	generated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := AppraisalRecommendation{
		ReadinessTier:  TierReady,
		BlendedScore:   76.0,
		Strengths:      []string{"high KRA attainment: revenue growth"},
		Risks:          []string{"low health index"},
		IncrementBand:  BandStrong,
		RoleTrajectory: "Specialist/Senior Track",
		GeneratedAt:    generated,
	}

	payload := Export("emp-42", rec)

	assert.Equal(t, ExportSchemaVersion, payload.SchemaVersion)
	assert.Equal(t, "emp-42", payload.EmployeeRef)
	assert.Equal(t, generated, payload.GeneratedAt)
	assert.Equal(t, "ready", payload.ReadinessTier)
	assert.Equal(t, "strong", payload.IncrementBand)
	assert.Equal(t, rec.Strengths, payload.Strengths)
	assert.Equal(t, rec.Risks, payload.Risks)
	assert.Equal(t, "Specialist/Senior Track", payload.RoleTrajectory)
}

func TestExportCopiesSlices(t *testing.T) {
	rec := AppraisalRecommendation{
		Strengths: []string{"strong collaborator"},
		Risks:     []string{"negative feedback trend"},
	}

	payload := Export("emp-7", rec)
	rec.Strengths[0] = "mutated"
	rec.Risks[0] = "mutated"

	assert.Equal(t, "strong collaborator", payload.Strengths[0])
	assert.Equal(t, "negative feedback trend", payload.Risks[0])
}

func TestExportJSONShape(t *testing.T) {
	payload := Export("emp-42", AppraisalRecommendation{
		ReadinessTier: TierHighlyReady,
		IncrementBand: BandExceptional,
		GeneratedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{
		"schema_version", "employee_ref", "generated_at", "readiness_tier",
		"strengths", "risks", "increment_band", "role_trajectory",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.EqualValues(t, 1, decoded["schema_version"])
	assert.Equal(t, "highly_ready", decoded["readiness_tier"])
}
