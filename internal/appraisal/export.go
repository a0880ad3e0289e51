package appraisal

import "time"

// ExportSchemaVersion identifies the share payload layout. Bump on any
// field change so downstream consumers can branch on it.
const ExportSchemaVersion = 1

// SharedRecommendation is the flat, versioned payload handed to the
// share-with-manager collaborator. The core guarantees only its shape
// and determinism; transport is someone else's problem.
type SharedRecommendation struct {
	SchemaVersion  int       `json:"schema_version"`
	EmployeeRef    string    `json:"employee_ref"`
	GeneratedAt    time.Time `json:"generated_at"`
	ReadinessTier  string    `json:"readiness_tier"`
	Strengths      []string  `json:"strengths"`
	Risks          []string  `json:"risks"`
	IncrementBand  string    `json:"increment_band"`
	RoleTrajectory string    `json:"role_trajectory"`
}

// Export flattens a recommendation for sharing. Slices are copied so the
// payload cannot alias live engine output.
func Export(employeeRef string, rec AppraisalRecommendation) SharedRecommendation {
	return SharedRecommendation{
		SchemaVersion:  ExportSchemaVersion,
		EmployeeRef:    employeeRef,
		GeneratedAt:    rec.GeneratedAt,
		ReadinessTier:  string(rec.ReadinessTier),
		Strengths:      append([]string(nil), rec.Strengths...),
		Risks:          append([]string(nil), rec.Risks...),
		IncrementBand:  string(rec.IncrementBand),
		RoleTrajectory: rec.RoleTrajectory,
	}
}
