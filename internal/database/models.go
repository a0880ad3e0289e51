package database

import (
	"time"

	"github.com/google/uuid"
)

// ShareRecord is one audit entry for a recommendation shared with a
// manager. The payload column carries the exported JSON verbatim so the
// recipient sees exactly what was shared, even if the session later
// changes.
type ShareRecord struct {
	ID            string    `json:"id" db:"id"`
	TokenID       string    `json:"token_id" db:"token_id"`
	EmployeeRef   string    `json:"employee_ref" db:"employee_ref"`
	SharedWith    string    `json:"shared_with" db:"shared_with"`
	ReadinessTier string    `json:"readiness_tier" db:"readiness_tier"`
	IncrementBand string    `json:"increment_band" db:"increment_band"`
	Payload       string    `json:"payload" db:"payload"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the share link is past its lifetime.
func (r *ShareRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ShareAccess is one read of a shared recommendation.
type ShareAccess struct {
	ID         string    `json:"id" db:"id"`
	ShareID    string    `json:"share_id" db:"share_id"`
	RemoteAddr string    `json:"remote_addr,omitempty" db:"remote_addr"`
	AccessedAt time.Time `json:"accessed_at" db:"accessed_at"`
}

// NewShareRecord creates a share record with a generated ID.
func NewShareRecord(tokenID, employeeRef, sharedWith, tier, band, payload string, expiresAt time.Time) *ShareRecord {
	return &ShareRecord{
		ID:            uuid.New().String(),
		TokenID:       tokenID,
		EmployeeRef:   employeeRef,
		SharedWith:    sharedWith,
		ReadinessTier: tier,
		IncrementBand: band,
		Payload:       payload,
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now().UTC(),
	}
}
