// Package share issues and resolves signed share links for appraisal
// recommendations. Sharing freezes the exported payload into the audit
// database; later session edits never change what a recipient sees.
package share

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentops/pulsemark/internal/appraisal"
	"github.com/talentops/pulsemark/internal/database"
	apperrors "github.com/talentops/pulsemark/internal/errors"
)

// Service signs share tokens and persists the audit trail.
type Service struct {
	repo   *database.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a share service.
func NewService(repo *database.Repository, secret string, ttl time.Duration) *Service {
	return &Service{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Link is a freshly issued share link.
type Link struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create freezes the payload, signs a token for it, and records the
// share in the audit log.
func (s *Service) Create(ctx context.Context, payload appraisal.SharedRecommendation, sharedWith string) (Link, error) {
	if sharedWith == "" {
		return Link{}, apperrors.NewValidationError("shared_with is required")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Link{}, apperrors.NewInternalError("failed to encode share payload", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	tokenID := uuid.New().String()

	claims := jwt.MapClaims{
		"jti":          tokenID,
		"employee_ref": payload.EmployeeRef,
		"shared_with":  sharedWith,
		"iat":          now.Unix(),
		"exp":          expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Link{}, apperrors.NewInternalError("failed to sign share token", err)
	}

	rec := database.NewShareRecord(
		tokenID, payload.EmployeeRef, sharedWith,
		payload.ReadinessTier, payload.IncrementBand,
		string(raw), expiresAt)
	if err := s.repo.InsertShare(ctx, rec); err != nil {
		return Link{}, apperrors.NewInternalError("failed to persist share", err)
	}

	return Link{Token: signed, ExpiresAt: expiresAt}, nil
}

// Resolve validates a share token and returns the frozen payload,
// recording the access.
func (s *Service) Resolve(ctx context.Context, tokenString, remoteAddr string) (appraisal.SharedRecommendation, error) {
	var zero appraisal.SharedRecommendation

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return zero, apperrors.NewValidationError("invalid share token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return zero, apperrors.NewValidationError("invalid share token")
	}
	tokenID, ok := claims["jti"].(string)
	if !ok {
		return zero, apperrors.NewValidationError("share token missing id")
	}

	rec, err := s.repo.GetShareByToken(ctx, tokenID)
	if err != nil {
		return zero, apperrors.NewNotFoundError("share", tokenID)
	}
	if rec.Expired(s.now().UTC()) {
		return zero, apperrors.NewValidationError("share link expired")
	}

	if err := s.repo.LogAccess(ctx, rec.ID, remoteAddr); err != nil {
		return zero, apperrors.NewInternalError("failed to log share access", err)
	}

	var payload appraisal.SharedRecommendation
	if err := json.Unmarshal([]byte(rec.Payload), &payload); err != nil {
		return zero, apperrors.NewInternalError("failed to decode share payload", err)
	}

	return payload, nil
}

// History lists the most recent shares for an employee.
func (s *Service) History(ctx context.Context, employeeRef string, limit int) ([]*database.ShareRecord, error) {
	return s.repo.ListSharesByEmployee(ctx, employeeRef, limit)
}
