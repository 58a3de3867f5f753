package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const adminColumns = `id, user_id, mosque_id, status, message, created_at, updated_at`

// CreateClaim records a pending request by userID to manage mosqueID.
// A repeated claim for the same pair returns the existing row.
func (s *pgStore) CreateClaim(ctx context.Context, userID int, mosqueID string, message *string) (*model.MosqueAdmin, error) {
	var a model.MosqueAdmin
	err := s.db.GetContext(ctx, &a, `
		INSERT INTO mosque_admins (user_id, mosque_id, status, message, created_at, updated_at)
		VALUES ($1, $2, 'pending', $3, now(), now())
		ON CONFLICT (user_id, mosque_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+adminColumns, userID, mosqueID, message)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("mosque_id", mosqueID).Msg("failed to create claim")
		return nil, fmt.Errorf("create claim: %w", err)
	}
	return &a, nil
}

// ApprovedMosqueAdmin returns the user's approved association, or nil when
// there is none.
func (s *pgStore) ApprovedMosqueAdmin(ctx context.Context, userID int) (*model.MosqueAdmin, error) {
	var a model.MosqueAdmin
	err := s.db.GetContext(ctx, &a, `
		SELECT `+adminColumns+`
		FROM mosque_admins
		WHERE user_id = $1 AND status = 'approved'
		ORDER BY updated_at DESC
		LIMIT 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("approved mosque admin for user %d: %w", userID, err)
	}
	return &a, nil
}

func (s *pgStore) IsMosqueAdmin(ctx context.Context, userID int, mosqueID string) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM mosque_admins
			WHERE user_id = $1 AND mosque_id = $2 AND status = 'approved'
		)`, userID, mosqueID)
	if err != nil {
		return false, fmt.Errorf("check mosque admin: %w", err)
	}
	return ok, nil
}

func (s *pgStore) ListPendingClaims(ctx context.Context) ([]model.MosqueAdmin, error) {
	claims := []model.MosqueAdmin{}
	err := s.db.SelectContext(ctx, &claims, `
		SELECT `+adminColumns+`
		FROM mosque_admins
		WHERE status = 'pending'
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	return claims, nil
}

func (s *pgStore) SetClaimStatus(ctx context.Context, claimID int, status model.AdminStatus) (*model.MosqueAdmin, error) {
	var a model.MosqueAdmin
	err := s.db.GetContext(ctx, &a, `
		UPDATE mosque_admins
		SET status = $2,
		updated_at = now()
		WHERE id = $1
		RETURNING `+adminColumns, claimID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set claim %d status: %w", claimID, err)
	}
	return &a, nil
}
