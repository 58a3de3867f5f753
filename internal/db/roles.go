package db

import (
	"context"
	"fmt"
)

func (s *pgStore) HasRole(ctx context.Context, userID int, role string) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2
		)`, userID, role)
	if err != nil {
		return false, fmt.Errorf("check role %q for user %d: %w", role, userID, err)
	}
	return ok, nil
}

func (s *pgStore) GrantRole(ctx context.Context, userID int, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, role)
	if err != nil {
		return fmt.Errorf("grant role %q to user %d: %w", role, userID, err)
	}
	return nil
}
