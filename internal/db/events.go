package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const eventColumns = `id, mosque_id, title, description, location, starts_at, ends_at, created_by, created_at`

// ListUpcomingEvents returns events that have not ended yet, soonest first.
func (s *pgStore) ListUpcomingEvents(ctx context.Context, mosqueID string, from time.Time, limit int) ([]model.Event, error) {
	events := []model.Event{}
	err := s.db.SelectContext(ctx, &events, `
		SELECT `+eventColumns+`
		FROM mosque_events
		WHERE mosque_id = $1 AND COALESCE(ends_at, starts_at) >= $2
		ORDER BY starts_at
		LIMIT $3`, mosqueID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *pgStore) CreateEvent(ctx context.Context, ev model.Event) (*model.Event, error) {
	ev.ID = uuid.NewString()
	var out model.Event
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO mosque_events (id, mosque_id, title, description, location, starts_at, ends_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING `+eventColumns,
		ev.ID, ev.MosqueID, ev.Title, ev.Description, ev.Location, ev.StartsAt, ev.EndsAt, ev.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &out, nil
}

func (s *pgStore) DeleteEvent(ctx context.Context, mosqueID, eventID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mosque_events WHERE id = $1 AND mosque_id = $2`, eventID, mosqueID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}
