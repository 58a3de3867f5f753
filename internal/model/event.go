package model

import "time"

type Event struct {
	ID          string     `db:"id"           json:"id"`
	MosqueID    string     `db:"mosque_id"    json:"mosque_id"`
	Title       string     `db:"title"        json:"title"`
	Description *string    `db:"description"  json:"description,omitempty"`
	Location    *string    `db:"location"     json:"location,omitempty"`
	StartsAt    time.Time  `db:"starts_at"    json:"starts_at"`
	EndsAt      *time.Time `db:"ends_at"      json:"ends_at,omitempty"`
	CreatedBy   int        `db:"created_by"   json:"created_by"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
}
