package model

import "time"

type AdminStatus string

const (
	AdminPending  AdminStatus = "pending"
	AdminApproved AdminStatus = "approved"
	AdminRejected AdminStatus = "rejected"
)

// MosqueAdmin links a user to a mosque they manage (or asked to manage).
type MosqueAdmin struct {
	ID        int         `db:"id"          json:"id"`
	UserID    int         `db:"user_id"     json:"user_id"`
	MosqueID  string      `db:"mosque_id"   json:"mosque_id"`
	Status    AdminStatus `db:"status"      json:"status"`
	Message   *string     `db:"message"     json:"message,omitempty"`
	CreatedAt time.Time   `db:"created_at"  json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"  json:"updated_at"`
}
