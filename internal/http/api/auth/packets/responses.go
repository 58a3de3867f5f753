package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

// returned for profile endpoints
type ProfileResponse struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func NewProfileResponse(u *model.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RoleResponse struct {
	Role    string `json:"role"`
	HasRole bool   `json:"has_role"`
}

// MosqueAdminResponse mirrors model.MosqueAdmin but flattens times.
type MosqueAdminResponse struct {
	ID        int     `json:"id"`
	UserID    int     `json:"user_id"`
	MosqueID  string  `json:"mosque_id"`
	Status    string  `json:"status"`
	Message   *string `json:"message,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func NewMosqueAdminResponse(a model.MosqueAdmin) MosqueAdminResponse {
	return MosqueAdminResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		MosqueID:  a.MosqueID,
		Status:    string(a.Status),
		Message:   a.Message,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339),
	}
}
