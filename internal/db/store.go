// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// role functions
	HasRole(ctx context.Context, userID int, role string) (bool, error)
	GrantRole(ctx context.Context, userID int, role string) error

	// mosque functions
	MosquesInBounds(ctx context.Context, bounds model.BoundingBox, limit int) ([]model.Mosque, error)
	NearestMosques(ctx context.Context, lat, lng float64, bounds model.BoundingBox, limit int) ([]model.Mosque, error)
	GetMosqueByID(ctx context.Context, id string) (*model.Mosque, error)
	GetMosqueBySlug(ctx context.Context, slug string) (*model.Mosque, error)
	CreateMosque(ctx context.Context, in MosqueInput) (*model.Mosque, error)
	UpsertMosqueBySlug(ctx context.Context, in MosqueInput) (*model.Mosque, error)
	UpdateMosque(ctx context.Context, id string, in MosqueUpdate) (*model.Mosque, error)
	SetMosqueImage(ctx context.Context, id, imageURL string) error

	// mosque admin functions
	CreateClaim(ctx context.Context, userID int, mosqueID string, message *string) (*model.MosqueAdmin, error)
	ApprovedMosqueAdmin(ctx context.Context, userID int) (*model.MosqueAdmin, error)
	IsMosqueAdmin(ctx context.Context, userID int, mosqueID string) (bool, error)
	ListPendingClaims(ctx context.Context) ([]model.MosqueAdmin, error)
	SetClaimStatus(ctx context.Context, claimID int, status model.AdminStatus) (*model.MosqueAdmin, error)

	// prayer time functions
	GetPrayerTimes(ctx context.Context, mosqueID string, date time.Time) (*model.PrayerTimes, error)
	UpsertPrayerTimes(ctx context.Context, pt model.PrayerTimes) error

	// event functions
	ListUpcomingEvents(ctx context.Context, mosqueID string, from time.Time, limit int) ([]model.Event, error)
	CreateEvent(ctx context.Context, ev model.Event) (*model.Event, error)
	DeleteEvent(ctx context.Context, mosqueID, eventID string) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
