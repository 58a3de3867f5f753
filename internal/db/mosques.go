package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const mosqueColumns = `id, name, slug, street, city, postal_code, latitude, longitude,
	description, facilities, phone, email, website, verified, image_url, created_at, updated_at`

// MosqueInput carries the fields of a new listing.
type MosqueInput struct {
	Name        string
	Slug        string
	Street      string
	City        string
	PostalCode  string
	Latitude    *float64
	Longitude   *float64
	Description string
	Facilities  []string
	Phone       *string
	Email       *string
	Website     *string
	Verified    bool
}

// MosqueUpdate carries a partial listing edit; nil fields are left unchanged.
type MosqueUpdate struct {
	Name        *string
	Street      *string
	City        *string
	PostalCode  *string
	Latitude    *float64
	Longitude   *float64
	Description *string
	Facilities  *[]string
	Phone       *string
	Email       *string
	Website     *string
}

const uniqueViolation = "23505"

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify builds a URL slug from the given parts, e.g. "Al-Nur Moschee",
// "Berlin" -> "al-nur-moschee-berlin".
func Slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	joined = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss").Replace(joined)
	slug := strings.Trim(slugStrip.ReplaceAllString(joined, "-"), "-")
	if slug == "" {
		return "mosque"
	}
	return slug
}

// MosquesInBounds returns up to limit mosques whose coordinates fall inside
// bounds. Boxes crossing the antimeridian (west > east) are supported.
func (s *pgStore) MosquesInBounds(ctx context.Context, b model.BoundingBox, limit int) ([]model.Mosque, error) {
	lngClause := `longitude BETWEEN $3 AND $4`
	if b.West > b.East {
		lngClause = `(longitude >= $3 OR longitude <= $4)`
	}
	query := `
		SELECT ` + mosqueColumns + `
		FROM mosques
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		AND latitude BETWEEN $1 AND $2
		AND ` + lngClause + `
		ORDER BY verified DESC, name
		LIMIT $5`

	var mosques []model.Mosque
	if err := s.db.SelectContext(ctx, &mosques, query, b.South, b.North, b.West, b.East, limit); err != nil {
		log.Error().Err(err).Msg("failed to query mosques in bounds")
		return nil, fmt.Errorf("mosques in bounds: %w", err)
	}
	return mosques, nil
}

// NearestMosques returns up to limit mosques inside bounds, closest to the
// point first. Ordering uses an equirectangular approximation; callers rank
// the result by exact distance.
func (s *pgStore) NearestMosques(ctx context.Context, lat, lng float64, b model.BoundingBox, limit int) ([]model.Mosque, error) {
	lngClause := `longitude BETWEEN $3 AND $4`
	if b.West > b.East {
		lngClause = `(longitude >= $3 OR longitude <= $4)`
	}
	query := `
		SELECT ` + mosqueColumns + `
		FROM mosques
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		AND latitude BETWEEN $1 AND $2
		AND ` + lngClause + `
		ORDER BY power(latitude - $5, 2)
			+ power(least(abs(longitude - $6), 360 - abs(longitude - $6)) * cos(radians($5)), 2),
			name
		LIMIT $7`

	var mosques []model.Mosque
	if err := s.db.SelectContext(ctx, &mosques, query, b.South, b.North, b.West, b.East, lat, lng, limit); err != nil {
		log.Error().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("failed to query nearest mosques")
		return nil, fmt.Errorf("nearest mosques: %w", err)
	}
	return mosques, nil
}

func (s *pgStore) getMosque(ctx context.Context, where string, arg any) (*model.Mosque, error) {
	var m model.Mosque
	err := s.db.GetContext(ctx, &m, `SELECT `+mosqueColumns+` FROM mosques WHERE `+where+` = $1`, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get mosque by %s: %w", where, err)
	}
	return &m, nil
}

func (s *pgStore) GetMosqueByID(ctx context.Context, id string) (*model.Mosque, error) {
	return s.getMosque(ctx, "id", id)
}

func (s *pgStore) GetMosqueBySlug(ctx context.Context, slug string) (*model.Mosque, error) {
	return s.getMosque(ctx, "slug", slug)
}

func (s *pgStore) CreateMosque(ctx context.Context, in MosqueInput) (*model.Mosque, error) {
	if in.Slug == "" {
		in.Slug = Slugify(in.Name, in.City)
	}
	var m model.Mosque
	err := s.db.GetContext(ctx, &m, `
		INSERT INTO mosques (id, name, slug, street, city, postal_code, latitude, longitude,
			description, facilities, phone, email, website, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING `+mosqueColumns,
		uuid.NewString(), in.Name, in.Slug, in.Street, in.City, in.PostalCode, in.Latitude, in.Longitude,
		in.Description, pq.Array(facilitiesOrEmpty(in.Facilities)), in.Phone, in.Email, in.Website, in.Verified)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		log.Error().Err(err).Str("slug", in.Slug).Msg("failed to create mosque")
		return nil, fmt.Errorf("create mosque: %w", err)
	}
	return &m, nil
}

// UpsertMosqueBySlug inserts the listing or, when the slug exists, replaces
// its address, coordinates and contact fields. Verification and image are
// kept.
func (s *pgStore) UpsertMosqueBySlug(ctx context.Context, in MosqueInput) (*model.Mosque, error) {
	if in.Slug == "" {
		in.Slug = Slugify(in.Name, in.City)
	}
	var m model.Mosque
	err := s.db.GetContext(ctx, &m, `
		INSERT INTO mosques (id, name, slug, street, city, postal_code, latitude, longitude,
			description, facilities, phone, email, website, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			description = EXCLUDED.description,
			facilities = EXCLUDED.facilities,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			updated_at = now()
		RETURNING `+mosqueColumns,
		uuid.NewString(), in.Name, in.Slug, in.Street, in.City, in.PostalCode, in.Latitude, in.Longitude,
		in.Description, pq.Array(facilitiesOrEmpty(in.Facilities)), in.Phone, in.Email, in.Website, in.Verified)
	if err != nil {
		return nil, fmt.Errorf("upsert mosque %q: %w", in.Slug, err)
	}
	return &m, nil
}

func (s *pgStore) UpdateMosque(ctx context.Context, id string, in MosqueUpdate) (*model.Mosque, error) {
	var facilities any
	if in.Facilities != nil {
		facilities = pq.Array(facilitiesOrEmpty(*in.Facilities))
	}
	var m model.Mosque
	err := s.db.GetContext(ctx, &m, `
		UPDATE mosques
		SET name = COALESCE($2, name),
		street = COALESCE($3, street),
		city = COALESCE($4, city),
		postal_code = COALESCE($5, postal_code),
		latitude = COALESCE($6, latitude),
		longitude = COALESCE($7, longitude),
		description = COALESCE($8, description),
		facilities = COALESCE($9, facilities),
		phone = COALESCE($10, phone),
		email = COALESCE($11, email),
		website = COALESCE($12, website),
		updated_at = now()
		WHERE id = $1
		RETURNING `+mosqueColumns,
		id, in.Name, in.Street, in.City, in.PostalCode, in.Latitude, in.Longitude,
		in.Description, facilities, in.Phone, in.Email, in.Website)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("mosque_id", id).Msg("failed to update mosque")
		return nil, fmt.Errorf("update mosque: %w", err)
	}
	return &m, nil
}

func (s *pgStore) SetMosqueImage(ctx context.Context, id, imageURL string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE mosques
		SET image_url = $2,
		updated_at = now()
		WHERE id = $1`, id, imageURL)
	if err != nil {
		return fmt.Errorf("set mosque image: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func facilitiesOrEmpty(f []string) []string {
	if f == nil {
		return []string{}
	}
	return f
}
