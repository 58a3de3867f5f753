// Package dbtest provides an in-memory db.Store for handler tests.
package dbtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/geo"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

type MemStore struct {
	mu      sync.Mutex
	users   map[int]*model.User
	roles   map[int]map[string]bool
	mosques map[string]*model.Mosque
	admins  []*model.MosqueAdmin
	prayers map[string]model.PrayerTimes
	events  map[string]*model.Event
	nextID  int

	// BoundsCalls counts MosquesInBounds and NearestMosques queries.
	BoundsCalls int
	// Err, when set, is returned by the spatial queries.
	Err error
}

var _ db.Store = (*MemStore)(nil)

func New() *MemStore {
	return &MemStore{
		users:   map[int]*model.User{},
		roles:   map[int]map[string]bool{},
		mosques: map[string]*model.Mosque{},
		prayers: map[string]model.PrayerTimes{},
		events:  map[string]*model.Event{},
	}
}

func (s *MemStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *MemStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return 0, db.ErrConflict
		}
	}
	now := time.Now()
	u := &model.User{ID: s.id(), Email: email, HashedPassword: hashedPassword, Name: name, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *MemStore) GetUserByEmail(email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *MemStore) GetUserByID(id int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) UpdateUserProfile(id int, email string, name *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.Email, u.Name, u.UpdatedAt = email, name, time.Now()
	return nil
}

func (s *MemStore) HasRole(ctx context.Context, userID int, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles[userID][role], nil
}

func (s *MemStore) GrantRole(ctx context.Context, userID int, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roles[userID] == nil {
		s.roles[userID] = map[string]bool{}
	}
	s.roles[userID][role] = true
	return nil
}

func (s *MemStore) MosquesInBounds(ctx context.Context, b model.BoundingBox, limit int) ([]model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BoundsCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	out := []model.Mosque{}
	for _, m := range s.mosques {
		if m.HasCoordinates() && geo.Contains(b, *m.Latitude, *m.Longitude) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Verified != out[j].Verified {
			return out[i].Verified
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) NearestMosques(ctx context.Context, lat, lng float64, b model.BoundingBox, limit int) ([]model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BoundsCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	out := []model.Mosque{}
	for _, m := range s.mosques {
		if m.HasCoordinates() && geo.Contains(b, *m.Latitude, *m.Longitude) {
			out = append(out, *m)
		}
	}
	dist := func(m model.Mosque) float64 { return geo.Haversine(lat, lng, *m.Latitude, *m.Longitude) }
	sort.Slice(out, func(i, j int) bool {
		di, dj := dist(out[i]), dist(out[j])
		if di != dj {
			return di < dj
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) GetMosqueByID(ctx context.Context, id string) (*model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mosques[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemStore) GetMosqueBySlug(ctx context.Context, slug string) (*model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mosques {
		if m.Slug == slug {
			cp := *m
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *MemStore) bySlug(slug string) *model.Mosque {
	for _, m := range s.mosques {
		if m.Slug == slug {
			return m
		}
	}
	return nil
}

func fromInput(in db.MosqueInput) model.Mosque {
	now := time.Now()
	facilities := in.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	return model.Mosque{
		Name: in.Name, Slug: in.Slug, Street: in.Street, City: in.City, PostalCode: in.PostalCode,
		Latitude: in.Latitude, Longitude: in.Longitude, Description: in.Description,
		Facilities: facilities, Phone: in.Phone, Email: in.Email, Website: in.Website,
		Verified: in.Verified, CreatedAt: now, UpdatedAt: now,
	}
}

func (s *MemStore) CreateMosque(ctx context.Context, in db.MosqueInput) (*model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Slug == "" {
		in.Slug = db.Slugify(in.Name, in.City)
	}
	if s.bySlug(in.Slug) != nil {
		return nil, db.ErrConflict
	}
	m := fromInput(in)
	m.ID = uuid.NewString()
	s.mosques[m.ID] = &m
	cp := m
	return &cp, nil
}

func (s *MemStore) UpsertMosqueBySlug(ctx context.Context, in db.MosqueInput) (*model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.Slug == "" {
		in.Slug = db.Slugify(in.Name, in.City)
	}
	m := fromInput(in)
	if existing := s.bySlug(in.Slug); existing != nil {
		m.ID, m.Verified, m.ImageURL, m.CreatedAt = existing.ID, existing.Verified, existing.ImageURL, existing.CreatedAt
	} else {
		m.ID = uuid.NewString()
	}
	s.mosques[m.ID] = &m
	cp := m
	return &cp, nil
}

func (s *MemStore) UpdateMosque(ctx context.Context, id string, in db.MosqueUpdate) (*model.Mosque, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mosques[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.Name, in.Name)
	set(&m.Street, in.Street)
	set(&m.City, in.City)
	set(&m.PostalCode, in.PostalCode)
	set(&m.Description, in.Description)
	if in.Latitude != nil {
		m.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		m.Longitude = in.Longitude
	}
	if in.Facilities != nil {
		m.Facilities = append([]string{}, (*in.Facilities)...)
	}
	if in.Phone != nil {
		m.Phone = in.Phone
	}
	if in.Email != nil {
		m.Email = in.Email
	}
	if in.Website != nil {
		m.Website = in.Website
	}
	m.UpdatedAt = time.Now()
	cp := *m
	return &cp, nil
}

func (s *MemStore) SetMosqueImage(ctx context.Context, id, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mosques[id]
	if !ok {
		return db.ErrNotFound
	}
	m.ImageURL = &imageURL
	return nil
}

func (s *MemStore) CreateClaim(ctx context.Context, userID int, mosqueID string, message *string) (*model.MosqueAdmin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.UserID == userID && a.MosqueID == mosqueID {
			cp := *a
			return &cp, nil
		}
	}
	now := time.Now()
	a := &model.MosqueAdmin{ID: s.id(), UserID: userID, MosqueID: mosqueID, Status: model.AdminPending, Message: message, CreatedAt: now, UpdatedAt: now}
	s.admins = append(s.admins, a)
	cp := *a
	return &cp, nil
}

func (s *MemStore) ApprovedMosqueAdmin(ctx context.Context, userID int) (*model.MosqueAdmin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.admins) - 1; i >= 0; i-- {
		a := s.admins[i]
		if a.UserID == userID && a.Status == model.AdminApproved {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) IsMosqueAdmin(ctx context.Context, userID int, mosqueID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.UserID == userID && a.MosqueID == mosqueID && a.Status == model.AdminApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) ListPendingClaims(ctx context.Context) ([]model.MosqueAdmin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.MosqueAdmin{}
	for _, a := range s.admins {
		if a.Status == model.AdminPending {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *MemStore) SetClaimStatus(ctx context.Context, claimID int, status model.AdminStatus) (*model.MosqueAdmin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.ID == claimID {
			a.Status, a.UpdatedAt = status, time.Now()
			cp := *a
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func prayerKey(mosqueID string, date time.Time) string {
	return mosqueID + "/" + date.Format("2006-01-02")
}

func (s *MemStore) GetPrayerTimes(ctx context.Context, mosqueID string, date time.Time) (*model.PrayerTimes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt, ok := s.prayers[prayerKey(mosqueID, date)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &pt, nil
}

func (s *MemStore) UpsertPrayerTimes(ctx context.Context, pt model.PrayerTimes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prayers[prayerKey(pt.MosqueID, pt.Date)] = pt
	return nil
}

func (s *MemStore) ListUpcomingEvents(ctx context.Context, mosqueID string, from time.Time, limit int) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Event{}
	for _, e := range s.events {
		end := e.StartsAt
		if e.EndsAt != nil {
			end = *e.EndsAt
		}
		if e.MosqueID == mosqueID && !end.Before(from) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) CreateEvent(ctx context.Context, ev model.Event) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Now()
	s.events[ev.ID] = &ev
	cp := ev
	return &cp, nil
}

func (s *MemStore) DeleteEvent(ctx context.Context, mosqueID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.MosqueID != mosqueID {
		return db.ErrNotFound
	}
	delete(s.events, eventID)
	return nil
}

// AddMosque seeds a listing. A blank slug is derived from name and city.
func (s *MemStore) AddMosque(name, city string, lat, lng float64) model.Mosque {
	m, _ := s.CreateMosque(context.Background(), db.MosqueInput{
		Name: name, City: city, Latitude: &lat, Longitude: &lng,
		Slug: db.Slugify(name, strings.TrimSpace(city)),
	})
	return *m
}

// AddUser seeds a user with the given roles and returns its ID.
func (s *MemStore) AddUser(email string, roles ...string) int {
	id, _ := s.CreateUser(email, "", nil)
	for _, r := range roles {
		_ = s.GrantRole(context.Background(), id, r)
	}
	return id
}

// Approve seeds an approved mosque admin association.
func (s *MemStore) Approve(userID int, mosqueID string) {
	a, _ := s.CreateClaim(context.Background(), userID, mosqueID, nil)
	_, _ = s.SetClaimStatus(context.Background(), a.ID, model.AdminApproved)
}
