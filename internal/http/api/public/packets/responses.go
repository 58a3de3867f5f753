package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

// MosqueResponse mirrors model.Mosque but flattens times to RFC3339.
type MosqueResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postal_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Description string   `json:"description"`
	Facilities  []string `json:"facilities"`
	Phone       *string  `json:"phone,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Website     *string  `json:"website,omitempty"`
	Verified    bool     `json:"verified"`
	ImageURL    *string  `json:"image_url,omitempty"`
	DistanceM   *float64 `json:"distance_m,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}

func NewMosqueResponse(m model.Mosque) MosqueResponse {
	facilities := []string(m.Facilities)
	if facilities == nil {
		facilities = []string{}
	}
	return MosqueResponse{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Street:      m.Street,
		City:        m.City,
		PostalCode:  m.PostalCode,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Description: m.Description,
		Facilities:  facilities,
		Phone:       m.Phone,
		Email:       m.Email,
		Website:     m.Website,
		Verified:    m.Verified,
		ImageURL:    m.ImageURL,
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

func NewMosqueList(mosques []model.Mosque) []MosqueResponse {
	out := make([]MosqueResponse, 0, len(mosques))
	for _, m := range mosques {
		out = append(out, NewMosqueResponse(m))
	}
	return out
}

type PrayerResponse struct {
	Name  string `json:"name"`
	Time  string `json:"time"`
	Iqama string `json:"iqama,omitempty"`
}

type PrayerTimesResponse struct {
	Date    string           `json:"date"`
	Prayers []PrayerResponse `json:"prayers"`
	Jumuah  *string          `json:"jumuah,omitempty"`
}

func NewPrayerTimesResponse(pt model.PrayerTimes) PrayerTimesResponse {
	prayers := pt.Prayers()
	out := PrayerTimesResponse{
		Date:    pt.Date.Format("2006-01-02"),
		Prayers: make([]PrayerResponse, 0, len(prayers)),
		Jumuah:  pt.Jumuah,
	}
	for _, p := range prayers {
		out.Prayers = append(out.Prayers, PrayerResponse{Name: p.Name, Time: p.Time, Iqama: p.Iqama})
	}
	return out
}

type EventResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      *string `json:"ends_at,omitempty"`
}

func NewEventResponse(e model.Event) EventResponse {
	out := EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt.Format(time.RFC3339),
	}
	if e.EndsAt != nil {
		s := e.EndsAt.Format(time.RFC3339)
		out.EndsAt = &s
	}
	return out
}

func NewEventList(events []model.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e))
	}
	return out
}

type MosqueDetailResponse struct {
	MosqueResponse
	PrayerTimes *PrayerTimesResponse `json:"prayer_times"`
	Events      []EventResponse      `json:"events"`
}

// frame sent to the map page over /api/map/live
type LiveResponse struct {
	Type       string           `json:"type"` // "state", "mosques", "selected", "error"
	State      string           `json:"state,omitempty"`
	Generation uint64           `json:"generation,omitempty"`
	Mosques    []MosqueResponse `json:"mosques,omitempty"`
	Mosque     *MosqueResponse  `json:"mosque,omitempty"`
	Total      int              `json:"total,omitempty"`
	Error      string           `json:"error,omitempty"`
}
