package packets

import "time"

// body for PUT /api/manage/mosques/:id; omitted fields are left unchanged
type UpdateMosqueRequest struct {
	Name        *string   `json:"name"        binding:"omitempty,min=1,max=200"`
	Street      *string   `json:"street"`
	City        *string   `json:"city"`
	PostalCode  *string   `json:"postal_code"`
	Latitude    *float64  `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude   *float64  `json:"longitude"   binding:"omitempty,min=-180,max=180"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Facilities  *[]string `json:"facilities"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"       binding:"omitempty,email"`
	Website     *string   `json:"website"     binding:"omitempty,url"`
}

// body for POST /api/admin/mosques
type CreateMosqueRequest struct {
	Name        string   `json:"name"        binding:"required,max=200"`
	Slug        string   `json:"slug"`
	Street      string   `json:"street"`
	City        string   `json:"city"        binding:"required"`
	PostalCode  string   `json:"postal_code"`
	Latitude    *float64 `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude"   binding:"omitempty,min=-180,max=180"`
	Description string   `json:"description"`
	Facilities  []string `json:"facilities"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email"       binding:"omitempty,email"`
	Website     *string  `json:"website"     binding:"omitempty,url"`
	Verified    bool     `json:"verified"`
}

// body for PUT /api/manage/mosques/:id/prayer-times
type PrayerTimesRequest struct {
	Date         string  `json:"date"          binding:"required"` // YYYY-MM-DD
	Fajr         string  `json:"fajr"          binding:"required"`
	Sunrise      string  `json:"sunrise"       binding:"required"`
	Dhuhr        string  `json:"dhuhr"         binding:"required"`
	Asr          string  `json:"asr"           binding:"required"`
	Maghrib      string  `json:"maghrib"       binding:"required"`
	Isha         string  `json:"isha"          binding:"required"`
	FajrIqama    *string `json:"fajr_iqama"`
	DhuhrIqama   *string `json:"dhuhr_iqama"`
	AsrIqama     *string `json:"asr_iqama"`
	MaghribIqama *string `json:"maghrib_iqama"`
	IshaIqama    *string `json:"isha_iqama"`
	Jumuah       *string `json:"jumuah"`
}

// body for POST /api/manage/mosques/:id/events
type CreateEventRequest struct {
	Title       string     `json:"title"     binding:"required,max=200"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
}
