package model

import (
	"time"

	"github.com/lib/pq"
)

// Facility is one of the enumerated amenity tags a mosque can carry.
type Facility string

const (
	FacilityParking          Facility = "parking"
	FacilityWudu             Facility = "wudu"
	FacilityWomenSection     Facility = "women_section"
	FacilityWheelchairAccess Facility = "wheelchair_access"
	FacilityLibrary          Facility = "library"
	FacilitySchool           Facility = "school"
	FacilityFuneral          Facility = "funeral"
	FacilityJumuah           Facility = "jumuah"
)

var knownFacilities = map[Facility]struct{}{
	FacilityParking:          {},
	FacilityWudu:             {},
	FacilityWomenSection:     {},
	FacilityWheelchairAccess: {},
	FacilityLibrary:          {},
	FacilitySchool:           {},
	FacilityFuneral:          {},
	FacilityJumuah:           {},
}

// Valid reports whether f is a known facility tag.
func (f Facility) Valid() bool {
	_, ok := knownFacilities[f]
	return ok
}

// Mosque is the public record describing one mosque location.
type Mosque struct {
	ID          string         `db:"id"           json:"id"`
	Name        string         `db:"name"         json:"name"`
	Slug        string         `db:"slug"         json:"slug"`
	Street      string         `db:"street"       json:"street"`
	City        string         `db:"city"         json:"city"`
	PostalCode  string         `db:"postal_code"  json:"postal_code"`
	Latitude    *float64       `db:"latitude"     json:"latitude"`
	Longitude   *float64       `db:"longitude"    json:"longitude"`
	Description string         `db:"description"  json:"description"`
	Facilities  pq.StringArray `db:"facilities" json:"facilities"`
	Phone       *string        `db:"phone"        json:"phone,omitempty"`
	Email       *string        `db:"email"        json:"email,omitempty"`
	Website     *string        `db:"website"      json:"website,omitempty"`
	Verified    bool           `db:"verified"     json:"verified"`
	ImageURL    *string        `db:"image_url"    json:"image_url,omitempty"`
	CreatedAt   time.Time      `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"   json:"updated_at"`
}

// HasCoordinates reports whether the mosque can be placed on the map.
func (m Mosque) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// BoundingBox is a rectangular map region expressed as edge limits.
type BoundingBox struct {
	South float64 `json:"south" form:"south"`
	North float64 `json:"north" form:"north"`
	West  float64 `json:"west"  form:"west"`
	East  float64 `json:"east"  form:"east"`
}
