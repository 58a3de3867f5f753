package model

import "time"

// PrayerTimes holds one day of athan (and optional iqama) times for a mosque.
// Times are local "HH:MM" strings as published by the mosque.
type PrayerTimes struct {
	MosqueID     string    `db:"mosque_id"      json:"mosque_id"`
	Date         time.Time `db:"date"           json:"date"`
	Fajr         string    `db:"fajr"           json:"fajr"`
	Sunrise      string    `db:"sunrise"        json:"sunrise"`
	Dhuhr        string    `db:"dhuhr"          json:"dhuhr"`
	Asr          string    `db:"asr"            json:"asr"`
	Maghrib      string    `db:"maghrib"        json:"maghrib"`
	Isha         string    `db:"isha"           json:"isha"`
	FajrIqama    *string   `db:"fajr_iqama"     json:"fajr_iqama,omitempty"`
	DhuhrIqama   *string   `db:"dhuhr_iqama"    json:"dhuhr_iqama,omitempty"`
	AsrIqama     *string   `db:"asr_iqama"      json:"asr_iqama,omitempty"`
	MaghribIqama *string   `db:"maghrib_iqama"  json:"maghrib_iqama,omitempty"`
	IshaIqama    *string   `db:"isha_iqama"     json:"isha_iqama,omitempty"`
	Jumuah       *string   `db:"jumuah"         json:"jumuah,omitempty"`
	UpdatedAt    time.Time `db:"updated_at"     json:"updated_at"`
}

type Prayer struct {
	Name  string // "FAJR", "DHUHR", ...
	Time  string // "05:12"
	Iqama string
}

// Prayers lists the five daily prayers plus sunrise in display order.
func (p PrayerTimes) Prayers() []Prayer {
	iq := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return []Prayer{
		{Name: "FAJR", Time: p.Fajr, Iqama: iq(p.FajrIqama)},
		{Name: "SUNRISE", Time: p.Sunrise},
		{Name: "DHUHR", Time: p.Dhuhr, Iqama: iq(p.DhuhrIqama)},
		{Name: "ASR", Time: p.Asr, Iqama: iq(p.AsrIqama)},
		{Name: "MAGHRIB", Time: p.Maghrib, Iqama: iq(p.MaghribIqama)},
		{Name: "ISHA", Time: p.Isha, Iqama: iq(p.IshaIqama)},
	}
}
