package endpoints

import (
	"fmt"
	"regexp"

	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/manage/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func validateFacilities(tags []string) error {
	for _, t := range tags {
		if !model.Facility(t).Valid() {
			return fmt.Errorf("unknown facility %q", t)
		}
	}
	return nil
}

// coordinates must be given together
func validateCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("latitude and longitude must be set together")
	}
	return nil
}

func validatePrayerTimes(req packets.PrayerTimesRequest) error {
	required := map[string]string{
		"fajr": req.Fajr, "sunrise": req.Sunrise, "dhuhr": req.Dhuhr,
		"asr": req.Asr, "maghrib": req.Maghrib, "isha": req.Isha,
	}
	for name, v := range required {
		if !clockTime.MatchString(v) {
			return fmt.Errorf("%s must be HH:MM", name)
		}
	}
	optional := map[string]*string{
		"fajr_iqama": req.FajrIqama, "dhuhr_iqama": req.DhuhrIqama, "asr_iqama": req.AsrIqama,
		"maghrib_iqama": req.MaghribIqama, "isha_iqama": req.IshaIqama, "jumuah": req.Jumuah,
	}
	for name, v := range optional {
		if v != nil && !clockTime.MatchString(*v) {
			return fmt.Errorf("%s must be HH:MM", name)
		}
	}
	return nil
}
