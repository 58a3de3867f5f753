package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const prayerColumns = `mosque_id, date, fajr, sunrise, dhuhr, asr, maghrib, isha,
	fajr_iqama, dhuhr_iqama, asr_iqama, maghrib_iqama, isha_iqama, jumuah, updated_at`

func (s *pgStore) GetPrayerTimes(ctx context.Context, mosqueID string, date time.Time) (*model.PrayerTimes, error) {
	var pt model.PrayerTimes
	err := s.db.GetContext(ctx, &pt, `
		SELECT `+prayerColumns+`
		FROM prayer_times
		WHERE mosque_id = $1 AND date = $2`, mosqueID, date.Format("2006-01-02"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get prayer times: %w", err)
	}
	return &pt, nil
}

func (s *pgStore) UpsertPrayerTimes(ctx context.Context, pt model.PrayerTimes) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO prayer_times (mosque_id, date, fajr, sunrise, dhuhr, asr, maghrib, isha,
			fajr_iqama, dhuhr_iqama, asr_iqama, maghrib_iqama, isha_iqama, jumuah, updated_at)
		VALUES (:mosque_id, :date, :fajr, :sunrise, :dhuhr, :asr, :maghrib, :isha,
			:fajr_iqama, :dhuhr_iqama, :asr_iqama, :maghrib_iqama, :isha_iqama, :jumuah, now())
		ON CONFLICT (mosque_id, date) DO UPDATE SET
			fajr = EXCLUDED.fajr,
			sunrise = EXCLUDED.sunrise,
			dhuhr = EXCLUDED.dhuhr,
			asr = EXCLUDED.asr,
			maghrib = EXCLUDED.maghrib,
			isha = EXCLUDED.isha,
			fajr_iqama = EXCLUDED.fajr_iqama,
			dhuhr_iqama = EXCLUDED.dhuhr_iqama,
			asr_iqama = EXCLUDED.asr_iqama,
			maghrib_iqama = EXCLUDED.maghrib_iqama,
			isha_iqama = EXCLUDED.isha_iqama,
			jumuah = EXCLUDED.jumuah,
			updated_at = now()`, pt)
	if err != nil {
		return fmt.Errorf("upsert prayer times: %w", err)
	}
	return nil
}
