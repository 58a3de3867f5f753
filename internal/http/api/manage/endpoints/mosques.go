package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/authz"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/manage/packets"
	public "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
	"github.com/Nixie-Tech-LLC/minaarly/internal/notify"
	"github.com/Nixie-Tech-LLC/minaarly/internal/storage"
)

// change kinds published on mosques/<id>/updated
const (
	ChangeListing     = "listing"
	ChangeImage       = "image"
	ChangePrayerTimes = "prayer_times"
	ChangeEvents      = "events"
	ChangeAdmins      = "admins"
)

type MosqueManager struct {
	store   db.Store
	storage storage.Storage
	changes *notify.Changes
	now     func() time.Time
}

func newMosqueManager(store db.Store, st storage.Storage, changes *notify.Changes) *MosqueManager {
	if changes == nil {
		changes = notify.NewChanges(nil)
	}
	return &MosqueManager{store: store, storage: st, changes: changes, now: time.Now}
}

// MosqueManageModule mounts the /manage endpoints. Every route is gated on
// the caller administering the mosque in :id.
func MosqueManageModule(store db.Store, st storage.Storage, provider authz.Provider, changes *notify.Changes) api.Module {
	ctl := newMosqueManager(store, st, changes)
	return api.ModuleFunc(func(c *api.Controller) {
		gate := authz.RequireMosqueAdmin(provider, "id")

		c.PUT("/manage/mosques/:id", ctl.updateMosque, gate)
		c.POST("/manage/mosques/:id/image", ctl.uploadImage, gate)
		c.PUT("/manage/mosques/:id/prayer-times", ctl.setPrayerTimes, gate)
		c.POST("/manage/mosques/:id/events", ctl.createEvent, gate)
		c.DELETE("/manage/mosques/:id/events/:eventID", ctl.deleteEvent, gate)
	})
}

// PUT /api/manage/mosques/:id
func (m *MosqueManager) updateMosque(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.UpdateMosqueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if req.Facilities != nil {
		if err := validateFacilities(*req.Facilities); err != nil {
			return nil, api.BadRequest(err.Error())
		}
	}

	id := ctx.Param("id")
	updated, err := m.store.UpdateMosque(ctx.Request.Context(), id, db.MosqueUpdate{
		Name:        req.Name,
		Street:      req.Street,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Description: req.Description,
		Facilities:  req.Facilities,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
	})
	if err != nil {
		return nil, api.FromStore(err, "mosque not found", "could not update mosque")
	}
	log.Info().Int("user_id", user.ID).Str("mosque_id", id).Msg("mosque listing updated")
	m.changes.MosqueChanged(ctx.Request.Context(), id, ChangeListing)

	return public.NewMosqueResponse(*updated), nil
}

// POST /api/manage/mosques/:id/image (multipart, field "image")
func (m *MosqueManager) uploadImage(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if m.storage == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "image storage is not configured"}
	}

	id := ctx.Param("id")
	mosque, err := m.store.GetMosqueByID(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromStore(err, "mosque not found", "could not load mosque")
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		log.Warn().Err(err).Str("mosque_id", id).Msg("uploadImage: missing file")
		return nil, api.BadRequest("image is required")
	}
	if fileHeader.Size > storage.MaxImageSize {
		return nil, &api.APIError{Code: http.StatusRequestEntityTooLarge, Message: "image is too large"}
	}

	key, contentType, err := storage.ImageKey(mosque.Slug, fileHeader.Filename, m.now())
	if err != nil {
		return nil, api.BadRequest(err.Error())
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, api.Internal("could not read upload")
	}
	defer file.Close()

	url, err := m.storage.SaveImage(ctx.Request.Context(), key, file, contentType)
	if err != nil {
		log.Error().Err(err).Str("mosque_id", id).Msg("uploadImage: save failed")
		return nil, api.Internal("could not save image")
	}
	if err := m.store.SetMosqueImage(ctx.Request.Context(), id, url); err != nil {
		return nil, api.FromStore(err, "mosque not found", "could not save image")
	}
	log.Info().Int("user_id", user.ID).Str("mosque_id", id).Str("key", key).Msg("mosque image uploaded")
	m.changes.MosqueChanged(ctx.Request.Context(), id, ChangeImage)

	mosque.ImageURL = &url
	return public.NewMosqueResponse(*mosque), nil
}

// PUT /api/manage/mosques/:id/prayer-times
func (m *MosqueManager) setPrayerTimes(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.PrayerTimesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, api.BadRequest("date must be YYYY-MM-DD")
	}
	if err := validatePrayerTimes(req); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	id := ctx.Param("id")
	pt := model.PrayerTimes{
		MosqueID:     id,
		Date:         date,
		Fajr:         req.Fajr,
		Sunrise:      req.Sunrise,
		Dhuhr:        req.Dhuhr,
		Asr:          req.Asr,
		Maghrib:      req.Maghrib,
		Isha:         req.Isha,
		FajrIqama:    req.FajrIqama,
		DhuhrIqama:   req.DhuhrIqama,
		AsrIqama:     req.AsrIqama,
		MaghribIqama: req.MaghribIqama,
		IshaIqama:    req.IshaIqama,
		Jumuah:       req.Jumuah,
		UpdatedAt:    m.now(),
	}
	if err := m.store.UpsertPrayerTimes(ctx.Request.Context(), pt); err != nil {
		log.Error().Err(err).Str("mosque_id", id).Msg("failed to save prayer times")
		return nil, api.Internal("could not save prayer times")
	}
	m.changes.MosqueChanged(ctx.Request.Context(), id, ChangePrayerTimes)

	return public.NewPrayerTimesResponse(pt), nil
}

// POST /api/manage/mosques/:id/events
func (m *MosqueManager) createEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return nil, api.BadRequest("ends_at must not be before starts_at")
	}

	id := ctx.Param("id")
	ev, err := m.store.CreateEvent(ctx.Request.Context(), model.Event{
		MosqueID:    id,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   user.ID,
	})
	if err != nil {
		log.Error().Err(err).Str("mosque_id", id).Msg("failed to create event")
		return nil, api.Internal("could not create event")
	}
	m.changes.MosqueChanged(ctx.Request.Context(), id, ChangeEvents)

	return api.Created{Body: public.NewEventResponse(*ev)}, nil
}

// DELETE /api/manage/mosques/:id/events/:eventID
func (m *MosqueManager) deleteEvent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id := ctx.Param("id")
	err := m.store.DeleteEvent(ctx.Request.Context(), id, ctx.Param("eventID"))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Str("mosque_id", id).Msg("failed to delete event")
		}
		return nil, api.FromStore(err, "event not found", "could not delete event")
	}
	m.changes.MosqueChanged(ctx.Request.Context(), id, ChangeEvents)
	return nil, nil
}
