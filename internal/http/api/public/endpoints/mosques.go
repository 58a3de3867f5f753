package endpoints

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/geo"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
	"github.com/Nixie-Tech-LLC/minaarly/internal/viewport"
)

const (
	defaultNearbyRadiusKm = 5.0
	defaultNearbyLimit    = 20
	detailEventLimit      = 5
	eventListLimit        = 50
)

type MosqueController struct {
	store   db.Store
	fetcher viewport.Fetcher
	limit   int
	now     func() time.Time
}

func newMosqueController(store db.Store, fetcher viewport.Fetcher, limit int) *MosqueController {
	if limit <= 0 {
		limit = viewport.DefaultFetchLimit
	}
	return &MosqueController{store: store, fetcher: fetcher, limit: limit, now: time.Now}
}

// MosqueModule mounts the public mosque endpoints. fetcher serves viewport
// queries and is usually the cached store.
func MosqueModule(store db.Store, fetcher viewport.Fetcher, limit int) api.Module {
	ctl := newMosqueController(store, fetcher, limit)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/mosques", ctl.listInBounds)
		c.PUBLIC_GET("/mosques/nearby", ctl.nearby)
		c.PUBLIC_GET("/mosques/:slug", ctl.getMosque)
		c.PUBLIC_GET("/mosques/:slug/prayer-times", ctl.getPrayerTimes)
		c.PUBLIC_GET("/mosques/:slug/events", ctl.listEvents)
	})
}

func (m *MosqueController) capLimit(requested int) int {
	if requested <= 0 || requested > m.limit {
		return m.limit
	}
	return requested
}

func withCoordinates(mosques []model.Mosque) []model.Mosque {
	out := mosques[:0:0]
	for _, x := range mosques {
		if x.HasCoordinates() {
			out = append(out, x)
		}
	}
	return out
}

// GET /api/mosques?south=&north=&west=&east=
func (m *MosqueController) listInBounds(ctx *gin.Context) (any, *api.APIError) {
	var q packets.BoundsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	bounds := model.BoundingBox{South: *q.South, North: *q.North, West: *q.West, East: *q.East}
	if err := geo.Validate(bounds); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	mosques, err := m.fetcher.MosquesInBounds(ctx.Request.Context(), bounds, m.capLimit(q.Limit))
	if err != nil {
		log.Error().Err(err).Str("route", ctx.FullPath()).Msg("failed to load mosques in bounds")
		return nil, api.Internal(viewport.ErrLoadFailed.Error())
	}
	return packets.NewMosqueList(withCoordinates(mosques)), nil
}

// GET /api/mosques/nearby?lat=&lng=
func (m *MosqueController) nearby(ctx *gin.Context) (any, *api.APIError) {
	var q packets.NearbyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	radiusKm := q.RadiusKm
	if radiusKm == 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	limit := defaultNearbyLimit
	if q.Limit > 0 {
		limit = m.capLimit(q.Limit)
	}

	// candidates come back closest first so the cap never drops the nearest
	lat, lng := *q.Lat, *q.Lng
	candidates, err := m.store.NearestMosques(ctx.Request.Context(), lat, lng, geo.Around(lat, lng, radiusKm), m.limit)
	if err != nil {
		log.Error().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("failed to load nearby mosques")
		return nil, api.Internal(viewport.ErrLoadFailed.Error())
	}

	type ranked struct {
		mosque   model.Mosque
		distance float64
	}
	var hits []ranked
	for _, x := range withCoordinates(candidates) {
		d := geo.Haversine(lat, lng, *x.Latitude, *x.Longitude)
		if d <= radiusKm*1000 {
			hits = append(hits, ranked{mosque: x, distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]packets.MosqueResponse, 0, len(hits))
	for _, h := range hits {
		resp := packets.NewMosqueResponse(h.mosque)
		d := h.distance
		resp.DistanceM = &d
		out = append(out, resp)
	}
	return out, nil
}

func (m *MosqueController) mosqueBySlug(ctx *gin.Context) (*model.Mosque, *api.APIError) {
	mosque, err := m.store.GetMosqueBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Str("slug", ctx.Param("slug")).Msg("failed to get mosque by slug")
		}
		return nil, api.FromStore(err, "mosque not found", "could not load mosque")
	}
	return mosque, nil
}

// GET /api/mosques/:slug
func (m *MosqueController) getMosque(ctx *gin.Context) (any, *api.APIError) {
	mosque, apiErr := m.mosqueBySlug(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var (
		times  *model.PrayerTimes
		events []model.Event
	)
	now := m.now()
	g, gctx := errgroup.WithContext(ctx.Request.Context())
	g.Go(func() error {
		pt, err := m.store.GetPrayerTimes(gctx, mosque.ID, now)
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		times = pt
		return err
	})
	g.Go(func() error {
		var err error
		events, err = m.store.ListUpcomingEvents(gctx, mosque.ID, now, detailEventLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("mosque_id", mosque.ID).Msg("failed to load mosque details")
		return nil, api.Internal("could not load mosque")
	}

	resp := packets.MosqueDetailResponse{
		MosqueResponse: packets.NewMosqueResponse(*mosque),
		Events:         packets.NewEventList(events),
	}
	if times != nil {
		pt := packets.NewPrayerTimesResponse(*times)
		resp.PrayerTimes = &pt
	}
	return resp, nil
}

// GET /api/mosques/:slug/prayer-times?date=YYYY-MM-DD
func (m *MosqueController) getPrayerTimes(ctx *gin.Context) (any, *api.APIError) {
	date := m.now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, api.BadRequest("date must be YYYY-MM-DD")
		}
		date = parsed
	}

	mosque, apiErr := m.mosqueBySlug(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	times, err := m.store.GetPrayerTimes(ctx.Request.Context(), mosque.ID, date)
	if err != nil {
		return nil, api.FromStore(err, "no prayer times for date", "could not load prayer times")
	}
	return packets.NewPrayerTimesResponse(*times), nil
}

// GET /api/mosques/:slug/events
func (m *MosqueController) listEvents(ctx *gin.Context) (any, *api.APIError) {
	mosque, apiErr := m.mosqueBySlug(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	events, err := m.store.ListUpcomingEvents(ctx.Request.Context(), mosque.ID, m.now(), eventListLimit)
	if err != nil {
		log.Error().Err(err).Str("mosque_id", mosque.ID).Msg("failed to list events")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load events"}
	}
	return packets.NewEventList(events), nil
}
