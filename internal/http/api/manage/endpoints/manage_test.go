package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/manage/packets"
	public "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
	"github.com/Nixie-Tech-LLC/minaarly/internal/notify"
	"github.com/Nixie-Tech-LLC/minaarly/internal/storage"
)

const secret = "test-secret"

type recorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *recorder) Publish(ctx context.Context, topic string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

type fixture struct {
	store    *dbtest.MemStore
	router   *gin.Engine
	pub      *recorder
	mosque   model.Mosque
	uploads  string
	admin    string
	owner    string
	stranger string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{store: dbtest.New(), pub: &recorder{}, uploads: t.TempDir()}
	f.mosque = f.store.AddMosque("Al-Nur Moschee", "Berlin", 52.52, 13.40)

	token := func(id int) string {
		tok, err := middleware.GenerateJWT(id, secret)
		require.NoError(t, err)
		return tok
	}
	f.admin = token(f.store.AddUser("admin@example.com", model.RoleAdmin))
	ownerID := f.store.AddUser("owner@example.com")
	f.store.Approve(ownerID, f.mosque.ID)
	f.owner = token(ownerID)
	f.stranger = token(f.store.AddUser("stranger@example.com"))

	changes := notify.NewChanges(f.pub)
	f.router = gin.New()
	api.MountGroup(f.router, api.GroupConfig{Prefix: "/api", Auth: true, SecretKey: secret, Users: f.store},
		MosqueManageModule(f.store, storage.NewLocalStorage(f.uploads, "/uploads"), f.store, changes),
		PlatformAdminModule(f.store, f.store, changes),
	)
	return f
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func str(s string) *string { return &s }

func TestUpdateMosqueRequiresMosqueAdmin(t *testing.T) {
	f := setup(t)
	path := "/api/manage/mosques/" + f.mosque.ID
	body := packets.UpdateMosqueRequest{Description: str("Friday prayer at 13:30")}

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPut, path, f.stranger, body).Code)
	assert.Empty(t, f.pub.topics)

	w := f.do(http.MethodPut, path, f.owner, body)
	require.Equal(t, http.StatusOK, w.Code)
	var out public.MosqueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Friday prayer at 13:30", out.Description)
	assert.Equal(t, "Al-Nur Moschee", out.Name)
	assert.Equal(t, []string{notify.Topic(f.mosque.ID)}, f.pub.topics)

	// platform admins may edit any listing
	assert.Equal(t, http.StatusOK, f.do(http.MethodPut, path, f.admin, body).Code)
}

func TestUpdateMosqueValidation(t *testing.T) {
	f := setup(t)
	path := "/api/manage/mosques/" + f.mosque.ID

	facilities := []string{"parking", "sauna"}
	w := f.do(http.MethodPut, path, f.owner, packets.UpdateMosqueRequest{Facilities: &facilities})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sauna")

	lat := 52.0
	w = f.do(http.MethodPut, path, f.owner, packets.UpdateMosqueRequest{Latitude: &lat})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPrayerTimes(t *testing.T) {
	f := setup(t)
	path := "/api/manage/mosques/" + f.mosque.ID + "/prayer-times"
	req := packets.PrayerTimesRequest{
		Date: "2026-03-01", Fajr: "05:01", Sunrise: "06:45", Dhuhr: "12:20",
		Asr: "15:10", Maghrib: "17:55", Isha: "19:30", Jumuah: str("13:30"),
	}

	w := f.do(http.MethodPut, path, f.owner, req)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := f.store.GetPrayerTimes(context.Background(), f.mosque.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "12:20", stored.Dhuhr)

	req.Isha = "7:30pm"
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, path, f.owner, req).Code)
}

func TestEventLifecycle(t *testing.T) {
	f := setup(t)
	base := "/api/manage/mosques/" + f.mosque.ID + "/events"
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	end := start.Add(-time.Hour)
	w := f.do(http.MethodPost, base, f.owner, packets.CreateEventRequest{Title: "Quran circle", StartsAt: start, EndsAt: &end})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, base, f.owner, packets.CreateEventRequest{Title: "Quran circle", StartsAt: start})
	require.Equal(t, http.StatusCreated, w.Code)
	var ev public.EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))

	events, err := f.store.ListUpcomingEvents(context.Background(), f.mosque.ID, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, base+"/"+ev.ID, f.owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, base+"/"+ev.ID, f.owner, nil).Code)
}

func TestUploadImage(t *testing.T) {
	f := setup(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "front door.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/manage/mosques/"+f.mosque.ID+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.owner)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out public.MosqueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotNil(t, out.ImageURL)
	assert.Contains(t, *out.ImageURL, "/uploads/mosques/"+f.mosque.Slug+"/front_door_")

	matches, err := filepath.Glob(filepath.Join(f.uploads, "mosques", f.mosque.Slug, "*.png"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))
}

func TestPlatformAdminRoutes(t *testing.T) {
	f := setup(t)

	lat, lng := 48.14, 11.58
	create := packets.CreateMosqueRequest{Name: "Freimann Moschee", City: "München", Latitude: &lat, Longitude: &lng, Facilities: []string{"wudu"}}
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/admin/mosques", f.owner, create).Code)

	w := f.do(http.MethodPost, "/api/admin/mosques", f.admin, create)
	require.Equal(t, http.StatusCreated, w.Code)
	var created public.MosqueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "freimann-moschee-muenchen", created.Slug)

	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/api/admin/mosques", f.admin, create).Code)
}

func TestClaimDecisions(t *testing.T) {
	f := setup(t)
	applicant := f.store.AddUser("applicant@example.com")
	claim, err := f.store.CreateClaim(context.Background(), applicant, f.mosque.ID, nil)
	require.NoError(t, err)

	w := f.do(http.MethodGet, "/api/admin/claims", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	approve := "/api/admin/claims/" + strconv.Itoa(claim.ID) + "/approve"
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, approve, f.owner, nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, approve, f.admin, nil).Code)

	ok, err := f.store.IsMosqueAdmin(context.Background(), applicant, f.mosque.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, f.pub.topics, notify.Topic(f.mosque.ID))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/admin/claims/9999/reject", f.admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/admin/claims/abc/reject", f.admin, nil).Code)
}
