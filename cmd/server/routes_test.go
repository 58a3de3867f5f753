package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/minaarly/internal/config"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/minaarly/internal/notify"
	"github.com/Nixie-Tech-LLC/minaarly/internal/storage"
)

func testRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := dbtest.New()
	store.AddMosque("Al-Nur Moschee", "Berlin", 52.52, 13.40)

	r := gin.New()
	RegisterRoutes(r, cfg, Services{
		Store:   store,
		Fetcher: store,
		Storage: storage.NewLocalStorage(t.TempDir(), uploadsPath),
		Changes: notify.NewChanges(nil),
	})
	return r
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesWired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", MapFetchLimit: 100, UploadDir: t.TempDir()}
	r := testRouter(t, cfg)

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/mosques?south=52&north=53&west=13&east=14").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me/mosque-admin").Code)
	assert.Equal(t, http.StatusServiceUnavailable, httpPost(r, "/api/payments/checkout").Code)

	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "minaarly_http_requests_total")
}

func httpPost(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSOrigins(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", MapFetchLimit: 100, CORSOrigins: []string{"https://minaarly.app"}}
	r := testRouter(t, cfg)

	w := get(r, "/healthz", "Origin", "https://minaarly.app")
	assert.Equal(t, "https://minaarly.app", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/healthz", "Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestOriginChecker(t *testing.T) {
	check := requestOriginChecker(originChecker(&config.Config{CORSOrigins: []string{"https://minaarly.app"}}))

	req := httptest.NewRequest(http.MethodGet, "/api/map/live", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://minaarly.app")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
