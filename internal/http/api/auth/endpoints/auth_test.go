package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const secret = "test-secret"

func newRouter(store *dbtest.MemStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	apiGroup := r.Group("/api")
	api.MountGroup(apiGroup, api.GroupConfig{}, AuthPublicModule(secret, store))
	api.MountGroup(apiGroup, api.GroupConfig{Auth: true, SecretKey: secret, Users: store},
		AuthSessionModule(secret, store, store))
	return r
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, userID int) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(userID, secret)
	require.NoError(t, err)
	return tok
}

func TestSignupAndLogin(t *testing.T) {
	r := newRouter(dbtest.New())

	w := do(r, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{Email: "imam@example.com", Password: "salaam123"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Token)

	w = do(r, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{Email: "imam@example.com", Password: "salaam123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", "", packets.LoginRequest{Email: "imam@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", "", packets.LoginRequest{Email: "imam@example.com", Password: "salaam123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = do(r, http.MethodGet, "/api/auth/current_profile", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "imam@example.com")
}

func TestSignupValidation(t *testing.T) {
	r := newRouter(dbtest.New())
	w := do(r, http.MethodPost, "/api/auth/signup", "", packets.SignupRequest{Email: "not-an-email", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionRoutesNeedToken(t *testing.T) {
	r := newRouter(dbtest.New())
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me/roles/admin", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/me/roles/admin", "garbage", nil).Code)
}

func TestCheckRole(t *testing.T) {
	store := dbtest.New()
	admin := store.AddUser("admin@example.com", model.RoleAdmin)
	visitor := store.AddUser("visitor@example.com")
	r := newRouter(store)

	var out packets.RoleResponse
	w := do(r, http.MethodGet, "/api/me/roles/admin", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.HasRole)

	w = do(r, http.MethodGet, "/api/me/roles/admin", tokenFor(t, visitor), nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.False(t, out.HasRole)
}

func TestClaimFlow(t *testing.T) {
	store := dbtest.New()
	mosque := store.AddMosque("Al-Nur Moschee", "Berlin", 52.52, 13.40)
	user := store.AddUser("board@example.com")
	r := newRouter(store)
	tok := tokenFor(t, user)

	w := do(r, http.MethodGet, "/api/me/mosque-admin", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mosque_admin":null}`, w.Body.String())

	msg := "I am on the board"
	w = do(r, http.MethodPost, "/api/mosques/"+mosque.Slug+"/claim", tok, packets.ClaimRequest{Message: &msg})
	require.Equal(t, http.StatusCreated, w.Code)
	var claim packets.MosqueAdminResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, "pending", claim.Status)
	assert.Equal(t, mosque.ID, claim.MosqueID)

	// an empty body is accepted
	w = do(r, http.MethodPost, "/api/mosques/"+mosque.Slug+"/claim", tok, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/mosques/unknown/claim", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.Approve(user, mosque.ID)
	w = do(r, http.MethodGet, "/api/me/mosque-admin", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)
}
