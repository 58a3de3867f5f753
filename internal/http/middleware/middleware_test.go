package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

type users map[int]*model.User

func (u users) GetUserByID(id int) (*model.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("not found")
}

func newRouter(secret string, u users) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTMiddleware(secret, u))
	r.GET("/me", func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return r
}

func TestJWTMiddleware(t *testing.T) {
	secret := "supersecret"
	r := newRouter(secret, users{1: {ID: 1, Email: "imam@example.com"}})

	token, err := GenerateJWT(1, secret)
	require.NoError(t, err)
	orphan, err := GenerateJWT(2, secret)
	require.NoError(t, err)
	forged, err := GenerateJWT(1, "other-secret")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"valid", "Bearer " + token, "", http.StatusOK},
		{"query token", "", "?token=" + token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"forged", "Bearer " + forged, "", http.StatusUnauthorized},
		{"unknown user", "Bearer " + orphan, "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("bismillah123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "bismillah123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
