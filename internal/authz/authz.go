package authz

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

// Provider answers the two authorization questions the API asks.
type Provider interface {
	HasRole(ctx context.Context, userID int, role string) (bool, error)
	ApprovedMosqueAdmin(ctx context.Context, userID int) (*model.MosqueAdmin, error)
}

// mosqueAdminChecker is implemented by providers that can check a specific
// mosque directly instead of going through ApprovedMosqueAdmin.
type mosqueAdminChecker interface {
	IsMosqueAdmin(ctx context.Context, userID int, mosqueID string) (bool, error)
}

// CheckRole reports role membership. An error counts as "no".
func CheckRole(ctx context.Context, p Provider, userID int, role string) bool {
	ok, err := p.HasRole(ctx, userID, role)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Str("role", role).Msg("role check failed")
		return false
	}
	return ok
}

// CanManageMosque reports whether the user may edit the mosque: platform
// admins may edit any listing, approved mosque admins only their own.
func CanManageMosque(ctx context.Context, p Provider, userID int, mosqueID string) bool {
	if CheckRole(ctx, p, userID, model.RoleAdmin) {
		return true
	}
	if c, ok := p.(mosqueAdminChecker); ok {
		allowed, err := c.IsMosqueAdmin(ctx, userID, mosqueID)
		if err != nil {
			log.Error().Err(err).Int("user_id", userID).Str("mosque_id", mosqueID).Msg("mosque admin check failed")
			return false
		}
		return allowed
	}
	a, err := p.ApprovedMosqueAdmin(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("mosque admin lookup failed")
		return false
	}
	return a != nil && a.MosqueID == mosqueID
}

// RequireRole aborts with 403 unless the current user holds role.
// Must run after JWTMiddleware.
func RequireRole(p Provider, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !CheckRole(c.Request.Context(), p, user.ID, role) {
			log.Warn().Int("user_id", user.ID).Str("role", role).Str("route", c.FullPath()).Msg("forbidden: missing role")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireMosqueAdmin aborts with 403 unless the current user may manage the
// mosque named by the route parameter param.
func RequireMosqueAdmin(p Provider, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		mosqueID := c.Param(param)
		if !CanManageMosque(c.Request.Context(), p, user.ID, mosqueID) {
			log.Warn().Int("user_id", user.ID).Str("mosque_id", mosqueID).Msg("forbidden: not a mosque admin")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
