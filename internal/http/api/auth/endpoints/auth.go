package endpoints

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/authz"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

// AuthPublicModule mounts public auth endpoints (/auth/signup, /auth/login)
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store, nil)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/signup", ctl.userSignup)
		c.PUBLIC_POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts private session/profile endpoints (JWT required)
func AuthSessionModule(jwtSecret string, store db.Store, provider authz.Provider) api.Module {
	ctl := newAccountManager(jwtSecret, store, provider)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", ctl.getCurrentProfile)
		c.PUT("/auth/current_profile", ctl.updateCurrentProfile)

		c.GET("/me/roles/:role", ctl.checkRole)
		c.GET("/me/mosque-admin", ctl.getMosqueAdmin)
		c.POST("/mosques/:slug/claim", ctl.claimMosque)
	})
}

type AccountManager struct {
	jwtSecret string
	store     db.Store
	provider  authz.Provider
}

func newAccountManager(secret string, store db.Store, provider authz.Provider) *AccountManager {
	return &AccountManager{jwtSecret: secret, store: store, provider: provider}
}

// POST /api/auth/signup
func (a *AccountManager) userSignup(ctx *gin.Context) (any, *api.APIError) {
	var request packets.SignupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := a.store.GetUserByEmail(request.Email); existing != nil {
		log.Warn().Str("email", request.Email).Msg("signup email already registered")
		return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}

	userID, err := a.store.CreateUser(request.Email, hashed, request.Name)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create user"}
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return api.Created{Body: packets.TokenResponse{Token: token}}, nil
}

// POST /api/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	foundUser, err := a.store.GetUserByEmail(request.Email)
	if err != nil || foundUser == nil || !middleware.CheckPassword(foundUser.HashedPassword, request.Password) {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	token, err := middleware.GenerateJWT(foundUser.ID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return packets.TokenResponse{Token: token}, nil
}

// GET /api/auth/current_profile
func (a *AccountManager) getCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return packets.NewProfileResponse(user), nil
}

// PUT /api/auth/current_profile
func (a *AccountManager) updateCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateCurrentProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Email != user.Email {
		if other, _ := a.store.GetUserByEmail(request.Email); other != nil {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "email already in use"}
		}
	}

	if err := a.store.UpdateUserProfile(user.ID, request.Email, request.Name); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update profile"}
	}

	updated, err := a.store.GetUserByID(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated profile"}
	}

	return packets.NewProfileResponse(updated), nil
}

// GET /api/me/roles/:role
func (a *AccountManager) checkRole(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	role := ctx.Param("role")
	return packets.RoleResponse{
		Role:    role,
		HasRole: authz.CheckRole(ctx.Request.Context(), a.provider, user.ID, role),
	}, nil
}

// GET /api/me/mosque-admin
func (a *AccountManager) getMosqueAdmin(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	assoc, err := a.provider.ApprovedMosqueAdmin(ctx.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("mosque admin lookup failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check mosque admin status"}
	}
	if assoc == nil {
		return gin.H{"mosque_admin": nil}, nil
	}
	return gin.H{"mosque_admin": packets.NewMosqueAdminResponse(*assoc)}, nil
}

// POST /api/mosques/:slug/claim
func (a *AccountManager) claimMosque(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.ClaimRequest
	// the message is optional, so an empty body is fine
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	mosque, err := a.store.GetMosqueBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		return nil, api.FromStore(err, "mosque not found", "could not load mosque")
	}

	claim, err := a.store.CreateClaim(ctx.Request.Context(), user.ID, mosque.ID, request.Message)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create claim"}
	}
	log.Info().Int("user_id", user.ID).Str("mosque_id", mosque.ID).Str("status", string(claim.Status)).Msg("mosque claim recorded")

	return api.Created{Body: packets.NewMosqueAdminResponse(*claim)}, nil
}
