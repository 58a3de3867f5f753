package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/authz"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	authpackets "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/manage/packets"
	public "github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
	"github.com/Nixie-Tech-LLC/minaarly/internal/notify"
)

type PlatformAdmin struct {
	store   db.Store
	changes *notify.Changes
}

// PlatformAdminModule mounts /admin endpoints, restricted to the admin role.
func PlatformAdminModule(store db.Store, provider authz.Provider, changes *notify.Changes) api.Module {
	if changes == nil {
		changes = notify.NewChanges(nil)
	}
	ctl := &PlatformAdmin{store: store, changes: changes}
	return api.ModuleFunc(func(c *api.Controller) {
		gate := authz.RequireRole(provider, model.RoleAdmin)

		c.POST("/admin/mosques", ctl.createMosque, gate)
		c.GET("/admin/claims", ctl.listClaims, gate)
		c.POST("/admin/claims/:id/approve", ctl.approveClaim, gate)
		c.POST("/admin/claims/:id/reject", ctl.rejectClaim, gate)
	})
}

// POST /api/admin/mosques
func (p *PlatformAdmin) createMosque(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateMosqueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if err := validateFacilities(req.Facilities); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	mosque, err := p.store.CreateMosque(ctx.Request.Context(), db.MosqueInput{
		Name:        req.Name,
		Slug:        req.Slug,
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
		Verified:    req.Verified,
	})
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "slug already in use"}
		}
		return nil, api.Internal("could not create mosque")
	}
	log.Info().Int("user_id", user.ID).Str("mosque_id", mosque.ID).Str("slug", mosque.Slug).Msg("mosque created")
	p.changes.MosqueChanged(ctx.Request.Context(), mosque.ID, ChangeListing)

	return api.Created{Body: public.NewMosqueResponse(*mosque)}, nil
}

// GET /api/admin/claims
func (p *PlatformAdmin) listClaims(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	claims, err := p.store.ListPendingClaims(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list pending claims")
		return nil, api.Internal("could not list claims")
	}
	out := make([]authpackets.MosqueAdminResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, authpackets.NewMosqueAdminResponse(c))
	}
	return out, nil
}

// POST /api/admin/claims/:id/approve
func (p *PlatformAdmin) approveClaim(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return p.decide(ctx, user, model.AdminApproved)
}

// POST /api/admin/claims/:id/reject
func (p *PlatformAdmin) rejectClaim(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return p.decide(ctx, user, model.AdminRejected)
}

func (p *PlatformAdmin) decide(ctx *gin.Context, user *model.User, status model.AdminStatus) (any, *api.APIError) {
	claimID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, api.BadRequest("invalid claim id")
	}

	claim, err := p.store.SetClaimStatus(ctx.Request.Context(), claimID, status)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Int("claim_id", claimID).Msg("failed to update claim")
		}
		return nil, api.FromStore(err, "claim not found", "could not update claim")
	}
	log.Info().Int("admin_id", user.ID).Int("claim_id", claimID).Str("status", string(status)).Msg("claim decided")
	if status == model.AdminApproved {
		p.changes.MosqueChanged(ctx.Request.Context(), claim.MosqueID, ChangeAdmins)
	}

	return authpackets.NewMosqueAdminResponse(*claim), nil
}
