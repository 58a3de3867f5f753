package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api"
	"github.com/Nixie-Tech-LLC/minaarly/internal/http/api/public/packets"
	"github.com/Nixie-Tech-LLC/minaarly/internal/metrics"
	"github.com/Nixie-Tech-LLC/minaarly/internal/payment"
)

type PaymentController struct {
	svc *payment.Service
}

// PaymentModule mounts POST /payments/checkout. svc may be nil when no
// payment provider is configured; the endpoint then answers 503.
func PaymentModule(svc *payment.Service) api.Module {
	ctl := &PaymentController{svc: svc}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/payments/checkout", ctl.createCheckout)
	})
}

// POST /api/payments/checkout
func (p *PaymentController) createCheckout(ctx *gin.Context) (any, *api.APIError) {
	if p.svc == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "payments are not configured"}
	}

	var request packets.CheckoutRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	session, err := p.svc.CreateSession(ctx.Request.Context(), payment.Request{
		PriceID:      request.PriceID,
		CustomAmount: request.CustomAmount,
	})
	if err != nil {
		var providerErr *payment.ProviderError
		switch {
		case errors.Is(err, payment.ErrInvalidRequest):
			metrics.CheckoutSessionsTotal.WithLabelValues("invalid").Inc()
			return nil, api.BadRequest(err.Error())
		case errors.As(err, &providerErr):
			metrics.CheckoutSessionsTotal.WithLabelValues("rejected").Inc()
			return nil, &api.APIError{Code: http.StatusBadGateway, Message: providerErr.Message}
		default:
			metrics.CheckoutSessionsTotal.WithLabelValues("error").Inc()
			log.Error().Err(err).Msg("failed to create checkout session")
			return nil, api.Internal("could not create checkout session")
		}
	}

	metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	return gin.H{"url": session.URL, "id": session.ID}, nil
}
