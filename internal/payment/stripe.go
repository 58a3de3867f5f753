package payment

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider creates Stripe Checkout sessions in payment mode.
type StripeProvider struct {
	sc *client.API
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider builds a provider using the given secret key. backends
// may be nil to use Stripe's public API.
func NewStripeProvider(secretKey string, backends *stripe.Backends) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &StripeProvider{sc: sc}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if params.PriceID != "" {
		item.Price = stripe.String(params.PriceID)
	} else {
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(params.Currency),
			UnitAmount: stripe.Int64(params.Amount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(params.ProductName),
			},
		}
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{item},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sp.Context = ctx

	s, err := p.sc.CheckoutSessions.New(sp)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) {
			log.Warn().Str("type", string(se.Type)).Str("code", string(se.Code)).Msg("stripe rejected checkout session")
			return nil, &ProviderError{Message: se.Msg, Err: err}
		}
		log.Error().Err(err).Msg("stripe checkout session failed")
		return nil, &ProviderError{Message: "payment provider unavailable", Err: err}
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}
