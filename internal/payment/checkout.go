package payment

import (
	"context"
	"errors"
	"fmt"
)

// MinCustomAmount is the smallest custom amount accepted, in minor units.
const MinCustomAmount = 100

var ErrInvalidRequest = errors.New("invalid checkout request")

// Request selects what the hosted checkout charges: a fixed price reference
// or a custom amount. PriceID wins when both are given.
type Request struct {
	PriceID      string `json:"priceId"`
	CustomAmount *int64 `json:"customAmount"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionParams is a validated request ready for the provider.
type SessionParams struct {
	PriceID     string
	Amount      int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
}

// ProviderError is a rejection reported by the payment provider.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return "payment provider: " + e.Message }
func (e *ProviderError) Unwrap() error { return e.Err }

type Config struct {
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

type Service struct {
	provider Provider
	cfg      Config
}

func NewService(provider Provider, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	if cfg.ProductName == "" {
		cfg.ProductName = "Donation"
	}
	return &Service{provider: provider, cfg: cfg}
}

// Params validates req against the service configuration.
func (s *Service) Params(req Request) (SessionParams, error) {
	params := SessionParams{
		Currency:    s.cfg.Currency,
		ProductName: s.cfg.ProductName,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	}
	switch {
	case req.PriceID != "":
		params.PriceID = req.PriceID
	case req.CustomAmount == nil:
		return SessionParams{}, fmt.Errorf("%w: either priceId or customAmount is required", ErrInvalidRequest)
	case *req.CustomAmount < MinCustomAmount:
		return SessionParams{}, fmt.Errorf("%w: customAmount must be at least %d", ErrInvalidRequest, MinCustomAmount)
	default:
		params.Amount = *req.CustomAmount
	}
	return params, nil
}

func (s *Service) CreateSession(ctx context.Context, req Request) (*Session, error) {
	params, err := s.Params(req)
	if err != nil {
		return nil, err
	}
	return s.provider.CreateCheckoutSession(ctx, params)
}
