package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway charges through Stripe PaymentIntents, confirming server side.
type StripeGateway struct {
	client        *paymentintent.Client
	paymentMethod string
}

// StripeGatewayConfig holds configuration for the Stripe gateway.
type StripeGatewayConfig struct {
	SecretKey string
	// PaymentMethod is the method confirmed against each intent, e.g. a saved card.
	PaymentMethod string
	// Backend overrides the API backend. Nil uses Stripe's.
	Backend stripe.Backend
}

// NewStripeGateway creates a Stripe gateway.
func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	backend := config.Backend
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		client:        &paymentintent.Client{B: backend, Key: config.SecretKey},
		paymentMethod: config.PaymentMethod,
	}, nil
}

// Charge creates and confirms a PaymentIntent.
func (g *StripeGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("charge request is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(g.paymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.client.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			code := string(stripeErr.Code)
			if stripeErr.DeclineCode != "" {
				code = string(stripeErr.DeclineCode)
			}
			return &ChargeResponse{
				Status:        "failed",
				FailureCode:   code,
				FailureReason: stripeErr.Msg,
			}, nil
		}
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	resp := &ChargeResponse{TransactionID: pi.ID, Status: string(pi.Status)}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		resp.Success = true
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation:
		resp.FailureCode = string(pi.Status)
		resp.FailureReason = "payment requires further action"
	case stripe.PaymentIntentStatusCanceled:
		resp.FailureCode = "canceled"
		resp.FailureReason = "payment was canceled"
	default:
		resp.FailureCode = string(pi.Status)
		resp.FailureReason = fmt.Sprintf("unexpected status: %s", pi.Status)
	}
	return resp, nil
}

// Name returns the gateway name.
func (g *StripeGateway) Name() string {
	return "stripe"
}
