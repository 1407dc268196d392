package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestMockGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("approves", func(t *testing.T) {
		g := NewMockGateway(&MockGatewayConfig{SuccessRate: 1})
		resp, err := g.Charge(ctx, &ChargeRequest{AmountCents: 100, Currency: "INR"})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.TransactionID)
	})

	t.Run("declines", func(t *testing.T) {
		g := NewMockGateway(&MockGatewayConfig{SuccessRate: 0, FailureCode: "card_declined"})
		resp, err := g.Charge(ctx, &ChargeRequest{AmountCents: 100, Currency: "INR"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "card_declined", resp.FailureCode)
	})

	t.Run("idempotent", func(t *testing.T) {
		g := NewMockGateway(&MockGatewayConfig{SuccessRate: 0.5})
		first, err := g.Charge(ctx, &ChargeRequest{IdempotencyKey: "k1", AmountCents: 100})
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := g.Charge(ctx, &ChargeRequest{IdempotencyKey: "k1", AmountCents: 100})
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		g := NewMockGateway(&MockGatewayConfig{SuccessRate: 1})
		_, err := g.Charge(ctx, &ChargeRequest{AmountCents: 0})
		assert.Error(t, err)
	})
}

func newStripeTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	g, err := NewStripeGateway(&StripeGatewayConfig{
		SecretKey:     "sk_test_123",
		PaymentMethod: "pm_card_visa",
		Backend:       backend,
	})
	require.NoError(t, err)
	return g
}

func TestStripeGateway_Succeeded(t *testing.T) {
	g := newStripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "session-1:3", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "250000", r.PostForm.Get("amount"))
		assert.Equal(t, "inr", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("confirm"))
		assert.Equal(t, "pm_card_visa", r.PostForm.Get("payment_method"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded","amount":250000,"currency":"inr"}`))
	})

	resp, err := g.Charge(context.Background(), &ChargeRequest{
		IdempotencyKey: "session-1:3",
		AmountCents:    250000,
		Currency:       "INR",
		Metadata:       map[string]string{"session_id": "session-1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "pi_123", resp.TransactionID)
}

func TestStripeGateway_CardDeclined(t *testing.T) {
	g := newStripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds."}}`))
	})

	resp, err := g.Charge(context.Background(), &ChargeRequest{AmountCents: 100, Currency: "INR"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "insufficient_funds", resp.FailureCode)
	assert.Equal(t, "Your card has insufficient funds.", resp.FailureReason)
}

func TestStripeGateway_ServerError(t *testing.T) {
	g := newStripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"Something went wrong."}}`))
	})

	_, err := g.Charge(context.Background(), &ChargeRequest{AmountCents: 100, Currency: "INR"})
	assert.Error(t, err)
}

func TestNewGateway(t *testing.T) {
	g, err := NewGateway("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())

	_, err = NewGateway("stripe", "", "")
	assert.Error(t, err)

	g, err = NewGateway("STRIPE", "sk_test", "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, "stripe", g.Name())

	_, err = NewGateway("paypal", "", "")
	assert.Error(t, err)
}
