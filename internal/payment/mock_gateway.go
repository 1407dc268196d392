package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockGateway approves or declines charges locally. Used in development and tests.
type MockGateway struct {
	config *MockGatewayConfig

	mu      sync.Mutex
	charges map[string]*ChargeResponse
}

// MockGatewayConfig controls the mock's behaviour.
type MockGatewayConfig struct {
	// SuccessRate is the probability of approval (0.0 to 1.0).
	SuccessRate float64
	// Delay simulates gateway latency.
	Delay time.Duration
	// FailureCode is reported on declines.
	FailureCode string
}

// DefaultMockGatewayConfig approves every charge.
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{SuccessRate: 1, Delay: 100 * time.Millisecond, FailureCode: "card_declined"}
}

// NewMockGateway creates a mock gateway.
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}
	return &MockGateway{config: config, charges: make(map[string]*ChargeResponse)}
}

// Charge approves with probability SuccessRate. Repeating an idempotency key returns the
// first decision.
func (g *MockGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("charge request is required")
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("charge amount must be positive")
	}

	if g.config.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.config.Delay):
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if req.IdempotencyKey != "" {
		if prev, ok := g.charges[req.IdempotencyKey]; ok {
			return prev, nil
		}
	}

	resp := &ChargeResponse{TransactionID: "mock_txn_" + uuid.NewString()[:8]}
	if rand.Float64() < g.config.SuccessRate {
		resp.Success = true
		resp.Status = "succeeded"
	} else {
		resp.Status = "failed"
		resp.FailureCode = g.config.FailureCode
		resp.FailureReason = "Your card was declined."
	}

	if req.IdempotencyKey != "" {
		g.charges[req.IdempotencyKey] = resp
	}
	return resp, nil
}

// Name returns the gateway name.
func (g *MockGateway) Name() string {
	return "mock"
}
