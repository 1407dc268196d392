package payment

import "context"

// Gateway collects venue fees.
type Gateway interface {
	// Charge collects req.AmountCents. A declined charge is reported with Success=false and
	// a nil error; the error is reserved for requests that never reached a decision.
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)

	// Name returns the gateway name.
	Name() string
}

// ChargeRequest represents a single charge.
type ChargeRequest struct {
	// IdempotencyKey makes retries of the same attempt safe on the gateway side.
	IdempotencyKey string
	AmountCents    int64
	Currency       string
	Description    string
	Metadata       map[string]string
}

// ChargeResponse represents the gateway's decision.
type ChargeResponse struct {
	Success       bool
	TransactionID string
	Status        string
	FailureCode   string
	FailureReason string
}
