package payment

import (
	"fmt"
	"strings"
)

// GatewayType selects a Gateway implementation.
type GatewayType string

const (
	GatewayTypeMock   GatewayType = "mock"
	GatewayTypeStripe GatewayType = "stripe"
)

// NewGateway creates the gateway named by gatewayType. An empty type selects the mock.
func NewGateway(gatewayType, secretKey, paymentMethod string) (Gateway, error) {
	switch GatewayType(strings.ToLower(gatewayType)) {
	case GatewayTypeMock, "":
		return NewMockGateway(DefaultMockGatewayConfig()), nil
	case GatewayTypeStripe:
		return NewStripeGateway(&StripeGatewayConfig{
			SecretKey:     secretKey,
			PaymentMethod: paymentMethod,
		})
	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
}
