package messenger

import (
	"fmt"

	"github.com/dfarias/chaperone/internal/domain"
)

// Provider constants
const (
	ProviderGateway = "gateway"
	ProviderMock    = "mock"
)

// NewSender creates an outbound message sender based on the provider name.
// Returns an error if the provider is unknown or the gateway is not fully
// configured (except for mock).
func NewSender(provider, baseURL, token string) (domain.MessageSender, error) {
	switch provider {
	case ProviderGateway:
		if baseURL == "" {
			return nil, fmt.Errorf("MESSENGER_GATEWAY_URL is required for gateway provider")
		}
		if token == "" {
			return nil, fmt.Errorf("MESSENGER_GATEWAY_TOKEN is required for gateway provider")
		}
		return NewGatewayClient(baseURL, token), nil

	case ProviderMock:
		return NewMockSender(), nil

	default:
		return nil, fmt.Errorf("unknown messenger provider: %s (valid options: gateway, mock)", provider)
	}
}
