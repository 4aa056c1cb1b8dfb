package payment

import (
	"fmt"
	"net/url"
	"time"
)

const defaultRestTimeout = 30 * time.Second

// RestGatewayConfig holds settings for a REST payment processor
type RestGatewayConfig struct {
	Label      string        // Gateway label referenced by orders
	BaseURL    string        // Processor endpoint, e.g. https://psp.example.com/api
	APIKey     string        // Bearer token for the processor
	Timeout    time.Duration // Per-call HTTP timeout
	MerchantID string
}

// Validate checks the configuration
func (c *RestGatewayConfig) Validate() error {
	if c.Label == "" {
		return fmt.Errorf("rest gateway: label is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("rest gateway: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("rest gateway: invalid base URL: %w", err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("rest gateway: API key is required")
	}
	if c.Timeout == 0 {
		c.Timeout = defaultRestTimeout
	}
	return nil
}
