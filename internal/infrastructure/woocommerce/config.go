package woocommerce

import (
	"errors"
	"strings"

	"github.com/storesync/backend/internal/domain/storefront"
)

// ClientConfig holds the connection settings for one WooCommerce shop.
type ClientConfig struct {
	// BaseURL is the shop root URL, without the API path
	BaseURL string
	// ConsumerKey and ConsumerSecret are the REST API credentials
	ConsumerKey    string
	ConsumerSecret string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// VerifySSL disables TLS certificate verification when false, needed for
	// self-hosted shops with self-signed certificates
	VerifySSL bool
}

// apiBasePath is the WooCommerce REST API v3 mount point.
const apiBasePath = "/wp-json/wc/v3"

// Errors for WooCommerce configuration
var (
	ErrConfigMissingBaseURL = errors.New("woocommerce: base URL is required")
	ErrConfigMissingKey     = errors.New("woocommerce: consumer key is required")
	ErrConfigMissingSecret  = errors.New("woocommerce: consumer secret is required")
)

// ConfigFromInstance derives a client configuration from a storefront
// instance.
func ConfigFromInstance(instance *storefront.Instance) *ClientConfig {
	return &ClientConfig{
		BaseURL:        instance.BaseURL,
		ConsumerKey:    instance.ConsumerKey,
		ConsumerSecret: instance.ConsumerSecret,
		TimeoutSeconds: instance.TimeoutSeconds,
		VerifySSL:      instance.VerifySSL,
	}
}

// Validate validates the configuration and applies defaults.
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.ConsumerKey == "" {
		return ErrConfigMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrConfigMissingSecret
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 40
	}
	return nil
}

// APIBaseURL returns the root of the REST API for this shop.
func (c *ClientConfig) APIBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/") + apiBasePath
}
