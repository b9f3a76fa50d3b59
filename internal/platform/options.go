package platform

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/strata/pkg/core"
)

// options holds the internal configuration for the composition root.
type options struct {
	driver     core.Driver
	logger     *slog.Logger
	httpClient *http.Client
	token      string
	password   string
	ignore     []string
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithToken sets the API token sent on every request.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithPassword configures password login. When set and no token is
// provided, Connect exchanges the password for a session token.
func WithPassword(password string) Option {
	return func(o *options) {
		o.password = password
	}
}

// WithHTTPClient overrides the HTTP client used for server requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger for the session and adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDriver allows injecting a custom backend driver (e.g. mock, in-memory).
// If provided, no HTTP client is constructed and the server URL is ignored.
func WithDriver(driver core.Driver) Option {
	return func(o *options) {
		o.driver = driver
	}
}

// WithIgnore sets glob patterns for files the tree adapter skips.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}
