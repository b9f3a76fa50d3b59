package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/etapi"
	"github.com/aretw0/strata/pkg/strata"
)

// Connect builds a session against the given server URL.
// When a driver is injected via WithDriver, the URL is ignored and no
// HTTP client is constructed.
func Connect(ctx context.Context, serverURL string, opts ...Option) (*strata.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	driver := o.driver
	if driver == nil {
		if serverURL == "" {
			return nil, fmt.Errorf("server URL is required")
		}
		clientOpts := []etapi.Option{}
		if o.token != "" {
			clientOpts = append(clientOpts, etapi.WithToken(o.token))
		}
		if o.httpClient != nil {
			clientOpts = append(clientOpts, etapi.WithHTTPClient(o.httpClient))
		}
		if o.logger != nil {
			clientOpts = append(clientOpts, etapi.WithLogger(o.logger))
		}
		client := etapi.NewClient(serverURL, clientOpts...)

		if o.token == "" && o.password != "" {
			if _, err := client.Login(ctx, o.password); err != nil {
				return nil, fmt.Errorf("login: %w", err)
			}
		}
		driver = client
	}

	sessionOpts := []strata.Option{}
	if o.logger != nil {
		sessionOpts = append(sessionOpts, strata.WithLogger(o.logger))
	}
	return strata.NewSession(driver, sessionOpts...), nil
}

// OpenTree builds the directory mirror for a session.
func OpenTree(session *strata.Session, dir string, opts ...Option) *fs.Tree {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	treeOpts := []fs.Option{}
	if len(o.ignore) > 0 {
		treeOpts = append(treeOpts, fs.WithIgnore(o.ignore...))
	}
	if o.logger != nil {
		treeOpts = append(treeOpts, fs.WithLogger(o.logger))
	}
	return fs.NewTree(session, dir, treeOpts...)
}
