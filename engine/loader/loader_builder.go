package loader

import (
	"net/http"
	"time"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithHTTPClient is an option builder that sets the client used for http(s) URLs.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithTimeout is an option builder that bounds every load. A load that has not finished
// when the timeout elapses ends with Failed. Zero means no timeout.
//
// Parameters:
//   - d: the timeout
//
// Returns:
//   - LoaderBuilderOption: a function that applies the timeout option to a loader
func WithTimeout(d time.Duration) LoaderBuilderOption {
	return func(l *loader) {
		l.timeout = d
	}
}
