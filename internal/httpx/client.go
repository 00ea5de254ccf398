// Package httpx builds the HTTP clients shared by the data sources and the notifier.
package httpx

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// NewClient returns a client that routes through proxyURL when it parses.
// An empty or malformed proxy URL means a direct connection.
func NewClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && u.Host != "" {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
