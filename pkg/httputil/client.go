package httputil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout is the per-request timeout applied when none is configured.
const DefaultTimeout = 10 * time.Second

// TLSOptions configures transport security for the shared HTTP client.
type TLSOptions struct {
	// CACert is a path to a PEM bundle added to the system trust pool.
	CACert string
	// Insecure disables certificate verification entirely.
	Insecure bool
}

// NewClient builds an *http.Client with the given per-request timeout and
// TLS options. The client is safe for concurrent use and is meant to be
// shared process-wide.
func NewClient(timeout time.Duration, opts TLSOptions) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Insecure || opts.CACert != "" {
		cfg := &tls.Config{InsecureSkipVerify: opts.Insecure}
		if opts.CACert != "" {
			pem, err := os.ReadFile(opts.CACert)
			if err != nil {
				return nil, fmt.Errorf("reading CA certificate: %w", err)
			}
			pool, err := x509.SystemCertPool()
			if err != nil {
				pool = x509.NewCertPool()
			}
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates found in %s", opts.CACert)
			}
			cfg.RootCAs = pool
		}
		transport.TLSClientConfig = cfg
	}

	return &http.Client{Timeout: timeout, Transport: transport}, nil
}
