package artifactory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hound/pkg/buildinfo"
	"github.com/matzehuels/hound/pkg/cache"
	errs "github.com/matzehuels/hound/pkg/errors"
	"github.com/matzehuels/hound/pkg/httputil"
	"github.com/matzehuels/hound/pkg/observability"
)

// Config holds the settings for constructing a [Client].
type Config struct {
	// BaseURL is the server root, e.g. "https://artifactory.example.com/artifactory".
	BaseURL string

	// APIKey authenticates requests via the X-JFrog-Art-Api header.
	APIKey string

	// Token authenticates requests via a bearer token.
	// Takes precedence over APIKey when both are set.
	Token string

	// Timeout bounds each HTTP request. Defaults to [httputil.DefaultTimeout].
	Timeout time.Duration

	// TLS configures certificate verification for the shared transport.
	TLS httputil.TLSOptions

	// Cache stores probe results and the repository listing between runs.
	// Defaults to no caching.
	Cache cache.Cache

	// CacheTTL is how long cached entries stay valid.
	CacheTTL time.Duration

	// Refresh bypasses cached reads when true. Fresh results are still written.
	Refresh bool

	// Logger receives debug output. Defaults to the standard logger.
	Logger *log.Logger
}

// Client is a read-only client for an Artifactory-compatible server.
// It handles authentication, caching, and retry logic for all requests.
//
// All methods are safe for concurrent use by multiple goroutines. The
// underlying HTTP transport and TLS configuration are shared and never
// mutated after construction.
type Client struct {
	baseURL string
	apiKey  string
	token   string
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	refresh bool
	logger  *log.Logger

	reposOnce sync.Once
	repos     []Repository
	reposErr  error
}

// New creates a Client for the server at cfg.BaseURL.
// Returns an error if the URL is invalid or the TLS options cannot be applied.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if err := errs.ValidateURL(base); err != nil {
		return nil, err
	}

	httpClient, err := httputil.NewClient(cfg.Timeout, cfg.TLS)
	if err != nil {
		return nil, err
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewNullCache()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		token:   cfg.Token,
		http:    httpClient,
		cache:   store,
		ttl:     cfg.CacheTTL,
		refresh: cfg.Refresh,
		logger:  logger,
	}, nil
}

// BaseURL returns the normalized server root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) auth(req *http.Request) {
	req.Header.Set("User-Agent", "hound/"+buildinfo.Version)
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.apiKey != "":
		req.Header.Set("X-JFrog-Art-Api", c.apiKey)
	}
}

// do performs one HTTP request against a server-relative path.
// The caller owns the response body on success.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)

	start := time.Now()
	observability.HTTP().OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// get performs a GET request and JSON-decodes the response into v, retrying
// transient failures with backoff.
func (c *Client) get(ctx context.Context, path string, v any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.do(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrNetwork, err)
		}
		return nil
	})
}

// getText performs a GET request and returns the response body as a string.
// Used for non-JSON endpoints like the system ping and PyPI simple indexes.
func (c *Client) getText(ctx context.Context, path string) (string, error) {
	var text string
	err := httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.do(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
		}
		text = string(data)
		return nil
	})
	return text, err
}

// head performs a HEAD request, retrying transient failures with backoff.
// A nil error means the path exists.
func (c *Client) head(ctx context.Context, path string) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.do(ctx, http.MethodHead, path)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	})
}

// checkStatus maps an HTTP status code onto the error taxonomy. A 404 is an
// affirmative absence ([ErrNotFound]); 429 and 5xx are transient and marked
// retryable; auth rejections surface as [ErrUnauthorized] without retry.
func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// cached retrieves a value from cache or executes fetch and stores the result.
// Fetch errors are returned without writing to the cache, so transport
// failures are probed again on the next run.
func (c *Client) cached(ctx context.Context, key string, v any, fetch func() error) error {
	keyType, _, _ := strings.Cut(key, ":")
	if !c.refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(data, v); err == nil {
				observability.Cache().OnCacheHit(ctx, keyType)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
	}

	if err := fetch(); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, keyType, len(data))
		}
	}
	return nil
}
