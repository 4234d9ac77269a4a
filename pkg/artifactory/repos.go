package artifactory

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/hound/pkg/cache"
)

// Repositories returns the repositories configured on the server.
//
// The listing is fetched at most once per Client and memoized, including a
// fetch failure: a server that cannot list repositories once will not be
// asked again within the same process. Concurrent callers share one request.
func (c *Client) Repositories(ctx context.Context) ([]Repository, error) {
	c.reposOnce.Do(func() {
		var repos []Repository
		err := c.cached(ctx, cache.Key("repos"), &repos, func() error {
			return c.get(ctx, "api/repositories", &repos)
		})
		if err != nil {
			c.reposErr = fmt.Errorf("listing repositories: %w", err)
			return
		}
		c.logger.Debug("fetched repository listing", "count", len(repos))
		c.repos = repos
	})
	return c.repos, c.reposErr
}

// Ping checks connectivity and credentials against the system ping endpoint.
// A reachable, healthy server answers with the literal body "OK".
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.getText(ctx, "api/system/ping")
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(body); text != "OK" {
		return fmt.Errorf("%w: unexpected ping response %q", ErrNetwork, text)
	}
	return nil
}
