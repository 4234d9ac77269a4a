package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/ecosystem"
	errs "github.com/matzehuels/hound/pkg/errors"
)

// Resolver maps an ecosystem onto the ordered candidate repositories to
// probe on one server.
type Resolver struct {
	client  Client
	mapping Mapping
	logger  *log.Logger
}

// NewResolver creates a Resolver using the given candidate mapping.
func NewResolver(client Client, mapping Mapping, logger *log.Logger) *Resolver {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{client: client, mapping: mapping, logger: logger}
}

// Candidates returns the ordered repository keys to probe for eco.
//
// The static mapping is filtered against the server's live repository list
// so only repositories that actually exist are probed. When none of the
// mapped keys exist on the server (nonstandard naming), discovery falls
// back to every repository whose package type matches, ordered local before
// remote before virtual. A server that cannot even be listed yields a
// DISCOVERY_FAILED error; a server with no matching repositories at all
// yields REPO_NOT_FOUND.
func (r *Resolver) Candidates(ctx context.Context, eco ecosystem.Ecosystem) ([]string, error) {
	repos, err := r.client.Repositories(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDiscoveryFailed, err, "discovering %s repositories", eco)
	}

	exists := make(map[string]bool, len(repos))
	for _, repo := range repos {
		exists[repo.Key] = true
	}

	var keys []string
	for _, key := range r.mapping[eco] {
		if exists[key] {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		return keys, nil
	}

	keys = discover(repos, eco.PackageType())
	if len(keys) == 0 {
		return nil, errs.New(errs.ErrCodeRepoNotFound, "no %s repositories on server", eco)
	}
	r.logger.Debug("discovered repositories", "ecosystem", eco, "repositories", strings.Join(keys, ","))
	return keys, nil
}

// discover returns the keys of all repositories matching the package type,
// ordered by tier (local, remote, virtual) and alphabetically within a tier.
func discover(repos []artifactory.Repository, packageType string) []string {
	var matched []artifactory.Repository
	for _, repo := range repos {
		if strings.EqualFold(repo.PackageType, packageType) {
			matched = append(matched, repo)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ti, tj := tier(matched[i].Type), tier(matched[j].Type)
		if ti != tj {
			return ti < tj
		}
		return matched[i].Key < matched[j].Key
	})

	keys := make([]string, len(matched))
	for i, repo := range matched {
		keys[i] = repo.Key
	}
	return keys
}

func tier(repoType string) int {
	switch strings.ToUpper(repoType) {
	case artifactory.TypeLocal:
		return 0
	case artifactory.TypeRemote:
		return 1
	case artifactory.TypeVirtual:
		return 2
	default:
		return 3
	}
}
