// Package artifactory provides a read-only client for Artifactory-compatible
// artifact servers.
//
// # Overview
//
// The client answers exactly two questions about a server: which repositories
// it hosts ([Client.Repositories]), and whether a given package exists in a
// given repository ([Client.Probe]). Both are read-only; nothing in this
// package mutates server state.
//
// # Probe Strategies
//
// Each ecosystem is checked through the API surface its repositories expose:
//
//   - maven: direct artifact check (jar, then pom) for versioned requests,
//     storage-API folder listing for version discovery
//   - npm: the npm registry package document (dist-tags and version membership)
//   - python: the PEP 503 simple index, with versions recovered from
//     distribution filenames
//   - docker: the registry tag listing
//   - nuget, terraform: storage-API folder listing
//
// # Outcome Taxonomy
//
// A probe ends in one of three states, carried by [Outcome]: found
// (with the resolved version), affirmatively absent (a 404 from the server
// is an answer, not a failure), or errored (timeout, TLS, auth, malformed
// response). Callers that conflate the last two lose the distinction between
// "the package is not there" and "nobody knows".
//
// # Caching and Retries
//
// Clean probe answers and the repository listing are cached through
// [cache.Cache] with a configurable TTL; transport failures are never
// cached. Transient failures (connection errors, 429, 5xx) are retried
// with exponential backoff before they surface.
//
// [cache.Cache]: github.com/matzehuels/hound/pkg/cache.Cache
package artifactory
