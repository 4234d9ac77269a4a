package artifactory

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a package or resource doesn't exist on the server.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the server rejects the configured credentials.
	ErrUnauthorized = errors.New("authentication failed")
)

// Repository type tags as reported by the server's repository listing.
const (
	TypeLocal   = "LOCAL"
	TypeRemote  = "REMOTE"
	TypeVirtual = "VIRTUAL"
)

// Repository describes one repository configured on the server.
type Repository struct {
	Key         string `json:"key"`         // Repository key (e.g., "pypi-local")
	Type        string `json:"type"`        // LOCAL, REMOTE, or VIRTUAL
	PackageType string `json:"packageType"` // Server-side package type (e.g., "pypi", "maven")
	URL         string `json:"url,omitempty"`
}

// Outcome is the result of probing one repository for one package.
//
// Exactly one of three states holds: the package was found (Found=true,
// Version carries the resolved version), the server affirmatively reported
// absence (Found=false, Err=nil), or the check could not be completed
// (Found=false, Err set). Found and Err are never both set.
type Outcome struct {
	Repository string // Repository key that was probed
	Found      bool   // Whether the server confirmed the package exists
	Version    string // Resolved version when found (may be empty for unversioned matches)
	Err        error  // Transport-level failure, nil for a clean found/not-found answer
}

var normalizeRe = regexp.MustCompile(`[-_.]+`)

// NormalizeName converts a package name to its canonical form.
// Applies lowercase and collapses runs of ".", "-", "_" to a single hyphen,
// following PEP 503 normalization rules used by PyPI-style indexes.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRe.ReplaceAllString(strings.TrimSpace(name), "-"))
}
