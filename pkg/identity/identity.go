// Package identity extracts normalized package identities from repository
// storage paths.
//
// Paths arrive as free-form, repository-relative strings taken from storage
// exports (the leading segment is the repository key). Each ecosystem lays
// out its artifacts differently, so extraction applies per-ecosystem rules
// and degrades gracefully: an odd but non-empty path still yields a name,
// with the version simply absent.
package identity

import (
	"regexp"
	"strings"

	"github.com/matzehuels/hound/pkg/ecosystem"
	"github.com/matzehuels/hound/pkg/errors"
)

// Identity is the normalized package reference derived from a raw path.
// Version is empty when the path carries no version segment, which is a
// legitimate state (metadata-only paths), not an error.
type Identity struct {
	Name      string
	Version   string
	Ecosystem ecosystem.Ecosystem
}

// HasVersion reports whether the path carried an explicit version.
func (id Identity) HasVersion() bool { return id.Version != "" }

// String formats the identity for logs.
func (id Identity) String() string {
	if id.Version == "" {
		return id.Name
	}
	return id.Name + "@" + id.Version
}

// versionRe matches version-looking path segments: optionally v-prefixed
// dotted numerics with an optional pre-release or build suffix
// (3.12.0, v1.21, 1.0.0-beta.1, 2.0_rc1).
var versionRe = regexp.MustCompile(`^v?[0-9]+(\.[0-9]+)*([._+-][0-9A-Za-z][0-9A-Za-z.+_-]*)?$`)

// mavenFileRe matches trailing Maven artifact and metadata filenames,
// including checksum companions.
var mavenFileRe = regexp.MustCompile(`(?i)\.(jar|war|ear|aar|pom|xml|module)(\.(md5|sha1|sha256))?$`)

// archiveFileRe matches trailing package archive filenames for the
// path-layout ecosystems.
var archiveFileRe = regexp.MustCompile(`(?i)\.(whl|egg|tar\.gz|tar\.bz2|tgz|zip|nupkg)(\.(md5|sha1|sha256))?$`)

// mutableTags are docker tags accepted in version position even though
// they do not look like version tokens.
var mutableTags = map[string]bool{"latest": true, "stable": true, "edge": true}

// Extract parses a repository storage path into a package identity using
// the path conventions of the given ecosystem.
//
// Extraction never fails for a syntactically odd but non-empty path; in the
// worst case the last path segment becomes the name and the version is
// absent. It fails only when the path is empty or the ecosystem is not one
// of the supported tags.
func Extract(rawPath string, eco ecosystem.Ecosystem) (Identity, error) {
	trimmed := strings.Trim(strings.TrimSpace(rawPath), "/")
	if trimmed == "" {
		return Identity{}, errors.New(errors.ErrCodeInvalidPath, "package path is empty")
	}

	var segs []string
	for _, seg := range strings.Split(trimmed, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	tail := segs[len(segs)-1]

	// The leading segment is the repository key in storage exports.
	if len(segs) > 1 {
		segs = segs[1:]
	}

	var id Identity
	switch eco {
	case ecosystem.Maven:
		id = extractMaven(segs)
	case ecosystem.NPM:
		id = extractNPM(segs)
	case ecosystem.Python, ecosystem.NuGet, ecosystem.Terraform, ecosystem.Docker:
		id = extractGeneric(segs, eco)
	default:
		return Identity{}, errors.New(errors.ErrCodeInvalidEcosystem, "unknown package type %q", string(eco))
	}

	if id.Name == "" {
		// Odd path shape, keep the tail as the name.
		id.Name = tail
	}
	id.Ecosystem = eco
	return id, nil
}

// extractMaven maps path segments onto group/artifact/version/filename.
// A path ending in a metadata index (maven-metadata.xml or a bare artifact
// directory) yields a name with the version absent.
func extractMaven(segs []string) Identity {
	if n := len(segs); n > 0 && mavenFileRe.MatchString(segs[n-1]) {
		segs = segs[:n-1]
	}

	var version string
	if n := len(segs); n > 1 && versionRe.MatchString(segs[n-1]) {
		version = segs[n-1]
		segs = segs[:n-1]
	}

	if len(segs) == 0 {
		return Identity{}
	}
	artifact := segs[len(segs)-1]
	name := artifact
	if group := strings.Join(segs[:len(segs)-1], "."); group != "" {
		name = group + ":" + artifact
	}
	return Identity{Name: name, Version: version}
}

// extractNPM recognizes scoped packages (@scope/name) as one name unit and
// recovers versions from version directories or tarball filenames.
func extractNPM(segs []string) Identity {
	if len(segs) == 0 {
		return Identity{}
	}

	var name string
	rest := segs
	if strings.HasPrefix(segs[0], "@") && len(segs) > 1 {
		name = segs[0] + "/" + segs[1]
		rest = segs[2:]
	} else {
		name = segs[0]
		rest = segs[1:]
	}

	for _, seg := range rest {
		switch {
		case seg == "-" || seg == "package.json":
			// tarball directory marker or manifest at the package root
		case versionRe.MatchString(seg):
			return Identity{Name: name, Version: seg}
		case strings.HasSuffix(seg, ".tgz"):
			if v, ok := tarballVersion(seg, name); ok {
				return Identity{Name: name, Version: v}
			}
		}
	}
	return Identity{Name: name}
}

// tarballVersion recovers the version from an npm tarball filename such as
// core-15.2.0.tgz. Tarballs are named after the unscoped package name.
func tarballVersion(filename, name string) (string, bool) {
	base := strings.TrimSuffix(filename, ".tgz")
	short := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		short = name[i+1:]
	}
	v, ok := strings.CutPrefix(base, short+"-")
	if !ok || !versionRe.MatchString(v) {
		return "", false
	}
	return v, true
}

// extractGeneric handles the path-layout ecosystems (python, nuget,
// terraform, docker): the version is the trailing segment when it looks
// like a version token, everything before it is the name.
func extractGeneric(segs []string, eco ecosystem.Ecosystem) Identity {
	if n := len(segs); n > 0 {
		switch {
		case eco == ecosystem.Docker && strings.HasSuffix(segs[n-1], "manifest.json"):
			segs = segs[:n-1]
		case archiveFileRe.MatchString(segs[n-1]):
			segs = segs[:n-1]
		}
	}

	var version string
	if n := len(segs); n > 1 {
		last := segs[n-1]
		if versionRe.MatchString(last) || (eco == ecosystem.Docker && mutableTags[last]) {
			version = last
			segs = segs[:n-1]
		}
	}
	return Identity{Name: strings.Join(segs, "/"), Version: version}
}
