package artifactory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/matzehuels/hound/pkg/cache"
	"github.com/matzehuels/hound/pkg/ecosystem"
	errs "github.com/matzehuels/hound/pkg/errors"
	"github.com/matzehuels/hound/pkg/identity"
)

// probeRecord is the cached shape of one probe result. Only clean answers
// (found or affirmatively absent) are ever cached; transport failures are not.
type probeRecord struct {
	Found   bool   `json:"found"`
	Version string `json:"version,omitempty"`
}

// Probe performs one read-only existence check for id against the named
// repository.
//
// The returned [Outcome] distinguishes three cases: the package exists
// (Found, with the resolved version), the server affirmatively reported
// absence (not found, no error), or the check could not be completed
// (Err set). When the request carried a version, that exact version is
// checked; otherwise the server's newest known version is resolved.
//
// Probe never mutates the target server and is idempotent: identical inputs
// against an unchanged server yield identical outcomes.
func (c *Client) Probe(ctx context.Context, repo string, id identity.Identity) Outcome {
	out := Outcome{Repository: repo}
	if err := errs.ValidatePackageName(id.Name); err != nil {
		out.Err = err
		return out
	}
	if err := errs.ValidateRepositoryKey(repo); err != nil {
		out.Err = err
		return out
	}

	key := cache.Key("probe", repo, string(id.Ecosystem), id.Name, id.Version)
	var rec probeRecord
	err := c.cached(ctx, key, &rec, func() error {
		found, version, err := c.check(ctx, repo, id)
		if err != nil {
			return err
		}
		rec = probeRecord{Found: found, Version: version}
		return nil
	})
	if err != nil {
		c.logger.Debug("probe failed", "repo", repo, "package", id.Name, "err", err)
		out.Err = err
		return out
	}

	out.Found = rec.Found
	out.Version = rec.Version
	return out
}

func (c *Client) check(ctx context.Context, repo string, id identity.Identity) (bool, string, error) {
	switch id.Ecosystem {
	case ecosystem.Maven:
		return c.checkMaven(ctx, repo, id)
	case ecosystem.NPM:
		return c.checkNPM(ctx, repo, id)
	case ecosystem.Python:
		return c.checkPython(ctx, repo, id)
	case ecosystem.Docker:
		return c.checkDocker(ctx, repo, id)
	default:
		return c.checkStorage(ctx, repo, id)
	}
}

// checkMaven probes for a Maven artifact. Versioned requests check the
// artifact files directly, trying the jar and then the pom (for BOM and
// parent artifacts that ship no jar). Unversioned requests list the artifact
// folder and resolve the newest version directory.
func (c *Client) checkMaven(ctx context.Context, repo string, id identity.Identity) (bool, string, error) {
	group, artifact, ok := strings.Cut(id.Name, ":")
	if !ok {
		return c.checkStorage(ctx, repo, id)
	}
	base := path.Join(repo, strings.ReplaceAll(group, ".", "/"), artifact)

	if id.HasVersion() {
		for _, ext := range []string{".jar", ".pom"} {
			file := fmt.Sprintf("%s-%s%s", artifact, id.Version, ext)
			found, err := c.exists(ctx, path.Join(base, id.Version, file))
			if err != nil {
				return false, "", err
			}
			if found {
				return true, id.Version, nil
			}
		}
		return false, "", nil
	}

	folders, _, err := c.listFolder(ctx, base)
	if errors.Is(err, ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, latestVersion(folders), nil
}

// npmPackage is the package document served by the npm registry API.
type npmPackage struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

// checkNPM probes the npm registry API for the package document. A versioned
// request checks membership in the published versions; an unversioned one
// resolves the "latest" dist-tag.
func (c *Client) checkNPM(ctx context.Context, repo string, id identity.Identity) (bool, string, error) {
	var doc npmPackage
	err := c.get(ctx, path.Join("api/npm", repo, id.Name), &doc)
	if errors.Is(err, ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}

	if id.HasVersion() {
		if _, ok := doc.Versions[id.Version]; ok {
			return true, id.Version, nil
		}
		return false, "", nil
	}

	if latest := doc.DistTags["latest"]; latest != "" {
		return true, latest, nil
	}
	versions := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		versions = append(versions, v)
	}
	return true, latestVersion(versions), nil
}

var anchorRe = regexp.MustCompile(`<a[^>]*>([^<]+)</a>`)

// checkPython probes the PEP 503 simple index for the normalized package
// name and recovers version strings from the listed distribution filenames.
func (c *Client) checkPython(ctx context.Context, repo string, id identity.Identity) (bool, string, error) {
	name := NormalizeName(id.Name)
	page, err := c.getText(ctx, path.Join("api/pypi", repo, "simple", name)+"/")
	if errors.Is(err, ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}

	versions := pythonVersions(name, page)
	if id.HasVersion() {
		for _, v := range versions {
			if v == id.Version {
				return true, id.Version, nil
			}
		}
		return false, "", nil
	}
	// The index page existing is itself a positive answer; the version stays
	// empty if no listed filename could be parsed.
	return true, latestVersion(versions), nil
}

// pythonVersions extracts distinct version strings from a simple index page.
// Distribution filenames follow name-version[-buildtag...] for wheels and
// name-version.tar.gz for sdists, with "-"/"_"/"." used interchangeably in
// the name portion.
func pythonVersions(name, page string) []string {
	seen := make(map[string]bool)
	var versions []string
	for _, m := range anchorRe.FindAllStringSubmatch(page, -1) {
		v := versionFromFilename(name, strings.TrimSpace(m[1]))
		if v != "" && !seen[v] {
			seen[v] = true
			versions = append(versions, v)
		}
	}
	return versions
}

var distSuffixes = []string{".whl", ".tar.gz", ".tar.bz2", ".tgz", ".zip", ".egg"}

func versionFromFilename(name, filename string) string {
	base := filename
	for _, suffix := range distSuffixes {
		if s := strings.TrimSuffix(base, suffix); s != base {
			base = s
			break
		}
	}
	// Scan for the split point where the leading tokens normalize to the
	// package name; the token right after it is the version.
	parts := strings.Split(base, "-")
	for i := 1; i < len(parts); i++ {
		if NormalizeName(strings.Join(parts[:i], "-")) == name {
			return parts[i]
		}
	}
	return ""
}

// dockerTags is the tag listing served by the Docker registry API.
type dockerTags struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// checkDocker probes the Docker registry API tag listing. A versioned request
// checks tag membership; an unversioned one prefers the conventional "latest"
// tag and otherwise resolves the newest version-shaped tag.
func (c *Client) checkDocker(ctx context.Context, repo string, id identity.Identity) (bool, string, error) {
	var doc dockerTags
	err := c.get(ctx, path.Join("api/docker", repo, "v2", id.Name, "tags/list"), &doc)
	if errors.Is(err, ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if len(doc.Tags) == 0 {
		// An image with no tags has nothing to pull.
		return false, "", nil
	}

	if id.HasVersion() {
		for _, tag := range doc.Tags {
			if tag == id.Version {
				return true, id.Version, nil
			}
		}
		return false, "", nil
	}

	for _, tag := range doc.Tags {
		if tag == "latest" {
			return true, tag, nil
		}
	}
	return true, latestVersion(doc.Tags), nil
}

// checkStorage probes via the storage API folder listing. It backs the
// ecosystems whose repository layout mirrors the package name directly
// (nuget, terraform) and Maven names without a group coordinate.
//
// The package exists when its folder does. A versioned request matches a
// version child folder, or a file child embedding the version for flat
// layouts; an unversioned one resolves the newest version folder.
func (c *Client) checkStorage(ctx context.Context, repo string, id identity.Identity) (bool, string, error) {
	folders, files, err := c.listFolder(ctx, path.Join(repo, id.Name))
	if errors.Is(err, ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}

	if id.HasVersion() {
		for _, name := range folders {
			if name == id.Version {
				return true, id.Version, nil
			}
		}
		for _, name := range files {
			if strings.Contains(name, id.Version) {
				return true, id.Version, nil
			}
		}
		return false, "", nil
	}
	return true, latestVersion(folders), nil
}

// exists issues a HEAD request against an artifact path. A 404 is an
// affirmative absence, not an error.
func (c *Client) exists(ctx context.Context, p string) (bool, error) {
	err := c.head(ctx, p)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// storageFolder is the folder info served by the storage API.
type storageFolder struct {
	Repo     string `json:"repo"`
	Path     string `json:"path"`
	Children []struct {
		URI    string `json:"uri"`
		Folder bool   `json:"folder"`
	} `json:"children"`
}

// listFolder lists the children under a storage path, split into folder and
// file names. Returns [ErrNotFound] when the path does not exist.
func (c *Client) listFolder(ctx context.Context, p string) (folders, files []string, err error) {
	var folder storageFolder
	if err := c.get(ctx, path.Join("api/storage", p), &folder); err != nil {
		return nil, nil, err
	}
	for _, child := range folder.Children {
		name := strings.TrimPrefix(child.URI, "/")
		if child.Folder {
			folders = append(folders, name)
		} else {
			files = append(files, name)
		}
	}
	return folders, files, nil
}
