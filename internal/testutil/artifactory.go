// Package testutil provides an in-memory artifact server for tests.
//
// The fake speaks just enough of the server's REST surface for the prober
// and the CLI: system ping, repository listing, storage listings, npm and
// pypi metadata, docker tag lists and direct artifact HEADs. State is
// composed per test through the Add* helpers, and failures are injected by
// path prefix.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hound/pkg/artifactory"
)

// storageEntry is one child of a storage folder listing.
type storageEntry struct {
	URI    string `json:"uri"`
	Folder bool   `json:"folder"`
}

// Server is a fake artifact repository server backed by httptest.
// All methods are safe for concurrent use with in-flight requests.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	repos     []artifactory.Repository
	artifacts map[string]bool                      // exact paths answering HEAD
	storage   map[string][]storageEntry            // "{repo}/{path}" -> children
	npm       map[string]json.RawMessage           // "{repo}/{name}" -> metadata
	pypi      map[string]string                    // "{repo}/{name}" -> index HTML
	docker    map[string][]string                  // "{repo}/{image}" -> tags
	failures  map[string]int                       // path prefix -> status
	hits      map[string]int
	pingBody  string
	apiKey    string
}

// NewServer starts a fake server with no repositories. Callers own shutdown
// via Close (httptest registers no cleanup of its own).
func NewServer() *Server {
	s := &Server{
		artifacts: make(map[string]bool),
		storage:   make(map[string][]storageEntry),
		npm:       make(map[string]json.RawMessage),
		pypi:      make(map[string]string),
		docker:    make(map[string][]string),
		failures:  make(map[string]int),
		hits:      make(map[string]int),
		pingBody:  "OK",
	}

	r := chi.NewRouter()
	r.Use(s.intercept)
	r.Get("/api/system/ping", s.handlePing)
	r.Get("/api/repositories", s.handleRepositories)
	r.Get("/api/storage/{repo}/*", s.handleStorage)
	r.Get("/api/npm/{repo}/*", s.handleNPM)
	r.Get("/api/pypi/{repo}/simple/*", s.handlePyPI)
	r.Get("/api/docker/{repo}/v2/*", s.handleDocker)
	r.Head("/{repo}/*", s.handleArtifact)

	s.Server = httptest.NewServer(r)
	return s
}

// AddRepo registers a repository in the listing endpoint.
func (s *Server) AddRepo(key, repoType, packageType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos = append(s.repos, artifactory.Repository{Key: key, Type: repoType, PackageType: packageType})
}

// AddMaven stores a Maven artifact: each version answers HEAD on its jar
// path, and the artifact folder lists the versions for latest resolution.
func (s *Server) AddMaven(repo, group, artifact string, versions ...string) {
	groupPath := strings.ReplaceAll(group, ".", "/")
	base := path.Join(repo, groupPath, artifact)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range versions {
		s.artifacts["/"+path.Join(base, v, fmt.Sprintf("%s-%s.jar", artifact, v))] = true
	}
	s.storage[base] = folderEntries(versions)
}

// AddArtifact registers one exact artifact path for HEAD checks, for layouts
// the higher-level helpers do not cover (pom-only uploads and the like).
func (s *Server) AddArtifact(repo, artifactPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts["/"+path.Join(repo, artifactPath)] = true
}

// AddNPM stores npm package metadata with the given dist-tags and versions.
func (s *Server) AddNPM(repo, name string, distTags map[string]string, versions ...string) {
	vs := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		vs[v] = struct{}{}
	}
	meta, _ := json.Marshal(map[string]any{
		"name":      name,
		"dist-tags": distTags,
		"versions":  vs,
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.npm[path.Join(repo, name)] = meta
}

// AddPython stores a pypi simple-index page listing one sdist per version.
func (s *Server) AddPython(repo, name string, versions ...string) {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	for _, v := range versions {
		fmt.Fprintf(&b, "<a href=\"../../%s-%s.tar.gz\">%s-%s.tar.gz</a><br/>\n", name, v, name, v)
	}
	b.WriteString("</body></html>\n")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pypi[path.Join(repo, artifactory.NormalizeName(name))] = b.String()
}

// AddDocker stores the tag list for an image. An image registered with no
// tags still answers the tags endpoint, with an empty list.
func (s *Server) AddDocker(repo, image string, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docker[path.Join(repo, image)] = append([]string(nil), tags...)
}

// AddStorage stores a raw storage listing for path-layout ecosystems
// (nuget flat files, terraform version folders).
func (s *Server) AddStorage(repo, pkgPath string, folders, files []string) {
	entries := folderEntries(folders)
	for _, f := range files {
		entries = append(entries, storageEntry{URI: "/" + f})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[path.Join(repo, pkgPath)] = entries
}

// Fail makes every request whose path starts with prefix answer status.
func (s *Server) Fail(prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = status
}

// SetPingBody overrides the ping response body (normally "OK").
func (s *Server) SetPingBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingBody = body
}

// RequireAuth rejects requests with 401 unless they carry the API key
// header or a bearer token equal to key.
func (s *Server) RequireAuth(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// Hits counts served requests whose path starts with prefix.
func (s *Server) Hits(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for p, c := range s.hits {
		if strings.HasPrefix(p, prefix) {
			n += c
		}
	}
	return n
}

// intercept counts every request and applies auth and failure injection
// before routing.
func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		apiKey := s.apiKey
		failStatus := 0
		for prefix, status := range s.failures {
			if strings.HasPrefix(r.URL.Path, prefix) {
				failStatus = status
				break
			}
		}
		s.mu.Unlock()

		if failStatus != 0 {
			http.Error(w, http.StatusText(failStatus), failStatus)
			return
		}
		if apiKey != "" {
			if r.Header.Get("X-JFrog-Art-Api") != apiKey && r.Header.Get("Authorization") != "Bearer "+apiKey {
				http.Error(w, "requires authentication", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	body := s.pingBody
	s.mu.Unlock()
	fmt.Fprint(w, body)
}

func (s *Server) handleRepositories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	repos := append([]artifactory.Repository(nil), s.repos...)
	s.mu.Unlock()
	writeJSON(w, repos)
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repo")
	rest := strings.Trim(chi.URLParam(r, "*"), "/")
	s.mu.Lock()
	entries, ok := s.storage[path.Join(repo, rest)]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"repo":     repo,
		"path":     "/" + rest,
		"children": entries,
	})
}

func (s *Server) handleNPM(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repo")
	name := strings.Trim(chi.URLParam(r, "*"), "/")
	s.mu.Lock()
	meta, ok := s.npm[path.Join(repo, name)]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(meta)
}

func (s *Server) handlePyPI(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repo")
	name := strings.Trim(chi.URLParam(r, "*"), "/")
	s.mu.Lock()
	page, ok := s.pypi[path.Join(repo, name)]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, page)
}

func (s *Server) handleDocker(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repo")
	rest := strings.Trim(chi.URLParam(r, "*"), "/")
	image, ok := strings.CutSuffix(rest, "/tags/list")
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	tags, exists := s.docker[path.Join(repo, image)]
	s.mu.Unlock()
	if !exists {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{"name": image, "tags": tags})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.artifacts[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func folderEntries(names []string) []storageEntry {
	entries := make([]storageEntry, len(names))
	for i, n := range names {
		entries[i] = storageEntry{URI: "/" + n, Folder: true}
	}
	return entries
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
