package resolve

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/identity"
)

// stubClient implements Client against canned data and tracks how many
// probes run concurrently.
type stubClient struct {
	repos    []artifactory.Repository
	reposErr error
	probe    func(repo string, id identity.Identity) artifactory.Outcome

	inflight    atomic.Int32
	maxInflight atomic.Int32
	probes      atomic.Int32
}

func (s *stubClient) Probe(_ context.Context, repo string, id identity.Identity) artifactory.Outcome {
	cur := s.inflight.Add(1)
	for {
		max := s.maxInflight.Load()
		if cur <= max || s.maxInflight.CompareAndSwap(max, cur) {
			break
		}
	}
	s.probes.Add(1)
	time.Sleep(time.Millisecond)
	defer s.inflight.Add(-1)

	if s.probe != nil {
		return s.probe(repo, id)
	}
	return artifactory.Outcome{Repository: repo}
}

func (s *stubClient) Repositories(context.Context) ([]artifactory.Repository, error) {
	return s.repos, s.reposErr
}

func pythonRepos() []artifactory.Repository {
	return []artifactory.Repository{
		{Key: "pypi-local", Type: artifactory.TypeLocal, PackageType: "pypi"},
		{Key: "pypi-remote", Type: artifactory.TypeRemote, PackageType: "pypi"},
		{Key: "pypi-virtual", Type: artifactory.TypeVirtual, PackageType: "pypi"},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestEngineRunRecordsInInputOrder(t *testing.T) {
	client := &stubClient{
		repos: pythonRepos(),
		probe: func(repo string, id identity.Identity) artifactory.Outcome {
			if id.Name == "requests" && repo == "pypi-remote" {
				return artifactory.Outcome{Repository: repo, Found: true, Version: "2.31.0"}
			}
			return artifactory.Outcome{Repository: repo}
		},
	}
	engine := New(client, Options{Workers: 4, Logger: quietLogger()})

	reqs := []Request{
		{RawPath: "pypi-local/requests/2.31.0", Type: "python"},
		{RawPath: "pypi-local/ghost-package", Type: "python"},
		{RawPath: "somewhere/thing", Type: "cobol"},
	}
	records := engine.Run(context.Background(), reqs)

	if len(records) != len(reqs) {
		t.Fatalf("got %d records for %d requests", len(records), len(reqs))
	}
	for i, rec := range records {
		if rec.RawPath != reqs[i].RawPath {
			t.Errorf("records[%d].RawPath = %q, want %q", i, rec.RawPath, reqs[i].RawPath)
		}
	}

	if !records[0].Found || records[0].Version != "2.31.0" {
		t.Errorf("records[0] = %+v, want found at 2.31.0", records[0])
	}
	if records[1].Found || records[1].Err != "" {
		t.Errorf("records[1] = %+v, want a clean negative", records[1])
	}
	if records[2].Err == "" || !strings.Contains(records[2].Err, "INVALID_ECOSYSTEM") {
		t.Errorf("records[2].Err = %q, want an INVALID_ECOSYSTEM error", records[2].Err)
	}
}

func TestEngineResolveSingle(t *testing.T) {
	client := &stubClient{
		repos: pythonRepos(),
		probe: func(repo string, id identity.Identity) artifactory.Outcome {
			if repo == "pypi-remote" {
				return artifactory.Outcome{Repository: repo, Found: true, Version: "8.1.7"}
			}
			return artifactory.Outcome{Repository: repo}
		},
	}
	engine := New(client, Options{Workers: 2, Logger: quietLogger()})

	rec := engine.Resolve(context.Background(), Request{RawPath: "pypi-local/click", Type: "python"})

	if !rec.Found || rec.Version != "8.1.7" {
		t.Errorf("record = %+v, want found at 8.1.7", rec)
	}
	if len(rec.Repositories) != 1 || rec.Repositories[0] != "pypi-remote" {
		t.Errorf("Repositories = %v, want [pypi-remote]", rec.Repositories)
	}
	if got := client.probes.Load(); got != 3 {
		t.Errorf("probes = %d, want one per candidate", got)
	}
}

func TestEngineProbesAllCandidates(t *testing.T) {
	// A find in the first repository must not short-circuit the rest: the
	// record lists every repository hosting the package.
	client := &stubClient{
		repos: pythonRepos(),
		probe: func(repo string, id identity.Identity) artifactory.Outcome {
			return artifactory.Outcome{Repository: repo, Found: true, Version: "1.0.0"}
		},
	}
	engine := New(client, Options{Workers: 2, Logger: quietLogger()})

	reqs := []Request{
		{RawPath: "pypi-local/alpha", Type: "python"},
		{RawPath: "pypi-local/beta", Type: "python"},
	}
	records := engine.Run(context.Background(), reqs)

	if got := client.probes.Load(); got != 6 {
		t.Errorf("probes = %d, want 6 (2 packages x 3 candidates)", got)
	}
	for i, rec := range records {
		if len(rec.Repositories) != 3 {
			t.Errorf("records[%d].Repositories = %v, want all three candidates", i, rec.Repositories)
		}
	}
}

func TestEngineConcurrencyBound(t *testing.T) {
	client := &stubClient{repos: pythonRepos()}
	engine := New(client, Options{Workers: 5, Logger: quietLogger()})

	reqs := make([]Request, 100)
	for i := range reqs {
		reqs[i] = Request{RawPath: fmt.Sprintf("pypi-local/pkg%03d", i), Type: "python"}
	}
	records := engine.Run(context.Background(), reqs)

	if len(records) != 100 {
		t.Fatalf("got %d records, want 100", len(records))
	}
	if got := client.probes.Load(); got != 300 {
		t.Errorf("probes = %d, want 300", got)
	}
	if max := client.maxInflight.Load(); max > 5 {
		t.Errorf("max in-flight probes = %d, want <= 5", max)
	}
}

func TestEngineRowErrorsDoNotAbortBatch(t *testing.T) {
	client := &stubClient{
		repos: pythonRepos(),
		probe: func(repo string, id identity.Identity) artifactory.Outcome {
			return artifactory.Outcome{Repository: repo, Found: true, Version: "3.1.0"}
		},
	}
	engine := New(client, Options{Workers: 2, Logger: quietLogger()})

	reqs := []Request{
		{RawPath: "", Type: "python"},
		{RawPath: "pypi-local/flask", Type: "python"},
		{RawPath: "npm-local/leftpad", Type: "fortran"},
	}
	records := engine.Run(context.Background(), reqs)

	if !strings.Contains(records[0].Err, "INVALID_PATH") {
		t.Errorf("records[0].Err = %q, want an INVALID_PATH error", records[0].Err)
	}
	if !records[1].Found {
		t.Errorf("records[1] = %+v, want found despite neighbors failing", records[1])
	}
	if !strings.Contains(records[2].Err, "INVALID_ECOSYSTEM") {
		t.Errorf("records[2].Err = %q, want an INVALID_ECOSYSTEM error", records[2].Err)
	}
}

func TestEngineDiscoveryFailure(t *testing.T) {
	client := &stubClient{reposErr: errTransport}
	engine := New(client, Options{Workers: 2, Logger: quietLogger()})

	records := engine.Run(context.Background(), []Request{
		{RawPath: "pypi-local/requests/2.31.0", Type: "python"},
	})

	rec := records[0]
	if rec.Found {
		t.Error("record should not report found")
	}
	if !strings.Contains(rec.Err, "DISCOVERY_FAILED") {
		t.Errorf("Err = %q, want a DISCOVERY_FAILED error", rec.Err)
	}
	if rec.Name != "requests" || rec.Version != "2.31.0" {
		t.Errorf("identity = %q/%q, want it extracted even when discovery fails", rec.Name, rec.Version)
	}
}

func TestEngineNoMatchingRepositories(t *testing.T) {
	client := &stubClient{repos: []artifactory.Repository{
		{Key: "npm-local", Type: artifactory.TypeLocal, PackageType: "npm"},
	}}
	engine := New(client, Options{Workers: 2, Logger: quietLogger()})

	records := engine.Run(context.Background(), []Request{
		{RawPath: "pypi-local/requests", Type: "python"},
	})

	if !strings.Contains(records[0].Err, "REPO_NOT_FOUND") {
		t.Errorf("Err = %q, want a REPO_NOT_FOUND error", records[0].Err)
	}
	if client.probes.Load() != 0 {
		t.Error("no probes should run when no candidate repositories exist")
	}
}

func TestEngineOnRecordCalledPerRequest(t *testing.T) {
	client := &stubClient{repos: pythonRepos()}
	var calls atomic.Int32
	engine := New(client, Options{
		Workers:  3,
		Logger:   quietLogger(),
		OnRecord: func(Record) { calls.Add(1) },
	})

	reqs := []Request{
		{RawPath: "pypi-local/a", Type: "python"},
		{RawPath: "pypi-local/b", Type: "python"},
		{RawPath: "bad/row", Type: "nope"},
	}
	engine.Run(context.Background(), reqs)

	if got := calls.Load(); got != int32(len(reqs)) {
		t.Errorf("OnRecord called %d times, want %d", got, len(reqs))
	}
}

func TestEngineEmptyBatch(t *testing.T) {
	client := &stubClient{repos: pythonRepos()}
	engine := New(client, Options{Workers: 2, Logger: quietLogger()})

	records := engine.Run(context.Background(), nil)
	if len(records) != 0 {
		t.Errorf("got %d records for an empty batch", len(records))
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Mapping == nil {
		t.Error("Mapping should default to the built-in mapping")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to the shared logger")
	}

	custom := Options{Workers: 3}.WithDefaults()
	if custom.Workers != 3 {
		t.Errorf("Workers = %d, want explicit value preserved", custom.Workers)
	}
}
