package resolve

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/ecosystem"
	errs "github.com/matzehuels/hound/pkg/errors"
)

func TestCandidatesStaticFiltering(t *testing.T) {
	// The server carries only two of the three conventionally named
	// repositories; the missing one is silently dropped, order preserved.
	client := &stubClient{repos: []artifactory.Repository{
		{Key: "pypi-virtual", Type: artifactory.TypeVirtual, PackageType: "pypi"},
		{Key: "pypi-local", Type: artifactory.TypeLocal, PackageType: "pypi"},
		{Key: "npm-local", Type: artifactory.TypeLocal, PackageType: "npm"},
	}}
	r := NewResolver(client, nil, quietLogger())

	keys, err := r.Candidates(context.Background(), ecosystem.Python)
	if err != nil {
		t.Fatalf("Candidates() error: %v", err)
	}
	want := []string{"pypi-local", "pypi-virtual"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Candidates() = %v, want %v", keys, want)
	}
}

func TestCandidatesDiscoveryFallback(t *testing.T) {
	// None of the conventional keys exist, so discovery matches on package
	// type instead: locals first, then remotes, then virtuals, and
	// alphabetical within a tier.
	client := &stubClient{repos: []artifactory.Repository{
		{Key: "all-python", Type: artifactory.TypeVirtual, PackageType: "pypi"},
		{Key: "team-python", Type: artifactory.TypeRemote, PackageType: "PyPI"},
		{Key: "zebra-python", Type: "local", PackageType: "pypi"},
		{Key: "corp-python", Type: artifactory.TypeLocal, PackageType: "pypi"},
		{Key: "npm-things", Type: artifactory.TypeLocal, PackageType: "npm"},
	}}
	r := NewResolver(client, nil, quietLogger())

	keys, err := r.Candidates(context.Background(), ecosystem.Python)
	if err != nil {
		t.Fatalf("Candidates() error: %v", err)
	}
	want := []string{"corp-python", "zebra-python", "team-python", "all-python"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Candidates() = %v, want %v", keys, want)
	}
}

func TestCandidatesDiscoveryFailure(t *testing.T) {
	client := &stubClient{reposErr: errTransport}
	r := NewResolver(client, nil, quietLogger())

	_, err := r.Candidates(context.Background(), ecosystem.Python)
	if !errs.Is(err, errs.ErrCodeDiscoveryFailed) {
		t.Errorf("Candidates() error = %v, want DISCOVERY_FAILED", err)
	}
}

func TestCandidatesNoMatchingRepositories(t *testing.T) {
	client := &stubClient{repos: []artifactory.Repository{
		{Key: "npm-local", Type: artifactory.TypeLocal, PackageType: "npm"},
	}}
	r := NewResolver(client, nil, quietLogger())

	_, err := r.Candidates(context.Background(), ecosystem.Docker)
	if !errs.Is(err, errs.ErrCodeRepoNotFound) {
		t.Errorf("Candidates() error = %v, want REPO_NOT_FOUND", err)
	}
}

func TestCandidatesCustomMapping(t *testing.T) {
	client := &stubClient{repos: []artifactory.Repository{
		{Key: "our-pypi", Type: artifactory.TypeLocal, PackageType: "pypi"},
		{Key: "pypi-local", Type: artifactory.TypeLocal, PackageType: "pypi"},
	}}
	mapping := DefaultMapping().Merge(Mapping{
		ecosystem.Python: {"our-pypi"},
	})
	r := NewResolver(client, mapping, quietLogger())

	keys, err := r.Candidates(context.Background(), ecosystem.Python)
	if err != nil {
		t.Fatalf("Candidates() error: %v", err)
	}
	want := []string{"our-pypi"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Candidates() = %v, want the override only, got %v", keys, want)
	}
}

func TestDefaultMappingCoversAllEcosystems(t *testing.T) {
	mapping := DefaultMapping()
	for _, eco := range ecosystem.All() {
		if len(mapping[eco]) == 0 {
			t.Errorf("DefaultMapping() has no candidates for %s", eco)
		}
	}
}

func TestMappingMerge(t *testing.T) {
	base := DefaultMapping()
	merged := base.Merge(Mapping{
		ecosystem.NPM: {"custom-npm"},
	})

	if got := merged[ecosystem.NPM]; !reflect.DeepEqual(got, []string{"custom-npm"}) {
		t.Errorf("merged npm = %v, want the override to replace the whole list", got)
	}
	if !reflect.DeepEqual(merged[ecosystem.Python], base[ecosystem.Python]) {
		t.Errorf("merged python = %v, want it untouched", merged[ecosystem.Python])
	}

	merged[ecosystem.Python][0] = "mutated"
	if base[ecosystem.Python][0] == "mutated" {
		t.Error("Merge() must copy candidate lists, not share them")
	}
}

func TestMappingMergeNil(t *testing.T) {
	base := DefaultMapping()
	merged := base.Merge(nil)
	if !reflect.DeepEqual(merged, base) {
		t.Error("Merge(nil) should equal the original mapping")
	}
}
