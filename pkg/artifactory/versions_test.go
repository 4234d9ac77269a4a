package artifactory

import (
	"reflect"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{"empty", nil, ""},
		{"single", []string{"1.0.0"}, "1.0.0"},
		{"semantic ordering", []string{"1.2.0", "1.10.0", "1.9.3"}, "1.10.0"},
		{"prerelease below release", []string{"2.0.0-rc.1", "1.9.0", "2.0.0"}, "2.0.0"},
		{"two segment versions", []string{"3.18", "3.19", "3.2"}, "3.19"},
		{"v prefix", []string{"v1.2.0", "v1.10.0"}, "v1.10.0"},
		{"maven classifier suffix", []string{"31.0-jre", "31.1-jre"}, "31.1-jre"},
		{"parseable beats unparseable", []string{"snapshot-build", "1.0.0"}, "1.0.0"},
		{"all unparseable falls back to lexical", []string{"alpha", "beta"}, "beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := latestVersion(tt.versions); got != tt.want {
				t.Errorf("latestVersion(%v) = %q, want %q", tt.versions, got, tt.want)
			}
		})
	}
}

func TestSortVersionsDesc(t *testing.T) {
	got := sortVersionsDesc([]string{"1.0.0", "2.1.0", "2.0.0", "1.10.0"})
	want := []string{"2.1.0", "2.0.0", "1.10.0", "1.0.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortVersionsDesc() = %v, want %v", got, want)
	}
}

func TestSortVersionsDescDoesNotMutateInput(t *testing.T) {
	in := []string{"1.0.0", "3.0.0", "2.0.0"}
	sortVersionsDesc(in)
	if !reflect.DeepEqual(in, []string{"1.0.0", "3.0.0", "2.0.0"}) {
		t.Errorf("input mutated: %v", in)
	}
}
