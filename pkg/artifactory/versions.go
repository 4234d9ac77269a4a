package artifactory

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// latestVersion returns the newest version in vs. Returns "" for an empty
// slice.
func latestVersion(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return sortVersionsDesc(vs)[0]
}

// sortVersionsDesc sorts version strings newest first. Semantic versions
// order by precedence and sort before tokens semver cannot parse, which fall
// back to reverse lexical order among themselves.
func sortVersionsDesc(vs []string) []string {
	sorted := make([]string, len(vs))
	copy(sorted, vs)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, erri := semver.NewVersion(sorted[i])
		vj, errj := semver.NewVersion(sorted[j])
		switch {
		case erri == nil && errj == nil:
			return vj.LessThan(vi)
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return sorted[i] > sorted[j]
		}
	})
	return sorted
}
