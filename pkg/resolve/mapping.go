package resolve

import "github.com/matzehuels/hound/pkg/ecosystem"

// Mapping assigns each ecosystem an ordered list of candidate repository
// keys, most authoritative first.
type Mapping map[ecosystem.Ecosystem][]string

// DefaultMapping returns the conventional repository keys per ecosystem.
// Local and authorized repositories lead each list (authoritative, fast),
// followed by remote and virtual tiers (proxy caches), so that a package
// hosted in several tiers reports its most authoritative location first.
func DefaultMapping() Mapping {
	return Mapping{
		ecosystem.Python:    {"pypi-local", "pypi-remote", "pypi-virtual"},
		ecosystem.NPM:       {"npm-local", "npm-remote", "npm-virtual"},
		ecosystem.Maven:     {"maven-local", "libs-release", "maven-authorized", "maven-remote", "maven-virtual"},
		ecosystem.NuGet:     {"nuget-local", "nuget-remote", "nuget-virtual"},
		ecosystem.Terraform: {"terraform-local", "terraform-remote", "terraform-virtual"},
		ecosystem.Docker:    {"docker-local", "docker-remote", "docker-virtual"},
	}
}

// Merge returns a copy of m with overrides applied. An override replaces the
// full candidate list for its ecosystem; ecosystems without an override keep
// their original lists.
func (m Mapping) Merge(overrides Mapping) Mapping {
	merged := make(Mapping, len(m))
	for eco, keys := range m {
		merged[eco] = append([]string(nil), keys...)
	}
	for eco, keys := range overrides {
		merged[eco] = append([]string(nil), keys...)
	}
	return merged
}
