// Package ecosystem defines the package type families hound can audit and
// their mapping onto the artifact server's package-type vocabulary.
package ecosystem

import (
	"fmt"
	"strings"
)

// Ecosystem identifies one of the supported package type families.
type Ecosystem string

// Supported ecosystems.
const (
	Python    Ecosystem = "python"
	NPM       Ecosystem = "npm"
	Maven     Ecosystem = "maven"
	NuGet     Ecosystem = "nuget"
	Terraform Ecosystem = "terraform"
	Docker    Ecosystem = "docker"
)

// aliases maps alternate spellings seen in input files to their ecosystem.
var aliases = map[string]Ecosystem{
	"pypi": Python,
}

// All returns the supported ecosystems in display order.
func All() []Ecosystem {
	return []Ecosystem{Python, NPM, Maven, NuGet, Terraform, Docker}
}

// Parse converts a raw type tag (as found in input CSVs) into an Ecosystem.
// Matching is case-insensitive and ignores surrounding whitespace.
func Parse(s string) (Ecosystem, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if eco, ok := aliases[tag]; ok {
		return eco, nil
	}
	for _, eco := range All() {
		if tag == string(eco) {
			return eco, nil
		}
	}
	return "", fmt.Errorf("unknown package type %q (supported: %s)", s, supported())
}

// PackageType returns the package-type tag the artifact server reports for
// repositories of this ecosystem ("pypi" for python, the ecosystem name
// otherwise).
func (e Ecosystem) PackageType() string {
	if e == Python {
		return "pypi"
	}
	return string(e)
}

// String returns the canonical lowercase tag.
func (e Ecosystem) String() string { return string(e) }

func supported() string {
	tags := make([]string, 0, len(All()))
	for _, eco := range All() {
		tags = append(tags, string(eco))
	}
	return strings.Join(tags, ", ")
}
