package resolve

import (
	"fmt"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/identity"
)

// Request is one row of input: a raw repository path and its declared
// package type tag. The tag is kept verbatim so unrecognized tags survive
// into the output.
type Request struct {
	RawPath string
	Type    string
}

// Record is the aggregated outcome for one request. Exactly one Record is
// produced per Request.
//
// Invariants: Found is true iff Repositories is non-empty. Err is set only
// when nothing could be determined (extraction failed, no candidates could
// be resolved, or every probe hit a transport failure). A package that is
// simply absent everywhere is a clean negative result: Found=false, Err
// empty.
type Record struct {
	RawPath      string   // Original input path
	Name         string   // Extracted package name (empty if extraction failed)
	Type         string   // Declared type tag, verbatim from input
	Version      string   // Requested version, or the resolved one when the request had none
	Found        bool     // Whether any repository hosts the package
	Repositories []string // Every repository that reported found, in candidate priority order
	Err          string   // Row-scoped failure, empty for clean results
}

// Fold merges the per-repository outcomes for one request into a Record.
//
// The outcomes slice is ordered by candidate priority, and the fold is
// deterministic in that order regardless of which probe finished first:
// Repositories lists every found location in priority order, and Version is
// taken from the first found outcome carrying one (when the request itself
// had no version). Transport errors only escalate to the record when every
// single candidate failed that way; a mix of "not found here, found there"
// is a clean result.
func Fold(req Request, id identity.Identity, outcomes []artifactory.Outcome) Record {
	rec := Record{
		RawPath: req.RawPath,
		Type:    req.Type,
		Name:    id.Name,
		Version: id.Version,
	}

	errored := 0
	var firstErr error
	for _, out := range outcomes {
		switch {
		case out.Found:
			rec.Found = true
			rec.Repositories = append(rec.Repositories, out.Repository)
			if rec.Version == "" {
				rec.Version = out.Version
			}
		case out.Err != nil:
			errored++
			if firstErr == nil {
				firstErr = out.Err
			}
		}
	}

	if !rec.Found && errored > 0 && errored == len(outcomes) {
		rec.Err = fmt.Sprintf("all %d candidate repositories failed: %v", errored, firstErr)
	}
	return rec
}

func errorRecord(req Request, err error) Record {
	return Record{RawPath: req.RawPath, Type: req.Type, Err: err.Error()}
}
