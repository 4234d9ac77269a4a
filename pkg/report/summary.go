package report

import (
	"fmt"
	"time"

	"github.com/matzehuels/hound/pkg/resolve"
)

// Summary aggregates a finished batch for display and exit-status decisions.
// Every record lands in exactly one of the three buckets: Found, Missing
// (clean negative) or Failed (row-scoped error).
type Summary struct {
	Total   int
	Found   int
	Missing int
	Failed  int
	Elapsed time.Duration
}

// Summarize tallies records into a Summary.
func Summarize(records []resolve.Record, elapsed time.Duration) Summary {
	s := Summary{Total: len(records), Elapsed: elapsed}
	for _, rec := range records {
		switch {
		case rec.Found:
			s.Found++
		case rec.Err != "":
			s.Failed++
		default:
			s.Missing++
		}
	}
	return s
}

// String formats the summary as a single log-friendly line.
func (s Summary) String() string {
	return fmt.Sprintf("%d checked: %d found, %d missing, %d failed in %s",
		s.Total, s.Found, s.Missing, s.Failed, s.Elapsed.Round(time.Millisecond))
}
