package report

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/hound/pkg/resolve"
)

func TestSummarize(t *testing.T) {
	records := []resolve.Record{
		{Found: true},
		{Found: true},
		{},
		{Err: "DISCOVERY_FAILED: listing repositories"},
	}

	s := Summarize(records, 1500*time.Millisecond)
	if s.Total != 4 || s.Found != 2 || s.Missing != 1 || s.Failed != 1 {
		t.Errorf("Summarize() = %+v", s)
	}
	if s.Found+s.Missing+s.Failed != s.Total {
		t.Errorf("buckets do not partition the batch: %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 0)
	if s.Total != 0 || s.Found != 0 || s.Missing != 0 || s.Failed != 0 {
		t.Errorf("Summarize(nil) = %+v, want zeros", s)
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Total: 3, Found: 1, Missing: 1, Failed: 1, Elapsed: 2 * time.Second}
	got := s.String()
	for _, want := range []string{"3 checked", "1 found", "1 missing", "1 failed", "2s"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
