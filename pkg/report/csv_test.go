package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hound/pkg/resolve"
)

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestReadRequestsWithHeader(t *testing.T) {
	input := strings.Join([]string{
		"Package Path,Package Type",
		"pypi-local/requests/2.31.0,python",
		"npm-registry/@angular/core/15.2.0,npm",
	}, "\n")

	reqs, err := ReadRequests(strings.NewReader(input), discardLogger())
	if err != nil {
		t.Fatalf("ReadRequests() error: %v", err)
	}
	want := []resolve.Request{
		{RawPath: "pypi-local/requests/2.31.0", Type: "python"},
		{RawPath: "npm-registry/@angular/core/15.2.0", Type: "npm"},
	}
	if !reflect.DeepEqual(reqs, want) {
		t.Errorf("ReadRequests() = %v, want %v", reqs, want)
	}
}

func TestReadRequestsWithoutHeader(t *testing.T) {
	// The first row's type column parses as a real ecosystem, so it is data.
	input := "pypi-local/requests,python\npypi-local/flask,python\n"

	reqs, err := ReadRequests(strings.NewReader(input), discardLogger())
	if err != nil {
		t.Fatalf("ReadRequests() error: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2 (first row is data, not a header)", len(reqs))
	}
	if reqs[0].RawPath != "pypi-local/requests" {
		t.Errorf("reqs[0].RawPath = %q", reqs[0].RawPath)
	}
}

func TestReadRequestsSkipsShortRows(t *testing.T) {
	input := strings.Join([]string{
		"Package Path,Package Type",
		"lonely-column",
		"pypi-local/requests,python",
	}, "\n")

	reqs, err := ReadRequests(strings.NewReader(input), discardLogger())
	if err != nil {
		t.Fatalf("ReadRequests() error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].RawPath != "pypi-local/requests" {
		t.Errorf("ReadRequests() = %v, want only the well-formed row", reqs)
	}
}

func TestReadRequestsKeepsUnknownTypes(t *testing.T) {
	// Unknown type tags must survive into the batch so the failure shows
	// up on that row's record instead of the row vanishing.
	input := strings.Join([]string{
		"Package Path,Package Type",
		"somewhere/thing/1.0,conda",
	}, "\n")

	reqs, err := ReadRequests(strings.NewReader(input), discardLogger())
	if err != nil {
		t.Fatalf("ReadRequests() error: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Type != "conda" {
		t.Errorf("ReadRequests() = %v, want the unknown-type row kept verbatim", reqs)
	}
}

func TestReadRequestsTrimsWhitespace(t *testing.T) {
	input := "Package Path,Package Type\n  pypi-local/requests  ,  python  \n"

	reqs, err := ReadRequests(strings.NewReader(input), discardLogger())
	if err != nil {
		t.Fatalf("ReadRequests() error: %v", err)
	}
	if reqs[0].RawPath != "pypi-local/requests" || reqs[0].Type != "python" {
		t.Errorf("ReadRequests() = %+v, want trimmed fields", reqs[0])
	}
}

func TestReadRequestsEmptyInput(t *testing.T) {
	reqs, err := ReadRequests(strings.NewReader(""), discardLogger())
	if err != nil {
		t.Fatalf("ReadRequests() error: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("got %d requests from empty input", len(reqs))
	}
}

func TestReadRequestsMalformedCSV(t *testing.T) {
	if _, err := ReadRequests(strings.NewReader("a,\"b\nc,d"), discardLogger()); err == nil {
		t.Error("ReadRequests() should fail on unterminated quotes")
	}
}

func TestWriterStreamsRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := []resolve.Record{
		{
			RawPath:      "pypi-local/requests/2.31.0",
			Name:         "requests",
			Type:         "python",
			Version:      "2.31.0",
			Found:        true,
			Repositories: []string{"pypi-local", "pypi-virtual"},
		},
		{
			RawPath: "pypi-local/ghost",
			Name:    "ghost",
			Type:    "python",
		},
		{
			RawPath: "bad/row",
			Type:    "cobol",
			Err:     "INVALID_ECOSYSTEM: unknown package type",
		},
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3 records", len(rows))
	}

	wantHeader := []string{"Package Path", "Package Name", "Type", "Version", "Found", "Repositories", "Error"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}
	wantFound := []string{"pypi-local/requests/2.31.0", "requests", "python", "2.31.0", "true", "pypi-local;pypi-virtual", ""}
	if !reflect.DeepEqual(rows[1], wantFound) {
		t.Errorf("row 1 = %v, want %v", rows[1], wantFound)
	}
	if rows[2][4] != "false" || rows[2][5] != "" || rows[2][6] != "" {
		t.Errorf("row 2 = %v, want a clean negative", rows[2])
	}
	if rows[3][6] == "" {
		t.Errorf("row 3 = %v, want the error column populated", rows[3])
	}
}

func TestWriterEmptyBatchStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Package Path,") {
		t.Errorf("output = %q, want the header row alone", buf.String())
	}
}

func TestExportRecords(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "results.csv")

	records := []resolve.Record{
		{RawPath: "docker-prod/library/ubuntu/22.04", Name: "library/ubuntu", Type: "docker", Version: "22.04", Found: true, Repositories: []string{"docker-local"}},
	}
	if err := ExportRecords(records, out); err != nil {
		t.Fatalf("ExportRecords() error: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading output back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1 record", len(rows))
	}
	want := []string{"docker-prod/library/ubuntu/22.04", "library/ubuntu", "docker", "22.04", "true", "docker-local", ""}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
}

func TestImportRequestsMissingFile(t *testing.T) {
	if _, err := ImportRequests(filepath.Join(t.TempDir(), "nope.csv"), discardLogger()); err == nil {
		t.Error("ImportRequests() should fail for a missing file")
	}
}
