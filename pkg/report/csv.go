package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hound/pkg/ecosystem"
	"github.com/matzehuels/hound/pkg/resolve"
)

// header is the output column set. Repositories holds every hosting
// repository joined with ";" so a package found in several tiers keeps
// all its locations in one cell.
var header = []string{"Package Path", "Package Name", "Type", "Version", "Found", "Repositories", "Error"}

// ReadRequests decodes package requests from CSV on r.
//
// Each row needs at least two columns: the package path and its type tag.
// A leading header row is detected by its type column not parsing as a
// known package type and is skipped. Rows with fewer than two columns are
// logged and skipped; rows with an unknown type tag are kept, so the
// classification failure surfaces in that row's output record rather than
// silently shrinking the batch.
//
// ReadRequests does not close r.
func ReadRequests(r io.Reader, logger *log.Logger) ([]resolve.Request, error) {
	if logger == nil {
		logger = log.Default()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var reqs []resolve.Request
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		line++

		if len(row) < 2 {
			logger.Warn("skipping malformed row", "line", line, "columns", len(row))
			continue
		}

		rawPath := strings.TrimSpace(row[0])
		rawType := strings.TrimSpace(row[1])
		if line == 1 {
			if _, err := ecosystem.Parse(rawType); err != nil {
				logger.Debug("skipping header row", "type", rawType)
				continue
			}
		}
		reqs = append(reqs, resolve.Request{RawPath: rawPath, Type: rawType})
	}
	return reqs, nil
}

// ImportRequests reads a CSV file at path and returns the decoded requests.
// The error wraps the underlying cause with the file path for context.
func ImportRequests(path string, logger *log.Logger) ([]resolve.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRequests(f, logger)
}

// Writer streams result records to CSV as they complete. The header row is
// written before the first record. Writer is not safe for concurrent use;
// serialize callers (the engine's OnRecord callback already is).
type Writer struct {
	cw          *csv.Writer
	wroteHeader bool
}

// NewWriter creates a Writer emitting CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// Write appends one record row, emitting the header first if needed.
func (w *Writer) Write(rec resolve.Record) error {
	if !w.wroteHeader {
		if err := w.cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.wroteHeader = true
	}
	row := []string{
		rec.RawPath,
		rec.Name,
		rec.Type,
		rec.Version,
		strconv.FormatBool(rec.Found),
		strings.Join(rec.Repositories, ";"),
		rec.Err,
	}
	if err := w.cw.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

// Flush writes buffered rows through to the underlying writer. An empty
// batch still flushes the header row so consumers always see the schema.
func (w *Writer) Flush() error {
	if !w.wroteHeader {
		if err := w.cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.wroteHeader = true
	}
	w.cw.Flush()
	return w.cw.Error()
}

// WriteRecords encodes all records as CSV and writes them to w.
func WriteRecords(records []resolve.Record, w io.Writer) error {
	cw := NewWriter(w)
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// ExportRecords writes records to a CSV file at path.
// This is a convenience wrapper around [WriteRecords] for file-based output.
func ExportRecords(records []resolve.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteRecords(records, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
