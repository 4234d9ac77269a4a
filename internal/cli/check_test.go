package cli

import (
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hound/internal/testutil"
	"github.com/matzehuels/hound/pkg/artifactory"
)

// testCLI returns a CLI with a silent logger and the XDG directories
// pointed at per-test temp dirs, so no real config or cache is touched.
func testCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	clearEnv(t)
	return New(io.Discard, log.InfoLevel)
}

func runCommand(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func writeInput(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "packages.csv")
	content := strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func readResults(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse results: %v", err)
	}
	return rows
}

func TestCheckEndToEnd(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	srv.AddRepo("pypi-local", artifactory.TypeLocal, "pypi")
	srv.AddRepo("pypi-remote", artifactory.TypeRemote, "pypi")
	srv.AddRepo("npm-local", artifactory.TypeLocal, "npm")
	srv.AddPython("pypi-remote", "requests", "2.31.0")
	srv.AddNPM("npm-local", "left-pad", map[string]string{"latest": "1.3.0"}, "1.3.0")

	input := writeInput(t,
		"Package Path,Package Type",
		"pypi-local/requests,python",
		"npm-local/left-pad,npm",
		"pypi-local/absent-package,pypi",
		"internal-repo/legacy-lib,conda",
	)
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	// A single worker keeps completion order equal to input order, so the
	// output rows can be asserted exactly.
	err := runCommand(c, "check",
		"-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache", "--workers", "1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}

	rows := readResults(t, output)
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header + 4", len(rows))
	}

	want := [][]string{
		{"pypi-local/requests", "requests", "python", "2.31.0", "true", "pypi-remote", ""},
		{"npm-local/left-pad", "left-pad", "npm", "1.3.0", "true", "npm-local", ""},
		{"pypi-local/absent-package", "absent-package", "pypi", "", "false", "", ""},
	}
	for i, w := range want {
		if !reflect.DeepEqual(rows[i+1], w) {
			t.Errorf("row %d = %v, want %v", i+1, rows[i+1], w)
		}
	}

	// The unrecognized type is a row-scoped failure, not a dropped row.
	condaRow := rows[4]
	if condaRow[0] != "internal-repo/legacy-lib" || condaRow[2] != "conda" {
		t.Errorf("conda row = %v", condaRow)
	}
	if condaRow[4] != "false" {
		t.Errorf("conda row found = %q, want false", condaRow[4])
	}
	if !strings.Contains(condaRow[6], "INVALID_ECOSYSTEM") {
		t.Errorf("conda row error = %q, want INVALID_ECOSYSTEM", condaRow[6])
	}
}

func TestCheckMissingPackagesExitClean(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	srv.AddRepo("pypi-local", artifactory.TypeLocal, "pypi")

	input := writeInput(t,
		"pypi-local/ghost-one,python",
		"pypi-local/ghost-two,python",
	)
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	err := runCommand(c, "check", "-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache")
	if err != nil {
		t.Fatalf("a batch of absent packages should exit clean, got: %v", err)
	}

	rows := readResults(t, output)
	for _, row := range rows[1:] {
		if row[4] != "false" || row[6] != "" {
			t.Errorf("row %v should be a clean negative", row)
		}
	}
}

func TestCheckAllRowsFailed(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	srv.AddRepo("pypi-local", artifactory.TypeLocal, "pypi")
	srv.Fail("/api/pypi", http.StatusBadGateway)

	input := writeInput(t,
		"pypi-local/requests,python",
		"pypi-local/flask,python",
	)
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	err := runCommand(c, "check", "-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache")
	if err == nil {
		t.Fatal("check should fail when every row failed")
	}
	if !strings.Contains(err.Error(), "all 2 packages failed") {
		t.Errorf("error = %v", err)
	}

	// The per-row failures still produced output rows.
	rows := readResults(t, output)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	for _, row := range rows[1:] {
		if row[6] == "" {
			t.Errorf("row %v should carry an error", row)
		}
	}
}

func TestCheckPingPreflight(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	srv.AddRepo("pypi-local", artifactory.TypeLocal, "pypi")
	srv.AddPython("pypi-local", "requests", "2.31.0")
	srv.Fail("/api/system/ping", http.StatusServiceUnavailable)

	input := writeInput(t, "pypi-local/requests,python")
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	err := runCommand(c, "check", "-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache")
	if err == nil {
		t.Fatal("check should fail when the preflight ping fails")
	}
	if !strings.Contains(err.Error(), "ping") {
		t.Errorf("error = %v, want a ping error", err)
	}

	// Skipping the preflight lets the batch run against the same server.
	err = runCommand(c, "check", "-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache", "--no-ping")
	if err != nil {
		t.Fatalf("check --no-ping failed: %v", err)
	}
	rows := readResults(t, output)
	if rows[1][4] != "true" {
		t.Errorf("row = %v, want found", rows[1])
	}
}

func TestCheckAuthFromEnv(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	srv.RequireAuth("sekret-key")
	srv.AddRepo("npm-local", artifactory.TypeLocal, "npm")
	srv.AddNPM("npm-local", "left-pad", map[string]string{"latest": "1.3.0"}, "1.3.0")

	input := writeInput(t, "npm-local/left-pad,npm")
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	err := runCommand(c, "check", "-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache")
	if err == nil {
		t.Fatal("check without credentials should fail against an auth-requiring server")
	}

	t.Setenv("HOUND_API_KEY", "sekret-key")
	err = runCommand(c, "check", "-i", input, "-o", output,
		"--server", srv.URL, "--plain", "--no-cache")
	if err != nil {
		t.Fatalf("check with HOUND_API_KEY failed: %v", err)
	}
	rows := readResults(t, output)
	if rows[1][4] != "true" {
		t.Errorf("row = %v, want found", rows[1])
	}
}

func TestCheckServerFromEnv(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	srv.AddRepo("pypi-local", artifactory.TypeLocal, "pypi")
	srv.AddPython("pypi-local", "requests", "2.31.0")

	input := writeInput(t, "pypi-local/requests,python")
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	t.Setenv("HOUND_SERVER", srv.URL)
	err := runCommand(c, "check", "-i", input, "-o", output, "--plain", "--no-cache")
	if err != nil {
		t.Fatalf("check with HOUND_SERVER failed: %v", err)
	}
}

func TestCheckEmptyInput(t *testing.T) {
	input := writeInput(t, "Package Path,Package Type")
	output := filepath.Join(t.TempDir(), "results.csv")

	c := testCLI(t)
	err := runCommand(c, "check", "-i", input, "-o", output, "--server", "http://localhost:1", "--plain")
	if err == nil || !strings.Contains(err.Error(), "no packages") {
		t.Errorf("error = %v, want no packages", err)
	}
}

func TestCheckMissingInputFile(t *testing.T) {
	c := testCLI(t)
	err := runCommand(c, "check",
		"-i", filepath.Join(t.TempDir(), "nope.csv"),
		"-o", filepath.Join(t.TempDir(), "results.csv"),
		"--server", "http://localhost:1", "--plain")
	if err == nil || !strings.Contains(err.Error(), "read input") {
		t.Errorf("error = %v, want read input", err)
	}
}

func TestCheckRequiresFlags(t *testing.T) {
	c := testCLI(t)
	if err := runCommand(c, "check"); err == nil {
		t.Fatal("check without --input/--output should fail")
	}
}
