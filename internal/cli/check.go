package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hound/pkg/ecosystem"
	"github.com/matzehuels/hound/pkg/report"
	"github.com/matzehuels/hound/pkg/resolve"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	input   string        // input CSV path
	output  string        // output CSV path
	server  string        // server URL override
	workers int           // concurrent probes
	timeout time.Duration // per-request timeout
	refresh bool          // bypass cached probe results
	noCache bool          // disable the probe cache entirely
	noPing  bool          // skip the reachability preflight
	plain   bool          // log lines instead of the live progress view
}

// checkCommand creates the check command, the main batch auditing run.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit a CSV of packages against the server",
		Long: `Check whether every package listed in the input CSV exists in the
configured artifact repository server.

The input needs at least two columns per row: the package path and its type
(python, npm, maven, nuget, terraform, docker). A header row is detected
automatically. One output row is written per input row; packages that are
absent are reported as found=false with no error, and a row-scoped failure
never aborts the rest of the batch.

Examples:
  hound check -i packages.csv -o results.csv
  hound check -i packages.csv -o results.csv --server https://repo.example.com/artifactory
  hound check -i packages.csv -o results.csv --workers 20 --refresh --plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "input CSV with package paths and types (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output CSV for results (required)")
	cmd.Flags().StringVar(&opts.server, "server", "", "server base URL (overrides config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "maximum concurrent probes (default 10)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 10s)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached probe results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the probe-result cache")
	cmd.Flags().BoolVar(&opts.noPing, "no-ping", false, "skip the server reachability preflight")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "plain log output instead of the live progress view")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runCheck executes one batch: read requests, preflight, resolve, stream
// records to the output CSV and print a summary. The returned error covers
// batch-level failures only; per-package failures land in the output's
// error column and never affect the exit status.
func (c *CLI) runCheck(ctx context.Context, opts checkOpts) error {
	cfg, err := loadConfig(c.ConfigPath)
	if err != nil {
		return err
	}

	client, err := c.newClient(cfg, clientOptions{
		server:  opts.server,
		timeout: opts.timeout,
		refresh: opts.refresh,
		noCache: opts.noCache,
	})
	if err != nil {
		return err
	}

	reqs, err := report.ImportRequests(opts.input, c.Logger)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no packages in %s", opts.input)
	}

	if !opts.noPing {
		if err := c.preflight(ctx, client); err != nil {
			return err
		}
	}

	out, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	writer := report.NewWriter(out)

	printInfo("Checking %s packages from %s",
		StyleNumber.Render(fmt.Sprintf("%d", len(reqs))), StyleHighlight.Render(opts.input))

	live := !opts.plain && isTerminal(os.Stdout) && c.Logger.GetLevel() > log.DebugLevel

	workers := opts.workers
	if workers == 0 {
		workers = cfg.Check.Workers
	}
	engineOpts := resolve.Options{
		Workers: workers,
		Mapping: c.mapping(cfg),
		Logger:  c.Logger,
	}

	// The output writer is only ever touched from the engine's collector,
	// so no locking is needed around it.
	var writeErr error
	record := func(rec resolve.Record) {
		if writeErr != nil {
			return
		}
		if writeErr = writer.Write(rec); writeErr == nil {
			writeErr = writer.Flush()
		}
	}

	start := time.Now()
	var records []resolve.Record
	if live {
		records, err = c.runLive(ctx, client, engineOpts, reqs, record)
	} else {
		records, err = c.runPlain(ctx, client, engineOpts, reqs, record)
	}
	if writeErr != nil {
		return fmt.Errorf("write output: %w", writeErr)
	}
	if err != nil {
		return err
	}

	summary := report.Summarize(records, time.Since(start))
	c.printSummary(summary, opts.output)

	if summary.Total > 0 && summary.Failed == summary.Total {
		return fmt.Errorf("all %d packages failed", summary.Total)
	}
	return nil
}

// runPlain runs the batch with one log line per finished package.
func (c *CLI) runPlain(ctx context.Context, client resolve.Client, opts resolve.Options, reqs []resolve.Request, record func(resolve.Record)) ([]resolve.Record, error) {
	opts.OnRecord = func(rec resolve.Record) {
		record(rec)
		name := rec.Name
		if name == "" {
			name = rec.RawPath
		}
		switch {
		case rec.Found:
			c.Logger.Info("found", "package", name, "version", rec.Version, "repositories", rec.Repositories)
		case rec.Err != "":
			c.Logger.Warn("failed", "package", name, "error", rec.Err)
		default:
			c.Logger.Info("not found", "package", name)
		}
	}

	records := resolve.New(client, opts).Run(ctx, reqs)
	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// runLive runs the batch behind the bubbletea progress view. The engine
// runs on its own goroutine and feeds the model through Send; quitting the
// view cancels the run and drains what is in flight.
func (c *CLI) runLive(ctx context.Context, client resolve.Client, opts resolve.Options, reqs []resolve.Request, record func(resolve.Record)) ([]resolve.Record, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newCheckModel(len(reqs)))

	// Logging would tear the live view apart, so the engine stays quiet
	// and the view carries the progress instead.
	opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	opts.OnRecord = func(rec resolve.Record) {
		record(rec)
		p.Send(resultMsg{rec: rec})
	}

	var records []resolve.Record
	done := make(chan struct{})
	go func() {
		defer close(done)
		records = resolve.New(client, opts).Run(runCtx, reqs)
		p.Send(doneMsg{})
	}()

	finalModel, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return records, err
	}

	if fm, ok := finalModel.(checkModel); ok && fm.interrupted {
		return records, context.Canceled
	}
	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// preflight verifies the server answers its ping endpoint before the batch
// starts, so an unreachable server fails once instead of once per package.
func (c *CLI) preflight(ctx context.Context, client pinger) error {
	spinner := newSpinnerWithContext(ctx, "Checking server availability...")
	spinner.Start()
	err := client.Ping(ctx)
	if err != nil {
		spinner.StopWithError("Server unreachable")
		return fmt.Errorf("ping %s: %w", client.BaseURL(), err)
	}
	spinner.Stop()
	return nil
}

// pinger is the preflight-sized view of the artifact-server client.
type pinger interface {
	BaseURL() string
	Ping(ctx context.Context) error
}

// mapping builds the candidate mapping with any per-ecosystem overrides
// from the [repositories] config section applied.
func (c *CLI) mapping(cfg Config) resolve.Mapping {
	if len(cfg.Repositories) == 0 {
		return nil
	}
	overrides := make(resolve.Mapping, len(cfg.Repositories))
	for tag, keys := range cfg.Repositories {
		eco, err := ecosystem.Parse(tag)
		if err != nil {
			c.Logger.Warn("ignoring repository override", "type", tag, "error", err)
			continue
		}
		overrides[eco] = keys
	}
	return resolve.DefaultMapping().Merge(overrides)
}

// printSummary prints the styled end-of-run summary block.
func (c *CLI) printSummary(s report.Summary, output string) {
	printNewline()
	printSuccess("Checked %s packages in %s",
		StyleNumber.Render(fmt.Sprintf("%d", s.Total)), s.Elapsed.Round(time.Millisecond))
	printKeyValue("Found", StyleSuccess.Render(fmt.Sprintf("%d", s.Found)))
	printKeyValue("Missing", fmt.Sprintf("%d", s.Missing))
	if s.Failed > 0 {
		printKeyValue("Failed", StyleWarning.Render(fmt.Sprintf("%d", s.Failed)))
	}
	printFile(output)
	if s.Failed > 0 {
		printWarning("%d packages could not be checked; see the error column", s.Failed)
	}
}

// isTerminal reports whether f is attached to a terminal, used to decide
// between the live progress view and plain logs.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
