package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/ecosystem"
	errs "github.com/matzehuels/hound/pkg/errors"
	"github.com/matzehuels/hound/pkg/identity"
	"github.com/matzehuels/hound/pkg/observability"
)

// DefaultWorkers bounds concurrent probe calls when Options.Workers is unset.
const DefaultWorkers = 10

// Client is the server capability the engine consumes: one existence check
// and one repository listing. [artifactory.Client] satisfies it.
type Client interface {
	// Probe performs one read-only existence check of id against repo.
	Probe(ctx context.Context, repo string, id identity.Identity) artifactory.Outcome

	// Repositories lists the repositories configured on the server.
	Repositories(ctx context.Context) ([]artifactory.Repository, error)
}

// Options configures a batch run.
type Options struct {
	Workers  int          // Maximum concurrent probe calls (default: 10)
	Mapping  Mapping      // Ecosystem to candidate repositories (default: DefaultMapping)
	Logger   *log.Logger  // Structured logger (default: log.Default())
	OnRecord func(Record) // Called once per finished record, in completion order (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Mapping == nil {
		opts.Mapping = DefaultMapping()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Engine resolves batches of package requests against one server.
type Engine struct {
	client   Client
	resolver *Resolver
	opts     Options
}

// New creates an Engine probing through client.
func New(client Client, opts Options) *Engine {
	opts = opts.WithDefaults()
	return &Engine{
		client:   client,
		resolver: NewResolver(client, opts.Mapping, opts.Logger),
		opts:     opts,
	}
}

// probeJob is one existence check to run on the shared probe pool. The
// worker writes its outcome into outcomes[slot], so each package's results
// land in candidate priority order no matter which probe finishes first.
type probeJob struct {
	slot     int
	repo     string
	id       identity.Identity
	outcomes []artifactory.Outcome
	wg       *sync.WaitGroup
}

// startProbers launches n goroutines that drain jobs until the channel
// closes. The returned WaitGroup completes once every prober has exited.
func (e *Engine) startProbers(ctx context.Context, jobs <-chan probeJob, n int) *sync.WaitGroup {
	var probers sync.WaitGroup
	for range n {
		probers.Add(1)
		go func() {
			defer probers.Done()
			for j := range jobs {
				j.outcomes[j.slot] = e.client.Probe(ctx, j.repo, j.id)
				j.wg.Done()
			}
		}()
	}
	return &probers
}

// Resolve resolves a single request. Probes for the request's candidate
// repositories run concurrently, bounded by Options.Workers.
func (e *Engine) Resolve(ctx context.Context, req Request) Record {
	jobs := make(chan probeJob)
	probers := e.startProbers(ctx, jobs, e.opts.Workers)
	rec := e.resolveOne(ctx, req, jobs)
	close(jobs)
	probers.Wait()
	return rec
}

// Run resolves every request and returns one Record per request, in input
// order. No failure on one row aborts the others; row-scoped failures land
// in their Record's Err field, never in a panic or an early return.
//
// Work runs on two fixed pools of Options.Workers goroutines each: one
// resolving packages, one executing probes. Probes for one package fan out
// across its candidate repositories, but total in-flight probe calls never
// exceed Options.Workers regardless of batch size.
func (e *Engine) Run(ctx context.Context, reqs []Request) []Record {
	runID := uuid.NewString()
	start := time.Now()
	e.opts.Logger.Info("starting batch", "run", runID, "packages", len(reqs), "workers", e.opts.Workers)
	observability.Batch().OnBatchStart(ctx, runID, len(reqs))

	jobs := make(chan probeJob, e.opts.Workers*2)
	probers := e.startProbers(ctx, jobs, e.opts.Workers)

	type task struct {
		idx int
		req Request
	}
	type indexed struct {
		idx int
		rec Record
	}
	tasks := make(chan task)
	results := make(chan indexed, len(reqs))

	var resolvers sync.WaitGroup
	for range e.opts.Workers {
		resolvers.Add(1)
		go func() {
			defer resolvers.Done()
			for t := range tasks {
				results <- indexed{idx: t.idx, rec: e.resolve(ctx, runID, t.req, jobs)}
			}
		}()
	}

	go func() {
		for i, req := range reqs {
			tasks <- task{idx: i, req: req}
		}
		close(tasks)
	}()
	go func() {
		resolvers.Wait()
		close(jobs)
		close(results)
	}()

	var found, missing, failed int
	records := make([]Record, len(reqs))
	for r := range results {
		records[r.idx] = r.rec
		switch {
		case r.rec.Found:
			found++
		case r.rec.Err != "":
			failed++
		default:
			missing++
		}
		if e.opts.OnRecord != nil {
			e.opts.OnRecord(r.rec)
		}
	}
	probers.Wait()

	elapsed := time.Since(start)
	observability.Batch().OnBatchComplete(ctx, runID, found, missing, failed, elapsed)
	e.opts.Logger.Info("batch complete",
		"run", runID, "found", found, "missing", missing, "failed", failed, "elapsed", elapsed)
	return records
}

func (e *Engine) resolve(ctx context.Context, runID string, req Request, jobs chan<- probeJob) Record {
	start := time.Now()
	rec := e.resolveOne(ctx, req, jobs)
	observability.Batch().OnPackageResolved(ctx, runID, rec.Found, time.Since(start))
	return rec
}

// resolveOne walks one request through the pipeline: classify the type tag,
// extract the identity, resolve candidate repositories, fan probes out
// through the shared pool, and fold the outcomes. All candidates are always
// probed; there is no short-circuit on first success, so the record can list
// every repository hosting the package.
func (e *Engine) resolveOne(ctx context.Context, req Request, jobs chan<- probeJob) Record {
	eco, err := ecosystem.Parse(req.Type)
	if err != nil {
		return errorRecord(req, errs.Wrap(errs.ErrCodeInvalidEcosystem, err, "classifying %q", req.RawPath))
	}

	id, err := identity.Extract(req.RawPath, eco)
	if err != nil {
		return errorRecord(req, err)
	}

	candidates, err := e.resolver.Candidates(ctx, eco)
	if err != nil {
		rec := errorRecord(req, err)
		rec.Name = id.Name
		rec.Version = id.Version
		return rec
	}

	outcomes := make([]artifactory.Outcome, len(candidates))
	var probed sync.WaitGroup
	probed.Add(len(candidates))
	for slot, repo := range candidates {
		jobs <- probeJob{slot: slot, repo: repo, id: id, outcomes: outcomes, wg: &probed}
	}
	probed.Wait()

	return Fold(req, id, outcomes)
}
