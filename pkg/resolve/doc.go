// Package resolve implements the package resolution engine: it turns a batch
// of raw package paths into per-package existence records.
//
// # Overview
//
// One request flows through four stages:
//
//  1. Classification: the declared type tag becomes an [ecosystem.Ecosystem]
//  2. Extraction: the raw path becomes an [identity.Identity] (name, version)
//  3. Candidate resolution: the ecosystem becomes an ordered list of
//     repository keys ([Resolver.Candidates])
//  4. Probing and folding: every candidate is probed through [Client], and
//     the outcomes fold into one [Record] ([Fold])
//
// The engine probes all candidates rather than stopping at the first hit,
// so a record lists every repository hosting the package, most
// authoritative first.
//
// # Running a Batch
//
//	client, _ := artifactory.New(artifactory.Config{BaseURL: serverURL})
//	engine := resolve.New(client, resolve.Options{Workers: 10})
//	records := engine.Run(ctx, requests)
//
// Run always returns exactly one [Record] per request, in input order. A
// failure on one row (bad type tag, empty path, unreachable candidates)
// lands in that row's Err field and never aborts the rest of the batch.
// [Engine.Resolve] runs the same pipeline for a single request.
//
// # Failure Semantics
//
// Not found is not an error: a package that is absent from every candidate
// yields Found=false with an empty Err. Err is reserved for rows where
// nothing could be determined, which keeps "the package is not there" and
// "nobody knows" apart in the output.
//
// # Concurrency
//
// Two fixed pools of Options.Workers goroutines carry a batch: resolver
// workers walk packages through the pipeline while probe workers execute
// the network checks, so candidate probes for one package overlap with work
// on other packages. In-flight probe calls never exceed Options.Workers.
// Outcomes fold in candidate priority order, not arrival order, so records
// are deterministic regardless of scheduling.
//
// [ecosystem.Ecosystem]: github.com/matzehuels/hound/pkg/ecosystem.Ecosystem
// [identity.Identity]: github.com/matzehuels/hound/pkg/identity.Identity
package resolve
