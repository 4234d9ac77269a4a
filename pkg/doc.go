// Package pkg provides the core libraries for Hound package auditing.
//
// # Overview
//
// Hound verifies in bulk whether packages listed in a CSV actually exist in
// an artifact repository server (an Artifactory-compatible deployment),
// reporting per package where it was found and at which version. The pkg
// directory is organized into three main areas:
//
//  1. [resolve] - Batch orchestration (candidate resolution, probe fan-out, folding)
//  2. [artifactory] - The server client (REST probing per ecosystem, caching)
//  3. [report] - CSV input/output and run summaries
//
// # Architecture
//
// The typical data flow through Hound:
//
//	Input CSV (path, type)
//	         ↓
//	    [report] package (parse requests)
//	         ↓
//	    [ecosystem] + [identity] packages (classify + extract name/version)
//	         ↓
//	    [resolve] package (candidate repositories + concurrent probes)
//	         ↓
//	    [artifactory] package (read-only existence checks)
//	         ↓
//	    Output CSV (one record per request)
//
// # Quick Start
//
// Audit a batch of packages against a server:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/hound/pkg/artifactory"
//	    "github.com/matzehuels/hound/pkg/report"
//	    "github.com/matzehuels/hound/pkg/resolve"
//	)
//
//	// 1. Connect
//	client, _ := artifactory.New(artifactory.Config{
//	    BaseURL: "https://repo.example.com/artifactory",
//	    APIKey:  apiKey,
//	})
//
//	// 2. Read requests
//	reqs, _ := report.ImportRequests("packages.csv", logger)
//
//	// 3. Resolve the batch
//	engine := resolve.New(client, resolve.Options{Workers: 10})
//	records := engine.Run(context.Background(), reqs)
//
//	// 4. Write results
//	_ = report.ExportRecords(records, "results.csv")
//
// # Main Packages
//
// [resolve] - The batch engine. Maps each package type to an ordered list of
// candidate repositories, probes all of them concurrently through a shared
// worker pool, and folds the per-repository outcomes into one record per
// request. Row-scoped failures never abort the batch.
//
// [artifactory] - HTTP client for the server's REST API: system ping,
// repository listing and per-ecosystem existence probes (Maven artifact
// paths, npm and Docker registry APIs, the PEP 503 simple index, storage
// folder listings). Probe results are cached through a pluggable [cache]
// backend.
//
// [report] - CSV parsing of input requests (header auto-detection, malformed
// row skipping), streaming CSV output of result records, and run summaries.
//
// [ecosystem] - The supported package type tags and their parsing rules.
//
// [identity] - Extraction of normalized package names and versions from raw
// repository storage paths, per ecosystem.
//
// [cache] - Probe-result caching with file, LRU memory, Redis and null
// backends.
//
// [errors] - Coded errors shared across the module, with user-facing
// messages per code.
//
// [httputil] - Shared HTTP client construction (timeouts, TLS options,
// retries).
//
// [observability] - Batch lifecycle hooks for metrics collection.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/resolve/...      # Specific package
//
// [resolve]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/resolve
// [artifactory]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/artifactory
// [report]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/report
// [ecosystem]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/ecosystem
// [identity]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/identity
// [cache]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/hound/pkg/buildinfo
package pkg
