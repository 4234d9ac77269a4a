// Package httputil provides HTTP infrastructure for the artifact-server
// client.
//
// # Overview
//
// Two concerns live here:
//
//   - [NewClient]: shared *http.Client construction with timeouts and TLS
//     options (custom CA bundles, optional insecure mode)
//   - [Retry]: automatic retry with exponential backoff for transient
//     failures
//
// # Retry
//
// [Retry] only retries errors wrapped in [RetryableError]. The caller
// decides what is transient; typically connection failures, timeouts and
// 5xx responses qualify, while 4xx responses do not:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return doRequest()
//	})
//
// The delay doubles after each failed attempt, and cancellation of the
// context aborts the wait between attempts.
//
// # Configuration
//
// Defaults are suitable for most use cases:
//
//   - Per-request timeout: 10 seconds
//   - Max retries: 3
//   - Base backoff: 1 second
package httputil
