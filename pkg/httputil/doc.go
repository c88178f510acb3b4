// Package httputil provides the HTTP plumbing shared by the asset fetcher
// and the API server client.
//
// # Overview
//
//   - [Client]: a GET client with a user agent, a body size cap and
//     observability hooks on every request
//   - [Retry]: automatic retry with exponential backoff that honors
//     Retry-After
//
// # Retry
//
// [Retry] only retries errors wrapped in [RetryableError]. [Client.Get]
// wraps network failures, 5xx responses and 429 responses that way and
// records the server's Retry-After, so a fetch is simply:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    body, mime, err = client.Get(ctx, url)
//	    return err
//	})
//
// # Configuration
//
// Defaults are suitable for most pages:
//
//   - Timeout per request: 20 seconds
//   - Body cap: 25 MiB
//   - Max attempts: 3 (fetch.HTTPOptions.Attempts)
//   - Base backoff: 500ms (fetch.HTTPOptions.Backoff)
//   - Longest wait between attempts: 30 seconds
package httputil
