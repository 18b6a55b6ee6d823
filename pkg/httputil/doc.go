// Package httputil provides the outbound HTTP plumbing used for bookmark
// previews.
//
// # Overview
//
//   - [Client]: bounded GET requests that report to the observability hooks
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] only repeats errors wrapped in [RetryableError]. [Client.Get] wraps
// network failures, 5xx responses and 429 rate limits that way, so callers
// can simply write:
//
//	var page *httputil.Response
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    var err error
//	    page, err = client.Get(ctx, url)
//	    return err
//	})
//
// Other 4xx responses fail immediately with a [StatusError].
//
// # Defaults
//
//   - Timeout: 8 seconds per request
//   - Body limit: 1 MiB
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
