// Package retry runs operations with exponential backoff.
//
// Do retries until the operation succeeds, the attempts are used up, the context ends,
// or the operation returns an error the Config does not consider retryable. By default
// only transient errors (see errors.IsTransient) are retried, and errors wrapped with
// NonRetryable never are:
//
//	payload, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() ([]byte, error) {
//	    return client.Request(ctx, subject, body, timeout)
//	})
//
// Presets:
//
//   - DefaultConfig: 3 attempts, 100ms to 5s
//   - Quick: 10 attempts, 50ms to 1s, for startup connections
package retry
