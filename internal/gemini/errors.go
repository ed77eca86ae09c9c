package gemini

import "errors"

// Failure classes of the generative boundary. Callers branch on these:
// authorization failures are surfaced directly and never retried,
// rate limits are retried with backoff, malformed responses fail the call.
var (
	ErrUnauthorized = errors.New("gemini: unauthorized")
	ErrRateLimited  = errors.New("gemini: rate limited")
	ErrMalformed    = errors.New("gemini: malformed response")
)

// IsRetryable reports whether a failed call may be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
