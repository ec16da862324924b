// Package backoff implements the Execution stage's retry-delay
// calculation and partial-failure triage, ported from
// original_source/utils/execution_utils.py's exponential_backoff and
// handle_partial_failure.
package backoff

import (
	"math"
	"time"

	"github.com/shun1423/sia/internal/model"
)

const (
	// DefaultBase is the base delay before the first retry.
	DefaultBase = 1 * time.Second
	// DefaultMax caps the computed delay regardless of attempt count.
	DefaultMax = 60 * time.Second
	// DefaultMultiplier is the per-attempt growth factor.
	DefaultMultiplier = 2.0
	// DefaultMaxRetries is how many retries handle_partial_failure
	// allows before giving up on a result.
	DefaultMaxRetries = 3
)

// Delay computes the exponential backoff delay for the given attempt
// (0-indexed), matching exponential_backoff's
// min(base * multiplier**attempt, max).
func Delay(attempt int, base, max time.Duration, multiplier float64) time.Duration {
	d := float64(base) * math.Pow(multiplier, float64(attempt))
	if d > float64(max) {
		return max
	}
	return time.Duration(d)
}

// DefaultDelay computes Delay using spec's default base/max/multiplier.
func DefaultDelay(attempt int) time.Duration {
	return Delay(attempt, DefaultBase, DefaultMax, DefaultMultiplier)
}

// Triage is handle_partial_failure's classification of one execution
// pass's results into buckets the caller can act on.
type Triage struct {
	Successful []model.ActionResult
	Failed     []model.ActionResult
	Retried    []model.ActionResult
}

// retryable is the default retryable flag for an ActionResult whose
// Outcome doesn't carry its own retry eligibility, matching the
// Python's result.get("retryable", True) default-to-retryable stance.
func retryable(r model.ActionResult) bool {
	return r.Outcome != model.OutcomeBlocked && r.Outcome != model.OutcomeSkippedIdempotent
}

// HandlePartialFailure sorts results into successful, failed, and
// retried buckets. A failed result is retried (its Attempts
// incremented) when it is retryable and has not yet exhausted
// maxRetries; otherwise it is recorded as permanently failed.
func HandlePartialFailure(results []model.ActionResult, maxRetries int) Triage {
	var t Triage

	for _, r := range results {
		switch r.Outcome {
		case model.OutcomeSuccess:
			t.Successful = append(t.Successful, r)
		case model.OutcomeFailed:
			if retryable(r) && r.Attempts < maxRetries {
				r.Attempts++
				t.Retried = append(t.Retried, r)
			} else {
				t.Failed = append(t.Failed, r)
			}
		default:
			t.Successful = append(t.Successful, r)
		}
	}

	return t
}
