package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Default retry settings.
const (
	defaultMaxAttempts = 3
	defaultBackoff     = time.Second
)

// Retrier executes a fallible operation up to a bounded number of attempts
// with a fixed sleep between them, returning the last observed error once
// attempts are exhausted. It is applied uniformly to reasoning calls,
// per-agent calls, and the simplification call.
//
// When a Classifier is set, errors it categorizes as permanent are not
// retried: another attempt cannot fix bad credentials or a rejected
// request. Unknown errors are treated as retryable.
type Retrier struct {
	maxAttempts int
	backoff     time.Duration
	classifier  *ErrorClassifier
	logger      *slog.Logger
}

// NewRetrier creates a Retrier; zero values select the defaults
// (3 attempts, 1 second backoff).
func NewRetrier(maxAttempts int, backoff time.Duration, classifier *ErrorClassifier, logger *slog.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		backoff:     backoff,
		classifier:  classifier,
		logger:      logger,
	}
}

// MaxAttempts returns the configured attempt bound.
func (r *Retrier) MaxAttempts() int { return r.maxAttempts }

// Do runs fn up to the attempt bound, sleeping the fixed backoff between
// attempts. Each failure is logged with the attempt number and operation
// name. Context cancellation aborts the wait and returns ctx.Err().
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		r.logger.Warn("operation failed",
			"op", op,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"error", err,
		)

		if attempt == r.maxAttempts {
			break
		}
		if r.classifier != nil {
			if cls := r.classifier.Classify(err); cls.Category == ErrorCategoryPermanent {
				r.logger.Warn("permanent error, not retrying", "op", op, "error", err)
				return err
			}
		}

		select {
		case <-time.After(r.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
