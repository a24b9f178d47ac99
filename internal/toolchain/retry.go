// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RetryWithBackoff retries op up to maxAttempts times with exponential backoff.
// It checks ctx between attempts and stops sleeping as soon as ctx is done.
//
// op returns (shouldRetry bool, err error). If shouldRetry is false, err is
// returned immediately (nil on success, non-nil on permanent failure).
// On retry exhaustion, the last error is returned.
func RetryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
			timer := time.NewTimer(baseBackoff * time.Duration(1<<(attempt-1)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-timer.C:
			}
		}

		retry, err := op(attempt)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// transientMarkers are fragments of NuGet and resolver output that indicate
// a network failure rather than a broken project.
var transientMarkers = []string{
	"NU1301", // unable to load the service index
	"Unable to load the service index",
	"The SSL connection could not be established",
	"Response status code does not indicate success: 5",
	"Temporary failure resolving",
	"Temporary failure in name resolution",
	"Could not resolve host",
	"Name or service not known",
	"No such host is known",
	"connection timed out",
	"connection refused",
	"An error occurred while sending the request",
}

// IsTransientError reports whether a restore failure may succeed on retry.
// Context cancellation and deadline errors are never transient.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	text := err.Error()
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		text += "\n" + cmdErr.Output
	}
	for _, marker := range transientMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
