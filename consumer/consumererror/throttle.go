// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package consumererror // import "github.com/signalpipe/signalpipe/consumer/consumererror"

import "time"

// Throttle is a retryable error carrying the minimum delay the destination
// asked for before the next attempt.
type Throttle struct {
	err   error
	delay time.Duration
}

// NewThrottleRetry wraps a delivery error with a retry delay suggested by the
// destination (e.g. from a Retry-After header).
func NewThrottleRetry(err error, delay time.Duration) error {
	return Throttle{err: err, delay: delay}
}

func (t Throttle) Error() string {
	return "Throttle (" + t.delay.String() + "): " + t.err.Error()
}

// Unwrap returns the wrapped error for use by errors.Is and errors.As.
func (t Throttle) Unwrap() error {
	return t.err
}

// RetryDelay returns the requested minimum delay before the next attempt.
func (t Throttle) RetryDelay() time.Duration {
	return t.delay
}
