// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package consumererror provides the error taxonomy used on the data path:
// permanent errors that must not be retried and throttle errors carrying a
// server-suggested retry delay.
package consumererror // import "github.com/signalpipe/signalpipe/consumer/consumererror"

import "errors"

type permanent struct {
	err error
}

// NewPermanent wraps an error to indicate that it is a permanent error, i.e.
// an error that will always be returned if its source receives the same data.
func NewPermanent(err error) error {
	return permanent{err: err}
}

func (p permanent) Error() string {
	return "Permanent error: " + p.err.Error()
}

// Unwrap returns the wrapped error for use by errors.Is and errors.As.
func (p permanent) Unwrap() error {
	return p.err
}

// IsPermanent checks if an error was wrapped with the NewPermanent function,
// anywhere in its chain.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return errors.As(err, &permanent{})
}
