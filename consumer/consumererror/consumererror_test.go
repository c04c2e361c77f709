// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package consumererror

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsPermanent(t *testing.T) {
	var err error = NewPermanent(errors.New("testError"))
	assert.True(t, IsPermanent(err))

	err = fmt.Errorf("%w", err)
	assert.True(t, IsPermanent(err))

	assert.False(t, IsPermanent(errors.New("testError")))
	assert.False(t, IsPermanent(nil))
}

func TestThrottleRetry(t *testing.T) {
	base := errors.New("slow down")
	err := NewThrottleRetry(base, 3*time.Second)

	var throttle Throttle
	assert.True(t, errors.As(err, &throttle))
	assert.Equal(t, 3*time.Second, throttle.RetryDelay())
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(err))
}
