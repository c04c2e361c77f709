// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package configopaque

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringMasked(t *testing.T) {
	token := String("super-secret")
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", token))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", token))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", token))

	text, err := token.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "[REDACTED]", string(text))

	// The raw value stays reachable for the component that needs it.
	assert.Equal(t, "super-secret", string(token))
}
