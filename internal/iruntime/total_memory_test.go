// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package iruntime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalMemory(t *testing.T) {
	total, err := TotalMemory()
	require.NoError(t, err)
	assert.Positive(t, total)
}
