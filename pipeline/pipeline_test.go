// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpipe/signalpipe/pdata"
)

func TestIDUnmarshalText(t *testing.T) {
	var id ID
	require.NoError(t, id.UnmarshalText([]byte("traces")))
	assert.Equal(t, NewID(pdata.SignalTraces), id)

	require.NoError(t, id.UnmarshalText([]byte("metrics/host")))
	assert.Equal(t, NewIDWithName(pdata.SignalMetrics, "host"), id)
	assert.Equal(t, "metrics/host", id.String())

	assert.Error(t, id.UnmarshalText([]byte("profiles")))
	assert.Error(t, id.UnmarshalText([]byte("traces/")))
	assert.Error(t, id.UnmarshalText([]byte("/name")))
}
