// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
