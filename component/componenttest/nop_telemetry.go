// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package componenttest // import "github.com/signalpipe/signalpipe/component/componenttest"

import (
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
)

// NewNopTelemetrySettings returns TelemetrySettings that discard everything.
func NewNopTelemetrySettings() component.TelemetrySettings {
	return component.TelemetrySettings{
		Logger:        zap.NewNop(),
		MeterProvider: noop.NewMeterProvider(),
	}
}
