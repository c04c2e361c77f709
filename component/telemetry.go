// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package component // import "github.com/signalpipe/signalpipe/component"

import (
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// TelemetrySettings provides components with APIs to report their own
// telemetry. A handle is passed to every component at creation; components
// never reach for ambient globals.
type TelemetrySettings struct {
	// Logger that the component should use for structured logging.
	Logger *zap.Logger

	// MeterProvider that the component should use to report self metrics.
	MeterProvider metric.MeterProvider
}
