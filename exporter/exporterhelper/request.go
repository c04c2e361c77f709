// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package exporterhelper // import "github.com/signalpipe/signalpipe/exporter/exporterhelper"

import (
	"context"

	"github.com/signalpipe/signalpipe/pdata"
)

// PushFunc performs the actual delivery of one batch to the destination.
// Implementations classify failures: wrap in consumererror.NewPermanent for
// errors that retrying cannot fix, consumererror.NewThrottleRetry when the
// destination asked to slow down, and return plain errors for transient
// failures.
type PushFunc func(ctx context.Context, batch pdata.Batch) error

// sender is one link of the delivery chain. The chain for a helper-built
// exporter is retrySender -> timeoutSender -> PushFunc, fed either directly
// from Consume or from the sending queue consumers.
type sender interface {
	send(ctx context.Context, batch pdata.Batch) error
}
