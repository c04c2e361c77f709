// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpexporter delivers batches to an HTTP endpoint as JSON
// envelopes. Destination responses drive error classification: 429 and 503
// become throttle errors honoring Retry-After, other 4xx responses are
// permanent, 5xx responses are retryable.
package httpexporter // import "github.com/signalpipe/signalpipe/exporter/httpexporter"

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/signalpipe/signalpipe/configopaque"
	"github.com/signalpipe/signalpipe/consumer/consumererror"
	"github.com/signalpipe/signalpipe/pdata"
)

type batchEnvelope struct {
	Signal    string         `json:"signal"`
	Sequence  uint64         `json:"sequence"`
	CreatedAt time.Time      `json:"created_at"`
	Items     []itemEnvelope `json:"items"`
}

type itemEnvelope struct {
	Attributes map[string]any `json:"attributes,omitempty"`
	Payload    []byte         `json:"payload,omitempty"`
}

type httpExporter struct {
	client   *http.Client
	endpoint string
	headers  map[string]configopaque.String
}

func newHTTPExporter(cfg *Config) *httpExporter {
	return &httpExporter{
		// Per-attempt deadlines come from the request context.
		client:   &http.Client{},
		endpoint: cfg.Endpoint,
		headers:  cfg.Headers,
	}
}

func (h *httpExporter) push(ctx context.Context, batch pdata.Batch) error {
	body, err := json.Marshal(toEnvelope(batch))
	if err != nil {
		return consumererror.NewPermanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return consumererror.NewPermanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		req.Header.Set(k, string(v))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return statusToError(resp)
}

func (h *httpExporter) shutdown(context.Context) error {
	h.client.CloseIdleConnections()
	return nil
}

func toEnvelope(batch pdata.Batch) batchEnvelope {
	env := batchEnvelope{
		Signal:    batch.Signal().String(),
		Sequence:  batch.Sequence(),
		CreatedAt: batch.CreatedAt(),
		Items:     make([]itemEnvelope, 0, batch.ItemCount()),
	}
	for i := 0; i < batch.ItemCount(); i++ {
		it := batch.ItemAt(i)
		var attrs map[string]any
		if it.Attributes().Len() > 0 {
			attrs = make(map[string]any, it.Attributes().Len())
			it.Attributes().Range(func(k string, v pdata.Value) bool {
				attrs[k] = valueToAny(v)
				return true
			})
		}
		env.Items = append(env.Items, itemEnvelope{
			Attributes: attrs,
			Payload:    it.Payload(),
		})
	}
	return env
}

func valueToAny(v pdata.Value) any {
	switch v.Type() {
	case pdata.ValueTypeStr:
		return v.Str()
	case pdata.ValueTypeInt:
		return v.Int()
	case pdata.ValueTypeDouble:
		return v.Double()
	case pdata.ValueTypeBool:
		return v.Bool()
	case pdata.ValueTypeBytes:
		return v.Bytes()
	}
	return v.AsString()
}

func statusToError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	err := fmt.Errorf("endpoint returned HTTP status %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return consumererror.NewThrottleRetry(err, retryAfter(resp))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return consumererror.NewPermanent(err)
	}
	return err
}

// retryAfter parses the Retry-After response header, in seconds. Zero when
// absent or malformed, letting the retry sender's own backoff apply.
func retryAfter(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
