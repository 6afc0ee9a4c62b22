// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package negotiation

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/negotiate"
)

const (
	meterName = "rivaas.dev/negotiate/middleware/negotiation"

	// MetricDecisions counts negotiation decisions by domain and outcome.
	MetricDecisions = "negotiation_decisions_total"

	outcomeMatched       = "matched"
	outcomeNotAcceptable = "not_acceptable"
)

// recorder wraps the decision counter. A recorder without counter is a no-op.
type recorder struct {
	decisions metric.Int64Counter
}

func newRecorder(mp metric.MeterProvider, logger *slog.Logger) *recorder {
	counter, err := mp.Meter(meterName).Int64Counter(
		MetricDecisions,
		metric.WithDescription("Total number of content negotiation decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		if logger != nil {
			logger.Error("failed to create negotiation decision counter", "error", err)
		}
		return &recorder{}
	}

	return &recorder{decisions: counter}
}

func (r *recorder) record(ctx context.Context, d negotiate.Domain, outcome string) {
	if r.decisions == nil {
		return
	}
	r.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("domain", d.String()),
		attribute.String("outcome", outcome),
	))
}
