/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package handlers

import (
	"fmt"
	"net/http"

	"github.com/traymetrics/traymetrics/exporter"
	"github.com/traymetrics/traymetrics/middleware/logging"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig holds the exporter behind the metrics endpoint
type MetricsConfig struct {
	Exporter *exporter.Exporter
}

// MetricsHandler handles GET /metrics requests. Every request triggers one
// collection cycle before the gauges are served, so each scrape is a fresh
// snapshot. A cycle-level failure is reported as a 500 and the gauges keep
// their values from the previous cycle.
func MetricsHandler(cfg *MetricsConfig) http.HandlerFunc {
	promHandler := promhttp.HandlerFor(cfg.Exporter.Registry(), promhttp.HandlerOpts{})

	return func(w http.ResponseWriter, r *http.Request) {
		log := zap.L()
		ctx := r.Context()

		if err := cfg.Exporter.Scrape(ctx); err != nil {
			log.Error("scrape cycle failed", zap.Error(err),
				zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
			http.Error(w, fmt.Sprintf("scrape cycle failed - %s", err.Error()), http.StatusInternalServerError)
			return
		}

		promHandler.ServeHTTP(w, r)
	}
}
