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

package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"

	"github.com/traymetrics/traymetrics/common"
	"github.com/traymetrics/traymetrics/config"
	"github.com/traymetrics/traymetrics/middleware/logging"
	"github.com/traymetrics/traymetrics/oem"
	"github.com/traymetrics/traymetrics/pool"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// OK is a float representation of a fully successful scrape cycle
	OK = 1.0
	// BAD is a float representation of a scrape cycle with failed sensors
	BAD = 0.0

	// cap on parallel PSU fetches so a large tray does not overwhelm the BMC
	maxConcurrentFetches = 25
)

var (
	// ErrThermalFetch marks a failed thermal resource fetch. Fans and
	// temperatures only exist inside that one resource, so the whole cycle
	// is aborted and nothing is written.
	ErrThermalFetch = errors.New("thermal resource fetch failed")

	log *zap.Logger
)

// Exporter polls one BMC for PSU power, fan speed and temperature readings
// and republishes them as prometheus gauges. It is constructed once at
// startup, PSU endpoint discovery is a startup precondition.
type Exporter struct {
	host          string
	chassisID     string
	endpoints     Endpoints
	client        *retryablehttp.Client
	registry      *prometheus.Registry
	sensorMetrics *map[string]*metrics
}

// NewExporter discovers the PSU sensor endpoints on the target BMC and
// returns an Exporter ready to run collection cycles. A discovery failure is
// returned as an error wrapping ErrDiscovery and should end the process.
func NewExporter(ctx context.Context, target string) (*Exporter, error) {
	var fqdn *url.URL

	log = zap.L()

	// Check that the target passed in has http:// or https:// prefixed
	fqdn, err := url.ParseRequestURI(target)
	if err != nil || fqdn.Host == "" {
		fqdn = &url.URL{
			Scheme: config.GetConfig().BMCScheme,
			Host:   target,
		}
	}

	exp := &Exporter{
		host:          fqdn.String(),
		chassisID:     config.GetConfig().ChassisID,
		client:        NewHTTPClient(),
		registry:      prometheus.NewRegistry(),
		sensorMetrics: NewSensorMetrics(),
	}

	endpoints, err := DiscoverEndpoints(exp.sensorsURL(), exp.client)
	if err != nil {
		log.Error("error discovering PSU endpoints from "+exp.host, zap.Error(err))
		return nil, err
	}
	exp.endpoints = endpoints

	log.Info("discovered PSU endpoints",
		zap.Int("gpu_tray", len(endpoints.GPU)),
		zap.Int("cpu_tray", len(endpoints.CPU)))

	for _, m := range *exp.sensorMetrics {
		for _, n := range *m {
			exp.registry.MustRegister(n)
		}
	}

	return exp, nil
}

// Registry returns the registry holding the sensor gauges, for exposition by
// the metrics endpoint.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Endpoints returns the PSU endpoints discovered at startup.
func (e *Exporter) Endpoints() Endpoints {
	return e.endpoints
}

func (e *Exporter) sensorsURL() string {
	return e.host + "/redfish/v1/Chassis/" + e.chassisID + "/Sensors"
}

func (e *Exporter) thermalURL() string {
	return e.host + "/redfish/v1/Chassis/" + e.chassisID + "/Thermal"
}

// Scrape runs one collection cycle: one thermal fetch, a concurrent fan-out
// over every PSU endpoint, then normalization and gauge writes on the calling
// goroutine. A failed PSU fetch is logged and skipped without touching its
// gauge, a failed thermal fetch aborts the cycle before any write.
func (e *Exporter) Scrape(ctx context.Context) error {
	state := OK

	// the thermal resource carries every fan and temperature entry inline,
	// so it is a single sequential call
	body, err := common.Fetch(e.thermalURL(), e.client)()
	if err != nil {
		return fmt.Errorf("%w: error fetching %s - %v", ErrThermalFetch, e.thermalURL(), err)
	}

	var thermal oem.Thermal
	if err := json.Unmarshal(body, &thermal); err != nil {
		return fmt.Errorf("%w: error unmarshalling thermal resource - %v", ErrThermalFetch, err)
	}

	// fan out over the PSU endpoints at a bounded concurrency
	endpoints := e.endpoints.All()
	tasks := make([]*pool.Task, 0, len(endpoints))
	for _, ep := range endpoints {
		tasks = append(tasks, pool.NewTask(common.Fetch(e.host+ep.URL, e.client)))
	}

	concurrency := len(tasks)
	if concurrency > maxConcurrentFetches {
		concurrency = maxConcurrentFetches
	}
	pool.NewPool(tasks, concurrency).Run()

	for i, task := range tasks {
		if !e.exportPSUReading(ctx, endpoints[i], task) {
			state = BAD
		}
	}

	for _, fan := range thermal.Fans {
		e.exportFanReading(fan)
	}

	for _, temp := range thermal.Temperatures {
		e.exportTempReading(temp)
	}

	up := (*e.sensorMetrics)["up"]
	(*up)["up"].WithLabelValues().Set(state)

	return nil
}

// exportPSUReading processes one completed PSU fetch task. It reports false
// when the fetch or parse failed, a sensor with no reading is not a failure.
func (e *Exporter) exportPSUReading(ctx context.Context, ep SensorEndpoint, task *pool.Task) bool {
	if task.Err != nil {
		log.Error("error fetching PSU sensor",
			zap.String("endpoint", ep.URL),
			zap.String("kind", ep.Kind.String()),
			zap.Error(task.Err),
			zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
		return false
	}

	var sensor oem.Sensor
	if err := json.Unmarshal(task.Body, &sensor); err != nil {
		log.Error("error unmarshalling PSU sensor",
			zap.String("endpoint", ep.URL),
			zap.Error(err),
			zap.Any("trace_id", ctx.Value(logging.TraceIDKey("traceID"))))
		return false
	}

	reading, ok := readingValue(sensor.Reading)
	if !ok {
		// the sensor exists but reports no reading this cycle
		return true
	}

	memberID := sensor.ID
	if memberID == "" {
		memberID = path.Base(ep.URL)
	}

	name := ParsePSUName(memberID, ep.Kind)
	pow := (*e.sensorMetrics)["powerMetrics"]
	(*pow)["psuPower"].WithLabelValues(name).Set(reading)
	return true
}

func (e *Exporter) exportFanReading(fan oem.Fan) {
	reading, ok := readingValue(fan.Reading)
	if !ok {
		return
	}

	name := ParseFanName(fan.MemberID)
	fm := (*e.sensorMetrics)["fanMetrics"]
	(*fm)["fanSpeed"].WithLabelValues(name).Set(reading)
}

func (e *Exporter) exportTempReading(temp oem.Temperature) {
	reading, ok := readingValue(temp.ReadingCelsius)
	if !ok {
		return
	}

	name := ParseTempName(temp.MemberID)
	tm := (*e.sensorMetrics)["temperatureMetrics"]
	(*tm)["sensorTemperature"].WithLabelValues(name).Set(reading)
}

// readingValue coerces a raw reading into a float. BMC firmwares disagree on
// number vs string encoding, and an absent reading unmarshals to nil.
func readingValue(v interface{}) (float64, bool) {
	switch r := v.(type) {
	case float64:
		return r, true
	case string:
		f, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
