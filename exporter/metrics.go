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
	"github.com/prometheus/client_golang/prometheus"
)

type metrics map[string]*prometheus.GaugeVec

func newSensorMetric(metricName string, docString string, constLabels prometheus.Labels, labelNames []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        metricName,
			Help:        docString,
			ConstLabels: constLabels,
		},
		labelNames,
	)
}

// NewSensorMetrics builds the gauge set the collector writes into. Gauges are
// never Reset between cycles, a name missing from the current cycle keeps its
// last value.
func NewSensorMetrics() *map[string]*metrics {
	var (
		UpMetric = &metrics{
			"up": newSensorMetric("up", "was the last scrape of the BMC fully successful.", nil, []string{}),
		}

		PowerMetrics = &metrics{
			"psuPower": newSensorMetric("psu_power_watts", "Power consumption in watts by PSU", nil, []string{"psu_name"}),
		}

		FanMetrics = &metrics{
			"fanSpeed": newSensorMetric("fan_speed_rpm", "Speed of fans in RPM", nil, []string{"fan_name"}),
		}

		TemperatureMetrics = &metrics{
			"sensorTemperature": newSensorMetric("temperature_celsius", "Temperature in Celsius", nil, []string{"sensor_name"}),
		}

		Metrics = &map[string]*metrics{
			"up":                 UpMetric,
			"powerMetrics":       PowerMetrics,
			"fanMetrics":         FanMetrics,
			"temperatureMetrics": TemperatureMetrics,
		}
	)

	return Metrics
}
