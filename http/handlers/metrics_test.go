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
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/traymetrics/traymetrics/config"
	"github.com/traymetrics/traymetrics/exporter"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	config.NewConfig(&config.Config{
		BMCScheme:  "http",
		BMCTimeout: 5 * time.Second,
		ChassisID:  "Miramar_Sensor",
	})
	os.Exit(m.Run())
}

// mock BMC with a single GPU tray PSU. failThermal flips the thermal resource
// into a 404 to force a cycle-level failure.
func newTestBMC(failThermal *atomic.Bool) *httptest.Server {
	const base = "/redfish/v1/Chassis/Miramar_Sensor"

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case base + "/Sensors":
			w.Write([]byte(`{"Members": [{"@odata.id": "` + base + `/Sensors/power_PWR_PDB_PSU1"}]}`))
		case base + "/Thermal":
			if failThermal.Load() {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(`{"Fans": [], "Temperatures": []}`))
		case base + "/Sensors/power_PWR_PDB_PSU1":
			w.Write([]byte(`{"Id": "power_PWR_PDB_PSU1", "Reading": 1500}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func Test_MetricsHandler(t *testing.T) {
	assert := assert.New(t)

	var failThermal atomic.Bool
	bmc := newTestBMC(&failThermal)
	defer bmc.Close()

	exp, err := exporter.NewExporter(context.Background(), bmc.URL)
	assert.Nil(err)

	handler := MetricsHandler(&MetricsConfig{Exporter: exp})

	t.Run("successful cycle serves gauges", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(http.StatusOK, rec.Code)
		assert.Contains(rec.Body.String(), `psu_power_watts{psu_name="GPU_TRAY_PSU1"} 1500`)
		assert.Contains(rec.Body.String(), "up 1")
	})

	t.Run("failed cycle returns 500", func(t *testing.T) {
		failThermal.Store(true)
		defer failThermal.Store(false)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(http.StatusInternalServerError, rec.Code)
		assert.Contains(rec.Body.String(), "scrape cycle failed")
	})
}
