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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/traymetrics/traymetrics/common"
	"github.com/traymetrics/traymetrics/oem"

	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrDiscovery marks a failed PSU endpoint enumeration. Discovery runs
	// once at startup, the caller is expected to treat this as fatal.
	ErrDiscovery = errors.New("PSU endpoint discovery failed")
)

const (
	// member id substrings that assign a PSU sensor to a tray group
	gpuEndpointMarker = "power_PWR_PDB_"
	cpuEndpointMarker = "PWR_MB_PSU"
)

// SensorEndpoint is one PSU sensor url tagged with its tray group at
// discovery time.
type SensorEndpoint struct {
	URL  string
	Kind SensorKind
}

// Endpoints holds the PSU endpoints discovered at startup, partitioned by
// tray. The value is immutable for the process lifetime.
type Endpoints struct {
	GPU []SensorEndpoint
	CPU []SensorEndpoint
}

func (e Endpoints) Len() int {
	return len(e.GPU) + len(e.CPU)
}

// All returns both groups as one task list.
func (e Endpoints) All() []SensorEndpoint {
	all := make([]SensorEndpoint, 0, e.Len())
	all = append(all, e.GPU...)
	all = append(all, e.CPU...)
	return all
}

// DiscoverEndpoints enumerates the chassis sensor inventory once and keeps
// the members that look like tray PSU power sensors. Members matching
// neither marker are dropped.
func DiscoverEndpoints(uri string, client *retryablehttp.Client) (Endpoints, error) {
	var endpoints Endpoints
	var sensors oem.SensorCollection

	body, err := common.Fetch(uri, client)()
	if err != nil {
		return endpoints, fmt.Errorf("%w: error fetching %s - %v", ErrDiscovery, uri, err)
	}

	err = json.Unmarshal(body, &sensors)
	if err != nil {
		return endpoints, fmt.Errorf("%w: error unmarshalling sensor collection - %v", ErrDiscovery, err)
	}

	if sensors.Members == nil {
		return endpoints, fmt.Errorf("%w: response from %s has no Members list", ErrDiscovery, uri)
	}

	for _, member := range sensors.Members {
		if strings.Contains(member.URL, gpuEndpointMarker) {
			endpoints.GPU = append(endpoints.GPU, SensorEndpoint{URL: member.URL, Kind: PSUGPU})
		} else if strings.Contains(member.URL, cpuEndpointMarker) {
			endpoints.CPU = append(endpoints.CPU, SensorEndpoint{URL: member.URL, Kind: PSUCPU})
		}
	}

	return endpoints, nil
}
