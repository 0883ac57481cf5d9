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

import "strings"

// SensorKind tags a reading with its origin and is what routes it to a gauge.
// Routing by tag instead of sniffing the normalized name keeps an unrelated
// identifier that happens to contain "TEMP" or "FAN" out of the wrong series.
type SensorKind int

const (
	// PSUGPU is a power supply on the GPU tray power distribution board
	PSUGPU SensorKind = iota
	// PSUCPU is a power supply on the CPU tray motherboard
	PSUCPU
	// FanSensor is a fan entry from the thermal resource
	FanSensor
	// TempSensor is a temperature entry from the thermal resource
	TempSensor
)

func (k SensorKind) String() string {
	switch k {
	case PSUGPU:
		return "gpu_psu"
	case PSUCPU:
		return "cpu_psu"
	case FanSensor:
		return "fan"
	case TempSensor:
		return "temperature"
	}
	return "unknown"
}

const (
	gpuPSUMarker = "power_PWR_PDB_PSU"
	cpuPSUMarker = "power_PWR_MB_PSU"
	gpuPSUName   = "GPU_TRAY_PSU"
	cpuPSUName   = "CPU_TRAY_PSU"
)

// ParsePSUName rewrites a PSU member id to its tray qualified display name.
// Unrecognized ids pass through unchanged, and canonical names are left
// alone, so the function is idempotent.
func ParsePSUName(memberID string, kind SensorKind) string {
	switch kind {
	case PSUGPU:
		return strings.Replace(memberID, gpuPSUMarker, gpuPSUName, 1)
	case PSUCPU:
		name := strings.Replace(memberID, cpuPSUMarker, cpuPSUName, 1)
		// some firmware revisions emit power_CPU_TRAY_PSUx directly instead
		// of the power_PWR_MB_PSUx convention, strip the stray prefix here
		if strings.HasPrefix(name, "power_"+cpuPSUName) {
			name = strings.TrimPrefix(name, "power_")
		}
		return name
	}
	return memberID
}

// ParseFanName strips the SPD_ speed sensor prefix and rewrites the
// front/rear suffix to a readable form.
func ParseFanName(memberID string) string {
	name := strings.TrimPrefix(memberID, "SPD_")
	if strings.HasSuffix(name, "_F") {
		return strings.TrimSuffix(name, "_F") + " Front"
	}
	if strings.HasSuffix(name, "_R") {
		return strings.TrimSuffix(name, "_R") + " Rear"
	}
	return name
}

// ParseTempName rewrites PSU temperature sensor ids to their tray qualified
// names. Everything else, ambient sensors included, passes through.
func ParseTempName(memberID string) string {
	if strings.Contains(memberID, "TEMP_PDB_PSU") {
		return strings.Replace(memberID, "TEMP_PDB_PSU", "TEMP_GPU_TRAY_PSU", 1)
	}
	if strings.Contains(memberID, "TEMP_MB_PSU") {
		return strings.Replace(memberID, "TEMP_MB_PSU", "TEMP_CPU_TRAY_PSU", 1)
	}
	return memberID
}
