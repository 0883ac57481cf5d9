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

package oem

// /redfish/v1/Chassis/X/Sensors/

// SensorCollection is the top level json object for the chassis sensor inventory
type SensorCollection struct {
	Name         string   `json:"Name"`
	MembersCount int      `json:"Members@odata.count"`
	Members      []Member `json:"Members"`
	Url          string   `json:"@odata.id"`
}

// Member holds the url to a single sensor resource
type Member struct {
	URL string `json:"@odata.id"`
}

// Sensor is the json object for one power sensor readout. Reading is left
// untyped since BMC firmwares disagree on number vs string encoding.
type Sensor struct {
	ID           string      `json:"Id"`
	Name         string      `json:"Name"`
	Reading      interface{} `json:"Reading"`
	ReadingUnits string      `json:"ReadingUnits"`
	Url          string      `json:"@odata.id"`
}
