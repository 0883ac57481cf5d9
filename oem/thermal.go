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

// /redfish/v1/Chassis/X/Thermal/

// Thermal is the top level json object for the thermal resource. Absent
// Fans/Temperatures arrays unmarshal to nil, which is treated as empty.
type Thermal struct {
	ID           string        `json:"Id"`
	Name         string        `json:"Name"`
	Fans         []Fan         `json:"Fans"`
	Temperatures []Temperature `json:"Temperatures"`
	Url          string        `json:"@odata.id"`
}

// Fan is the json object for a fan module entry
type Fan struct {
	MemberID     string      `json:"MemberId"`
	Name         string      `json:"Name"`
	Reading      interface{} `json:"Reading"`
	ReadingUnits string      `json:"ReadingUnits"`
}

// Temperature is the json object for a temperature sensor entry
type Temperature struct {
	MemberID        string      `json:"MemberId"`
	Name            string      `json:"Name"`
	PhysicalContext string      `json:"PhysicalContext"`
	ReadingCelsius  interface{} `json:"ReadingCelsius"`
}
