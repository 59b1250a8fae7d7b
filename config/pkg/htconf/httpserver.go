// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
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

package htconf

import "github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"

type HTTPServerConfig struct {
	CORS            CORSConfig `json:"cors"`
	Address         *string    `json:"address"`
	Port            *int       `json:"port"`
	ReadTimeout     *string    `json:"readTimeout"`
	WriteTimeout    *string    `json:"writeTimeout"`
	ShutdownTimeout *string    `json:"shutdownTimeout"`
	MaxRequestBody  *string    `json:"maxRequestBody"`
}

var HTTPDefaults = &HTTPServerConfig{
	Address:         confutil.P("127.0.0.1"),
	ReadTimeout:     confutil.P("30s"),
	WriteTimeout:    confutil.P("30s"),
	ShutdownTimeout: confutil.P("10s"),
	MaxRequestBody:  confutil.P("1Mb"),
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	Debug            bool     `json:"debug"`
	AllowCredentials *bool    `json:"allowCredentials"`
	AllowedHeaders   []string `json:"allowedHeaders"`
	AllowedMethods   []string `json:"allowedMethods"`
	AllowedOrigins   []string `json:"allowedOrigins"`
	MaxAge           *string  `json:"maxAge"`
}

type StatusServerConfig struct {
	Enabled          *bool `json:"enabled"`
	HTTPServerConfig `json:",inline"`
	// serve prometheus metrics on /metrics of the status server
	Metrics *bool `json:"metrics"`
}

var StatusServerDefaults = &StatusServerConfig{
	Enabled: confutil.P(true),
	HTTPServerConfig: HTTPServerConfig{
		Port: confutil.P(8686),
	},
	Metrics: confutil.P(true),
}

type DebugServerConfig struct {
	Enabled          *bool `json:"enabled"`
	HTTPServerConfig `json:",inline"`
}

var DebugServerDefaults = &DebugServerConfig{
	Enabled: confutil.P(false),
}
