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

type DBConfig struct {
	Type     string         `json:"type"`
	Postgres PostgresConfig `json:"postgres"`
	SQLite   SQLiteConfig   `json:"sqlite"`
}

type PostgresConfig struct {
	SQLDBConfig `json:",inline"`
}

type SQLiteConfig struct {
	SQLDBConfig `json:",inline"`
}

type SQLDBConfig struct {
	DSN             string  `json:"dsn"`
	MaxOpenConns    *int    `json:"maxOpenConns"`
	MaxIdleConns    *int    `json:"maxIdleConns"`
	ConnMaxIdleTime *string `json:"connMaxIdleTime"`
	ConnMaxLifetime *string `json:"connMaxLifetime"`
	AutoMigrate     *bool   `json:"autoMigrate"`
	MigrationsDir   string  `json:"migrationsDir"`
	DebugQueries    bool    `json:"debugQueries"`
}

var SQLiteDefaults = &SQLDBConfig{
	MaxOpenConns:    confutil.P(1),
	MaxIdleConns:    confutil.P(1),
	ConnMaxIdleTime: confutil.P("0"),
	ConnMaxLifetime: confutil.P("0"),
	AutoMigrate:     confutil.P(false),
}

var PostgresDefaults = &SQLDBConfig{
	MaxOpenConns:    confutil.P(50),
	MaxIdleConns:    confutil.P(10),
	ConnMaxIdleTime: confutil.P("1m"),
	ConnMaxLifetime: confutil.P("0"),
	AutoMigrate:     confutil.P(false),
}
