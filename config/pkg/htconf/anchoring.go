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

type RetryConfig struct {
	InitialDelay *string  `json:"initialDelay"`
	MaxDelay     *string  `json:"maxDelay"`
	Factor       *float64 `json:"factor"`
}

type RetryConfigWithMax struct {
	RetryConfig `json:",inline"`
	// number of retries after the initial attempt
	MaxRetries *int `json:"maxRetries"`
}

var RetryDefaults = &RetryConfigWithMax{
	RetryConfig: RetryConfig{
		InitialDelay: confutil.P("60s"),
		MaxDelay:     confutil.P("240s"),
		Factor:       confutil.P(2.0),
	},
	MaxRetries: confutil.P(3),
}

type SchedulerConfig struct {
	// delay between a record being created and the first anchoring attempt
	TriggerDelay *string            `json:"triggerDelay"`
	Workers      *int               `json:"workers"`
	QueueLength  *int               `json:"queueLength"`
	Retry        RetryConfigWithMax `json:"retry"`
	Sweep        SweepConfig        `json:"sweep"`
}

type CronjobConfig struct {
	Enabled  *bool   `json:"enabled"`
	Interval *string `json:"interval"`
	Timeout  *string `json:"timeout"`
}

// SweepConfig controls the periodic pass that queues records still waiting for a
// ledger reference, whether or not a created event was seen for them
type SweepConfig struct {
	CronjobConfig `json:",inline"`
	Lookback      *string `json:"lookback"`
	BatchSize     *int    `json:"batchSize"`
}

var SweepDefaults = &SweepConfig{
	CronjobConfig: CronjobConfig{
		Enabled:  confutil.P(true),
		Interval: confutil.P("1m"),
		Timeout:  confutil.P("5m"),
	},
	Lookback:  confutil.P("24h"),
	BatchSize: confutil.P(100),
}

var SchedulerDefaults = &SchedulerConfig{
	TriggerDelay: confutil.P("5s"),
	Workers:      confutil.P(4),
	QueueLength:  confutil.P(1000),
	Retry:        *RetryDefaults,
	Sweep:        *SweepDefaults,
}

type ReconcileConfig struct {
	CronjobConfig `json:",inline"`
	// only PENDING records created within this window are polled
	Lookback    *string `json:"lookback"`
	Parallelism *int    `json:"parallelism"`
}

var ReconcileDefaults = &ReconcileConfig{
	CronjobConfig: CronjobConfig{
		Enabled:  confutil.P(true),
		Interval: confutil.P("1m"),
		Timeout:  confutil.P("10m"),
	},
	Lookback:    confutil.P("24h"),
	Parallelism: confutil.P(4),
}

type CleanupConfig struct {
	CronjobConfig `json:",inline"`
	// FAILED records older than this are deleted
	Retention *string `json:"retention"`
}

var CleanupDefaults = &CleanupConfig{
	CronjobConfig: CronjobConfig{
		Enabled:  confutil.P(true),
		Interval: confutil.P("24h"),
		Timeout:  confutil.P("5m"),
	},
	Retention: confutil.P("720h"),
}
