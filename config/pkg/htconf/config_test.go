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

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndParseYAMLFileOK(t *testing.T) {
	dir := t.TempDir()
	filePath := path.Join(dir, "anchord.yaml")
	err := os.WriteFile(filePath, []byte(`
log:
  level: debug
db:
  type: sqlite
  sqlite:
    dsn: ":memory:"
    autoMigrate: true
ledger:
  http:
    url: http://localhost:8545
  gasLimit: 5000000
  contracts:
  - name: HerbTraceMain
    address: "0x1111111111111111111111111111111111111111"
scheduler:
  triggerDelay: 1s
  retry:
    maxRetries: 5
  sweep:
    interval: 15s
    batchSize: 20
reconcile:
  lookback: 12h
  interval: 30s
statusServer:
  port: 9000
  metrics: false
  cors:
    enabled: true
    allowedOrigins: ["https://dashboard.example"]
debugServer:
  enabled: true
  port: 6060
`), 0644)
	require.NoError(t, err)

	var conf AnchorConfig
	err = ReadAndParseYAMLFile(context.Background(), filePath, &conf)
	require.NoError(t, err)
	assert.Equal(t, "debug", *conf.Log.Level)
	assert.Equal(t, "sqlite", conf.DB.Type)
	assert.True(t, *conf.DB.SQLite.AutoMigrate)
	assert.Equal(t, "http://localhost:8545", conf.Ledger.HTTP.URL)
	assert.Equal(t, int64(5000000), *conf.Ledger.GasLimit)
	assert.Len(t, conf.Ledger.Contracts, 1)
	assert.Equal(t, "HerbTraceMain", conf.Ledger.Contracts[0].Name)
	assert.Equal(t, "1s", *conf.Scheduler.TriggerDelay)
	assert.Equal(t, 5, *conf.Scheduler.Retry.MaxRetries)
	assert.Equal(t, "15s", *conf.Scheduler.Sweep.Interval)
	assert.Equal(t, 20, *conf.Scheduler.Sweep.BatchSize)
	assert.Nil(t, conf.Scheduler.Sweep.Lookback)
	assert.Equal(t, "12h", *conf.Reconcile.Lookback)
	assert.Equal(t, "30s", *conf.Reconcile.Interval)
	assert.Nil(t, conf.Cleanup.Retention)
	assert.Equal(t, 9000, *conf.StatusServer.Port)
	assert.False(t, *conf.StatusServer.Metrics)
	assert.True(t, conf.StatusServer.CORS.Enabled)
	assert.Equal(t, []string{"https://dashboard.example"}, conf.StatusServer.CORS.AllowedOrigins)
	assert.True(t, *conf.DebugServer.Enabled)
	assert.Equal(t, 6060, *conf.DebugServer.Port)
}

func TestReadAndParseYAMLFileMissing(t *testing.T) {
	var conf AnchorConfig
	err := ReadAndParseYAMLFile(context.Background(), path.Join(t.TempDir(), "missing.yaml"), &conf)
	assert.Regexp(t, "HT010000", err)
}

func TestReadAndParseYAMLFileBadYAML(t *testing.T) {
	filePath := path.Join(t.TempDir(), "bad.yaml")
	err := os.WriteFile(filePath, []byte(`{ !!! not yaml`), 0644)
	require.NoError(t, err)

	var conf AnchorConfig
	err = ReadAndParseYAMLFile(context.Background(), filePath, &conf)
	assert.Regexp(t, "HT010002", err)
}

func TestReadAndParseYAMLFileUnreadable(t *testing.T) {
	var conf AnchorConfig
	err := ReadAndParseYAMLFile(context.Background(), t.TempDir(), &conf)
	assert.Regexp(t, "HT010001", err)
}
