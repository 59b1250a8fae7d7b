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

package anchord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *htconf.AnchorConfig {
	return &htconf.AnchorConfig{
		Log: htconf.LogConfig{Level: confutil.P("debug")},
		DB: htconf.DBConfig{
			Type: "sqlite",
			SQLite: htconf.SQLiteConfig{
				SQLDBConfig: htconf.SQLDBConfig{
					DSN:           ":memory:",
					AutoMigrate:   confutil.P(true),
					MigrationsDir: "../../db/migrations/sqlite",
				},
			},
		},
		StatusServer: htconf.StatusServerConfig{
			HTTPServerConfig: htconf.HTTPServerConfig{
				Address: confutil.P("127.0.0.1"),
				Port:    confutil.P(0),
			},
		},
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(context.Background(), testConfig())
	require.NoError(t, m.Init())
	require.NoError(t, m.Start())
	defer m.Stop()

	assert.NotNil(t, m.Persistence())
	assert.NotNil(t, m.Records())
	assert.NotNil(t, m.TxStore())
	assert.NotNil(t, m.Scheduler())
	assert.NotNil(t, m.Reconciler())
	assert.NotNil(t, m.Cleanup())
	assert.NotNil(t, m.Verifier())

	res, err := http.Get(fmt.Sprintf("http://%s/api/v1/ledger", m.StatusServer().Addr()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Regexp(t, `"connected":false`, string(body))

	// without a ledger node, verification reports the ledger unavailable
	ctx := context.Background()
	require.NoError(t, m.Records().CreateBatch(ctx, &htapi.CollectionRecord{
		BatchID:          "BATCH-0001",
		Species:          "Withania somnifera",
		Collector:        "collector-7",
		CollectionDate:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		QuantityKg:       decimal.RequireFromString("25.5"),
		QualityGrade:     "A",
		HarvestingMethod: "hand",
	}))
	_, err = m.Verifier().Verify(ctx, htapi.KindCollection, "BATCH-0001")
	assert.Regexp(t, "HT010200", err)

	summary, err := m.Reconciler().ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Checked)
}

func TestManagerSweepQueuesUnannouncedRecords(t *testing.T) {
	conf := testConfig()
	conf.Scheduler.TriggerDelay = confutil.P("0s")
	conf.Scheduler.Retry.MaxRetries = confutil.P(0)
	conf.Scheduler.Sweep.Interval = confutil.P("10ms")
	conf.Reconcile.Enabled = confutil.P(false)
	conf.Cleanup.Enabled = confutil.P(false)
	m := NewManager(context.Background(), conf)
	require.NoError(t, m.Init())
	require.NoError(t, m.Start())
	defer m.Stop()

	// written behind the back of the record store, so no created event is published
	err := m.Persistence().DB().Exec(`INSERT INTO batches (batch_id, species, collector, collection_date, quantity_kg, quality_grade, harvesting_method, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"BATCH-0001", "Withania somnifera", "collector-7", htapi.TimestampNow(), "25.5", "A", "hand", htapi.TimestampNow()).Error
	require.NoError(t, err)

	metricsURL := fmt.Sprintf("http://%s/metrics", m.StatusServer().Addr())
	assert.Eventually(t, func() bool {
		res, err := http.Get(metricsURL)
		if err != nil {
			return false
		}
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		return regexp.MustCompile(`herbtrace_anchor_attempts_total\{kind="COLLECTION",outcome="[a-z]+"\} 1`).Match(body)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestManagerOneShotWithoutStart(t *testing.T) {
	m := NewManager(context.Background(), testConfig())
	require.NoError(t, m.Init())
	defer m.Stop()

	deleted, err := m.Cleanup().DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Nil(t, m.StatusServer())
}

func TestManagerBadDB(t *testing.T) {
	conf := testConfig()
	conf.DB.Type = "wrong"
	m := NewManager(context.Background(), conf)
	defer m.Stop()
	assert.Regexp(t, "HT010700.*HT010100", m.Init())
}

func TestManagerBadLedgerURL(t *testing.T) {
	conf := testConfig()
	conf.Ledger.HTTP.URL = "ftp://node.example"
	m := NewManager(context.Background(), conf)
	defer m.Stop()
	assert.Regexp(t, "HT010209", m.Init())
}

func TestManagerBadSigningKey(t *testing.T) {
	conf := testConfig()
	conf.Ledger.PrivateKey = "not hex"
	m := NewManager(context.Background(), conf)
	defer m.Stop()
	assert.Regexp(t, "HT010701.*HT010004", m.Init())
}

func TestManagerBadStatusServer(t *testing.T) {
	conf := testConfig()
	conf.StatusServer.Address = confutil.P(":::::badness")
	m := NewManager(context.Background(), conf)
	require.NoError(t, m.Init())
	defer m.Stop()
	assert.Regexp(t, "HT010703.*HT010600", m.Start())
}

func TestManagerDebugServer(t *testing.T) {
	conf := testConfig()
	conf.DebugServer.Enabled = confutil.P(true)
	conf.DebugServer.Address = confutil.P("127.0.0.1")
	m := NewManager(context.Background(), conf)
	require.NoError(t, m.Init())
	defer m.Stop()

	res, err := http.Get(fmt.Sprintf("http://%s/debug/loglevel", m.DebugServer().Addr()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestManagerDebugServerFail(t *testing.T) {
	conf := testConfig()
	conf.DebugServer.Enabled = confutil.P(true)
	conf.DebugServer.Address = confutil.P(":::::badness")
	m := NewManager(context.Background(), conf)
	defer m.Stop()
	assert.Regexp(t, "HT010706.*HT010600", m.Init())
}
