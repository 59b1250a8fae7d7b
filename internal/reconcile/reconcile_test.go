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

package reconcile

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/metrics"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/txstore"
	"github.com/AakashChawla07/Herbtrace-Hack/mocks/ledgermocks"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence/mockpersistence"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testReconcile struct {
	ctx      context.Context
	r        *reconciler
	ledger   *ledgermocks.Client
	records  records.Store
	txStore  txstore.Store
	registry *prometheus.Registry
}

func newTestReconcile(t *testing.T) *testReconcile {
	ctx := context.Background()
	p, done, err := persistence.NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	t.Cleanup(done)

	m := metrics.NewMetrics(nil)
	tr := &testReconcile{
		ctx:      ctx,
		ledger:   ledgermocks.NewClient(t),
		records:  records.NewStore(p, nil),
		txStore:  txstore.NewStore(p),
		registry: m.Registry(),
	}
	tr.r = NewReconciler(&htconf.ReconcileConfig{Parallelism: confutil.P(2)}, tr.ledger, tr.txStore, tr.records, m).(*reconciler)
	tr.r.now = func() time.Time { return testNow }
	return tr
}

func (tr *testReconcile) createBatch(t *testing.T, batchID, ledgerRef string) {
	require.NoError(t, tr.records.CreateBatch(tr.ctx, &htapi.CollectionRecord{
		BatchID:          batchID,
		Species:          "Curcuma longa",
		Collector:        "collector-3",
		CollectionDate:   testNow.Add(-48 * time.Hour),
		QuantityKg:       decimal.RequireFromString("40"),
		QualityGrade:     "A",
		HarvestingMethod: "CULTIVATED",
	}))
	if ledgerRef != "" {
		require.NoError(t, tr.records.SetLedgerReference(tr.ctx, htapi.KindCollection, batchID, ledgerRef))
	}
}

func (tr *testReconcile) insertTx(t *testing.T, txHash, subjectID string, status htapi.TransactionStatus, age time.Duration) {
	require.NoError(t, tr.txStore.Insert(tr.ctx, &htapi.TransactionRecord{
		TransactionHash: txHash,
		Kind:            htapi.KindCollection,
		SubjectID:       subjectID,
		BatchID:         subjectID,
		Initiator:       "collector-3",
		ContractAddress: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
		GasLimit:        3000000,
		GasPrice:        decimal.NewFromInt(1000000000),
		Status:          status,
		Payload:         []byte(`{}`),
		Created:         htapi.TimestampFromTime(testNow.Add(-age)),
	}))
}

func (tr *testReconcile) ledgerState(t *testing.T, batchID string) *htapi.LedgerState {
	_, ls, err := tr.records.Get(tr.ctx, htapi.KindCollection, batchID)
	require.NoError(t, err)
	return ls
}

func (tr *testReconcile) tx(t *testing.T, txHash string) *htapi.TransactionRecord {
	tx, err := tr.txStore.GetByHash(tr.ctx, txHash)
	require.NoError(t, err)
	require.NotNil(t, tx)
	return tx
}

func (tr *testReconcile) counter(t *testing.T, name string) float64 {
	families, err := tr.registry.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() == name {
			for _, m := range f.GetMetric() {
				total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestReconcileCollectionConfirmed(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0001", "0xabc")
	tr.insertTx(t, "0xabc", "BATCH-0001", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").Return(&ledger.Receipt{
		TransactionHash: "0xabc",
		Success:         true,
		BlockNumber:     100,
		GasUsed:         21000,
	}, nil).Once()

	s, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Checked: 1, Confirmed: 1}, s)

	tx := tr.tx(t, "0xabc")
	assert.Equal(t, htapi.StatusConfirmed, tx.Status)
	require.NotNil(t, tx.BlockNumber)
	assert.Equal(t, int64(100), *tx.BlockNumber)
	require.NotNil(t, tx.GasUsed)
	assert.Equal(t, int64(21000), *tx.GasUsed)
	assert.True(t, tx.Fee.Valid)
	assert.Equal(t, "21000000000000", tx.Fee.Decimal.String())
	require.NotNil(t, tx.Confirmed)
	assert.Equal(t, testNow, tx.Confirmed.Time())

	ls := tr.ledgerState(t, "BATCH-0001")
	assert.Equal(t, "0xabc", ls.Reference)
	assert.True(t, ls.Verified)

	assert.Equal(t, float64(1), tr.counter(t, "herbtrace_reconcile_transitions_total"))
	assert.Equal(t, float64(1), tr.counter(t, "herbtrace_reconcile_pending_transactions"))

	// terminal, so never polled again
	s, err = tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, s)
}

func TestReconcileNotMinedIsIdempotent(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0002", "0xabc")
	tr.insertTx(t, "0xabc", "BATCH-0002", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").Return(nil, nil).Twice()

	for i := 0; i < 2; i++ {
		s, err := tr.r.ReconcileAll(tr.ctx)
		require.NoError(t, err)
		assert.Equal(t, &Summary{Checked: 1, Pending: 1}, s)
	}

	tx := tr.tx(t, "0xabc")
	assert.Equal(t, htapi.StatusPending, tx.Status)
	assert.Nil(t, tx.BlockNumber)
	assert.False(t, tx.Fee.Valid)
	assert.Nil(t, tx.Confirmed)
	assert.False(t, tr.ledgerState(t, "BATCH-0002").Verified)
}

func TestReconcileFailed(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0003", "0xabc")
	tr.insertTx(t, "0xabc", "BATCH-0003", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").Return(&ledger.Receipt{
		TransactionHash: "0xabc",
		BlockNumber:     101,
		GasUsed:         30000,
		RevertReason:    "batch exists",
	}, nil).Once()

	s, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Checked: 1, Failed: 1}, s)

	tx := tr.tx(t, "0xabc")
	assert.Equal(t, htapi.StatusFailed, tx.Status)
	assert.Equal(t, int64(101), *tx.BlockNumber)
	assert.Nil(t, tx.Confirmed)
	assert.False(t, tr.ledgerState(t, "BATCH-0003").Verified)
}

func TestReconcileIsolatesFailures(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0004", "0x1")
	tr.createBatch(t, "BATCH-0005", "0x2")
	tr.insertTx(t, "0x1", "BATCH-0004", htapi.StatusPending, time.Hour)
	tr.insertTx(t, "0x2", "BATCH-0005", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0x1").
		Return(nil, ledger.NewUnavailableError(tr.ctx, msgs.MsgLedgerUnavailable, "pop"))
	tr.ledger.On("Receipt", mock.Anything, "0x2").
		Return(&ledger.Receipt{TransactionHash: "0x2", Success: true, BlockNumber: 7, GasUsed: 50000}, nil)

	s, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Checked: 2, Confirmed: 1, Errors: 1}, s)
	assert.Equal(t, htapi.StatusPending, tr.tx(t, "0x1").Status)
	assert.Equal(t, htapi.StatusConfirmed, tr.tx(t, "0x2").Status)
}

func TestReconcileLookback(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0006", "0xabc")
	tr.insertTx(t, "0xabc", "BATCH-0006", htapi.StatusPending, 25*time.Hour)

	s, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, s)
	assert.Equal(t, htapi.StatusPending, tr.tx(t, "0xabc").Status)
}

func TestReconcileFillsMissingReference(t *testing.T) {
	tr := newTestReconcile(t)
	// the ledger reference write-back failed after submission
	tr.createBatch(t, "BATCH-0007", "")
	tr.insertTx(t, "0xabc", "BATCH-0007", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").
		Return(&ledger.Receipt{TransactionHash: "0xabc", Success: true, BlockNumber: 100, GasUsed: 21000}, nil)

	_, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, &htapi.LedgerState{Reference: "0xabc", Verified: true}, tr.ledgerState(t, "BATCH-0007"))
}

func TestReconcileDifferentReference(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0008", "0xother")
	tr.insertTx(t, "0xabc", "BATCH-0008", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").
		Return(&ledger.Receipt{TransactionHash: "0xabc", Success: true, BlockNumber: 100, GasUsed: 21000}, nil)

	s, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Confirmed)
	assert.Equal(t, &htapi.LedgerState{Reference: "0xother", Verified: false}, tr.ledgerState(t, "BATCH-0008"))
}

func TestReconcileUsesReportedFee(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0009", "0xabc")
	tr.insertTx(t, "0xabc", "BATCH-0009", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").Return(&ledger.Receipt{
		TransactionHash: "0xabc",
		Success:         true,
		BlockNumber:     100,
		GasUsed:         21000,
		FeePaid:         big.NewInt(42000000000000),
	}, nil)

	require.NoError(t, tr.r.Run(tr.ctx))
	assert.Equal(t, "42000000000000", tr.tx(t, "0xabc").Fee.Decimal.String())
}

func TestReconcileVerifyWriteFails(t *testing.T) {
	tr := newTestReconcile(t)
	mp, err := mockpersistence.NewSQLMockProvider()
	require.NoError(t, err)
	tr.r.records = records.NewStore(mp.P, nil)
	mp.Mock.ExpectExec("UPDATE").WillReturnError(fmt.Errorf("pop"))

	tr.insertTx(t, "0xabc", "BATCH-0010", htapi.StatusPending, time.Minute)
	tr.ledger.On("Receipt", mock.Anything, "0xabc").
		Return(&ledger.Receipt{TransactionHash: "0xabc", Success: true, BlockNumber: 100, GasUsed: 21000}, nil)

	s, err := tr.r.ReconcileAll(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Errors)
	// left PENDING, for the next run to retry
	assert.Equal(t, htapi.StatusPending, tr.tx(t, "0xabc").Status)
}

func TestReconcileListFails(t *testing.T) {
	tr := newTestReconcile(t)
	mp, err := mockpersistence.NewSQLMockProvider()
	require.NoError(t, err)
	tr.r.txStore = txstore.NewStore(mp.P)
	mp.Mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("pop"))

	err = tr.r.Run(tr.ctx)
	assert.Regexp(t, "pop", err)
}

func TestTransactionStatus(t *testing.T) {
	tr := newTestReconcile(t)
	tr.createBatch(t, "BATCH-0011", "0xabc")
	tr.insertTx(t, "0xabc", "BATCH-0011", htapi.StatusPending, time.Minute)

	_, err := tr.r.TransactionStatus(tr.ctx, "0xmissing")
	assert.Regexp(t, "HT010500", err)

	tr.ledger.On("Receipt", mock.Anything, "0xabc").Return(nil, nil).Once()
	info, err := tr.r.TransactionStatus(tr.ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, htapi.StatusPending, info.LedgerStatus)
	assert.Equal(t, "BATCH-0011", info.SubjectID)
	assert.Nil(t, info.Confirmations)

	tr.ledger.On("Receipt", mock.Anything, "0xabc").
		Return(&ledger.Receipt{TransactionHash: "0xabc", Success: true, BlockNumber: 100, GasUsed: 21000}, nil).Once()
	tr.ledger.On("BlockNumber", mock.Anything).Return(int64(105), nil).Once()
	info, err = tr.r.TransactionStatus(tr.ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, htapi.StatusConfirmed, info.LedgerStatus)
	assert.Equal(t, int64(5), *info.Confirmations)
	// the local record is not changed by a status query
	assert.Equal(t, htapi.StatusPending, info.Status)

	tr.ledger.On("Receipt", mock.Anything, "0xabc").
		Return(nil, ledger.NewUnavailableError(tr.ctx, msgs.MsgLedgerUnavailable, "pop")).Once()
	_, err = tr.r.TransactionStatus(tr.ctx, "0xabc")
	assert.Regexp(t, "HT010200", err)
}

func TestCleanup(t *testing.T) {
	tr := newTestReconcile(t)
	m := metrics.NewMetrics(nil)
	c := NewCleanup(&htconf.CleanupConfig{}, tr.txStore, m)
	c.now = func() time.Time { return testNow }
	assert.Equal(t, CleanupJobName, c.Name())

	tr.insertTx(t, "0x1", "BATCH-1", htapi.StatusFailed, 31*24*time.Hour)
	tr.insertTx(t, "0x2", "BATCH-2", htapi.StatusFailed, 24*time.Hour)
	tr.insertTx(t, "0x3", "BATCH-3", htapi.StatusPending, 40*24*time.Hour)
	tr.insertTx(t, "0x4", "BATCH-4", htapi.StatusConfirmed, 40*24*time.Hour)

	deleted, err := c.DeleteExpired(tr.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := tr.txStore.List(tr.ctx, &htapi.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)

	require.NoError(t, c.Run(tr.ctx))
}

func TestCleanupFails(t *testing.T) {
	mp, err := mockpersistence.NewSQLMockProvider()
	require.NoError(t, err)
	mp.Mock.ExpectExec("DELETE").WillReturnError(fmt.Errorf("pop"))
	c := NewCleanup(&htconf.CleanupConfig{}, txstore.NewStore(mp.P), metrics.NewMetrics(nil))
	err = c.Run(context.Background())
	assert.Regexp(t, "pop", err)
}
