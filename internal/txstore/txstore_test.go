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

package txstore

import (
	"context"
	"testing"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) (context.Context, Store) {
	ctx := context.Background()
	p, done, err := persistence.NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	t.Cleanup(done)
	return ctx, NewStore(p)
}

func pendingTX(hash string, kind htapi.Kind, subject string, created htapi.Timestamp) *htapi.TransactionRecord {
	return &htapi.TransactionRecord{
		TransactionHash: hash,
		Kind:            kind,
		SubjectID:       subject,
		BatchID:         "BATCH-0001",
		Initiator:       "user-1",
		ContractAddress: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
		GasLimit:        3000000,
		GasPrice:        decimal.NewFromInt(1000000000),
		Payload:         datatypes.JSON(`{"recordHash":"aa"}`),
		Created:         created,
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx, s := newTestStore(t)
	tx := pendingTX("0xabc", htapi.KindCollection, "BATCH-0001", 0)
	require.NoError(t, s.Insert(ctx, tx))
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, htapi.StatusPending, tx.Status)

	got, err := s.GetByHash(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Nil(t, got.BlockNumber)
	assert.False(t, got.Fee.Valid)
	assert.True(t, decimal.NewFromInt(1000000000).Equal(got.GasPrice))

	got, err = s.GetByHash(ctx, "0xdef")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = RequireByHash(ctx, s, "0xdef")
	assert.Regexp(t, "HT010500", err)

	// hash is unique
	assert.Error(t, s.Insert(ctx, pendingTX("0xabc", htapi.KindCollection, "BATCH-0001", 0)))
}

func TestStatusTransitions(t *testing.T) {
	ctx, s := newTestStore(t)
	require.NoError(t, s.Insert(ctx, pendingTX("0x1", htapi.KindCollection, "BATCH-0001", 0)))
	require.NoError(t, s.Insert(ctx, pendingTX("0x2", htapi.KindProcessing, "PROC-1", 0)))

	now := htapi.TimestampNow()
	ok, err := s.MarkConfirmed(ctx, "0x1", 100, 21000, decimal.NewFromInt(21000000000000), now)
	require.NoError(t, err)
	assert.True(t, ok)

	// terminal states are final
	ok, err = s.MarkFailed(ctx, "0x1", 101, 21000)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.MarkConfirmed(ctx, "0x1", 102, 1, decimal.Zero, now)
	require.NoError(t, err)
	assert.False(t, ok)

	tx, err := s.GetByHash(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, htapi.StatusConfirmed, tx.Status)
	assert.Equal(t, int64(100), *tx.BlockNumber)
	assert.Equal(t, int64(21000), *tx.GasUsed)
	assert.Equal(t, now, *tx.Confirmed)
	assert.Equal(t, "21000000000000", tx.Fee.Decimal.String())

	ok, err = s.MarkFailed(ctx, "0x2", 101, 50000)
	require.NoError(t, err)
	assert.True(t, ok)
	tx, err = s.GetByHash(ctx, "0x2")
	require.NoError(t, err)
	assert.Equal(t, htapi.StatusFailed, tx.Status)
	assert.Nil(t, tx.Confirmed)
}

func TestListPendingSince(t *testing.T) {
	ctx, s := newTestStore(t)
	now := time.Now()
	old := htapi.TimestampFromTime(now.Add(-48 * time.Hour))
	recent := htapi.TimestampFromTime(now.Add(-1 * time.Hour))
	require.NoError(t, s.Insert(ctx, pendingTX("0xold", htapi.KindCollection, "B0", old)))
	require.NoError(t, s.Insert(ctx, pendingTX("0xnew", htapi.KindCollection, "B1", recent)))
	require.NoError(t, s.Insert(ctx, pendingTX("0xdone", htapi.KindCollection, "B2", recent)))
	_, err := s.MarkFailed(ctx, "0xdone", 1, 1)
	require.NoError(t, err)

	txs, err := s.ListPendingSince(ctx, htapi.TimestampFromTime(now.Add(-24*time.Hour)))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0xnew", txs[0].TransactionHash)
}

func TestDeleteFailedBefore(t *testing.T) {
	ctx, s := newTestStore(t)
	now := time.Now()
	old := htapi.TimestampFromTime(now.Add(-31 * 24 * time.Hour))
	require.NoError(t, s.Insert(ctx, pendingTX("0xa", htapi.KindCollection, "B0", old)))
	require.NoError(t, s.Insert(ctx, pendingTX("0xb", htapi.KindCollection, "B1", old)))
	require.NoError(t, s.Insert(ctx, pendingTX("0xc", htapi.KindCollection, "B2", htapi.TimestampFromTime(now))))
	for _, h := range []string{"0xa", "0xc"} {
		_, err := s.MarkFailed(ctx, h, 1, 1)
		require.NoError(t, err)
	}

	deleted, err := s.DeleteFailedBefore(ctx, htapi.TimestampFromTime(now.Add(-30*24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	for hash, exists := range map[string]bool{"0xa": false, "0xb": true, "0xc": true} {
		tx, err := s.GetByHash(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, exists, tx != nil, hash)
	}
}

func TestListFilters(t *testing.T) {
	ctx, s := newTestStore(t)
	require.NoError(t, s.Insert(ctx, pendingTX("0x1", htapi.KindCollection, "BATCH-0001", 1000)))
	require.NoError(t, s.Insert(ctx, pendingTX("0x2", htapi.KindProcessing, "PROC-1", 2000)))
	require.NoError(t, s.Insert(ctx, pendingTX("0x3", htapi.KindProcessing, "PROC-2", 3000)))
	_, err := s.MarkFailed(ctx, "0x3", 1, 1)
	require.NoError(t, err)

	txs, err := s.List(ctx, &htapi.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "0x3", txs[0].TransactionHash)

	txs, err = s.List(ctx, &htapi.TransactionFilter{Kind: htapi.KindProcessing, Status: htapi.StatusPending})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0x2", txs[0].TransactionHash)

	txs, err = s.List(ctx, &htapi.TransactionFilter{SubjectID: "BATCH-0001", BatchID: "BATCH-0001", Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestStats(t *testing.T) {
	ctx, s := newTestStore(t)
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.True(t, stats.SuccessRate.IsZero())

	for _, h := range []string{"0x1", "0x2", "0x3", "0x4"} {
		require.NoError(t, s.Insert(ctx, pendingTX(h, htapi.KindCollection, h, 0)))
	}
	now := htapi.TimestampNow()
	_, err = s.MarkConfirmed(ctx, "0x1", 1, 21000, decimal.RequireFromString("1000000000000000"), now)
	require.NoError(t, err)
	_, err = s.MarkConfirmed(ctx, "0x2", 1, 21000, decimal.RequireFromString("3000000000000000"), now)
	require.NoError(t, err)
	_, err = s.MarkFailed(ctx, "0x3", 1, 1)
	require.NoError(t, err)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Confirmed)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, "50", stats.SuccessRate.String())
	assert.Equal(t, "0.004", stats.TotalFees.String())
	assert.Equal(t, "0.002", stats.AverageFee.String())
}
