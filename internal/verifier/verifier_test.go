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

package verifier

import (
	"context"
	"testing"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/hasher"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/mocks/ledgermocks"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (context.Context, Verifier, *ledgermocks.Client, records.Store, *htapi.CollectionRecord) {
	ctx := context.Background()
	p, done, err := persistence.NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	t.Cleanup(done)

	recs := records.NewStore(p, nil)
	b := &htapi.CollectionRecord{
		BatchID:          "BATCH-0001",
		Species:          "Bacopa monnieri",
		Collector:        "collector-9",
		CollectionDate:   time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC),
		QuantityKg:       decimal.RequireFromString("7.25"),
		QualityGrade:     "A",
		HarvestingMethod: "WILD",
	}
	require.NoError(t, recs.CreateBatch(ctx, b))

	lc := ledgermocks.NewClient(t)
	return ctx, NewVerifier(lc, recs), lc, recs, b
}

func loadedRegistry(t *testing.T) *ledger.Registry {
	reg, err := ledger.LoadRegistry(context.Background(), nil, []htconf.ContractConfig{
		{Name: ledger.ContractHerbTraceMain, Address: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"},
	})
	require.NoError(t, err)
	return reg
}

func expectConnected(t *testing.T, lc *ledgermocks.Client) {
	c, _ := loadedRegistry(t).Get(ledger.ContractHerbTraceMain)
	lc.On("IsConnected", mock.Anything).Return(true)
	lc.On("Contract", mock.Anything, ledger.ContractHerbTraceMain).Return(c, nil)
}

func TestVerifyMatch(t *testing.T) {
	ctx, v, lc, _, b := newTestVerifier(t)
	expectConnected(t, lc)
	localHash, err := hasher.Hash(ctx, b)
	require.NoError(t, err)
	lc.On("CallRead", mock.Anything, ledger.ContractHerbTraceMain, "getBatch", "BATCH-0001").Return(map[string]interface{}{
		"batchId":  "BATCH-0001",
		"dataHash": localHash,
		"species":  "Bacopa monnieri",
		"quantity": "7250",
	}, nil)

	res, err := v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, localHash, res.LocalHash)
	assert.Equal(t, localHash, res.LedgerHash)
	assert.Equal(t, "7250", res.LedgerData["quantity"])
}

func TestVerifyMismatch(t *testing.T) {
	ctx, v, lc, _, b := newTestVerifier(t)
	expectConnected(t, lc)
	lc.On("CallRead", mock.Anything, ledger.ContractHerbTraceMain, "getBatch", "BATCH-0001").Return(map[string]interface{}{
		"batchId":  "BATCH-0001",
		"dataHash": "0000000000000000000000000000000000000000000000000000000000000000",
	}, nil)

	res, err := v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	require.NoError(t, err)
	assert.False(t, res.Verified)
	localHash, _ := hasher.Hash(ctx, b)
	assert.Equal(t, localHash, res.LocalHash)
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", res.LedgerHash)
}

func TestVerifyNotAnchored(t *testing.T) {
	ctx, v, lc, _, _ := newTestVerifier(t)
	expectConnected(t, lc)
	lc.On("CallRead", mock.Anything, ledger.ContractHerbTraceMain, "getBatch", "BATCH-0001").Return(map[string]interface{}{
		"batchId":  "",
		"dataHash": "",
	}, nil).Once()

	_, err := v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	assert.Regexp(t, "HT010502", err)
	assert.True(t, IsNotAnchored(err))

	lc.On("CallRead", mock.Anything, ledger.ContractHerbTraceMain, "getBatch", "BATCH-0001").Return(nil,
		&ledger.Error{Kind: ledger.ErrorKindNotFound, Reason: ledger.ErrorReasonNotFound}).Once()
	_, err = v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	assert.Regexp(t, "HT010502", err)
	assert.True(t, IsNotAnchored(err))
}

func TestVerifyLedgerUnavailable(t *testing.T) {
	ctx, v, lc, _, _ := newTestVerifier(t)
	lc.On("IsConnected", mock.Anything).Return(false).Once()
	_, err := v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	assert.Regexp(t, "HT010200", err)
	assert.True(t, ledger.IsTransient(err))
	assert.False(t, IsNotAnchored(err))

	lc.On("IsConnected", mock.Anything).Return(true)
	lc.On("Contract", mock.Anything, ledger.ContractHerbTraceMain).
		Return(nil, ledger.NewUnavailableError(ctx, msgs.MsgLedgerContractNotLoaded, ledger.ContractHerbTraceMain)).Once()
	_, err = v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	assert.Regexp(t, "HT010202", err)

	c, _ := loadedRegistry(t).Get(ledger.ContractHerbTraceMain)
	lc.On("Contract", mock.Anything, ledger.ContractHerbTraceMain).Return(c, nil)
	lc.On("CallRead", mock.Anything, ledger.ContractHerbTraceMain, "getBatch", "BATCH-0001").
		Return(nil, ledger.NewUnavailableError(ctx, msgs.MsgLedgerUnavailable, "pop"))
	_, err = v.Verify(ctx, htapi.KindCollection, "BATCH-0001")
	assert.Regexp(t, "HT010200", err)
}

func TestVerifyUnsupported(t *testing.T) {
	ctx, v, _, _, _ := newTestVerifier(t)

	_, err := v.Verify(ctx, htapi.KindProcessing, "PROC-1")
	assert.Regexp(t, "HT010504", err)

	_, err = v.Verify(ctx, htapi.KindQualityTest, "QT-1")
	assert.Regexp(t, "HT010504", err)

	_, err = v.Verify(ctx, htapi.KindTransfer, "T-1")
	assert.Regexp(t, "HT010302", err)

	_, err = v.Verify(ctx, htapi.KindCollection, "MISSING")
	assert.Regexp(t, "HT010300", err)
}
