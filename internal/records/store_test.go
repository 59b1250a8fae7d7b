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

package records

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/events"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/hasher"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (context.Context, Store, *events.Listener) {
	ctx := context.Background()
	p, done, err := persistence.NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	t.Cleanup(done)

	bus := events.NewBus()
	l, err := bus.Subscribe(ctx, "test", 10)
	require.NoError(t, err)
	return ctx, NewStore(p, bus), l
}

func testBatch() *htapi.CollectionRecord {
	return &htapi.CollectionRecord{
		BatchID:        "BATCH-0001",
		Species:        "Withania somnifera",
		Collector:      "collector-7",
		CollectorUser:  "user-1",
		CollectionDate: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Location: &htapi.Location{
			Latitude:  decimal.RequireFromString("26.912434"),
			Longitude: decimal.RequireFromString("75.787271"),
		},
		QuantityKg:       decimal.RequireFromString("25.5"),
		QualityGrade:     "A",
		HarvestingMethod: "WILD",
	}
}

func TestBatchRoundTripKeepsHash(t *testing.T) {
	ctx, s, l := newTestStore(t)
	in := testBatch()
	require.NoError(t, s.CreateBatch(ctx, in))

	ev := <-l.Channel
	assert.Equal(t, htapi.KindCollection, ev.Kind)
	assert.Equal(t, "BATCH-0001", ev.SubjectID)

	rec, ls, err := s.Get(ctx, htapi.KindCollection, "BATCH-0001")
	require.NoError(t, err)
	assert.Equal(t, "", ls.Reference)
	assert.False(t, ls.Verified)
	assert.Equal(t, "user-1", rec.Initiator())

	h1, err := hasher.Hash(ctx, in)
	require.NoError(t, err)
	h2, err := hasher.Hash(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestProcessingAndQualityTest(t *testing.T) {
	ctx, s, l := newTestStore(t)
	require.NoError(t, s.CreateBatch(ctx, testBatch()))
	<-l.Channel

	proc := &htapi.ProcessingRecord{
		BatchID:         "BATCH-0001",
		EventType:       "DRYING",
		Processor:       "proc-co",
		EventDate:       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Facility:        "Unit 4",
		InputQuantityKg: decimal.RequireFromString("25.5"),
	}
	require.NoError(t, s.CreateProcessingEvent(ctx, proc))
	assert.NotEmpty(t, proc.ID)
	assert.Equal(t, proc.ID, (<-l.Channel).SubjectID)

	rec, _, err := s.Get(ctx, htapi.KindProcessing, proc.ID)
	require.NoError(t, err)
	assert.False(t, rec.(*htapi.ProcessingRecord).OutputQuantityKg.Valid)
	assert.Equal(t, "BATCH-0001", rec.Batch())

	qt := &htapi.QualityTestRecord{
		ID:          "QT-1",
		BatchID:     "BATCH-0001",
		TestType:    "PESTICIDE",
		TestDate:    time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		TestingLab:  "lab-1",
		PassStatus:  true,
		TestResults: json.RawMessage(`{"moisture":8.25}`),
	}
	require.NoError(t, s.CreateQualityTest(ctx, qt))
	rec, _, err = s.Get(ctx, htapi.KindQualityTest, "QT-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"moisture":8.25}`, string(rec.(*htapi.QualityTestRecord).TestResults))
	assert.Equal(t, htapi.SystemInitiator, rec.Initiator())

	qt2 := &htapi.QualityTestRecord{BatchID: "BATCH-0001", TestType: "ASH", TestingLab: "lab-1"}
	require.NoError(t, s.CreateQualityTest(ctx, qt2))
	rec, _, err = s.Get(ctx, htapi.KindQualityTest, qt2.ID)
	require.NoError(t, err)
	assert.Equal(t, "null", string(rec.(*htapi.QualityTestRecord).TestResults))
}

func TestCreateValidation(t *testing.T) {
	ctx, s, _ := newTestStore(t)

	b := testBatch()
	b.Species = ""
	assert.Regexp(t, "HT010304.*species", s.CreateBatch(ctx, b))

	b = testBatch()
	b.QuantityKg = decimal.Zero
	assert.Regexp(t, "HT010303.*quantityKg", s.CreateBatch(ctx, b))

	err := s.CreateProcessingEvent(ctx, &htapi.ProcessingRecord{BatchID: "B", EventType: "E", Processor: "P", Facility: "F"})
	assert.Regexp(t, "HT010303.*inputQuantityKg", err)

	err = s.CreateQualityTest(ctx, &htapi.QualityTestRecord{BatchID: "B", TestType: "T", TestingLab: "L", TestResults: json.RawMessage(`{!`)})
	assert.Regexp(t, "HT010303.*testResults", err)
}

func TestGetErrors(t *testing.T) {
	ctx, s, _ := newTestStore(t)
	_, _, err := s.Get(ctx, htapi.KindCollection, "missing")
	assert.Regexp(t, "HT010300", err)
	_, _, err = s.Get(ctx, htapi.KindProcessing, "missing")
	assert.Regexp(t, "HT010300", err)
	_, _, err = s.Get(ctx, htapi.KindQualityTest, "missing")
	assert.Regexp(t, "HT010300", err)
	_, _, err = s.Get(ctx, htapi.KindTransfer, "any")
	assert.Regexp(t, "HT010302", err)
}

func TestLedgerReferenceAndVerify(t *testing.T) {
	ctx, s, _ := newTestStore(t)
	require.NoError(t, s.CreateBatch(ctx, testBatch()))

	require.NoError(t, s.SetLedgerReference(ctx, htapi.KindCollection, "BATCH-0001", "0xabc"))
	assert.Regexp(t, "HT010300", s.SetLedgerReference(ctx, htapi.KindCollection, "missing", "0xabc"))

	// a different transaction does not verify the record
	ok, err := s.MarkVerified(ctx, htapi.KindCollection, "BATCH-0001", "0xdef")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.MarkVerified(ctx, htapi.KindCollection, "BATCH-0001", "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ls, err := s.Get(ctx, htapi.KindCollection, "BATCH-0001")
	require.NoError(t, err)
	assert.Equal(t, &htapi.LedgerState{Reference: "0xabc", Verified: true}, ls)
}

func TestMarkVerifiedFillsMissingReference(t *testing.T) {
	ctx, s, _ := newTestStore(t)
	require.NoError(t, s.CreateBatch(ctx, testBatch()))
	proc := &htapi.ProcessingRecord{
		BatchID: "BATCH-0001", EventType: "DRYING", Processor: "p", Facility: "f",
		InputQuantityKg: decimal.NewFromInt(1),
	}
	require.NoError(t, s.CreateProcessingEvent(ctx, proc))

	ok, err := s.MarkVerified(ctx, htapi.KindProcessing, proc.ID, "0x123")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ls, err := s.Get(ctx, htapi.KindProcessing, proc.ID)
	require.NoError(t, err)
	assert.Equal(t, "0x123", ls.Reference)
	assert.True(t, ls.Verified)

	_, err = s.MarkVerified(ctx, htapi.KindVerification, "x", "0x1")
	assert.Regexp(t, "HT010302", err)
}

func TestListUnanchored(t *testing.T) {
	ctx := context.Background()
	p, done, err := persistence.NewUnitTestPersistence(ctx)
	require.NoError(t, err)
	t.Cleanup(done)
	s := NewStore(p, nil)

	since := htapi.TimestampNow()
	for _, id := range []string{"BATCH-0001", "BATCH-0002", "BATCH-0003"} {
		b := testBatch()
		b.BatchID = id
		require.NoError(t, s.CreateBatch(ctx, b))
	}
	require.NoError(t, s.CreateQualityTest(ctx, &htapi.QualityTestRecord{
		ID:         "QT-0001",
		BatchID:    "BATCH-0001",
		TestType:   "HEAVY_METALS",
		TestingLab: "lab-1",
	}))
	require.NoError(t, s.SetLedgerReference(ctx, htapi.KindCollection, "BATCH-0002", "0xabc"))
	before := htapi.TimestampFromTime(time.Now().Add(time.Second))

	ids, err := s.ListUnanchored(ctx, htapi.KindCollection, since, before, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"BATCH-0001", "BATCH-0003"}, ids)

	// submitted, but the reference was never written back
	tx := &htapi.TransactionRecord{
		ID:              uuid.New(),
		TransactionHash: "0xdef",
		Kind:            htapi.KindCollection,
		SubjectID:       "BATCH-0003",
		BatchID:         "BATCH-0003",
		Initiator:       "user-1",
		ContractAddress: "0x5fbdb2315678afecb367f032d93f642f64180aa3",
		GasPrice:        decimal.NewFromInt(1),
		Status:          htapi.StatusPending,
		Payload:         []byte("{}"),
		Created:         htapi.TimestampNow(),
	}
	require.NoError(t, p.DB().Create(tx).Error)
	ids, err = s.ListUnanchored(ctx, htapi.KindCollection, since, before, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"BATCH-0001"}, ids)

	// a failed attempt does not count
	require.NoError(t, p.DB().Model(tx).Update("status", htapi.StatusFailed).Error)
	ids, err = s.ListUnanchored(ctx, htapi.KindCollection, since, before, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"BATCH-0001", "BATCH-0003"}, ids)

	ids, err = s.ListUnanchored(ctx, htapi.KindCollection, since, before, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"BATCH-0001"}, ids)

	ids, err = s.ListUnanchored(ctx, htapi.KindQualityTest, since, before, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"QT-0001"}, ids)

	ids, err = s.ListUnanchored(ctx, htapi.KindProcessing, since, before, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// all created before the window
	ids, err = s.ListUnanchored(ctx, htapi.KindCollection, before, before+1, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.ListUnanchored(ctx, htapi.KindTransfer, since, before, 10)
	assert.Regexp(t, "HT010302", err)
}
