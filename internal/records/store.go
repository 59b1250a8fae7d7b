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
	"strings"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/events"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is the boundary with the domain records. Beyond creating records, the only
// writes it makes are to the ledger_reference and ledger_verified columns.
type Store interface {
	CreateBatch(ctx context.Context, rec *htapi.CollectionRecord) error
	CreateProcessingEvent(ctx context.Context, rec *htapi.ProcessingRecord) error
	CreateQualityTest(ctx context.Context, rec *htapi.QualityTestRecord) error

	Get(ctx context.Context, kind htapi.Kind, id string) (htapi.AnchorRecord, *htapi.LedgerState, error)
	SetLedgerReference(ctx context.Context, kind htapi.Kind, id, txHash string) error
	// MarkVerified flags the record as verified by the given transaction, as long as
	// the record references that transaction or no transaction at all. An empty reference
	// is filled in. Returns false if the record references a different transaction.
	MarkVerified(ctx context.Context, kind htapi.Kind, id, txHash string) (bool, error)
	// ListUnanchored returns the ids of records created in [since, before) that have no ledger
	// reference and no PENDING or CONFIRMED ledger transaction, oldest first
	ListUnanchored(ctx context.Context, kind htapi.Kind, since, before htapi.Timestamp, limit int) ([]string, error)
}

type store struct {
	p   persistence.Persistence
	bus events.Bus
}

// NewStore returns a store that publishes a RecordCreated event after each create commits.
// The bus is optional.
func NewStore(p persistence.Persistence, bus events.Bus) Store {
	return &store{p: p, bus: bus}
}

type LedgerColumns struct {
	LedgerReference string          `gorm:"column:ledger_reference"`
	LedgerVerified  bool            `gorm:"column:ledger_verified"`
	Created         htapi.Timestamp `gorm:"column:created"`
}

type batchRow struct {
	BatchID          string              `gorm:"column:batch_id;primaryKey"`
	Species          string              `gorm:"column:species"`
	Collector        string              `gorm:"column:collector"`
	CollectorUser    *string             `gorm:"column:collector_user"`
	CollectionDate   htapi.Timestamp     `gorm:"column:collection_date"`
	Latitude         decimal.NullDecimal `gorm:"column:latitude"`
	Longitude        decimal.NullDecimal `gorm:"column:longitude"`
	QuantityKg       decimal.Decimal     `gorm:"column:quantity_kg"`
	QualityGrade     string              `gorm:"column:quality_grade"`
	HarvestingMethod string              `gorm:"column:harvesting_method"`
	LedgerColumns    `gorm:"embedded"`
}

func (batchRow) TableName() string { return "batches" }

type processingRow struct {
	ID               string              `gorm:"column:id;primaryKey"`
	BatchID          string              `gorm:"column:batch_id"`
	EventType        string              `gorm:"column:event_type"`
	Processor        string              `gorm:"column:processor"`
	EventDate        htapi.Timestamp     `gorm:"column:event_date"`
	Facility         string              `gorm:"column:facility"`
	InputQuantityKg  decimal.Decimal     `gorm:"column:input_quantity_kg"`
	OutputQuantityKg decimal.NullDecimal `gorm:"column:output_quantity_kg"`
	LedgerColumns    `gorm:"embedded"`
}

func (processingRow) TableName() string { return "processing_events" }

type qualityTestRow struct {
	ID                string          `gorm:"column:id;primaryKey"`
	BatchID           string          `gorm:"column:batch_id"`
	TestType          string          `gorm:"column:test_type"`
	TestDate          htapi.Timestamp `gorm:"column:test_date"`
	TestingLab        string          `gorm:"column:testing_lab"`
	PassStatus        bool            `gorm:"column:pass_status"`
	TestResults       datatypes.JSON  `gorm:"column:test_results"`
	CertificateNumber string          `gorm:"column:certificate_number"`
	LedgerColumns     `gorm:"embedded"`
}

func (qualityTestRow) TableName() string { return "quality_tests" }

func tableFor(ctx context.Context, kind htapi.Kind) (table, keyColumn string, err error) {
	switch kind {
	case htapi.KindCollection:
		return "batches", "batch_id", nil
	case htapi.KindProcessing:
		return "processing_events", "id", nil
	case htapi.KindQualityTest:
		return "quality_tests", "id", nil
	default:
		return "", "", i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, kind)
	}
}

func required(ctx context.Context, fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return i18n.NewError(ctx, msgs.MsgRecordMissingField, name)
		}
	}
	return nil
}

func (s *store) create(ctx context.Context, kind htapi.Kind, id string, row interface{}) error {
	return s.p.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		if err := dbTX.DB().Create(row).Error; err != nil {
			return err
		}
		if s.bus != nil {
			dbTX.AddPostCommit(func(ctx context.Context) {
				s.bus.Publish(ctx, events.NewRecordCreated(kind, id))
			})
		}
		return nil
	})
}

func (s *store) CreateBatch(ctx context.Context, rec *htapi.CollectionRecord) error {
	if err := required(ctx, map[string]string{
		"batchId":          rec.BatchID,
		"species":          rec.Species,
		"collector":        rec.Collector,
		"qualityGrade":     rec.QualityGrade,
		"harvestingMethod": rec.HarvestingMethod,
	}); err != nil {
		return err
	}
	if !rec.QuantityKg.IsPositive() {
		return i18n.NewError(ctx, msgs.MsgRecordInvalidField, "quantityKg", rec.QuantityKg)
	}
	row := &batchRow{
		BatchID:          rec.BatchID,
		Species:          rec.Species,
		Collector:        rec.Collector,
		CollectionDate:   htapi.TimestampFromTime(rec.CollectionDate),
		QuantityKg:       rec.QuantityKg,
		QualityGrade:     rec.QualityGrade,
		HarvestingMethod: rec.HarvestingMethod,
		LedgerColumns:    LedgerColumns{Created: htapi.TimestampNow()},
	}
	if rec.CollectorUser != "" {
		row.CollectorUser = &rec.CollectorUser
	}
	if rec.Location != nil {
		row.Latitude = decimal.NewNullDecimal(rec.Location.Latitude)
		row.Longitude = decimal.NewNullDecimal(rec.Location.Longitude)
	}
	return s.create(ctx, htapi.KindCollection, rec.BatchID, row)
}

func (s *store) CreateProcessingEvent(ctx context.Context, rec *htapi.ProcessingRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := required(ctx, map[string]string{
		"batchId":   rec.BatchID,
		"eventType": rec.EventType,
		"processor": rec.Processor,
		"facility":  rec.Facility,
	}); err != nil {
		return err
	}
	if !rec.InputQuantityKg.IsPositive() {
		return i18n.NewError(ctx, msgs.MsgRecordInvalidField, "inputQuantityKg", rec.InputQuantityKg)
	}
	return s.create(ctx, htapi.KindProcessing, rec.ID, &processingRow{
		ID:               rec.ID,
		BatchID:          rec.BatchID,
		EventType:        rec.EventType,
		Processor:        rec.Processor,
		EventDate:        htapi.TimestampFromTime(rec.EventDate),
		Facility:         rec.Facility,
		InputQuantityKg:  rec.InputQuantityKg,
		OutputQuantityKg: rec.OutputQuantityKg,
		LedgerColumns:    LedgerColumns{Created: htapi.TimestampNow()},
	})
}

func (s *store) CreateQualityTest(ctx context.Context, rec *htapi.QualityTestRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := required(ctx, map[string]string{
		"batchId":    rec.BatchID,
		"testType":   rec.TestType,
		"testingLab": rec.TestingLab,
	}); err != nil {
		return err
	}
	results := datatypes.JSON("null")
	if len(rec.TestResults) > 0 {
		if !json.Valid(rec.TestResults) {
			return i18n.NewError(ctx, msgs.MsgRecordInvalidField, "testResults", "invalid JSON")
		}
		results = datatypes.JSON(rec.TestResults)
	}
	return s.create(ctx, htapi.KindQualityTest, rec.ID, &qualityTestRow{
		ID:                rec.ID,
		BatchID:           rec.BatchID,
		TestType:          rec.TestType,
		TestDate:          htapi.TimestampFromTime(rec.TestDate),
		TestingLab:        rec.TestingLab,
		PassStatus:        rec.PassStatus,
		TestResults:       results,
		CertificateNumber: rec.CertificateNumber,
		LedgerColumns:     LedgerColumns{Created: htapi.TimestampNow()},
	})
}

func findOne[T any](ctx context.Context, db *gorm.DB, keyColumn, id string) (*T, error) {
	var rows []*T
	err := db.WithContext(ctx).
		Where(keyColumn+" = ?", id).
		Limit(1).
		Find(&rows).
		Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (s *store) Get(ctx context.Context, kind htapi.Kind, id string) (htapi.AnchorRecord, *htapi.LedgerState, error) {
	_, keyColumn, err := tableFor(ctx, kind)
	if err != nil {
		return nil, nil, err
	}
	db := s.p.DB()
	var rec htapi.AnchorRecord
	var lc *LedgerColumns
	switch kind {
	case htapi.KindCollection:
		row, err := findOne[batchRow](ctx, db, keyColumn, id)
		if err != nil || row == nil {
			return nil, nil, notFound(ctx, kind, id, err)
		}
		c := &htapi.CollectionRecord{
			BatchID:          row.BatchID,
			Species:          row.Species,
			Collector:        row.Collector,
			CollectionDate:   row.CollectionDate.Time(),
			QuantityKg:       row.QuantityKg,
			QualityGrade:     row.QualityGrade,
			HarvestingMethod: row.HarvestingMethod,
		}
		if row.CollectorUser != nil {
			c.CollectorUser = *row.CollectorUser
		}
		if row.Latitude.Valid && row.Longitude.Valid {
			c.Location = &htapi.Location{Latitude: row.Latitude.Decimal, Longitude: row.Longitude.Decimal}
		}
		rec, lc = c, &row.LedgerColumns
	case htapi.KindProcessing:
		row, err := findOne[processingRow](ctx, db, keyColumn, id)
		if err != nil || row == nil {
			return nil, nil, notFound(ctx, kind, id, err)
		}
		rec = &htapi.ProcessingRecord{
			ID:               row.ID,
			BatchID:          row.BatchID,
			EventType:        row.EventType,
			Processor:        row.Processor,
			EventDate:        row.EventDate.Time(),
			Facility:         row.Facility,
			InputQuantityKg:  row.InputQuantityKg,
			OutputQuantityKg: row.OutputQuantityKg,
		}
		lc = &row.LedgerColumns
	default: // htapi.KindQualityTest
		row, err := findOne[qualityTestRow](ctx, db, keyColumn, id)
		if err != nil || row == nil {
			return nil, nil, notFound(ctx, kind, id, err)
		}
		rec = &htapi.QualityTestRecord{
			ID:                row.ID,
			BatchID:           row.BatchID,
			TestType:          row.TestType,
			TestDate:          row.TestDate.Time(),
			TestingLab:        row.TestingLab,
			PassStatus:        row.PassStatus,
			TestResults:       json.RawMessage(row.TestResults),
			CertificateNumber: row.CertificateNumber,
		}
		lc = &row.LedgerColumns
	}
	return rec, &htapi.LedgerState{Reference: lc.LedgerReference, Verified: lc.LedgerVerified}, nil
}

func notFound(ctx context.Context, kind htapi.Kind, id string, err error) error {
	if err != nil {
		return err
	}
	return i18n.NewError(ctx, msgs.MsgRecordNotFound, kind, id)
}

func (s *store) SetLedgerReference(ctx context.Context, kind htapi.Kind, id, txHash string) error {
	table, keyColumn, err := tableFor(ctx, kind)
	if err != nil {
		return err
	}
	res := s.p.DB().WithContext(ctx).
		Table(table).
		Where(keyColumn+" = ?", id).
		Update("ledger_reference", txHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return i18n.NewError(ctx, msgs.MsgRecordNotFound, kind, id)
	}
	return nil
}

func (s *store) MarkVerified(ctx context.Context, kind htapi.Kind, id, txHash string) (bool, error) {
	table, keyColumn, err := tableFor(ctx, kind)
	if err != nil {
		return false, err
	}
	res := s.p.DB().WithContext(ctx).
		Table(table).
		Where(keyColumn+" = ?", id).
		Where("(ledger_reference = ? OR ledger_reference = '')", txHash).
		Updates(map[string]interface{}{
			"ledger_verified":  true,
			"ledger_reference": txHash,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *store) ListUnanchored(ctx context.Context, kind htapi.Kind, since, before htapi.Timestamp, limit int) ([]string, error) {
	table, keyColumn, err := tableFor(ctx, kind)
	if err != nil {
		return nil, err
	}
	var ids []string
	err = s.p.DB().WithContext(ctx).
		Table(table).
		Where("ledger_reference = ''").
		Where("created >= ? AND created < ?", int64(since), int64(before)).
		Where("NOT EXISTS (SELECT 1 FROM ledger_transactions lt WHERE lt.kind = ? AND lt.subject_id = "+table+"."+keyColumn+" AND lt.status <> ?)",
			string(kind), string(htapi.StatusFailed)).
		Order("created").
		Limit(limit).
		Pluck(keyColumn, &ids).
		Error
	return ids, err
}
