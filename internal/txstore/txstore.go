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

	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

var weiPerEther = decimal.New(1, 18)

// Store is the local ledger of anchoring transactions.
// Status only ever moves from PENDING to one of the terminal states.
type Store interface {
	Insert(ctx context.Context, tx *htapi.TransactionRecord) error
	// GetByHash returns nil if there is no record
	GetByHash(ctx context.Context, txHash string) (*htapi.TransactionRecord, error)
	ListPendingSince(ctx context.Context, since htapi.Timestamp) ([]*htapi.TransactionRecord, error)
	// MarkConfirmed and MarkFailed return false if the record was no longer PENDING
	MarkConfirmed(ctx context.Context, txHash string, blockNumber, gasUsed int64, fee decimal.Decimal, confirmed htapi.Timestamp) (bool, error)
	MarkFailed(ctx context.Context, txHash string, blockNumber, gasUsed int64) (bool, error)
	DeleteFailedBefore(ctx context.Context, before htapi.Timestamp) (int64, error)
	List(ctx context.Context, filter *htapi.TransactionFilter) ([]*htapi.TransactionRecord, error)
	Stats(ctx context.Context) (*htapi.TransactionStats, error)
}

type store struct {
	p persistence.Persistence
}

func NewStore(p persistence.Persistence) Store {
	return &store{p: p}
}

func (s *store) db(ctx context.Context) *gorm.DB {
	return s.p.DB().WithContext(ctx)
}

func (s *store) Insert(ctx context.Context, tx *htapi.TransactionRecord) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.Created == 0 {
		tx.Created = htapi.TimestampNow()
	}
	if tx.Status == "" {
		tx.Status = htapi.StatusPending
	}
	return s.db(ctx).Create(tx).Error
}

func (s *store) GetByHash(ctx context.Context, txHash string) (*htapi.TransactionRecord, error) {
	var txs []*htapi.TransactionRecord
	err := s.db(ctx).
		Where("transaction_hash = ?", txHash).
		Limit(1).
		Find(&txs).
		Error
	if err != nil || len(txs) == 0 {
		return nil, err
	}
	return txs[0], nil
}

func (s *store) ListPendingSince(ctx context.Context, since htapi.Timestamp) ([]*htapi.TransactionRecord, error) {
	var txs []*htapi.TransactionRecord
	err := s.db(ctx).
		Where("status = ?", htapi.StatusPending).
		Where("created >= ?", since).
		Order("created").
		Find(&txs).
		Error
	return txs, err
}

func (s *store) MarkConfirmed(ctx context.Context, txHash string, blockNumber, gasUsed int64, fee decimal.Decimal, confirmed htapi.Timestamp) (bool, error) {
	res := s.db(ctx).
		Model(&htapi.TransactionRecord{}).
		Where("transaction_hash = ?", txHash).
		Where("status = ?", htapi.StatusPending).
		Updates(map[string]interface{}{
			"status":       htapi.StatusConfirmed,
			"block_number": blockNumber,
			"gas_used":     gasUsed,
			"fee":          fee,
			"confirmed":    confirmed,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *store) MarkFailed(ctx context.Context, txHash string, blockNumber, gasUsed int64) (bool, error) {
	res := s.db(ctx).
		Model(&htapi.TransactionRecord{}).
		Where("transaction_hash = ?", txHash).
		Where("status = ?", htapi.StatusPending).
		Updates(map[string]interface{}{
			"status":       htapi.StatusFailed,
			"block_number": blockNumber,
			"gas_used":     gasUsed,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *store) DeleteFailedBefore(ctx context.Context, before htapi.Timestamp) (int64, error) {
	res := s.db(ctx).
		Where("status = ?", htapi.StatusFailed).
		Where("created < ?", before).
		Delete(&htapi.TransactionRecord{})
	return res.RowsAffected, res.Error
}

func (s *store) List(ctx context.Context, filter *htapi.TransactionFilter) ([]*htapi.TransactionRecord, error) {
	q := s.db(ctx)
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.BatchID != "" {
		q = q.Where("batch_id = ?", filter.BatchID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	} else if limit > maxListLimit {
		limit = maxListLimit
	}
	var txs []*htapi.TransactionRecord
	err := q.Order("created DESC").Limit(limit).Find(&txs).Error
	return txs, err
}

type statusCount struct {
	Status htapi.TransactionStatus
	Count  int64
}

func (s *store) Stats(ctx context.Context) (*htapi.TransactionStats, error) {
	var counts []*statusCount
	err := s.db(ctx).
		Model(&htapi.TransactionRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).
		Error
	if err != nil {
		return nil, err
	}
	stats := &htapi.TransactionStats{}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case htapi.StatusConfirmed:
			stats.Confirmed = c.Count
		case htapi.StatusPending:
			stats.Pending = c.Count
		case htapi.StatusFailed:
			stats.Failed = c.Count
		}
	}

	// summed in decimal, as the fee column is text on some databases
	var fees []decimal.NullDecimal
	err = s.db(ctx).
		Model(&htapi.TransactionRecord{}).
		Where("status = ?", htapi.StatusConfirmed).
		Where("fee IS NOT NULL").
		Pluck("fee", &fees).
		Error
	if err != nil {
		return nil, err
	}
	totalWei := decimal.Zero
	for _, f := range fees {
		totalWei = totalWei.Add(f.Decimal)
	}
	stats.TotalFees = totalWei.Div(weiPerEther)
	if stats.Confirmed > 0 {
		stats.AverageFee = stats.TotalFees.Div(decimal.NewFromInt(stats.Confirmed))
	}
	if stats.Total > 0 {
		stats.SuccessRate = decimal.NewFromInt(stats.Confirmed * 100).Div(decimal.NewFromInt(stats.Total)).Round(2)
	}
	return stats, nil
}

// RequireByHash is GetByHash with a not found error
func RequireByHash(ctx context.Context, s Store, txHash string) (*htapi.TransactionRecord, error) {
	tx, err := s.GetByHash(ctx, txHash)
	if err == nil && tx == nil {
		err = i18n.NewError(ctx, msgs.MsgTransactionNotFound, txHash)
	}
	return tx, err
}
