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

// Package reconcile moves local PENDING transaction records to their terminal state once
// the ledger has mined them, and propagates confirmation to the anchored domain record.
package reconcile

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/metrics"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/txstore"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const JobName = "reconcile"

// Summary counts the outcome of one reconciliation run
type Summary struct {
	Checked   int64 `json:"checked"`
	Confirmed int64 `json:"confirmed"`
	Failed    int64 `json:"failed"`
	Pending   int64 `json:"pending"`
	Errors    int64 `json:"errors"`
}

type Reconciler interface {
	Name() string
	Run(ctx context.Context) error
	ReconcileAll(ctx context.Context) (*Summary, error)
	// TransactionStatus combines the local record with a live receipt, without changing either
	TransactionStatus(ctx context.Context, txHash string) (*htapi.TransactionStatusInfo, error)
}

type reconciler struct {
	ledger      ledger.Client
	txStore     txstore.Store
	records     records.Store
	metrics     metrics.Metrics
	lookback    time.Duration
	parallelism int
	now         func() time.Time
}

func NewReconciler(conf *htconf.ReconcileConfig, lc ledger.Client, txs txstore.Store, recs records.Store, m metrics.Metrics) Reconciler {
	return &reconciler{
		ledger:      lc,
		txStore:     txs,
		records:     recs,
		metrics:     m,
		lookback:    confutil.DurationMin(conf.Lookback, 0, *htconf.ReconcileDefaults.Lookback),
		parallelism: confutil.IntMin(conf.Parallelism, 1, *htconf.ReconcileDefaults.Parallelism),
		now:         time.Now,
	}
}

func (r *reconciler) Name() string {
	return JobName
}

func (r *reconciler) Run(ctx context.Context) error {
	_, err := r.ReconcileAll(ctx)
	return err
}

// ReconcileAll polls every PENDING record created within the lookback window. Older PENDING
// records are left for manual investigation. A failure on one record never stops the others.
func (r *reconciler) ReconcileAll(ctx context.Context) (*Summary, error) {
	ctx = log.WithRole(ctx, "reconcile")
	since := htapi.TimestampFromTime(r.now().Add(-r.lookback))
	pending, err := r.txStore.ListPendingSince(ctx, since)
	if err != nil {
		return nil, err
	}
	r.metrics.SetPendingTransactions(len(pending))

	var s Summary
	group := errgroup.Group{}
	group.SetLimit(r.parallelism)
	for _, tx := range pending {
		tx := tx
		group.Go(func() error {
			status, err := r.reconcileOne(log.WithLogField(ctx, "tx", tx.TransactionHash), tx)
			atomic.AddInt64(&s.Checked, 1)
			switch {
			case err != nil:
				log.L(ctx).Errorf("Reconciliation of transaction %s failed: %s", tx.TransactionHash, err)
				atomic.AddInt64(&s.Errors, 1)
			case status == htapi.StatusConfirmed:
				atomic.AddInt64(&s.Confirmed, 1)
			case status == htapi.StatusFailed:
				atomic.AddInt64(&s.Failed, 1)
			default:
				atomic.AddInt64(&s.Pending, 1)
			}
			return nil
		})
	}
	_ = group.Wait()

	log.L(ctx).Infof("Reconciled %d pending transactions (confirmed=%d failed=%d pending=%d errors=%d)",
		s.Checked, s.Confirmed, s.Failed, s.Pending, s.Errors)
	return &s, nil
}

func feeOf(tx *htapi.TransactionRecord, receipt *ledger.Receipt) decimal.Decimal {
	if receipt.FeePaid != nil {
		return decimal.NewFromBigInt(receipt.FeePaid, 0)
	}
	return decimal.NewFromInt(receipt.GasUsed).Mul(tx.GasPrice)
}

func (r *reconciler) reconcileOne(ctx context.Context, tx *htapi.TransactionRecord) (htapi.TransactionStatus, error) {
	receipt, err := r.ledger.Receipt(ctx, tx.TransactionHash)
	if err != nil {
		return "", err
	}
	if receipt == nil {
		log.L(ctx).Debugf("Transaction %s not yet mined", tx.TransactionHash)
		return htapi.StatusPending, nil
	}

	if !receipt.Success {
		changed, err := r.txStore.MarkFailed(ctx, tx.TransactionHash, receipt.BlockNumber, receipt.GasUsed)
		if err != nil {
			return "", err
		}
		if changed {
			log.L(ctx).Warnf("Transaction %s failed in block %d: %s", tx.TransactionHash, receipt.BlockNumber, receipt.RevertReason)
			r.metrics.IncReconciled(htapi.StatusFailed)
		}
		return htapi.StatusFailed, nil
	}

	// The domain record is flagged before the transaction record leaves PENDING, so a failure
	// here is retried on the next run.
	if tx.Kind.Anchorable() {
		verified, err := r.records.MarkVerified(ctx, tx.Kind, tx.SubjectID, tx.TransactionHash)
		if err != nil {
			return "", err
		}
		if !verified {
			log.L(ctx).Warnf("%s record %s is anchored by a different transaction, or no longer exists", tx.Kind, tx.SubjectID)
		}
	}
	changed, err := r.txStore.MarkConfirmed(ctx, tx.TransactionHash, receipt.BlockNumber, receipt.GasUsed,
		feeOf(tx, receipt), htapi.TimestampFromTime(r.now()))
	if err != nil {
		return "", err
	}
	if changed {
		log.L(ctx).Infof("Transaction %s confirmed in block %d", tx.TransactionHash, receipt.BlockNumber)
		r.metrics.IncReconciled(htapi.StatusConfirmed)
	}
	return htapi.StatusConfirmed, nil
}

func (r *reconciler) TransactionStatus(ctx context.Context, txHash string) (*htapi.TransactionStatusInfo, error) {
	tx, err := txstore.RequireByHash(ctx, r.txStore, txHash)
	if err != nil {
		return nil, err
	}
	info := &htapi.TransactionStatusInfo{
		TransactionRecord: tx,
		LedgerStatus:      htapi.StatusPending,
	}
	receipt, err := r.ledger.Receipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return info, nil
	}
	info.LedgerStatus = htapi.StatusFailed
	if receipt.Success {
		info.LedgerStatus = htapi.StatusConfirmed
	}
	if latest, err := r.ledger.BlockNumber(ctx); err == nil {
		confirmations := latest - receipt.BlockNumber
		info.Confirmations = &confirmations
	}
	return info, nil
}
