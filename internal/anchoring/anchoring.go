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

package anchoring

import (
	"context"
	"encoding/json"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/hasher"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/txstore"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/shopspring/decimal"
)

// Service submits one ledger transaction per domain record.
//
// Anchor is not idempotent. Callers check the record has no ledger reference before
// calling, and two concurrent calls for the same record can both submit.
type Service interface {
	Anchor(ctx context.Context, rec htapi.AnchorRecord) (txHash string, err error)
}

type service struct {
	ledger  ledger.Client
	txStore txstore.Store
	records records.Store
}

func NewService(lc ledger.Client, txStore txstore.Store, recs records.Store) Service {
	return &service{
		ledger:  lc,
		txStore: txStore,
		records: recs,
	}
}

// IsRetryable reports whether an anchoring failure is transient. Submission rejections,
// and failures after the ledger has accepted the transaction, are not.
func IsRetryable(err error) bool {
	return ledger.IsTransient(err)
}

func (s *service) Anchor(ctx context.Context, rec htapi.AnchorRecord) (string, error) {
	ctx = log.WithLogField(ctx, "subject", rec.Subject())

	if !s.ledger.IsConnected(ctx) {
		return "", ledger.NewUnavailableError(ctx, msgs.MsgLedgerUnavailable, "not connected")
	}
	recordHash, err := hasher.Hash(ctx, rec)
	if err != nil {
		return "", err
	}
	call, err := buildCall(ctx, rec, recordHash)
	if err != nil {
		return "", err
	}
	contract, err := s.ledger.Contract(ctx, call.contract)
	if err != nil {
		return "", err
	}
	key := s.ledger.SigningKey()
	if key == nil {
		return "", ledger.NewUnavailableError(ctx, msgs.MsgLedgerNotConfigured)
	}

	data, err := contract.EncodeCall(ctx, call.function, call.args)
	if err != nil {
		return "", err
	}
	gasPrice, err := s.ledger.CurrentFeeRate(ctx)
	if err != nil {
		return "", err
	}
	gasLimit := s.ledger.GasLimit()
	txHash, err := s.ledger.Submit(ctx, &ledger.TransactionRequest{
		To:       contract.Address,
		Data:     data,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
	}, key)
	if err != nil {
		return "", err
	}

	// from here the transaction is on its way to the ledger, so nothing is retryable
	payload, err := jsonMarshal(s.auditPayload(ctx, contract, call, recordHash))
	if err != nil {
		return txHash, i18n.WrapError(ctx, err, msgs.MsgAnchorPayloadEncode, txHash)
	}
	tx := &htapi.TransactionRecord{
		TransactionHash: txHash,
		Kind:            rec.Kind(),
		SubjectID:       rec.Subject(),
		BatchID:         rec.Batch(),
		Initiator:       rec.Initiator(),
		ContractAddress: contract.Address.String(),
		GasLimit:        gasLimit,
		GasPrice:        decimal.NewFromBigInt(gasPrice, 0),
		Status:          htapi.StatusPending,
		Payload:         payload,
	}
	if err := s.txStore.Insert(ctx, tx); err != nil {
		return txHash, i18n.WrapError(ctx, err, msgs.MsgAnchorPersistFailed, txHash)
	}
	if err := s.records.SetLedgerReference(ctx, rec.Kind(), rec.Subject(), txHash); err != nil {
		return txHash, i18n.WrapError(ctx, err, msgs.MsgAnchorWriteBackFailed, txHash, rec.Kind(), rec.Subject())
	}
	log.L(ctx).Infof("%s record anchored in transaction %s", rec.Kind(), txHash)
	return txHash, nil
}

var jsonMarshal = json.Marshal

func (s *service) auditPayload(ctx context.Context, contract *ledger.Contract, call *ledgerCall, recordHash string) *htapi.AnchorPayload {
	p := &htapi.AnchorPayload{
		RecordHash: recordHash,
		Contract:   contract.Name,
		Function:   call.function,
		Args:       map[string]interface{}{},
	}
	fn, err := contract.Function(ctx, call.function)
	if err == nil && len(fn.Inputs) == len(call.args) {
		for i, param := range fn.Inputs {
			p.Args[param.Name] = call.args[i]
		}
	}
	return p
}
