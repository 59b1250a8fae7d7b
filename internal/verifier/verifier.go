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
	"errors"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/hasher"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Verifier compares the hash of a record as it is now with the hash stored on the ledger.
// A mismatch is reported in the result, and nothing is corrected.
type Verifier interface {
	Verify(ctx context.Context, kind htapi.Kind, id string) (*htapi.VerifyResult, error)
}

type verifier struct {
	ledger  ledger.Client
	records records.Store
}

func NewVerifier(lc ledger.Client, recs records.Store) Verifier {
	return &verifier{ledger: lc, records: recs}
}

func (v *verifier) Verify(ctx context.Context, kind htapi.Kind, id string) (*htapi.VerifyResult, error) {
	ctx = log.WithLogField(log.WithRole(ctx, "verify"), "subject", id)
	if !kind.Anchorable() {
		return nil, i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, kind)
	}
	// only the main contract has a read function for stored records
	if kind != htapi.KindCollection {
		return nil, i18n.NewError(ctx, msgs.MsgVerifyNotSupported, kind)
	}
	rec, _, err := v.records.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !v.ledger.IsConnected(ctx) {
		return nil, ledger.NewUnavailableError(ctx, msgs.MsgLedgerUnavailable, "not connected")
	}
	if _, err := v.ledger.Contract(ctx, ledger.ContractHerbTraceMain); err != nil {
		return nil, err
	}

	ledgerData, err := v.ledger.CallRead(ctx, ledger.ContractHerbTraceMain, "getBatch", id)
	if err != nil {
		if ledger.KindOf(err) == ledger.ErrorKindNotFound {
			return nil, i18n.WrapError(ctx, err, msgs.MsgVerifyNotAnchored, kind, id)
		}
		return nil, err
	}
	if onLedgerID, _ := ledgerData["batchId"].(string); onLedgerID == "" {
		return nil, i18n.NewError(ctx, msgs.MsgVerifyNotAnchored, kind, id)
	}

	localHash, err := hasher.Hash(ctx, rec)
	if err != nil {
		return nil, err
	}
	ledgerHash, _ := ledgerData["dataHash"].(string)
	result := &htapi.VerifyResult{
		Kind:       kind,
		SubjectID:  id,
		Verified:   localHash == ledgerHash,
		LocalHash:  localHash,
		LedgerHash: ledgerHash,
		LedgerData: ledgerData,
	}
	if !result.Verified {
		log.L(ctx).Warn(i18n.NewError(ctx, msgs.MsgVerifyHashMismatch, kind, id, localHash, ledgerHash))
	} else {
		log.L(ctx).Infof("%s record %s matches the ledger", kind, id)
	}
	return result, nil
}

// IsNotAnchored reports whether a verification failed because the record is not on the ledger
func IsNotAnchored(err error) bool {
	var ffe i18n.FFError
	return errors.As(err, &ffe) && ffe.MessageKey() == msgs.MsgVerifyNotAnchored
}
