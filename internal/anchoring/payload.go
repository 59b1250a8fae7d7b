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

	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/shopspring/decimal"
)

var (
	gramsPerKg       = decimal.NewFromInt(1000)
	microPerDegree   = decimal.NewFromInt(1000000)
	zeroLocation     = []string{"0", "0"}
	zeroQuantityText = "0"
)

// ledgerCall is the contract function and positional arguments that anchor one record
type ledgerCall struct {
	contract string
	function string
	args     []interface{}
}

// quantities and coordinates are rounded to the same places the record hash uses
func toGrams(kg decimal.Decimal) string {
	return kg.Round(3).Mul(gramsPerKg).Truncate(0).String()
}

func toMicroDegrees(deg decimal.Decimal) string {
	return deg.Round(6).Mul(microPerDegree).Truncate(0).String()
}

func buildCall(ctx context.Context, rec htapi.AnchorRecord, recordHash string) (*ledgerCall, error) {
	switch r := rec.(type) {
	case *htapi.CollectionRecord:
		location := zeroLocation
		if r.Location != nil {
			location = []string{toMicroDegrees(r.Location.Latitude), toMicroDegrees(r.Location.Longitude)}
		}
		return &ledgerCall{
			contract: ledger.ContractHerbTraceMain,
			function: "recordCollection",
			args: []interface{}{
				r.BatchID,
				recordHash,
				r.Species,
				r.Collector,
				r.CollectionDate.Unix(),
				location,
				toGrams(r.QuantityKg),
				r.QualityGrade,
				r.HarvestingMethod,
			},
		}, nil
	case *htapi.ProcessingRecord:
		output := zeroQuantityText
		if r.OutputQuantityKg.Valid {
			output = toGrams(r.OutputQuantityKg.Decimal)
		}
		return &ledgerCall{
			contract: ledger.ContractHerbTraceMain,
			function: "recordProcessing",
			args: []interface{}{
				r.BatchID,
				recordHash,
				r.EventType,
				r.Processor,
				r.EventDate.Unix(),
				r.Facility,
				toGrams(r.InputQuantityKg),
				output,
			},
		}, nil
	case *htapi.QualityTestRecord:
		return &ledgerCall{
			contract: ledger.ContractQualityAssurance,
			function: "recordQualityTest",
			args: []interface{}{
				r.BatchID,
				recordHash,
				r.TestType,
				r.TestDate.Unix(),
				r.TestingLab,
				r.PassStatus,
				r.CertificateNumber,
			},
		}, nil
	default:
		return nil, i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, rec.Kind())
	}
}
