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

package htapi

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionRecord is the local record of one anchoring transaction accepted by the ledger node
type TransactionRecord struct {
	ID              uuid.UUID           `json:"id"                   gorm:"column:id;primaryKey"`
	TransactionHash string              `json:"transactionHash"      gorm:"column:transaction_hash"`
	BlockNumber     *int64              `json:"blockNumber"          gorm:"column:block_number"`
	Kind            Kind                `json:"kind"                 gorm:"column:kind"`
	SubjectID       string              `json:"subjectId"            gorm:"column:subject_id"`
	BatchID         string              `json:"batchId"              gorm:"column:batch_id"`
	Initiator       string              `json:"initiator"            gorm:"column:initiator"`
	ContractAddress string              `json:"contractAddress"      gorm:"column:contract_address"`
	GasLimit        int64               `json:"gasLimit"             gorm:"column:gas_limit"`
	GasUsed         *int64              `json:"gasUsed"              gorm:"column:gas_used"`
	GasPrice        decimal.Decimal     `json:"gasPrice"             gorm:"column:gas_price"`
	Fee             decimal.NullDecimal `json:"fee"                  gorm:"column:fee"`
	Status          TransactionStatus   `json:"status"               gorm:"column:status"`
	Payload         datatypes.JSON      `json:"payload"              gorm:"column:payload"`
	Created         Timestamp           `json:"created"              gorm:"column:created"`
	Confirmed       *Timestamp          `json:"confirmed,omitempty"  gorm:"column:confirmed"`
}

func (TransactionRecord) TableName() string {
	return "ledger_transactions"
}

// AnchorPayload is the audit snapshot stored with each TransactionRecord
type AnchorPayload struct {
	RecordHash string                 `json:"recordHash"`
	Contract   string                 `json:"contract"`
	Function   string                 `json:"function"`
	Args       map[string]interface{} `json:"args"`
}

type TransactionFilter struct {
	SubjectID string
	BatchID   string
	Kind      Kind
	Status    TransactionStatus
	Limit     int
}
