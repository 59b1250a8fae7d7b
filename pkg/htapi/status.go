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

import "github.com/shopspring/decimal"

// VerifyResult compares a freshly computed record hash with the hash stored on the ledger
type VerifyResult struct {
	Kind       Kind                   `json:"kind"`
	SubjectID  string                 `json:"subjectId"`
	Verified   bool                   `json:"verified"`
	LocalHash  string                 `json:"localHash"`
	LedgerHash string                 `json:"ledgerHash"`
	LedgerData map[string]interface{} `json:"ledgerData"`
}

type TransactionStats struct {
	Total       int64           `json:"total"`
	Confirmed   int64           `json:"confirmed"`
	Pending     int64           `json:"pending"`
	Failed      int64           `json:"failed"`
	SuccessRate decimal.Decimal `json:"successRate"`
	// fees of confirmed transactions, in ether
	TotalFees  decimal.Decimal `json:"totalFees"`
	AverageFee decimal.Decimal `json:"averageFee"`
}

type NetworkStatus struct {
	Connected       bool            `json:"connected"`
	ChainID         int64           `json:"chainId,omitempty"`
	LatestBlock     int64           `json:"latestBlock,omitempty"`
	GasPriceGwei    decimal.Decimal `json:"gasPriceGwei"`
	Account         string          `json:"account,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	ContractsLoaded []string        `json:"contractsLoaded"`
}

type Analytics struct {
	Network      *NetworkStatus    `json:"network"`
	Transactions *TransactionStats `json:"transactions"`
}

// TransactionStatusInfo is a local record combined with the live receipt from the ledger
type TransactionStatusInfo struct {
	*TransactionRecord
	LedgerStatus  TransactionStatus `json:"ledgerStatus"`
	Confirmations *int64            `json:"confirmations,omitempty"`
}
