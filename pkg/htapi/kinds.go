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

import "strings"

// Kind is the type of event a ledger transaction anchors
type Kind string

const (
	KindCollection   Kind = "COLLECTION"
	KindProcessing   Kind = "PROCESSING"
	KindQualityTest  Kind = "QUALITY_TEST"
	KindTransfer     Kind = "TRANSFER"
	KindVerification Kind = "VERIFICATION"
)

var allKinds = []Kind{KindCollection, KindProcessing, KindQualityTest, KindTransfer, KindVerification}

// ParseKind accepts any case, and "-" in place of "_"
func ParseKind(s string) (Kind, bool) {
	norm := Kind(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	for _, k := range allKinds {
		if k == norm {
			return k, true
		}
	}
	return "", false
}

// Anchorable reports whether records of this kind are anchored by this service
func (k Kind) Anchorable() bool {
	switch k {
	case KindCollection, KindProcessing, KindQualityTest:
		return true
	default:
		return false
	}
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusConfirmed TransactionStatus = "CONFIRMED"
	StatusFailed    TransactionStatus = "FAILED"
)

func ParseStatus(s string) (TransactionStatus, bool) {
	switch st := TransactionStatus(strings.ToUpper(s)); st {
	case StatusPending, StatusConfirmed, StatusFailed:
		return st, true
	default:
		return "", false
	}
}
