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
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SystemInitiator is recorded as the initiator of anchoring transactions
// that have no originating user (quality tests)
const SystemInitiator = "system"

// AnchorRecord is a read-only snapshot of a domain record that can be anchored.
// It is implemented only by CollectionRecord, ProcessingRecord and QualityTestRecord.
type AnchorRecord interface {
	Kind() Kind
	// Subject is the identifier of the record itself
	Subject() string
	// Batch is the batch the record belongs to (for a collection, the batch itself)
	Batch() string
	Initiator() string
	isAnchorRecord()
}

type Location struct {
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
}

// CollectionRecord is the collection of a new batch of herbs
type CollectionRecord struct {
	BatchID          string          `json:"batchId"`
	Species          string          `json:"species"`
	Collector        string          `json:"collector"`
	CollectorUser    string          `json:"collectorUser,omitempty"`
	CollectionDate   time.Time       `json:"collectionDate"`
	Location         *Location       `json:"location,omitempty"`
	QuantityKg       decimal.Decimal `json:"quantityKg"`
	QualityGrade     string          `json:"qualityGrade"`
	HarvestingMethod string          `json:"harvestingMethod"`
}

func (r *CollectionRecord) Kind() Kind      { return KindCollection }
func (r *CollectionRecord) Subject() string { return r.BatchID }
func (r *CollectionRecord) Batch() string   { return r.BatchID }
func (r *CollectionRecord) Initiator() string {
	if r.CollectorUser != "" {
		return r.CollectorUser
	}
	return r.Collector
}
func (r *CollectionRecord) isAnchorRecord() {}

type ProcessingRecord struct {
	ID               string              `json:"id"`
	BatchID          string              `json:"batchId"`
	EventType        string              `json:"eventType"`
	Processor        string              `json:"processor"`
	EventDate        time.Time           `json:"eventDate"`
	Facility         string              `json:"facility"`
	InputQuantityKg  decimal.Decimal     `json:"inputQuantityKg"`
	OutputQuantityKg decimal.NullDecimal `json:"outputQuantityKg"`
}

func (r *ProcessingRecord) Kind() Kind        { return KindProcessing }
func (r *ProcessingRecord) Subject() string   { return r.ID }
func (r *ProcessingRecord) Batch() string     { return r.BatchID }
func (r *ProcessingRecord) Initiator() string { return r.Processor }
func (r *ProcessingRecord) isAnchorRecord()   {}

type QualityTestRecord struct {
	ID                string          `json:"id"`
	BatchID           string          `json:"batchId"`
	TestType          string          `json:"testType"`
	TestDate          time.Time       `json:"testDate"`
	TestingLab        string          `json:"testingLab"`
	PassStatus        bool            `json:"passStatus"`
	TestResults       json.RawMessage `json:"testResults"`
	CertificateNumber string          `json:"certificateNumber,omitempty"`
}

func (r *QualityTestRecord) Kind() Kind        { return KindQualityTest }
func (r *QualityTestRecord) Subject() string   { return r.ID }
func (r *QualityTestRecord) Batch() string     { return r.BatchID }
func (r *QualityTestRecord) Initiator() string { return SystemInitiator }
func (r *QualityTestRecord) isAnchorRecord()   {}

// LedgerState is the pair of fields the anchoring pipeline writes back onto a domain record
type LedgerState struct {
	Reference string `json:"ledgerReference"`
	Verified  bool   `json:"ledgerVerified"`
}
