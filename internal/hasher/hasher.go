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

package hasher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/shopspring/decimal"
)

const (
	quantityPlaces   = 3
	coordinatePlaces = 6
	dateLayout       = "2006-01-02T15:04:05.000000Z07:00"
)

// The canonical structs declare their fields in lexical order of the JSON keys.
// encoding/json emits struct fields in declaration order, so this order is the
// byte order of the hashed document.

type canonicalLocation struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type canonicalCollection struct {
	BatchID          string             `json:"batch_id"`
	CollectionDate   string             `json:"collection_date"`
	Collector        string             `json:"collector"`
	HarvestingMethod string             `json:"harvesting_method"`
	Location         *canonicalLocation `json:"location"`
	QualityGrade     string             `json:"quality_grade"`
	QuantityKg       string             `json:"quantity_kg"`
	Species          string             `json:"species"`
}

type canonicalProcessing struct {
	BatchID        string  `json:"batch_id"`
	EventDate      string  `json:"event_date"`
	EventType      string  `json:"event_type"`
	Facility       string  `json:"facility"`
	InputQuantity  string  `json:"input_quantity"`
	OutputQuantity *string `json:"output_quantity"`
	Processor      string  `json:"processor"`
}

type canonicalQualityTest struct {
	BatchID     string          `json:"batch_id"`
	PassStatus  bool            `json:"pass_status"`
	TestDate    string          `json:"test_date"`
	TestResults json.RawMessage `json:"test_results"`
	TestType    string          `json:"test_type"`
	TestingLab  string          `json:"testing_lab"`
}

// Hash returns the hex encoded SHA-256 digest of the canonical form of the record
func Hash(ctx context.Context, rec htapi.AnchorRecord) (string, error) {
	b, err := Canonical(ctx, rec)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:]), nil
}

// Canonical returns the exact bytes that are hashed for the record
func Canonical(ctx context.Context, rec htapi.AnchorRecord) ([]byte, error) {
	var doc interface{}
	switch r := rec.(type) {
	case *htapi.CollectionRecord:
		doc = canonicalizeCollection(r)
	case *htapi.ProcessingRecord:
		doc = canonicalizeProcessing(r)
	case *htapi.QualityTestRecord:
		results, err := canonicalJSON(r.TestResults)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgHashCanonicalFailed, r.Kind())
		}
		doc = &canonicalQualityTest{
			BatchID:     r.BatchID,
			PassStatus:  r.PassStatus,
			TestDate:    formatDate(r.TestDate),
			TestResults: results,
			TestType:    r.TestType,
			TestingLab:  r.TestingLab,
		}
	default:
		return nil, i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, rec.Kind())
	}
	b, err := encode(doc)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgHashCanonicalFailed, rec.Kind())
	}
	return b, nil
}

func canonicalizeCollection(r *htapi.CollectionRecord) *canonicalCollection {
	c := &canonicalCollection{
		BatchID:          r.BatchID,
		CollectionDate:   formatDate(r.CollectionDate),
		Collector:        r.Collector,
		HarvestingMethod: r.HarvestingMethod,
		QualityGrade:     r.QualityGrade,
		QuantityKg:       formatQuantity(r.QuantityKg),
		Species:          r.Species,
	}
	if r.Location != nil {
		c.Location = &canonicalLocation{
			Lat: r.Location.Latitude.StringFixed(coordinatePlaces),
			Lng: r.Location.Longitude.StringFixed(coordinatePlaces),
		}
	}
	return c
}

func canonicalizeProcessing(r *htapi.ProcessingRecord) *canonicalProcessing {
	c := &canonicalProcessing{
		BatchID:       r.BatchID,
		EventDate:     formatDate(r.EventDate),
		EventType:     r.EventType,
		Facility:      r.Facility,
		InputQuantity: formatQuantity(r.InputQuantityKg),
		Processor:     r.Processor,
	}
	if r.OutputQuantityKg.Valid {
		out := formatQuantity(r.OutputQuantityKg.Decimal)
		c.OutputQuantity = &out
	}
	return c
}

func formatQuantity(d decimal.Decimal) string {
	return d.StringFixed(quantityPlaces)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// canonicalJSON re-encodes free-form JSON with sorted object keys and the
// numbers exactly as supplied
func canonicalJSON(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return encode(v)
}

func encode(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
