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

package ledger

import (
	"context"
	"embed"
	"encoding/json"
	"sort"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ContractHerbTraceMain    = "HerbTraceMain"
	ContractQualityAssurance = "QualityAssurance"
)

//go:embed abis/*.json
var builtinABIs embed.FS

// SmartContractEntry is a row of the smart_contracts registry table
type SmartContractEntry struct {
	Name    string `json:"name"    gorm:"column:name;primaryKey"`
	Address string `json:"address" gorm:"column:address"`
	// empty for contracts with a built-in ABI
	ABI     string          `json:"abi"     gorm:"column:abi"`
	Version string          `json:"version" gorm:"column:version"`
	Active  bool            `json:"active"  gorm:"column:active"`
	Created htapi.Timestamp `json:"created" gorm:"column:created"`
}

func (SmartContractEntry) TableName() string {
	return "smart_contracts"
}

// Contract is a deployed contract with a parsed ABI
type Contract struct {
	Name      string
	Address   ethtypes.Address0xHex
	Version   string
	functions map[string]*abi.Entry
}

type Registry struct {
	contracts map[string]*Contract
}

func NewRegistry() *Registry {
	return &Registry{contracts: map[string]*Contract{}}
}

// LoadRegistry builds the registry from config, then applies the active rows of the
// smart_contracts table over the top. A nil DB loads config only.
func LoadRegistry(ctx context.Context, db *gorm.DB, conf []htconf.ContractConfig) (*Registry, error) {
	r := NewRegistry()
	for _, cc := range conf {
		if !confutil.Bool(cc.Active, true) {
			continue
		}
		if err := r.Add(ctx, cc.Name, cc.Address, []byte(cc.ABI), cc.Version); err != nil {
			return nil, err
		}
	}
	if db != nil {
		var entries []*SmartContractEntry
		err := db.WithContext(ctx).
			Where("active = ?", true).
			Order("name").
			Find(&entries).
			Error
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgLedgerContractRegistryLoad)
		}
		for _, e := range entries {
			if err := r.Add(ctx, e.Name, e.Address, []byte(e.ABI), e.Version); err != nil {
				return nil, err
			}
		}
	}
	log.L(ctx).Infof("Loaded contracts: %v", r.Names())
	return r, nil
}

// UpsertContract stores a registry entry, replacing any existing entry of the same name
func UpsertContract(ctx context.Context, db *gorm.DB, e *SmartContractEntry) error {
	if e.Created == 0 {
		e.Created = htapi.TimestampNow()
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"address", "abi", "version", "active"}),
		}).
		Create(e).
		Error
}

// Add parses and registers a contract. An empty ABI selects the built-in ABI for the name.
func (r *Registry) Add(ctx context.Context, name, address string, abiJSON []byte, version string) error {
	addr, err := ethtypes.NewAddress(address)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgLedgerInvalidContractAddr, address, name)
	}
	if len(abiJSON) == 0 {
		if abiJSON, err = builtinABIs.ReadFile("abis/" + name + ".json"); err != nil {
			return i18n.NewError(ctx, msgs.MsgLedgerNoDefaultABI, name)
		}
	}
	var a abi.ABI
	if err := json.Unmarshal(abiJSON, &a); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgLedgerInvalidContractABI, name)
	}
	c := &Contract{
		Name:      name,
		Address:   *addr,
		Version:   version,
		functions: a.Functions(),
	}
	r.contracts[name] = c
	return nil
}

func (r *Registry) Get(name string) (*Contract, bool) {
	c, ok := r.contracts[name]
	return c, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.contracts))
	for n := range r.contracts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Contract) Function(ctx context.Context, name string) (*abi.Entry, error) {
	fn, ok := c.functions[name]
	if !ok {
		return nil, &Error{
			Kind:   ErrorKindSubmissionRejected,
			Reason: ErrorReasonInvalidInputs,
			err:    i18n.NewError(ctx, msgs.MsgLedgerFunctionNotFound, name, c.Name),
		}
	}
	return fn, nil
}

// EncodeCall ABI encodes a call with positional arguments in their JSON form
func (c *Contract) EncodeCall(ctx context.Context, function string, args []interface{}) (ethtypes.HexBytes0xPrefix, error) {
	fn, err := c.Function(ctx, function)
	if err != nil {
		return nil, err
	}
	jsonArgs, err := json.Marshal(args)
	if err == nil {
		var data []byte
		data, err = fn.EncodeCallDataJSONCtx(ctx, jsonArgs)
		if err == nil {
			return data, nil
		}
	}
	return nil, &Error{
		Kind:   ErrorKindSubmissionRejected,
		Reason: ErrorReasonInvalidInputs,
		err:    i18n.WrapError(ctx, err, msgs.MsgLedgerEncodeCallFailed, function),
	}
}
