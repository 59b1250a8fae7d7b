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

package htconf

import (
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
)

type HTTPBasicAuthConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type HTTPClientConfig struct {
	URL               string                 `json:"url"`
	HTTPHeaders       map[string]interface{} `json:"httpHeaders"`
	Auth              HTTPBasicAuthConfig    `json:"auth"`
	RequestTimeout    *string                `json:"requestTimeout,omitempty"`
	ConnectionTimeout *string                `json:"connectionTimeout,omitempty"`
}

var DefaultHTTPConfig = &HTTPClientConfig{
	ConnectionTimeout: confutil.P("30s"),
	RequestTimeout:    confutil.P("30s"),
}

// ContractConfig is a smart contract registry entry supplied in config.
// Entries stored in the smart_contracts table take precedence over config entries with the same name.
type ContractConfig struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	// ABI is optional for the well known contracts, which have a built-in ABI
	ABI     string `json:"abi,omitempty"`
	Version string `json:"version,omitempty"`
	Active  *bool  `json:"active,omitempty"`
}

type LedgerConfig struct {
	HTTP HTTPClientConfig `json:"http"`
	// hex encoded secp256k1 private key of the anchoring account
	PrivateKey string `json:"privateKey"`
	// gas limit set on every anchoring transaction
	GasLimit *int64 `json:"gasLimit"`
	// gas price (wei) used when the node cannot provide one
	FallbackGasPrice *string `json:"fallbackGasPrice"`
	// per call timeout for each individual JSON/RPC request
	CallTimeout *string          `json:"callTimeout"`
	Contracts   []ContractConfig `json:"contracts"`
}

var LedgerDefaults = &LedgerConfig{
	GasLimit:         confutil.P(int64(3000000)),
	FallbackGasPrice: confutil.P("20000000000"),
	CallTimeout:      confutil.P("30s"),
}
