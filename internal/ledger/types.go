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
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/shopspring/decimal"
)

// TransactionRequest is an unsigned call to a contract. A nil nonce is filled from the node.
type TransactionRequest struct {
	To       ethtypes.Address0xHex
	Data     ethtypes.HexBytes0xPrefix
	GasLimit int64
	GasPrice *big.Int
	Nonce    *uint64
}

// Receipt is the outcome of a mined transaction
type Receipt struct {
	TransactionHash string
	Success         bool
	BlockNumber     int64
	GasUsed         int64
	// FeePaid is nil when the node does not report an effective gas price
	FeePaid      *big.Int
	RevertReason string
}

// txReceiptJSONRPC is the subset of the JSON/RPC receipt that is used
type txReceiptJSONRPC struct {
	BlockNumber       *ethtypes.HexInteger       `json:"blockNumber"`
	GasUsed           *ethtypes.HexInteger       `json:"gasUsed"`
	EffectiveGasPrice *ethtypes.HexInteger       `json:"effectiveGasPrice"`
	Status            *ethtypes.HexInteger       `json:"status"`
	TransactionHash   ethtypes.HexBytes0xPrefix  `json:"transactionHash"`
	RevertReason      *ethtypes.HexBytes0xPrefix `json:"revertReason"`
}

var (
	// revert("some error") returns the data of a call to Error(string)
	defaultError = &abi.Entry{
		Type: abi.Error,
		Name: "Error",
		Inputs: abi.ParameterArray{
			{Type: "string"},
		},
	}
	defaultErrorID = defaultError.FunctionSelectorBytes()
)

func decodeRevertReason(ctx context.Context, revertData string) string {
	returnDataBytes, _ := hex.DecodeString(padHexData(revertData))
	if len(returnDataBytes) > 4 && bytes.Equal(returnDataBytes[0:4], defaultErrorID) {
		value, err := defaultError.DecodeCallDataCtx(ctx, returnDataBytes)
		if err == nil && len(value.Children) == 1 {
			if s, ok := value.Children[0].Value.(string); ok {
				return s
			}
		}
	}
	return revertData
}

func padHexData(hexString string) string {
	hexString = strings.TrimPrefix(hexString, "0x")
	if len(hexString)%2 == 1 {
		hexString = "0" + hexString
	}
	return hexString
}

// WeiToEther converts an amount in wei to an exact decimal amount of ether
func WeiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}

func weiToGwei(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -9)
}
