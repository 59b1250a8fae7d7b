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
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/rpcclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"golang.org/x/crypto/sha3"
)

// Client is a facade over an Ethereum JSON/RPC node.
// Every failure is a *Error, and network or configuration failures are ErrorKindUnavailable.
type Client interface {
	IsConnected(ctx context.Context) bool
	BlockNumber(ctx context.Context) (int64, error)
	// CurrentFeeRate is the gas price in wei
	CurrentFeeRate(ctx context.Context) (*big.Int, error)
	// Submit signs and sends a legacy EIP-155 transaction, returning its hash
	Submit(ctx context.Context, req *TransactionRequest, key *secp256k1.KeyPair) (string, error)
	// Receipt returns nil, with no error, while the transaction is not yet mined
	Receipt(ctx context.Context, txHash string) (*Receipt, error)
	CallRead(ctx context.Context, contract, function string, args ...interface{}) (map[string]interface{}, error)
	Contract(ctx context.Context, name string) (*Contract, error)
	Status(ctx context.Context) *htapi.NetworkStatus

	// SigningKey is nil when no key is configured
	SigningKey() *secp256k1.KeyPair
	GasLimit() int64
}

type ledgerClient struct {
	rpc              rpcclient.Client
	registry         *Registry
	key              *secp256k1.KeyPair
	gasLimit         int64
	fallbackGasPrice *big.Int
	callTimeout      time.Duration

	submitLock  sync.Mutex
	chainIDLock sync.Mutex
	chainID     *int64
}

var resultSerializer = abi.NewSerializer().
	SetFormattingMode(abi.FormatAsObjects).
	SetIntSerializer(abi.Base10StringIntSerializer).
	SetFloatSerializer(abi.Base10StringFloatSerializer).
	SetByteSerializer(abi.HexByteSerializer0xPrefix)

// NewClient builds a client over the supplied JSON/RPC connection. A nil rpc, or an empty
// private key, gives a client on which the affected operations fail as unavailable.
func NewClient(ctx context.Context, conf *htconf.LedgerConfig, rpc rpcclient.Client, registry *Registry) (Client, error) {
	lc := &ledgerClient{
		rpc:         rpc,
		registry:    registry,
		gasLimit:    confutil.Int64Min(conf.GasLimit, 21000, *htconf.LedgerDefaults.GasLimit),
		callTimeout: confutil.DurationMin(conf.CallTimeout, 0, *htconf.LedgerDefaults.CallTimeout),
	}
	if lc.registry == nil {
		lc.registry = NewRegistry()
	}
	lc.fallbackGasPrice = confutil.BigInt(conf.FallbackGasPrice, *htconf.LedgerDefaults.FallbackGasPrice)
	if conf.PrivateKey != "" {
		key, err := ParsePrivateKey(ctx, conf.PrivateKey)
		if err != nil {
			return nil, err
		}
		lc.key = key
		log.L(ctx).Infof("Anchoring account: %s", key.Address)
	} else {
		log.L(ctx).Warnf("No signing key configured. Anchoring is disabled")
	}
	return lc, nil
}

func ParsePrivateKey(ctx context.Context, hexKey string) (*secp256k1.KeyPair, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil || len(b) != 32 {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidPrivateKey)
	}
	kp, err := secp256k1.NewSecp256k1KeyPair(b)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidPrivateKey)
	}
	return kp, nil
}

func (lc *ledgerClient) SigningKey() *secp256k1.KeyPair {
	return lc.key
}

func (lc *ledgerClient) GasLimit() int64 {
	return lc.gasLimit
}

func (lc *ledgerClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if lc.rpc == nil {
		return i18n.NewError(ctx, msgs.MsgLedgerUnavailable, "no endpoint configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, lc.callTimeout)
	defer cancel()
	if rpcErr := lc.rpc.CallRPC(callCtx, result, method, params...); rpcErr != nil {
		log.L(ctx).Errorf("%s failed: %s", method, rpcErr)
		return rpcErr
	}
	return nil
}

func (lc *ledgerClient) IsConnected(ctx context.Context) bool {
	_, err := lc.BlockNumber(ctx)
	return err == nil
}

func (lc *ledgerClient) BlockNumber(ctx context.Context) (int64, error) {
	var blockNumber ethtypes.HexUint64
	if err := lc.call(ctx, &blockNumber, "eth_blockNumber"); err != nil {
		return -1, unavailableError(ctx, err, msgs.MsgLedgerRPCFailed, "eth_blockNumber")
	}
	return int64(blockNumber.Uint64()), nil
}

func (lc *ledgerClient) getChainID(ctx context.Context) (int64, error) {
	lc.chainIDLock.Lock()
	defer lc.chainIDLock.Unlock()
	if lc.chainID == nil {
		var chainID ethtypes.HexUint64
		if err := lc.call(ctx, &chainID, "eth_chainId"); err != nil {
			return -1, unavailableError(ctx, err, msgs.MsgLedgerChainIDFailed)
		}
		lc.chainID = confutil.P(int64(chainID.Uint64()))
	}
	return *lc.chainID, nil
}

func (lc *ledgerClient) CurrentFeeRate(ctx context.Context) (*big.Int, error) {
	var gasPrice ethtypes.HexInteger
	err := lc.call(ctx, &gasPrice, "eth_gasPrice")
	if err != nil || gasPrice.BigInt().Sign() <= 0 {
		log.L(ctx).Warnf("No usable gas price from node (err=%v). Using fallback %s", err, lc.fallbackGasPrice)
		return new(big.Int).Set(lc.fallbackGasPrice), nil
	}
	return gasPrice.BigInt(), nil
}

func (lc *ledgerClient) Contract(ctx context.Context, name string) (*Contract, error) {
	c, ok := lc.registry.Get(name)
	if !ok {
		return nil, unavailableError(ctx, nil, msgs.MsgLedgerContractNotLoaded, name)
	}
	return c, nil
}

func (lc *ledgerClient) Submit(ctx context.Context, req *TransactionRequest, key *secp256k1.KeyPair) (string, error) {
	if key == nil {
		return "", unavailableError(ctx, nil, msgs.MsgLedgerNotConfigured)
	}

	// a single account submits, so the nonce query and the send must not interleave
	lc.submitLock.Lock()
	defer lc.submitLock.Unlock()

	chainID, err := lc.getChainID(ctx)
	if err != nil {
		return "", err
	}

	var nonce uint64
	if req.Nonce != nil {
		nonce = *req.Nonce
	} else {
		var txCount ethtypes.HexUint64
		if err := lc.call(ctx, &txCount, "eth_getTransactionCount", key.Address.String(), "pending"); err != nil {
			return "", unavailableError(ctx, err, msgs.MsgLedgerRPCFailed, "eth_getTransactionCount")
		}
		nonce = txCount.Uint64()
	}

	to := req.To
	tx := &ethsigner.Transaction{
		Nonce:    ethtypes.NewHexInteger(new(big.Int).SetUint64(nonce)),
		GasPrice: ethtypes.NewHexInteger(req.GasPrice),
		GasLimit: ethtypes.NewHexInteger64(req.GasLimit),
		To:       &to,
		Data:     req.Data,
	}

	sigPayload := tx.SignaturePayloadLegacyEIP155(chainID)
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(sigPayload.Bytes())
	sig, err := key.SignDirect(hash.Sum(nil))
	var rawTX []byte
	if err == nil {
		rawTX, err = tx.FinalizeLegacyEIP155WithSignature(sigPayload, sig, chainID)
	}
	if err != nil {
		return "", &Error{Kind: ErrorKindSubmissionRejected, Reason: ErrorReasonInvalidInputs, err: i18n.WrapError(ctx, err, msgs.MsgLedgerSigningFailed)}
	}

	var txHash string
	if err := lc.call(ctx, &txHash, "eth_sendRawTransaction", ethtypes.HexBytes0xPrefix(rawTX)); err != nil {
		if MapError(err) == ErrorKnownTransaction {
			// a resend of the same signed bytes, so the hash is that of the pool copy
			txHash = rawTransactionHash(rawTX)
			log.L(ctx).Infof("Transaction %s already known to the node (nonce=%d to=%s)", txHash, nonce, req.To)
			return txHash, nil
		}
		if MapSubmissionRejected(err) {
			return "", rejectedError(ctx, MapError(err), err)
		}
		return "", unavailableError(ctx, err, msgs.MsgLedgerRPCFailed, "eth_sendRawTransaction")
	}
	log.L(ctx).Infof("Submitted transaction %s (nonce=%d to=%s)", txHash, nonce, req.To)
	return txHash, nil
}

func rawTransactionHash(rawTX []byte) string {
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(rawTX)
	return ethtypes.HexBytes0xPrefix(hash.Sum(nil)).String()
}

func (lc *ledgerClient) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	var r *txReceiptJSONRPC
	if err := lc.call(ctx, &r, "eth_getTransactionReceipt", txHash); err != nil {
		return nil, unavailableError(ctx, err, msgs.MsgLedgerRPCFailed, "eth_getTransactionReceipt")
	}
	if r == nil || r.BlockNumber == nil {
		return nil, nil
	}
	receipt := &Receipt{
		TransactionHash: txHash,
		Success:         r.Status != nil && r.Status.BigInt().Sign() > 0,
		BlockNumber:     r.BlockNumber.BigInt().Int64(),
	}
	if r.GasUsed != nil {
		receipt.GasUsed = r.GasUsed.BigInt().Int64()
		if r.EffectiveGasPrice != nil {
			receipt.FeePaid = new(big.Int).Mul(r.GasUsed.BigInt(), r.EffectiveGasPrice.BigInt())
		}
	}
	if !receipt.Success && r.RevertReason != nil {
		receipt.RevertReason = decodeRevertReason(ctx, r.RevertReason.String())
	}
	return receipt, nil
}

func (lc *ledgerClient) CallRead(ctx context.Context, contract, function string, args ...interface{}) (map[string]interface{}, error) {
	c, err := lc.Contract(ctx, contract)
	if err != nil {
		return nil, err
	}
	fn, err := c.Function(ctx, function)
	if err != nil {
		return nil, err
	}
	callData, err := c.EncodeCall(ctx, function, args)
	if err != nil {
		return nil, err
	}

	to := c.Address
	var data ethtypes.HexBytes0xPrefix
	if err := lc.call(ctx, &data, "eth_call", &ethsigner.Transaction{To: &to, Data: callData}, "latest"); err != nil {
		if MapError(err) == ErrorReasonTransactionReverted {
			return nil, notFoundError(ctx, msgs.MsgLedgerCallReverted, err)
		}
		return nil, unavailableError(ctx, err, msgs.MsgLedgerRPCFailed, "eth_call")
	}

	cv, err := fn.Outputs.DecodeABIDataCtx(ctx, data, 0)
	var result map[string]interface{}
	if err == nil {
		var b []byte
		b, err = resultSerializer.SerializeJSONCtx(ctx, cv)
		if err == nil {
			err = json.Unmarshal(b, &result)
		}
	}
	if err != nil {
		// typically empty data from an address with no contract deployed
		return nil, &Error{Kind: ErrorKindNotFound, Reason: ErrorReasonNotFound, err: i18n.WrapError(ctx, err, msgs.MsgLedgerDecodeResultFailed, function)}
	}
	return result, nil
}

// Status is a best effort summary of the node, and never fails
func (lc *ledgerClient) Status(ctx context.Context) *htapi.NetworkStatus {
	ns := &htapi.NetworkStatus{
		ContractsLoaded: lc.registry.Names(),
	}
	if lc.key != nil {
		ns.Account = lc.key.Address.String()
	}
	latest, err := lc.BlockNumber(ctx)
	if err != nil {
		return ns
	}
	ns.Connected = true
	ns.LatestBlock = latest
	if chainID, err := lc.getChainID(ctx); err == nil {
		ns.ChainID = chainID
	}
	if gasPrice, err := lc.CurrentFeeRate(ctx); err == nil {
		ns.GasPriceGwei = weiToGwei(gasPrice)
	}
	if lc.key != nil {
		var balance ethtypes.HexInteger
		if err := lc.call(ctx, &balance, "eth_getBalance", ns.Account, "latest"); err == nil {
			ns.Balance = WeiToEther(balance.BigInt())
		}
	}
	return ns
}
