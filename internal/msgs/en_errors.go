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

package msgs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const anchorPrefix = "HT01"

var registered = false
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	if !registered {
		i18n.RegisterPrefix(anchorPrefix, "HerbTrace Ledger Anchoring")
		registered = true
	}
	if !strings.HasPrefix(key, anchorPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", anchorPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config HT0100XX
	MsgConfigFileMissing    = ffe("HT010000", "Config file not found at path: %s")
	MsgConfigFileReadError  = ffe("HT010001", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError = ffe("HT010002", "Failed to parse config file: %s")
	MsgContextCanceled      = ffe("HT010003", "Context canceled")
	MsgInvalidPrivateKey    = ffe("HT010004", "Invalid signing key configured")

	// Persistence HT0101XX
	MsgPersistenceInvalidType         = ffe("HT010100", "Invalid persistence type: %s")
	MsgPersistenceMissingURI          = ffe("HT010101", "Missing database connection URI")
	MsgPersistenceInitFailed          = ffe("HT010102", "Database init failed")
	MsgPersistenceMigrationFailed     = ffe("HT010103", "Database migration failed")
	MsgPersistenceMissingMigrationDir = ffe("HT010104", "Missing database migration directory for autoMigrate")

	// Ledger client HT0102XX
	MsgLedgerUnavailable           = ffe("HT010200", "Ledger unavailable: %s", http.StatusServiceUnavailable)
	MsgLedgerNotConfigured         = ffe("HT010201", "Ledger client is not configured with a signing key")
	MsgLedgerContractNotLoaded     = ffe("HT010202", "Contract '%s' is not loaded", http.StatusServiceUnavailable)
	MsgLedgerSubmissionRejected    = ffe("HT010203", "Transaction rejected by the ledger node (reason=%s): %s", http.StatusBadRequest)
	MsgLedgerFunctionNotFound      = ffe("HT010204", "Function '%s' not found in ABI of contract '%s'")
	MsgLedgerEncodeCallFailed      = ffe("HT010205", "Failed to encode call to '%s'")
	MsgLedgerDecodeResultFailed    = ffe("HT010206", "Failed to decode result of '%s'")
	MsgLedgerRPCFailed             = ffe("HT010207", "JSON/RPC %s failed")
	MsgLedgerChainIDFailed         = ffe("HT010208", "Failed to query chain ID")
	MsgLedgerInvalidHTTPURL        = ffe("HT010209", "Invalid HTTP URL for ledger endpoint: %s")
	MsgLedgerInvalidContractABI    = ffe("HT010210", "Invalid ABI for contract '%s'")
	MsgLedgerInvalidContractAddr   = ffe("HT010211", "Invalid address '%s' for contract '%s'")
	MsgLedgerSigningFailed         = ffe("HT010212", "Failed to sign transaction")
	MsgLedgerReceiptNotFound       = ffe("HT010213", "Receipt not found for transaction %s", http.StatusNotFound)
	MsgLedgerCallReverted          = ffe("HT010214", "Read call reverted: %s")
	MsgLedgerContractRegistryLoad  = ffe("HT010215", "Failed to load smart contract registry")
	MsgLedgerUnknownContractName   = ffe("HT010216", "No ABI available for contract '%s'")
	MsgLedgerTransactionNotFound   = ffe("HT010217", "Transaction %s not found on the ledger", http.StatusNotFound)
	MsgLedgerNoDefaultABI          = ffe("HT010218", "No built-in ABI for contract '%s'")
	MsgLedgerInvalidTransactionRef = ffe("HT010219", "Invalid transaction reference '%s'", http.StatusBadRequest)

	// Records HT0103XX
	MsgRecordNotFound          = ffe("HT010300", "%s record '%s' not found", http.StatusNotFound)
	MsgRecordKindUnknown       = ffe("HT010301", "Unknown record kind '%s'", http.StatusBadRequest)
	MsgRecordKindNotAnchorable = ffe("HT010302", "Record kind '%s' cannot be anchored", http.StatusBadRequest)
	MsgRecordInvalidField      = ffe("HT010303", "Invalid value for field '%s': %s", http.StatusBadRequest)
	MsgRecordMissingField      = ffe("HT010304", "Missing required field '%s'", http.StatusBadRequest)
	MsgHashCanonicalFailed     = ffe("HT010305", "Failed to build canonical form of %s record")

	// Anchoring HT0104XX
	MsgAnchorPersistFailed      = ffe("HT010400", "Transaction %s submitted but local record could not be stored")
	MsgAnchorWriteBackFailed    = ffe("HT010401", "Failed to store ledger reference %s on %s record '%s'")
	MsgSchedulerStopped         = ffe("HT010402", "Anchoring scheduler is stopped")
	MsgSchedulerQueueFull       = ffe("HT010403", "Anchoring queue is full", http.StatusTooManyRequests)
	MsgRetryAttemptsExhausted   = ffe("HT010404", "Gave up after %d attempts")
	MsgEventBusListenerExists   = ffe("HT010405", "Listener '%s' already registered")
	MsgEventBusDeliveryTimeout  = ffe("HT010406", "Timed out delivering event to listener '%s'")
	MsgEventBusListenerNotFound = ffe("HT010407", "Listener '%s' not found")
	MsgAnchorPayloadEncode      = ffe("HT010408", "Transaction %s submitted but its audit payload could not be encoded")

	// Reconcile and verify HT0105XX
	MsgTransactionNotFound   = ffe("HT010500", "Transaction record %s not found", http.StatusNotFound)
	MsgTransactionNotPending = ffe("HT010501", "Transaction record %s is no longer pending")
	MsgVerifyNotAnchored     = ffe("HT010502", "%s record '%s' not found on the ledger", http.StatusNotFound)
	MsgVerifyHashMismatch    = ffe("HT010503", "Hash mismatch for %s record '%s': local=%s ledger=%s", http.StatusConflict)
	MsgVerifyNotSupported    = ffe("HT010504", "Ledger verification not supported for %s records", http.StatusBadRequest)
	MsgCronjobTimeout        = ffe("HT010505", "Job '%s' timed out after %s")

	// HTTP server HT0106XX
	MsgHTTPServerStartFailed = ffe("HT010600", "Failed to start server on '%s'")
	MsgHTTPInvalidQuery      = ffe("HT010601", "Invalid query parameter '%s': %s", http.StatusBadRequest)
	MsgHTTPServerMissingPort = ffe("HT010602", "Port must be configured for the %s server")
	MsgHTTPInvalidPathParam  = ffe("HT010603", "Invalid path parameter '%s': %s", http.StatusBadRequest)
	MsgHTTPRouteNotFound     = ffe("HT010604", "No route for %s %s", http.StatusNotFound)
	MsgHTTPInvalidBody       = ffe("HT010605", "Invalid request body: %s", http.StatusBadRequest)

	// Components HT0107XX
	MsgComponentDBInitError            = ffe("HT010700", "Error initializing database")
	MsgComponentLedgerInitError        = ffe("HT010701", "Error initializing ledger client")
	MsgComponentRegistryInitError      = ffe("HT010702", "Error loading contract registry")
	MsgComponentStatusServerInitError  = ffe("HT010703", "Error initializing status server")
	MsgComponentSchedulerStartError    = ffe("HT010704", "Error starting anchoring scheduler")
	MsgComponentStatusServerStartError = ffe("HT010705", "Error starting status server")
	MsgComponentDebugServerStartError  = ffe("HT010706", "Error starting debug server")
)
