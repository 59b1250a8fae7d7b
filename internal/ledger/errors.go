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
	"errors"
	"strings"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// ErrorKind classifies every failure returned by the ledger client
type ErrorKind int

const (
	// ErrorKindUnavailable is a network or configuration failure, and is transient
	ErrorKindUnavailable ErrorKind = iota + 1
	// ErrorKindSubmissionRejected means the node refused the content of the transaction, and retrying will not help
	ErrorKindSubmissionRejected
	// ErrorKindNotFound means the queried entity does not exist on the ledger
	ErrorKindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUnavailable:
		return "unavailable"
	case ErrorKindSubmissionRejected:
		return "submission_rejected"
	case ErrorKindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ErrorReason is the classification of an error string returned by an Ethereum node
type ErrorReason string

const (
	ErrorReasonInvalidInputs          ErrorReason = "invalid_inputs"
	ErrorReasonTransactionReverted    ErrorReason = "transaction_reverted"
	ErrorReasonNonceTooLow            ErrorReason = "nonce_too_low"
	ErrorReasonTransactionUnderpriced ErrorReason = "transaction_underpriced"
	ErrorReasonInsufficientFunds      ErrorReason = "insufficient_funds"
	ErrorReasonNotFound               ErrorReason = "not_found"
	ErrorKnownTransaction             ErrorReason = "known_transaction"
)

type Error struct {
	Kind   ErrorKind
	Reason ErrorReason
	err    error
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.Kind.String() + ": " + string(e.Reason)
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns zero for errors that did not come from the ledger client
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// IsTransient reports whether the operation that returned err is worth retrying
func IsTransient(err error) bool {
	return KindOf(err) == ErrorKindUnavailable
}

// NewUnavailableError is for callers that detect an unusable ledger before making a call
func NewUnavailableError(ctx context.Context, msg i18n.ErrorMessageKey, inserts ...interface{}) error {
	return unavailableError(ctx, nil, msg, inserts...)
}

func unavailableError(ctx context.Context, cause error, msg i18n.ErrorMessageKey, inserts ...interface{}) error {
	return &Error{Kind: ErrorKindUnavailable, err: wrap(ctx, cause, msg, inserts...)}
}

func rejectedError(ctx context.Context, reason ErrorReason, cause error) error {
	return &Error{Kind: ErrorKindSubmissionRejected, Reason: reason, err: i18n.NewError(ctx, msgs.MsgLedgerSubmissionRejected, reason, cause)}
}

func notFoundError(ctx context.Context, msg i18n.ErrorMessageKey, inserts ...interface{}) error {
	return &Error{Kind: ErrorKindNotFound, Reason: ErrorReasonNotFound, err: i18n.NewError(ctx, msg, inserts...)}
}

func wrap(ctx context.Context, cause error, msg i18n.ErrorMessageKey, inserts ...interface{}) error {
	if cause == nil {
		return i18n.NewError(ctx, msg, inserts...)
	}
	return i18n.WrapError(ctx, cause, msg, inserts...)
}

// MapSubmissionRejected reports whether a node error rejects the content of the transaction
func MapSubmissionRejected(err error) bool {
	switch MapError(err) {
	case ErrorReasonInvalidInputs,
		ErrorReasonTransactionReverted,
		ErrorReasonInsufficientFunds:
		return true
	default:
		// everything else is eligible for a retry of the submission
		return false
	}
}

func MapError(err error) ErrorReason {
	errString := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errString, "nonce too low"):
		return ErrorReasonNonceTooLow
	case strings.Contains(errString, "insufficient funds"):
		return ErrorReasonInsufficientFunds
	case strings.Contains(errString, "transaction underpriced"):
		return ErrorReasonTransactionUnderpriced
	case strings.Contains(errString, "known transaction"),
		strings.Contains(errString, "already known"):
		return ErrorKnownTransaction
	case strings.Contains(errString, "execution reverted"):
		return ErrorReasonTransactionReverted
	case strings.Contains(errString, "invalid argument"),
		strings.Contains(errString, "rlp:"),
		strings.Contains(errString, "intrinsic gas too low"),
		strings.Contains(errString, "exceeds block gas limit"):
		return ErrorReasonInvalidInputs
	default:
		return ""
	}
}
