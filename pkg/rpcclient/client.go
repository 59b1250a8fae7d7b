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

package rpcclient

import (
	"context"
	"net/url"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

const (
	RPCCodeInvalidRequest int64 = int64(rpcbackend.RPCCodeInvalidRequest)
	RPCCodeInternalError  int64 = int64(rpcbackend.RPCCodeInternalError)
)

type RPCError = rpcbackend.RPCError

type ErrorRPC interface {
	error
	RPCError() *RPCError
}

type Client interface {
	CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC
}

// NewHTTPClient is a thin wrapper around the firefly-signer rpcbackend, whose errors are
// not go errors (Error() returns an error rather than a string).
func NewHTTPClient(ctx context.Context, conf *htconf.HTTPClientConfig) (Client, error) {
	rc, err := ParseHTTPConfig(ctx, conf)
	if err != nil {
		return nil, err
	}
	return WrapRestyClient(rc), nil
}

func ParseHTTPConfig(ctx context.Context, conf *htconf.HTTPClientConfig) (*resty.Client, error) {
	u, err := url.Parse(conf.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgLedgerInvalidHTTPURL, conf.URL)
	}
	return ffresty.NewWithConfig(ctx, ffresty.Config{
		URL: u.String(),
		HTTPConfig: ffresty.HTTPConfig{
			HTTPHeaders:           conf.HTTPHeaders,
			AuthUsername:          conf.Auth.Username,
			AuthPassword:          conf.Auth.Password,
			HTTPRequestTimeout:    fftypes.FFDuration(confutil.DurationMin(conf.RequestTimeout, 0, *htconf.DefaultHTTPConfig.RequestTimeout)),
			HTTPConnectionTimeout: fftypes.FFDuration(confutil.DurationMin(conf.ConnectionTimeout, 0, *htconf.DefaultHTTPConfig.ConnectionTimeout)),
		},
	}), nil
}

func WrapRestyClient(rc *resty.Client) Client {
	return &httpWrap{c: rpcbackend.NewRPCClient(rc)}
}

// NewRPCError builds an error in the same shape as those returned by a node
func NewRPCError(code int64, message string) ErrorRPC {
	return &errWrap{e: &RPCError{Code: code, Message: message}}
}

type httpWrap struct {
	c rpcbackend.Backend
}

type errWrap struct {
	e *RPCError
}

func (w *errWrap) Error() string {
	return w.e.Message
}

func (w *errWrap) RPCError() *RPCError {
	return w.e
}

func (w *httpWrap) CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) ErrorRPC {
	if rpcErr := w.c.CallRPC(ctx, result, method, params...); rpcErr != nil {
		return &errWrap{rpcErr}
	}
	return nil
}
