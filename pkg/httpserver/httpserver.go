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

package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

var _ Server = &httpServer{}

type httpServer struct {
	ctx             context.Context
	cancelCtx       func()
	description     string
	listener        net.Listener
	httpServer      *http.Server
	httpServerDone  chan error
	shutdownTimeout time.Duration
	started         bool
}

// NewServer binds the listener straight away, so a port of 0 can be read back from Addr() before Start
func NewServer(ctx context.Context, description string, conf *htconf.HTTPServerConfig, handler http.Handler) (_ Server, err error) {
	s := &httpServer{
		description:     description,
		httpServerDone:  make(chan error),
		shutdownTimeout: confutil.DurationMin(conf.ShutdownTimeout, 0, *htconf.HTTPDefaults.ShutdownTimeout),
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)

	if conf.Port == nil {
		return nil, i18n.NewError(ctx, msgs.MsgHTTPServerMissingPort, description)
	}

	listenAddr := fmt.Sprintf("%s:%d", confutil.StringNotEmpty(conf.Address, *htconf.HTTPDefaults.Address), *conf.Port)
	if s.listener, err = net.Listen("tcp", listenAddr); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgHTTPServerStartFailed, listenAddr)
	}
	log.L(ctx).Infof("%s server listening on %s", description, s.listener.Addr())

	readTimeout := confutil.DurationMin(conf.ReadTimeout, time.Millisecond, *htconf.HTTPDefaults.ReadTimeout)
	writeTimeout := confutil.DurationMin(conf.WriteTimeout, time.Millisecond, *htconf.HTTPDefaults.WriteTimeout)
	maxBody := confutil.ByteSize(conf.MaxRequestBody, 1024, *htconf.HTTPDefaults.MaxRequestBody)

	handler = s.withLogAndLimits(handler, writeTimeout, maxBody)
	handler = WrapCorsIfEnabled(ctx, handler, &conf.CORS)

	log.L(ctx).Debugf("%s server timeouts: read=%s write=%s maxBody=%d", description, readTimeout, writeTimeout, maxBody)
	s.httpServer = &http.Server{
		Handler:           handler,
		WriteTimeout:      writeTimeout,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		ConnContext: func(newCtx context.Context, c net.Conn) context.Context {
			l := log.L(ctx).WithField("req", uuid.NewString()[:8])
			newCtx = log.WithLogger(newCtx, l)
			l.Debugf("New %s connection: remote=%s local=%s", description, c.RemoteAddr().String(), c.LocalAddr().String())
			return newCtx
		},
	}

	return s, nil
}

func (s *httpServer) Addr() net.Addr {
	return s.listener.Addr()
}

// statusRecorder keeps the status code for the access log line
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	sr.status = statusCode
	sr.ResponseWriter.WriteHeader(statusCode)
}

// withLogAndLimits bounds each request's context just inside the write timeout, so handlers
// blocked on the ledger node give up before the connection is cut
func (s *httpServer) withLogAndLimits(handler http.Handler, requestTimeout time.Duration, maxBody int64) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		startTime := time.Now()

		ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
		if req.Body != nil {
			req.Body = http.MaxBytesReader(res, req.Body, maxBody)
		}

		log.L(ctx).Debugf("--> %s %s (%s)", req.Method, req.URL.Path, s.description)

		sr := &statusRecorder{ResponseWriter: res, status: http.StatusOK}
		handler.ServeHTTP(sr, req)

		log.L(ctx).Debugf("<-- %s %s [%d] (%s)", req.Method, req.URL.Path, sr.status, time.Since(startTime).Round(time.Microsecond))
	})
}

func (s *httpServer) Start() error {
	s.started = true
	go func() {
		s.httpServerDone <- s.httpServer.Serve(s.listener)
	}()
	return nil
}

func (s *httpServer) Stop() {
	if !s.started {
		_ = s.listener.Close()
		s.cancelCtx()
		return
	}
	log.L(s.ctx).Infof("%s server shutting down", s.description)
	shutdownStarted := time.Now()
	gracefulShutdown := make(chan struct{})
	go func() {
		defer close(gracefulShutdown)
		_ = s.httpServer.Shutdown(s.ctx)
	}()
	select {
	case <-time.After(s.shutdownTimeout):
		log.L(s.ctx).Warnf("%s server terminating after waiting %s for shutdown", s.description, time.Since(shutdownStarted))
		_ = s.httpServer.Close()
	case <-gracefulShutdown:
	}
	s.cancelCtx()
	err := <-s.httpServerDone
	log.L(s.ctx).Infof("%s server ended (err=%v)", s.description, err)
	s.started = false
}
