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
	"encoding/json"
	"net/http"
	"net/http/pprof"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/gorilla/mux"
)

// DebugServer serves pprof, plus a log level switch, on its own listener
type DebugServer interface {
	Server
	Router() *mux.Router
}

type debugServer struct {
	Server
	r *mux.Router
}

func (ds *debugServer) Router() *mux.Router {
	return ds.r
}

type logLevel struct {
	Level string `json:"level"`
}

func logLevelHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodPut {
		var body logLevel
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Level == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		log.SetLevel(body.Level)
		log.L(req.Context()).Infof("Log level set to %s", log.GetLevel())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&logLevel{Level: log.GetLevel()})
}

func NewDebugServer(ctx context.Context, conf *htconf.HTTPServerConfig) (_ DebugServer, err error) {
	r := mux.NewRouter()
	r.HandleFunc("/debug/loglevel", logLevelHandler).Methods(http.MethodGet, http.MethodPut)
	r.PathPrefix("/debug/pprof/cmdline").HandlerFunc(pprof.Cmdline)
	r.PathPrefix("/debug/pprof/profile").HandlerFunc(pprof.Profile)
	r.PathPrefix("/debug/pprof/symbol").HandlerFunc(pprof.Symbol)
	r.PathPrefix("/debug/pprof/trace").HandlerFunc(pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	server, err := NewServer(ctx, "Debug", conf, r)
	if err != nil {
		return nil, err
	}
	return &debugServer{Server: server, r: r}, nil
}
