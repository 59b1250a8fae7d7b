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

package statusserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/reconcile"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/scheduler"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/txstore"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/verifier"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/httpserver"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type StatusServer interface {
	Start() error
	Stop()
	Addr() net.Addr
}

// Components are the parts of the daemon the API reads from, or triggers
type Components struct {
	Registry   *prometheus.Registry
	TxStore    txstore.Store
	Records    records.Store
	Ledger     ledger.Client
	Reconciler reconcile.Reconciler
	Verifier   verifier.Verifier
	Scheduler  scheduler.Scheduler
}

type statusServer struct {
	bgCtx      context.Context
	c          *Components
	router     *mux.Router
	httpServer httpserver.Server
}

// NewStatusServer returns a server that does nothing when disabled in configuration
func NewStatusServer(bgCtx context.Context, conf *htconf.StatusServerConfig, c *Components) (_ StatusServer, err error) {
	s := &statusServer{
		bgCtx: log.WithRole(bgCtx, "statusserver"),
		c:     c,
	}
	s.router = s.buildRouter(confutil.Bool(conf.Metrics, *htconf.StatusServerDefaults.Metrics))
	if confutil.Bool(conf.Enabled, *htconf.StatusServerDefaults.Enabled) {
		httpConf := conf.HTTPServerConfig
		if httpConf.Port == nil {
			httpConf.Port = htconf.StatusServerDefaults.Port
		}
		if s.httpServer, err = httpserver.NewServer(s.bgCtx, "Status", &httpConf, s.router); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *statusServer) buildRouter(metrics bool) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/transactions", s.listTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{hash}", s.getTransaction).Methods(http.MethodGet)
	api.HandleFunc("/analytics", s.getAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/ledger", s.getLedger).Methods(http.MethodGet)
	api.HandleFunc("/records/{kind}", s.createRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/{kind}/{id}/verify", s.verifyRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/{kind}/{id}/anchor", s.anchorRecord).Methods(http.MethodPost)
	if metrics && s.c.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.c.Registry, promhttp.HandlerOpts{}))
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, i18n.NewError(req.Context(), msgs.MsgHTTPRouteNotFound, req.Method, req.URL.Path))
	})
	return r
}

func (s *statusServer) Start() error {
	if s.httpServer != nil {
		return s.httpServer.Start()
	}
	return nil
}

func (s *statusServer) Stop() {
	if s.httpServer != nil {
		s.httpServer.Stop()
	}
}

func (s *statusServer) Addr() net.Addr {
	if s.httpServer != nil {
		return s.httpServer.Addr()
	}
	return nil
}

func (s *statusServer) listTransactions(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	q := req.URL.Query()
	filter := &htapi.TransactionFilter{
		SubjectID: q.Get("subject"),
		BatchID:   q.Get("batch"),
		Limit:     defaultListLimit,
	}
	if v := q.Get("kind"); v != "" {
		kind, ok := htapi.ParseKind(v)
		if !ok {
			s.writeError(w, req, i18n.NewError(ctx, msgs.MsgHTTPInvalidQuery, "kind", v))
			return
		}
		filter.Kind = kind
	}
	if v := q.Get("status"); v != "" {
		status, ok := htapi.ParseStatus(v)
		if !ok {
			s.writeError(w, req, i18n.NewError(ctx, msgs.MsgHTTPInvalidQuery, "status", v))
			return
		}
		filter.Status = status
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			s.writeError(w, req, i18n.NewError(ctx, msgs.MsgHTTPInvalidQuery, "limit", v))
			return
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		filter.Limit = limit
	}
	txs, err := s.c.TxStore.List(ctx, filter)
	if err != nil {
		s.writeError(w, req, err)
		return
	}
	s.writeJSON(w, req, http.StatusOK, txs)
}

func (s *statusServer) getTransaction(w http.ResponseWriter, req *http.Request) {
	info, err := s.c.Reconciler.TransactionStatus(req.Context(), mux.Vars(req)["hash"])
	if err != nil {
		s.writeError(w, req, err)
		return
	}
	s.writeJSON(w, req, http.StatusOK, info)
}

func (s *statusServer) getAnalytics(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	stats, err := s.c.TxStore.Stats(ctx)
	if err != nil {
		s.writeError(w, req, err)
		return
	}
	s.writeJSON(w, req, http.StatusOK, &htapi.Analytics{
		Network:      s.c.Ledger.Status(ctx),
		Transactions: stats,
	})
}

func (s *statusServer) getLedger(w http.ResponseWriter, req *http.Request) {
	s.writeJSON(w, req, http.StatusOK, s.c.Ledger.Status(req.Context()))
}

func (s *statusServer) recordParams(req *http.Request) (htapi.Kind, string, error) {
	vars := mux.Vars(req)
	kind, ok := htapi.ParseKind(vars["kind"])
	if !ok {
		return "", "", i18n.NewError(req.Context(), msgs.MsgHTTPInvalidPathParam, "kind", vars["kind"])
	}
	return kind, vars["id"], nil
}

// createRecord writes a domain record, which is anchored once the trigger delay passes
func (s *statusServer) createRecord(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	kindParam := mux.Vars(req)["kind"]
	kind, ok := htapi.ParseKind(kindParam)
	if !ok {
		s.writeError(w, req, i18n.NewError(ctx, msgs.MsgHTTPInvalidPathParam, "kind", kindParam))
		return
	}
	var rec htapi.AnchorRecord
	var create func() error
	switch kind {
	case htapi.KindCollection:
		r := &htapi.CollectionRecord{}
		rec, create = r, func() error { return s.c.Records.CreateBatch(ctx, r) }
	case htapi.KindProcessing:
		r := &htapi.ProcessingRecord{}
		rec, create = r, func() error { return s.c.Records.CreateProcessingEvent(ctx, r) }
	case htapi.KindQualityTest:
		r := &htapi.QualityTestRecord{}
		rec, create = r, func() error { return s.c.Records.CreateQualityTest(ctx, r) }
	default:
		s.writeError(w, req, i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, kind))
		return
	}
	if err := json.NewDecoder(req.Body).Decode(rec); err != nil {
		s.writeError(w, req, i18n.NewError(ctx, msgs.MsgHTTPInvalidBody, err))
		return
	}
	if err := create(); err != nil {
		s.writeError(w, req, err)
		return
	}
	s.writeJSON(w, req, http.StatusCreated, rec)
}

func (s *statusServer) verifyRecord(w http.ResponseWriter, req *http.Request) {
	kind, id, err := s.recordParams(req)
	if err == nil {
		var res *htapi.VerifyResult
		if res, err = s.c.Verifier.Verify(req.Context(), kind, id); err == nil {
			s.writeJSON(w, req, http.StatusOK, res)
			return
		}
	}
	s.writeError(w, req, err)
}

type anchorAccepted struct {
	Kind      htapi.Kind `json:"kind"`
	SubjectID string     `json:"subjectId"`
	Queued    bool       `json:"queued"`
}

func (s *statusServer) anchorRecord(w http.ResponseWriter, req *http.Request) {
	kind, id, err := s.recordParams(req)
	if err == nil {
		if err = s.c.Scheduler.Enqueue(req.Context(), kind, id); err == nil {
			s.writeJSON(w, req, http.StatusAccepted, &anchorAccepted{Kind: kind, SubjectID: id, Queued: true})
			return
		}
	}
	s.writeError(w, req, err)
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorStatus(err error) int {
	switch ledger.KindOf(err) {
	case ledger.ErrorKindUnavailable:
		return http.StatusServiceUnavailable
	case ledger.ErrorKindSubmissionRejected:
		return http.StatusBadGateway
	case ledger.ErrorKindNotFound:
		return http.StatusNotFound
	}
	var ffe i18n.FFError
	if errors.As(err, &ffe) {
		return ffe.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func (s *statusServer) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.L(req.Context()).Errorf("%s %s failed: %s", req.Method, req.URL.Path, err)
	} else {
		log.L(req.Context()).Debugf("%s %s rejected [%d]: %s", req.Method, req.URL.Path, status, err)
	}
	s.writeJSON(w, req, status, &errorResponse{Error: err.Error()})
}

func (s *statusServer) writeJSON(w http.ResponseWriter, req *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L(req.Context()).Warnf("Failed to write response: %s", err)
	}
}
