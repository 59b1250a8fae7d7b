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

package metrics

import (
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "herbtrace"

const (
	OutcomeSubmitted = "submitted"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

type Metrics interface {
	Registry() *prometheus.Registry

	// anchoring
	IncAnchorAttempts(kind htapi.Kind, outcome string)
	IncAnchorRetries(kind htapi.Kind)
	IncAnchorGaveUp(kind htapi.Kind)

	// reconciliation
	IncReconciled(status htapi.TransactionStatus)
	SetPendingTransactions(n int)
	AddCleanedUp(n int64)
}

type anchorMetrics struct {
	registry       *prometheus.Registry
	anchorAttempts *prometheus.CounterVec
	anchorRetries  *prometheus.CounterVec
	anchorGaveUp   *prometheus.CounterVec
	reconciled     *prometheus.CounterVec
	pendingTxns    prometheus.Gauge
	cleanedUpTxns  prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry. A nil registry is allowed
// and one is created.
func NewMetrics(registry *prometheus.Registry) Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &anchorMetrics{registry: registry}

	m.anchorAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "anchor",
		Name: "attempts_total", Help: "Anchoring attempts by record kind and outcome"}, []string{"kind", "outcome"})
	m.anchorRetries = prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "anchor",
		Name: "retries_total", Help: "Anchoring attempts scheduled for retry"}, []string{"kind"})
	m.anchorGaveUp = prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "anchor",
		Name: "gave_up_total", Help: "Records abandoned after exhausting retries"}, []string{"kind"})
	m.reconciled = prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "reconcile",
		Name: "transitions_total", Help: "Transaction records moved out of PENDING"}, []string{"status"})
	m.pendingTxns = prometheus.NewGauge(prometheus.GaugeOpts{Namespace: metricsNamespace, Subsystem: "reconcile",
		Name: "pending_transactions", Help: "PENDING transaction records seen by the last reconciliation run"})
	m.cleanedUpTxns = prometheus.NewCounter(prometheus.CounterOpts{Namespace: metricsNamespace, Subsystem: "cleanup",
		Name: "deleted_total", Help: "FAILED transaction records deleted by the cleanup job"})

	registry.MustRegister(m.anchorAttempts)
	registry.MustRegister(m.anchorRetries)
	registry.MustRegister(m.anchorGaveUp)
	registry.MustRegister(m.reconciled)
	registry.MustRegister(m.pendingTxns)
	registry.MustRegister(m.cleanedUpTxns)
	return m
}

func (m *anchorMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *anchorMetrics) IncAnchorAttempts(kind htapi.Kind, outcome string) {
	m.anchorAttempts.WithLabelValues(string(kind), outcome).Inc()
}

func (m *anchorMetrics) IncAnchorRetries(kind htapi.Kind) {
	m.anchorRetries.WithLabelValues(string(kind)).Inc()
}

func (m *anchorMetrics) IncAnchorGaveUp(kind htapi.Kind) {
	m.anchorGaveUp.WithLabelValues(string(kind)).Inc()
}

func (m *anchorMetrics) IncReconciled(status htapi.TransactionStatus) {
	m.reconciled.WithLabelValues(string(status)).Inc()
}

func (m *anchorMetrics) SetPendingTransactions(n int) {
	m.pendingTxns.Set(float64(n))
}

func (m *anchorMetrics) AddCleanedUp(n int64) {
	m.cleanedUpTxns.Add(float64(n))
}
