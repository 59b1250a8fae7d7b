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

package anchord

import (
	"context"
	"sync"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/anchoring"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/cronjob"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/events"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/ledger"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/metrics"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/reconcile"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/scheduler"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/statusserver"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/txstore"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/verifier"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/httpserver"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/rpcclient"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Manager owns every component of the daemon. Init builds them all, so the one-shot
// commands can use them without Start bringing up the scheduler, cronjobs and status server.
type Manager interface {
	Init() error
	Start() error
	Stop()

	Persistence() persistence.Persistence
	Ledger() ledger.Client
	Records() records.Store
	TxStore() txstore.Store
	Scheduler() scheduler.Scheduler
	Reconciler() reconcile.Reconciler
	Cleanup() *reconcile.Cleanup
	Verifier() verifier.Verifier
	StatusServer() statusserver.StatusServer
	DebugServer() httpserver.DebugServer
}

type manager struct {
	bgCtx     context.Context
	cancelCtx context.CancelFunc
	conf      *htconf.AnchorConfig

	persistence  persistence.Persistence
	metrics      metrics.Metrics
	rpc          rpcclient.Client
	ledger       ledger.Client
	bus          events.Bus
	records      records.Store
	txStore      txstore.Store
	anchoring    anchoring.Service
	scheduler    scheduler.Scheduler
	reconciler   reconcile.Reconciler
	cleanup      *reconcile.Cleanup
	verifier     verifier.Verifier
	statusServer statusserver.StatusServer
	debugServer  httpserver.DebugServer

	cronsDone sync.WaitGroup
	started   map[string]stoppable
	opened    map[string]closeable
	// stop order is the reverse of start order
	startOrder []string
}

type stoppable interface {
	Stop()
}

type closeable interface {
	Close()
}

func NewManager(bgCtx context.Context, conf *htconf.AnchorConfig) Manager {
	log.InitConfig(&conf.Log)
	m := &manager{
		conf:    conf,
		started: make(map[string]stoppable),
		opened:  make(map[string]closeable),
	}
	m.bgCtx, m.cancelCtx = context.WithCancel(log.WithRole(bgCtx, "anchord"))
	return m
}

func (m *manager) Init() (err error) {
	// the debug server comes up first, so a hang later in startup can be diagnosed
	if confutil.Bool(m.conf.DebugServer.Enabled, *htconf.DebugServerDefaults.Enabled) {
		m.debugServer, err = m.startDebugServer()
		err = m.addIfStarted("debug_server", m.debugServer, err, msgs.MsgComponentDebugServerStartError)
	}
	if err == nil {
		m.persistence, err = persistence.NewPersistence(m.bgCtx, &m.conf.DB)
		err = m.addIfOpened("database", m.persistence, err, msgs.MsgComponentDBInitError)
	}

	var registry *ledger.Registry
	if err == nil {
		registry, err = ledger.LoadRegistry(m.bgCtx, m.persistence.DB(), m.conf.Ledger.Contracts)
		err = m.wrapIfErr(err, msgs.MsgComponentRegistryInitError)
	}
	if err == nil {
		if m.conf.Ledger.HTTP.URL != "" {
			m.rpc, err = rpcclient.NewHTTPClient(m.bgCtx, &m.conf.Ledger.HTTP)
		} else {
			log.L(m.bgCtx).Warnf("No ledger node URL configured. Anchoring and verification will report the ledger unavailable")
		}
	}
	if err == nil {
		m.ledger, err = ledger.NewClient(m.bgCtx, &m.conf.Ledger, m.rpc, registry)
		err = m.wrapIfErr(err, msgs.MsgComponentLedgerInitError)
	}
	if err == nil {
		m.metrics = metrics.NewMetrics(nil)
		m.bus = events.NewBus()
		m.records = records.NewStore(m.persistence, m.bus)
		m.txStore = txstore.NewStore(m.persistence)
		m.anchoring = anchoring.NewService(m.ledger, m.txStore, m.records)
		m.scheduler = scheduler.NewScheduler(m.bgCtx, &m.conf.Scheduler, m.bus, m.records, m.anchoring, m.metrics)
		m.reconciler = reconcile.NewReconciler(&m.conf.Reconcile, m.ledger, m.txStore, m.records, m.metrics)
		m.cleanup = reconcile.NewCleanup(&m.conf.Cleanup, m.txStore, m.metrics)
		m.verifier = verifier.NewVerifier(m.ledger, m.records)
	}
	return err
}

// Start brings up the scheduler before the status server, so an anchor request
// accepted over HTTP always has a running worker to land on
func (m *manager) Start() (err error) {
	err = m.scheduler.Start()
	err = m.addIfStarted("scheduler", m.scheduler, err, msgs.MsgComponentSchedulerStartError)

	if err == nil {
		m.startCron(m.reconciler, cronjob.ParseSchedule(&m.conf.Reconcile.CronjobConfig, &htconf.ReconcileDefaults.CronjobConfig))
		m.startCron(m.cleanup, cronjob.ParseSchedule(&m.conf.Cleanup.CronjobConfig, &htconf.CleanupDefaults.CronjobConfig))
		m.startCron(scheduler.NewSweepJob(m.scheduler), cronjob.ParseSchedule(&m.conf.Scheduler.Sweep.CronjobConfig, &htconf.SweepDefaults.CronjobConfig))
	}
	if err == nil {
		m.statusServer, err = statusserver.NewStatusServer(m.bgCtx, &m.conf.StatusServer, &statusserver.Components{
			Registry:   m.metrics.Registry(),
			TxStore:    m.txStore,
			Records:    m.records,
			Ledger:     m.ledger,
			Reconciler: m.reconciler,
			Verifier:   m.verifier,
			Scheduler:  m.scheduler,
		})
		err = m.wrapIfErr(err, msgs.MsgComponentStatusServerInitError)
	}
	if err == nil {
		err = m.statusServer.Start()
		err = m.addIfStarted("status_server", m.statusServer, err, msgs.MsgComponentStatusServerStartError)
	}
	return err
}

func (m *manager) startDebugServer() (httpserver.DebugServer, error) {
	conf := m.conf.DebugServer.HTTPServerConfig
	// if enabled with no port, one is allocated
	conf.Port = confutil.P(confutil.Int(conf.Port, 0))
	server, err := httpserver.NewDebugServer(m.bgCtx, &conf)
	if err == nil {
		err = server.Start()
	}
	return server, err
}

func (m *manager) startCron(c cronjob.Cronjob, sched cronjob.Schedule) {
	m.cronsDone.Add(1)
	go func() {
		defer m.cronsDone.Done()
		cronjob.Run(m.bgCtx, c, sched)
	}()
}

func (m *manager) Stop() {
	log.L(m.bgCtx).Info("Stopping")
	for i := len(m.startOrder) - 1; i >= 0; i-- {
		name := m.startOrder[i]
		log.L(m.bgCtx).Infof("Stopping %s", name)
		m.started[name].Stop()
		log.L(m.bgCtx).Debugf("Stopped %s", name)
	}
	m.cancelCtx()
	m.cronsDone.Wait()
	for name, c := range m.opened {
		log.L(m.bgCtx).Infof("Closing %s", name)
		c.Close()
	}
	log.L(m.bgCtx).Debug("Stopped")
}

func (m *manager) wrapIfErr(err error, failMsg i18n.ErrorMessageKey, inserts ...any) error {
	if err != nil {
		return i18n.WrapError(m.bgCtx, err, failMsg, inserts...)
	}
	return nil
}

func (m *manager) addIfStarted(desc string, c stoppable, err error, failMsg i18n.ErrorMessageKey, inserts ...any) error {
	if err != nil {
		return i18n.WrapError(m.bgCtx, err, failMsg, inserts...)
	}
	m.started[desc] = c
	m.startOrder = append(m.startOrder, desc)
	return nil
}

func (m *manager) addIfOpened(desc string, c closeable, err error, failMsg i18n.ErrorMessageKey) error {
	if err != nil {
		return i18n.WrapError(m.bgCtx, err, failMsg)
	}
	m.opened[desc] = c
	return nil
}

func (m *manager) Persistence() persistence.Persistence    { return m.persistence }
func (m *manager) Ledger() ledger.Client                   { return m.ledger }
func (m *manager) Records() records.Store                  { return m.records }
func (m *manager) TxStore() txstore.Store                  { return m.txStore }
func (m *manager) Scheduler() scheduler.Scheduler          { return m.scheduler }
func (m *manager) Reconciler() reconcile.Reconciler        { return m.reconciler }
func (m *manager) Cleanup() *reconcile.Cleanup             { return m.cleanup }
func (m *manager) Verifier() verifier.Verifier             { return m.verifier }
func (m *manager) StatusServer() statusserver.StatusServer { return m.statusServer }
func (m *manager) DebugServer() httpserver.DebugServer     { return m.debugServer }
