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

// Package scheduler drives anchoring in the background. Each "record created" event
// schedules an anchoring attempt after the trigger delay, and transient failures are
// retried with a bounded exponential backoff. Exhausting the retries is logged, and
// never reported to whoever created the record.
package scheduler

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/anchoring"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/events"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/metrics"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/records"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/retry"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

const listenerName = "anchoring-scheduler"

type Scheduler interface {
	Start() error
	Stop()
	// Enqueue queues an anchoring attempt for an existing record, skipping the trigger delay
	Enqueue(ctx context.Context, kind htapi.Kind, subjectID string) error
	// AnchorNow anchors on the calling goroutine, waiting out the retry delays
	AnchorNow(ctx context.Context, kind htapi.Kind, subjectID string) (string, error)
	// Sweep queues unanchored records that this process is not already handling, returning
	// the number queued
	Sweep(ctx context.Context) (int, error)
}

type job struct {
	kind      htapi.Kind
	subjectID string
	attempts  int
}

func (j *job) key() string {
	return string(j.kind) + "/" + j.subjectID
}

type scheduler struct {
	bgCtx        context.Context
	cancelCtx    context.CancelFunc
	bus          events.Bus
	records      records.Store
	anchor       anchoring.Service
	metrics      metrics.Metrics
	policy       *retry.Policy
	triggerDelay time.Duration
	workerCount  int
	workQueues   []chan *job
	workersDone  []chan struct{}
	listener     *events.Listener
	listenerDone chan struct{}
	afterFunc    func(d time.Duration, fn func())
	started      bool

	sweepLookback  time.Duration
	sweepBatchSize int

	// subjects with a job delayed, queued or running, plus those that gave up. The sweep
	// leaves these alone.
	ownedLock sync.Mutex
	owned     map[string]bool
}

// NewScheduler builds a scheduler that listens on the bus once started. With a nil bus only
// Enqueue and AnchorNow schedule work.
func NewScheduler(bgCtx context.Context, conf *htconf.SchedulerConfig, bus events.Bus, recs records.Store, anchor anchoring.Service, m metrics.Metrics) Scheduler {
	def := htconf.SchedulerDefaults
	s := &scheduler{
		bus:          bus,
		records:      recs,
		anchor:       anchor,
		metrics:      m,
		policy:       retry.NewPolicy(&conf.Retry, anchoring.IsRetryable),
		triggerDelay: confutil.DurationMin(conf.TriggerDelay, 0, *def.TriggerDelay),
		workerCount:  confutil.IntMin(conf.Workers, 1, *def.Workers),
		afterFunc:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		owned:        make(map[string]bool),

		sweepLookback:  confutil.DurationMin(conf.Sweep.Lookback, 0, *def.Sweep.Lookback),
		sweepBatchSize: confutil.IntMin(conf.Sweep.BatchSize, 1, *def.Sweep.BatchSize),
	}
	s.bgCtx, s.cancelCtx = context.WithCancel(log.WithRole(bgCtx, "scheduler"))

	queueLength := confutil.IntMin(conf.QueueLength, 1, *def.QueueLength)
	s.workQueues = make([]chan *job, s.workerCount)
	s.workersDone = make([]chan struct{}, s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		s.workQueues[i] = make(chan *job, queueLength)
		s.workersDone[i] = make(chan struct{})
	}
	return s
}

func (s *scheduler) Start() (err error) {
	log.L(s.bgCtx).Infof("Starting %d anchoring workers (triggerDelay=%s maxRetries=%d)", s.workerCount, s.triggerDelay, s.policy.MaxRetries())
	s.started = true
	for i := 0; i < s.workerCount; i++ {
		go s.worker(i)
	}
	if s.bus != nil {
		s.listener, err = s.bus.Subscribe(s.bgCtx, listenerName, cap(s.workQueues[0]))
		if err != nil {
			return err
		}
		s.listenerDone = make(chan struct{})
		go s.listen()
	}
	return nil
}

// Stop abandons queued and delayed attempts. Anything not yet anchored still has an empty
// ledger reference, so the sweep picks it up after a restart.
func (s *scheduler) Stop() {
	if s.listener != nil {
		_ = s.bus.Unsubscribe(s.bgCtx, listenerName)
	}
	s.cancelCtx()
	if s.listenerDone != nil {
		<-s.listenerDone
	}
	if s.started {
		for _, workerDone := range s.workersDone {
			<-workerDone
		}
	}
}

func (s *scheduler) listen() {
	defer close(s.listenerDone)
	ctx := log.WithLogField(s.bgCtx, "job", listenerName)
	for {
		select {
		case ev := <-s.listener.Channel:
			if !ev.Kind.Anchorable() {
				log.L(ctx).Debugf("Ignoring created event for %s %s", ev.Kind, ev.SubjectID)
				continue
			}
			j := &job{kind: ev.Kind, subjectID: ev.SubjectID}
			if !s.claim(j) {
				log.L(ctx).Debugf("Anchoring of %s %s already in hand", ev.Kind, ev.SubjectID)
				continue
			}
			log.L(ctx).Debugf("Anchoring %s %s in %s", ev.Kind, ev.SubjectID, s.triggerDelay)
			s.schedule(ctx, j, s.triggerDelay)
		case <-s.bgCtx.Done():
			log.L(ctx).Debugf("Listener stopped")
			return
		}
	}
}

// schedule hands the job to its worker after the delay, waiting for queue space rather
// than dropping it
func (s *scheduler) schedule(ctx context.Context, j *job, delay time.Duration) {
	s.afterFunc(delay, func() {
		select {
		case s.workQueues[s.route(j.subjectID)] <- j:
		case <-s.bgCtx.Done():
			log.L(ctx).Debugf("Scheduler stopped before anchoring %s %s", j.kind, j.subjectID)
		}
	})
}

func (s *scheduler) claim(j *job) bool {
	s.ownedLock.Lock()
	defer s.ownedLock.Unlock()
	if s.owned[j.key()] {
		return false
	}
	s.owned[j.key()] = true
	return true
}

func (s *scheduler) release(j *job) {
	s.ownedLock.Lock()
	defer s.ownedLock.Unlock()
	delete(s.owned, j.key())
}

// all attempts for one subject run on the same worker
func (s *scheduler) route(subjectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return int(h.Sum32() % uint32(s.workerCount))
}

func (s *scheduler) enqueue(ctx context.Context, j *job) error {
	if s.bgCtx.Err() != nil {
		return i18n.NewError(ctx, msgs.MsgSchedulerStopped)
	}
	select {
	case s.workQueues[s.route(j.subjectID)] <- j:
		return nil
	default:
		return i18n.NewError(ctx, msgs.MsgSchedulerQueueFull)
	}
}

func (s *scheduler) Enqueue(ctx context.Context, kind htapi.Kind, subjectID string) error {
	if !kind.Anchorable() {
		return i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, kind)
	}
	if _, _, err := s.records.Get(ctx, kind, subjectID); err != nil {
		return err
	}
	j := &job{kind: kind, subjectID: subjectID}
	claimed := s.claim(j)
	if err := s.enqueue(ctx, j); err != nil {
		if claimed {
			s.release(j)
		}
		return err
	}
	return nil
}

func (s *scheduler) worker(i int) {
	defer close(s.workersDone[i])
	ctx := log.WithLogField(s.bgCtx, "job", fmt.Sprintf("anchor_%.4d", i))
	for {
		select {
		case j := <-s.workQueues[i]:
			s.attempt(ctx, j)
		case <-s.bgCtx.Done():
			log.L(ctx).Debugf("Worker stopped")
			return
		}
	}
}

func (s *scheduler) attempt(ctx context.Context, j *job) {
	ctx = log.WithLogField(ctx, "subject", j.subjectID)
	rec, ledgerState, err := s.records.Get(ctx, j.kind, j.subjectID)
	if err != nil {
		s.release(j)
		log.L(ctx).Errorf("Unable to load %s record for anchoring: %s", j.kind, err)
		return
	}
	if ledgerState.Reference != "" {
		s.release(j)
		log.L(ctx).Infof("%s record already anchored in %s", j.kind, ledgerState.Reference)
		return
	}

	j.attempts++
	txHash, err := s.anchor.Anchor(ctx, rec)
	switch {
	case err == nil:
		s.release(j)
		s.metrics.IncAnchorAttempts(j.kind, metrics.OutcomeSubmitted)
		return
	case txHash != "":
		// on the ledger, but our bookkeeping failed. Reconcile fills in the reference.
		s.release(j)
		s.metrics.IncAnchorAttempts(j.kind, metrics.OutcomeSubmitted)
		log.L(ctx).Errorf("Anchoring of %s record submitted with errors: %s", j.kind, err)
		return
	case !s.policy.Retryable(err):
		s.metrics.IncAnchorAttempts(j.kind, metrics.OutcomeRejected)
		log.L(ctx).Errorf("Anchoring of %s record failed permanently: %s", j.kind, err)
		return
	}

	s.metrics.IncAnchorAttempts(j.kind, metrics.OutcomeFailed)
	if !s.policy.ShouldRetry(j.attempts, err) {
		s.metrics.IncAnchorGaveUp(j.kind)
		log.L(ctx).Error(i18n.WrapError(ctx, err, msgs.MsgRetryAttemptsExhausted, j.attempts))
		return
	}
	delay := s.policy.Delay(j.attempts)
	s.metrics.IncAnchorRetries(j.kind)
	log.L(ctx).Warnf("Anchoring attempt %d of %s record failed, retrying in %s: %s", j.attempts, j.kind, delay, err)
	s.schedule(ctx, j, delay)
}

func (s *scheduler) AnchorNow(ctx context.Context, kind htapi.Kind, subjectID string) (txHash string, err error) {
	if !kind.Anchorable() {
		return "", i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, kind)
	}
	err = s.policy.Do(ctx, func(attempt int) error {
		rec, ledgerState, err := s.records.Get(ctx, kind, subjectID)
		if err != nil {
			return err
		}
		if ledgerState.Reference != "" {
			txHash = ledgerState.Reference
			return nil
		}
		txHash, err = s.anchor.Anchor(ctx, rec)
		return err
	})
	return txHash, err
}

func (s *scheduler) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	// records younger than the trigger delay are still on their way through the event path
	before := htapi.TimestampFromTime(now.Add(-s.triggerDelay))
	since := htapi.TimestampFromTime(now.Add(-s.sweepLookback))
	queued := 0
	for _, kind := range []htapi.Kind{htapi.KindCollection, htapi.KindProcessing, htapi.KindQualityTest} {
		ids, err := s.records.ListUnanchored(ctx, kind, since, before, s.sweepBatchSize)
		if err != nil {
			return queued, err
		}
		for _, id := range ids {
			j := &job{kind: kind, subjectID: id}
			if !s.claim(j) {
				continue
			}
			select {
			case s.workQueues[s.route(id)] <- j:
				queued++
			case <-ctx.Done():
				s.release(j)
				return queued, ctx.Err()
			case <-s.bgCtx.Done():
				s.release(j)
				return queued, i18n.NewError(ctx, msgs.MsgSchedulerStopped)
			}
		}
	}
	if queued > 0 {
		log.L(ctx).Infof("Sweep queued %d unanchored records", queued)
	}
	return queued, nil
}

// SweepJob runs Sweep as a cronjob
type SweepJob struct {
	scheduler Scheduler
}

func NewSweepJob(s Scheduler) *SweepJob {
	return &SweepJob{scheduler: s}
}

func (sj *SweepJob) Name() string {
	return "sweep"
}

func (sj *SweepJob) Run(ctx context.Context) error {
	_, err := sj.scheduler.Sweep(ctx)
	return err
}
