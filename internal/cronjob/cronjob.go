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

package cronjob

import (
	"context"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Cronjob is a named unit of periodic work. Run is called once per interval, with a context
// that expires after Timeout.
type Cronjob interface {
	Name() string
	Run(ctx context.Context) error
}

// Schedule is the resolved timing of one cronjob
type Schedule struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
}

func ParseSchedule(conf *htconf.CronjobConfig, defs *htconf.CronjobConfig) Schedule {
	return Schedule{
		Enabled:  confutil.Bool(conf.Enabled, *defs.Enabled),
		Interval: confutil.DurationMin(conf.Interval, time.Millisecond, *defs.Interval),
		Timeout:  confutil.DurationMin(conf.Timeout, time.Millisecond, *defs.Timeout),
	}
}

// RunOnce runs the job a single time under its timeout
func RunOnce(ctx context.Context, c Cronjob, timeout time.Duration) error {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	startTime := time.Now()
	err := c.Run(runCtx)
	if err == nil && runCtx.Err() == context.DeadlineExceeded {
		err = i18n.NewError(ctx, msgs.MsgCronjobTimeout, c.Name(), timeout)
	}
	log.L(ctx).Debugf("%s run completed in %s (err=%v)", c.Name(), time.Since(startTime), err)
	return err
}

// Run blocks until ctx is cancelled, calling the job every interval. Errors are logged
// and the job runs again on the next tick.
func Run(ctx context.Context, c Cronjob, sched Schedule) {
	ctx = log.WithLogField(ctx, "job", c.Name())
	if !sched.Enabled {
		log.L(ctx).Debugf("%s cronjob disabled", c.Name())
		return
	}
	log.L(ctx).Infof("Starting %s cronjob (interval=%s timeout=%s)", c.Name(), sched.Interval, sched.Timeout)

	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := RunOnce(ctx, c, sched.Timeout); err != nil {
				log.L(ctx).Errorf("%s cronjob error: %s", c.Name(), err)
			}
		case <-ctx.Done():
			log.L(ctx).Debugf("%s cronjob stopped", c.Name())
			return
		}
	}
}
