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

package retry

import (
	"context"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Policy is a bounded exponential backoff.
// The delay before retry n (1 based) is initialDelay * factor^(n-1), capped at maxDelay.
type Policy struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
	maxRetries   int
	retryable    func(err error) bool
}

// NewPolicy builds a policy from config. A nil retryable predicate treats every error as retryable.
func NewPolicy(conf *htconf.RetryConfigWithMax, retryable func(err error) bool) *Policy {
	def := htconf.RetryDefaults
	return &Policy{
		initialDelay: confutil.DurationMin(conf.InitialDelay, 0, *def.InitialDelay),
		maxDelay:     confutil.DurationMin(conf.MaxDelay, 0, *def.MaxDelay),
		factor:       confutil.Float64Min(conf.Factor, 1.0, *def.Factor),
		maxRetries:   confutil.IntMin(conf.MaxRetries, 0, *def.MaxRetries),
		retryable:    retryable,
	}
}

func (p *Policy) MaxRetries() int {
	return p.maxRetries
}

func (p *Policy) Delay(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}
	delay := p.initialDelay
	for i := 0; i < retry-1; i++ {
		delay = time.Duration(float64(delay) * p.factor)
		if delay > p.maxDelay {
			return p.maxDelay
		}
	}
	return delay
}

func (p *Policy) Retryable(err error) bool {
	return err != nil && (p.retryable == nil || p.retryable(err))
}

// ShouldRetry reports whether the failure of the given attempt (the first attempt is 1) earns another attempt
func (p *Policy) ShouldRetry(attempt int, err error) bool {
	return p.Retryable(err) && attempt <= p.maxRetries
}

// Do runs the function until it succeeds, returns a non-retryable error, or the retries are exhausted.
// The last error is returned.
func (p *Policy) Do(ctx context.Context, do func(attempt int) error) error {
	attempt := 0
	for {
		attempt++
		err := do(attempt)
		if err == nil {
			return nil
		}
		log.L(ctx).Errorf("%s (attempt=%d)", err, attempt)
		if !p.ShouldRetry(attempt, err) {
			return err
		}
		if err := p.WaitDelay(ctx, attempt); err != nil {
			return err
		}
	}
}

func (p *Policy) WaitDelay(ctx context.Context, retry int) error {
	delay := p.Delay(retry)
	log.L(ctx).Debugf("Retrying after %.2fs (retry=%d)", delay.Seconds(), retry)
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return i18n.NewError(ctx, msgs.MsgContextCanceled)
	}
}

// UTSetDelays is a UNIT TEST ONLY function to shrink the backoff of a policy built from defaults
func (p *Policy) UTSetDelays(initialDelay, maxDelay time.Duration) {
	p.initialDelay = initialDelay
	p.maxDelay = maxDelay
}
