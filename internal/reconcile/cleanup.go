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

package reconcile

import (
	"context"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/metrics"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/txstore"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
)

const CleanupJobName = "cleanup"

// Cleanup deletes FAILED transaction records older than the retention period
type Cleanup struct {
	txStore   txstore.Store
	metrics   metrics.Metrics
	retention time.Duration
	now       func() time.Time
}

func NewCleanup(conf *htconf.CleanupConfig, txs txstore.Store, m metrics.Metrics) *Cleanup {
	return &Cleanup{
		txStore:   txs,
		metrics:   m,
		retention: confutil.DurationMin(conf.Retention, 0, *htconf.CleanupDefaults.Retention),
		now:       time.Now,
	}
}

func (c *Cleanup) Name() string {
	return CleanupJobName
}

func (c *Cleanup) Run(ctx context.Context) error {
	_, err := c.DeleteExpired(ctx)
	return err
}

func (c *Cleanup) DeleteExpired(ctx context.Context) (int64, error) {
	ctx = log.WithRole(ctx, "cleanup")
	before := c.now().Add(-c.retention)
	deleted, err := c.txStore.DeleteFailedBefore(ctx, htapi.TimestampFromTime(before))
	if err != nil {
		return 0, err
	}
	c.metrics.AddCleanedUp(deleted)
	log.L(ctx).Infof("Deleted %d failed transactions created before %s", deleted, before.UTC().Format(time.RFC3339))
	return deleted, nil
}
