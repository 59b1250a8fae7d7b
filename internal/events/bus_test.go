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

package events

import (
	"context"
	"testing"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	b := NewBus()

	l1, err := b.Subscribe(ctx, "one", 1)
	require.NoError(t, err)
	l2, err := b.Subscribe(ctx, "two", 1)
	require.NoError(t, err)

	ev := NewRecordCreated(htapi.KindCollection, "BATCH-0001")
	b.Publish(ctx, ev)

	assert.Equal(t, ev, <-l1.Channel)
	assert.Equal(t, ev, <-l2.Channel)

	require.NoError(t, b.Unsubscribe(ctx, "two"))
	b.Publish(ctx, ev)
	assert.Equal(t, ev, <-l1.Channel)
	assert.Empty(t, l2.Channel)
}

func TestSubscribeDuplicate(t *testing.T) {
	ctx := context.Background()
	b := NewBus()
	_, err := b.Subscribe(ctx, "one", 1)
	require.NoError(t, err)
	_, err = b.Subscribe(ctx, "one", 1)
	assert.Regexp(t, "HT010405", err)
}

func TestUnsubscribeUnknown(t *testing.T) {
	err := NewBus().Unsubscribe(context.Background(), "none")
	assert.Regexp(t, "HT010407", err)
}

func TestPublishBlockedListener(t *testing.T) {
	ctx := context.Background()
	b := NewBus().(*bus)
	b.deliveryTimeout = 10 * time.Millisecond

	l, err := b.Subscribe(ctx, "full", 0)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		b.Publish(ctx, NewRecordCreated(htapi.KindProcessing, "PROC-1"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked")
	}
	assert.Empty(t, l.Channel)
}
