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

// Package events carries domain record write notifications from the record store to the
// components that react to them. A listener is identified by a unique name and receives
// every published event on its own buffered channel.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

const defaultDeliveryTimeout = 1 * time.Second

// RecordCreated is published once the transaction that created a domain record has committed
type RecordCreated struct {
	ID        uuid.UUID
	Kind      htapi.Kind
	SubjectID string
	Created   htapi.Timestamp
}

type Listener struct {
	Name    string
	Channel chan *RecordCreated
}

type Bus interface {
	Publish(ctx context.Context, ev *RecordCreated)
	Subscribe(ctx context.Context, name string, bufferLength int) (*Listener, error)
	Unsubscribe(ctx context.Context, name string) error
}

type bus struct {
	listeners       map[string]*Listener
	listenersLock   sync.Mutex
	deliveryTimeout time.Duration
}

func NewBus() Bus {
	return &bus{
		listeners:       make(map[string]*Listener),
		deliveryTimeout: defaultDeliveryTimeout,
	}
}

func NewRecordCreated(kind htapi.Kind, subjectID string) *RecordCreated {
	return &RecordCreated{
		ID:        uuid.New(),
		Kind:      kind,
		SubjectID: subjectID,
		Created:   htapi.TimestampNow(),
	}
}

func (b *bus) Subscribe(ctx context.Context, name string, bufferLength int) (*Listener, error) {
	b.listenersLock.Lock()
	defer b.listenersLock.Unlock()
	if _, exists := b.listeners[name]; exists {
		return nil, i18n.NewError(ctx, msgs.MsgEventBusListenerExists, name)
	}
	l := &Listener{
		Name:    name,
		Channel: make(chan *RecordCreated, bufferLength),
	}
	b.listeners[name] = l
	return l, nil
}

func (b *bus) Unsubscribe(ctx context.Context, name string) error {
	b.listenersLock.Lock()
	defer b.listenersLock.Unlock()
	if _, ok := b.listeners[name]; !ok {
		return i18n.NewError(ctx, msgs.MsgEventBusListenerNotFound, name)
	}
	delete(b.listeners, name)
	return nil
}

// Publish never fails the publisher. A listener that does not accept the event
// within the delivery timeout misses it, and this is logged.
func (b *bus) Publish(ctx context.Context, ev *RecordCreated) {
	b.listenersLock.Lock()
	listeners := make([]*Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.listenersLock.Unlock()

	log.L(ctx).Debugf("Publishing %s %s to %d listeners", ev.Kind, ev.SubjectID, len(listeners))
	for _, l := range listeners {
		select {
		case l.Channel <- ev:
		case <-time.After(b.deliveryTimeout):
			log.L(ctx).Error(i18n.NewError(ctx, msgs.MsgEventBusDeliveryTimeout, l.Name))
		}
	}
}
