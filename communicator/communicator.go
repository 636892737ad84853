// Copyright 2022 Sogang University
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

// Package communicator streams snapshots of the grid to watchers.  A
// broadcaster task publishes the leaves of the grid at a fixed interval, and
// every Watch call subscribes to the broadcaster.  Watchers that fall behind
// skip intermediate snapshots and only ever observe the latest one.
package communicator

import (
	"sync"
	"time"

	"github.com/9rum/fractalgrid/grid"
	"github.com/9rum/fractalgrid/scheduler"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/protobuf/types/known/structpb"
)

const DefaultBroadcastInterval = time.Second

var (
	watchersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fractalgrid",
		Name:      "watchers",
		Help:      "Number of active leaf snapshot subscriptions.",
	})
	snapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fractalgrid",
		Name:      "snapshots_total",
		Help:      "Total number of leaf snapshots published.",
	})
)

// Broadcaster periodically publishes the leaves of a grid to subscribers.
type Broadcaster struct {
	scheduler.TaskBase
	grid        *grid.Grid
	interval    time.Duration
	mu          sync.Mutex
	subscribers map[int]chan *structpb.ListValue
	next        int
	closed      bool
}

// NewBroadcaster creates a new broadcaster for the given grid.  A non-positive
// interval selects DefaultBroadcastInterval.
func NewBroadcaster(g *grid.Grid, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	return &Broadcaster{
		grid:        g,
		interval:    interval,
		subscribers: make(map[int]chan *structpb.ListValue),
	}
}

func (b *Broadcaster) Name() string {
	return "broadcaster"
}

func (b *Broadcaster) Iterate() {
	time.Sleep(b.interval)
	b.Publish()
}

// OnStop closes every subscription.  Subscriptions made afterwards are closed
// from the start.
func (b *Broadcaster) OnStop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
		watchersGauge.Dec()
	}
}

// Snapshot encodes the current leaves of the grid.
func (b *Broadcaster) Snapshot() *structpb.ListValue {
	return grid.EncodeLeaves(b.grid.Leaves())
}

// Publish sends a snapshot to every subscriber, replacing any snapshot the
// subscriber has not yet received.
func (b *Broadcaster) Publish() {
	snapshot := b.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
	snapshotsTotal.Inc()
	glog.V(2).Infof("published %d leaves to %d watchers", len(snapshot.GetValues()), len(b.subscribers))
}

// Subscribe registers a new subscriber.  The returned channel is closed when
// the broadcaster stops; cancel unregisters the subscriber and must be called
// once the subscriber is done.
func (b *Broadcaster) Subscribe() (snapshots <-chan *structpb.ListValue, cancel func()) {
	ch := make(chan *structpb.ListValue, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subscribers[id] = ch
	watchersGauge.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				watchersGauge.Dec()
			}
		})
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
