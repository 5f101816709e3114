// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync"

	"github.com/dominant-strategies/go-quai-stake/eventdb"
)

const subscriberBuffer = 64

// Broker fans executed-operation events out to live subscribers. A
// subscriber that stops draining its channel is dropped rather than allowed
// to stall publishing.
type Broker struct {
	mu   sync.Mutex
	subs map[chan *eventdb.Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan *eventdb.Event]struct{})}
}

// Subscribe returns a receive channel and its cancel func.
func (b *Broker) Subscribe() (<-chan *eventdb.Event, func()) {
	ch := make(chan *eventdb.Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with buffer room.
func (b *Broker) Publish(event *eventdb.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			delete(b.subs, ch)
			close(ch)
		}
	}
}

// Len returns the number of live subscribers.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
