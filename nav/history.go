// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package nav

import (
	"go.uber.org/atomic"
)

// History is the source of the current URL and of state change notifications,
// such as the browser history of a web page.
type History interface {
	// URL returns the current URL.
	URL() string
	// Push adds a new history entry for the specified URL, making it the
	// current URL, and then notifies all subscribers.
	Push(url string)
	// Subscribe returns a channel receiving the new URL after each state
	// change, as well as a function to cancel the subscription.
	Subscribe() (<-chan string, func())
}

// subscriberBacklog is the number of notifications queued for a subscriber
// before the oldest ones get dropped.
const subscriberBacklog = 16

type pushReq struct {
	url  string
	done chan struct{}
}

type moveReq struct {
	delta int
	reply chan bool
}

// MemoryHistory is a History kept in memory, with back and forward
// navigation.
//
// A single internal goroutine owns the history entries and the subscribers;
// the public methods talk to it through channels. Slow subscribers lose their
// oldest notifications instead of blocking state changes.
type MemoryHistory struct {
	url atomic.String

	pushCh  chan pushReq
	moveCh  chan moveReq
	subCh   chan chan string
	unsubCh chan chan string

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

var _ History = (*MemoryHistory)(nil)

// NewMemoryHistory returns a new history with the specified URL as its
// initial and current entry.
func NewMemoryHistory(url string) *MemoryHistory {
	h := &MemoryHistory{
		pushCh:  make(chan pushReq),
		moveCh:  make(chan moveReq),
		subCh:   make(chan chan string),
		unsubCh: make(chan chan string),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	h.url.Store(url)
	go h.run(url)
	return h
}

func (h *MemoryHistory) run(url string) {
	defer close(h.stopped)

	entries := []string{url}
	pos := 0
	subscribers := map[chan string]struct{}{}

	notify := func() {
		current := entries[pos]
		h.url.Store(current)
		for ch := range subscribers {
			select {
			case ch <- current:
				continue
			default:
			}
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- current:
			default:
			}
		}
	}

	for {
		select {
		case <-h.stopCh:
			for ch := range subscribers {
				close(ch)
			}
			return
		case req := <-h.pushCh:
			entries = append(entries[:pos+1], req.url)
			pos++
			notify()
			close(req.done)
		case req := <-h.moveCh:
			newpos := pos + req.delta
			if newpos < 0 || newpos >= len(entries) {
				req.reply <- false
				continue
			}
			pos = newpos
			notify()
			req.reply <- true
		case ch := <-h.subCh:
			subscribers[ch] = struct{}{}
		case ch := <-h.unsubCh:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}
		}
	}
}

// URL returns the current URL.
func (h *MemoryHistory) URL() string {
	return h.url.Load()
}

// Push adds a new entry after the current one, discarding any entries that
// were ahead of the current one. When Push returns, the new entry is the
// current one. Pushing onto a closed history does nothing.
func (h *MemoryHistory) Push(url string) {
	req := pushReq{url: url, done: make(chan struct{})}
	select {
	case h.pushCh <- req:
		<-req.done
	case <-h.stopped:
	}
}

// Back moves to the previous entry, returning false if there is none.
func (h *MemoryHistory) Back() bool { return h.move(-1) }

// Forward moves to the next entry, returning false if there is none.
func (h *MemoryHistory) Forward() bool { return h.move(1) }

func (h *MemoryHistory) move(delta int) bool {
	req := moveReq{delta: delta, reply: make(chan bool, 1)}
	select {
	case h.moveCh <- req:
		return <-req.reply
	case <-h.stopped:
		return false
	}
}

// Subscribe to state change notifications. The returned channel gets closed
// when either the subscription is cancelled or the history is closed.
func (h *MemoryHistory) Subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBacklog)
	select {
	case h.subCh <- ch:
	case <-h.stopped:
		close(ch)
		return ch, func() {}
	}
	return ch, func() {
		select {
		case h.unsubCh <- ch:
		case <-h.stopped:
		}
	}
}

// Close stops the history, closing all subscription channels.
func (h *MemoryHistory) Close() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.stopCh)
	}
	<-h.stopped
}
