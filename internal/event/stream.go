// Package event provides typed publish/subscribe streams for document
// notifications. A Stream fans values out to its subscribers synchronously,
// in subscription order.
package event

import "sync"

// Stream is a concurrency-safe fan-out of values of one type.
type Stream[T any] struct {
	mu   sync.Mutex
	subs []*Subscription[T]
	next int
}

// Subscription is a handle to one subscriber of a Stream.
type Subscription[T any] struct {
	stream *Stream[T]
	id     int
	fn     func(T)
}

// NewStream creates an empty stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Subscribe registers fn to receive every published value until the
// subscription is cancelled. fn must not block; it runs on the publisher's
// goroutine.
func (s *Stream[T]) Subscribe(fn func(T)) *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &Subscription[T]{stream: s, id: s.next, fn: fn}
	s.next++
	s.subs = append(s.subs, sub)
	return sub
}

// Publish delivers v to every current subscriber. Subscribers added or
// cancelled during delivery take effect on the next publish.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	subs := make([]*Subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Len returns the number of active subscriptions.
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Cancel removes the subscription from its stream. Cancelling twice is a
// no-op.
func (sub *Subscription[T]) Cancel() {
	if sub.stream == nil {
		return
	}
	s := sub.stream
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.subs {
		if candidate.id == sub.id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	sub.stream = nil
}
