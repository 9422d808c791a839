// Package observable provides replaying broadcast streams used to push cache
// changes to long-lived subscribers.
package observable

import "sync"

// Subject broadcasts values to its subscribers and replays the latest value
// to anyone who subscribes later. Slow subscribers never block Publish: each
// subscription holds at most one pending value and older ones are dropped.
type Subject[T any] struct {
	mu       sync.Mutex
	latest   T
	hasValue bool
	closed   bool
	nextID   uint64
	subs     map[uint64]*Subscription[T]
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[uint64]*Subscription[T])}
}

// NewBehaviorSubject returns a Subject that already holds initial.
func NewBehaviorSubject[T any](initial T) *Subject[T] {
	s := NewSubject[T]()
	s.latest = initial
	s.hasValue = true
	return s
}

func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.latest = v
	s.hasValue = true
	for _, sub := range s.subs {
		sub.offer(v)
	}
}

// Value returns the latest published value.
func (s *Subject[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasValue
}

func (s *Subject[T]) Subscribe() *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription[T]{ch: make(chan T, 1)}
	if s.closed {
		close(sub.ch)
		return sub
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	sub.cancel = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub.ch)
		}
	}

	if s.hasValue {
		sub.offer(s.latest)
	}
	return sub
}

// SubscriberCount is mostly useful to verify that cancelled listeners are gone.
func (s *Subject[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription. Later Publish calls are ignored.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub.ch)
	}
}

type Subscription[T any] struct {
	ch     chan T
	once   sync.Once
	cancel func()
	extra  []func()
}

// C yields values until the subscription is cancelled or its source closes.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Cancel unregisters the subscription. It is safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		for _, f := range s.extra {
			f()
		}
	})
}

func (s *Subscription[T]) onCancel(f func()) {
	s.extra = append(s.extra, f)
}

// offer is called with the owning subject's lock held, which makes it the
// only sender on ch.
func (s *Subscription[T]) offer(v T) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- v:
	default:
	}
}
