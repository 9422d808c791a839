package observable

import "sync"

// Producer starts feeding a stream through emit and returns the function that
// stops it. It runs once per active period of the stream.
type Producer[T any] func(emit func(T)) (stop func())

// Stream is a cold, multi-consumer stream. The producer starts with the first
// subscriber and is stopped when the last one cancels. While active, new
// subscribers immediately receive the latest value, and before the producer
// emits anything they receive initial.
type Stream[T any] struct {
	mu      sync.Mutex
	initial T
	start   Producer[T]
	subject *Subject[T]
	stop    func()
	refs    int
}

func NewStream[T any](initial T, start Producer[T]) *Stream[T] {
	return &Stream[T]{initial: initial, start: start}
}

func (s *Stream[T]) Subscribe() *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		s.subject = NewBehaviorSubject(s.initial)
		s.stop = s.start(s.subject.Publish)
	}
	s.refs++

	sub := s.subject.Subscribe()
	sub.onCancel(s.release)
	return sub
}

// Active reports whether the producer is currently running.
func (s *Stream[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs > 0
}

func (s *Stream[T]) release() {
	s.mu.Lock()
	s.refs--
	var (
		stop    func()
		subject *Subject[T]
	)
	if s.refs == 0 {
		stop, subject = s.stop, s.subject
		s.stop, s.subject = nil, nil
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	if subject != nil {
		subject.Close()
	}
}

// Map derives a stream whose values are f applied to src's values.
func Map[T, U any](src *Stream[T], f func(T) U) *Stream[U] {
	return NewStream(f(src.initial), func(emit func(U)) func() {
		sub := src.Subscribe()
		go func() {
			for v := range sub.C() {
				emit(f(v))
			}
		}()
		return sub.Cancel
	})
}
