package observable

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestSubjectReplaysLatestToLateSubscriber(t *testing.T) {
	s := NewSubject[int]()
	s.Publish(1)
	s.Publish(2)

	sub := s.Subscribe()
	defer sub.Cancel()

	assert.Equal(t, 2, receive(t, sub))
}

func TestSubjectConflatesForSlowSubscriber(t *testing.T) {
	s := NewSubject[int]()
	sub := s.Subscribe()
	defer sub.Cancel()

	for i := 1; i <= 10; i++ {
		s.Publish(i)
	}
	assert.Equal(t, 10, receive(t, sub))
}

func TestSubscriptionCancelUnregisters(t *testing.T) {
	s := NewBehaviorSubject("a")
	sub := s.Subscribe()
	assert.Equal(t, 1, s.SubscriberCount())

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, s.SubscriberCount())

	// drain the replayed value, then the channel must be closed
	<-sub.C()
	_, ok := <-sub.C()
	assert.False(t, ok)
}

func TestStreamStartsAndStopsProducer(t *testing.T) {
	var started, stopped atomic.Int32
	stream := NewStream(0, func(emit func(int)) func() {
		started.Add(1)
		emit(42)
		return func() { stopped.Add(1) }
	})

	first := stream.Subscribe()
	second := stream.Subscribe()
	assert.Equal(t, 42, receive(t, first))
	assert.Equal(t, 42, receive(t, second))
	assert.EqualValues(t, 1, started.Load())

	first.Cancel()
	assert.True(t, stream.Active())
	second.Cancel()
	assert.False(t, stream.Active())
	assert.EqualValues(t, 1, stopped.Load())
}

func TestStreamSeedsInitialValue(t *testing.T) {
	stream := NewStream("loading", func(emit func(string)) func() {
		return func() {}
	})
	sub := stream.Subscribe()
	defer sub.Cancel()

	assert.Equal(t, "loading", receive(t, sub))
}

func TestMap(t *testing.T) {
	src := NewStream(1, func(emit func(int)) func() {
		emit(5)
		return func() {}
	})
	doubled := Map(src, func(v int) int { return v * 2 })

	sub := doubled.Subscribe()
	defer sub.Cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case v := <-sub.C():
			if v == 10 {
				return
			}
		case <-deadline:
			t.Fatal("mapped value never arrived")
		}
	}
}
