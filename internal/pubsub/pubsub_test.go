package pubsub

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeEvent struct {
	Value string
}

func TestPubSub(t *testing.T) {
	testee := New[fakeEvent]()
	s := testee.Subscribe(context.Background())
	defer s.Stop()

	eventCount := 3

	go func() {
		for i := 0; i < eventCount; i++ {
			testee.Publish(fakeEvent{Value: fmt.Sprintf("fake value %d", i)})
		}
	}()

	time.Sleep(100 * time.Millisecond)

	go func() {
		time.Sleep(time.Second)
		s.Stop()
		testee.Publish(fakeEvent{Value: "event sent after stop"})
	}()

	expected := []string{"fake value 0", "fake value 1", "fake value 2"}
	actual := make([]string, 0, 3)

	for evt := range s.ResultChan() {
		actual = append(actual, evt.Value)
	}

	require.Equal(t, expected, actual, "received events")
}

func TestPubSubDropsOldestEventsOfSlowSubscriber(t *testing.T) {
	testee := NewWithBufferSize[fakeEvent](2)
	s := testee.Subscribe(context.Background())

	for i := 0; i < 5; i++ {
		testee.Publish(fakeEvent{Value: fmt.Sprintf("fake value %d", i)})
	}

	testee.Stop()

	actual := []string{}
	for evt := range s.ResultChan() {
		actual = append(actual, evt.Value)
	}

	require.Equal(t, []string{"fake value 3", "fake value 4"}, actual, "received events")
}

func TestPubSubUnsubscribesOnContextCancellation(t *testing.T) {
	testee := New[fakeEvent]()
	ctx, cancel := context.WithCancel(context.Background())
	s := testee.Subscribe(ctx)

	cancel()

	select {
	case _, ok := <-s.ResultChan():
		require.False(t, ok, "channel should be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not closed after context cancellation")
	}

	testee.Publish(fakeEvent{Value: "ignored"})
}

func TestPubSubSubscribeAfterStop(t *testing.T) {
	testee := New[fakeEvent]()
	testee.Stop()

	s := testee.Subscribe(context.Background())
	defer s.Stop()

	_, ok := <-s.ResultChan()
	require.False(t, ok, "channel should be closed")
}
