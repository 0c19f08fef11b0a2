package pubsub

import (
	"context"
	"sync"
)

type Publisher[E any] interface {
	Publish(evt E)
}

type Subscriber[E any] interface {
	Subscribe(ctx context.Context) Subscription[E]
}

type Subscription[E any] interface {
	ResultChan() <-chan E
	Stop()
}

// PubSub fans events out to subscribers.
// Publish never blocks: when a subscriber's buffer is full its oldest
// pending event is dropped in favour of the new one, so a slow subscriber
// always ends up seeing the most recent event.
type PubSub[E any] struct {
	mutex         sync.RWMutex
	subscriptions map[int64]*subscription[E]
	seq           int64
	bufferSize    int
	stopped       bool
}

func New[E any]() *PubSub[E] {
	return NewWithBufferSize[E](10)
}

func NewWithBufferSize[E any](size int) *PubSub[E] {
	if size < 1 {
		size = 1
	}

	return &PubSub[E]{
		subscriptions: map[int64]*subscription[E]{},
		bufferSize:    size,
	}
}

func (p *PubSub[E]) Stop() {
	p.mutex.Lock()
	subscriptions := p.subscriptions
	p.subscriptions = map[int64]*subscription[E]{}
	p.stopped = true
	p.mutex.Unlock()

	for _, s := range subscriptions {
		s.close()
	}
}

func (p *PubSub[E]) Subscribe(ctx context.Context) Subscription[E] {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stopped {
		return noopSubscription[E]{}
	}

	p.seq++

	ctx, cancel := context.WithCancel(ctx)
	s := &subscription[E]{
		id:     p.seq,
		cancel: cancel,
		pubsub: p,
		ch:     make(chan E, p.bufferSize),
	}
	p.subscriptions[s.id] = s

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s
}

func (p *PubSub[E]) Publish(evt E) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.stopped {
		return
	}

	for _, s := range p.subscriptions {
		s.send(evt)
	}
}

type subscription[E any] struct {
	pubsub *PubSub[E]
	id     int64
	cancel context.CancelFunc
	mutex  sync.Mutex
	ch     chan E
	closed bool
}

func (s *subscription[E]) send(evt E) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	for {
		select {
		case s.ch <- evt:
			return
		default:
		}

		// drop the oldest pending event
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscription[E]) Stop() {
	s.pubsub.mutex.Lock()
	delete(s.pubsub.subscriptions, s.id)
	s.pubsub.mutex.Unlock()

	s.close()
}

func (s *subscription[E]) close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
		s.cancel()
	}
}

func (s *subscription[E]) ResultChan() <-chan E {
	return s.ch
}

type noopSubscription[E any] struct{}

func (noopSubscription[E]) Stop() {}

func (noopSubscription[E]) ResultChan() <-chan E {
	ch := make(chan E)
	close(ch)
	return ch
}
