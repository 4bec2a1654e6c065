package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrBusClosed - публикация в закрытую шину
var ErrBusClosed = errors.New("event bus closed")

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// Publisher - сторона, только отправляющая события (модули автоматизации)
type Publisher interface {
	Publish(ctx context.Context, ev *Envelope) error
}

// EventBus определяет абстракцию шины событий: в памяти или NATS JetStream.
type EventBus interface {
	Publisher
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

// memoryBus: общий входной буфер и по очереди на подписчика.
// Каждый подписчик получает события в порядке публикации в своей горутине;
// переполненная очередь подписчика отбрасывает событие (Dropped).
type memoryBus struct {
	inbox    chan *Envelope
	capacity int
	done     chan struct{}
	closed   atomic.Bool

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64

	mu     sync.RWMutex
	subs   map[uint64]*memSub
	nextID uint64
}

// NewMemoryBus создаёт in-memory шину с буфером capacity.
func NewMemoryBus(capacity int) EventBus {
	mb := newMemoryBus(capacity)
	go mb.dispatchLoop()
	return mb
}

func newMemoryBus(capacity int) *memoryBus {
	if capacity <= 0 {
		capacity = 1
	}
	return &memoryBus{
		inbox:    make(chan *Envelope, capacity),
		capacity: capacity,
		done:     make(chan struct{}),
		subs:     make(map[uint64]*memSub),
	}
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}

	select {
	case mb.inbox <- ev:
		mb.published.Add(1)
		return nil
	default:
	}

	if ev.Priority < PriorityHigh {
		mb.dropped.Add(1)
		return nil
	}
	select {
	case mb.inbox <- ev:
		mb.published.Add(1)
		return nil
	case <-mb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	if mb.closed.Load() {
		return nil, ErrBusClosed
	}

	sctx, cancel := context.WithCancel(ctx)
	sub := &memSub{
		bus:     mb,
		filter:  f,
		handler: h,
		ctx:     sctx,
		cancel:  cancel,
		queue:   make(chan *Envelope, mb.capacity),
	}

	mb.mu.Lock()
	sub.id = mb.nextID
	mb.nextID++
	mb.subs[sub.id] = sub
	mb.mu.Unlock()

	go sub.run()
	return sub, nil
}

func (mb *memoryBus) Metrics() Stats {
	return Stats{
		Published: mb.published.Load(),
		Consumed:  mb.consumed.Load(),
		Dropped:   mb.dropped.Load(),
		InFlight:  len(mb.inbox),
	}
}

// Close останавливает рассылку; недоставленные события отбрасываются
func (mb *memoryBus) Close() error {
	if mb.closed.Swap(true) {
		return nil
	}
	close(mb.done)

	mb.mu.Lock()
	for id, sub := range mb.subs {
		sub.cancel()
		delete(mb.subs, id)
	}
	mb.mu.Unlock()
	return nil
}

func (mb *memoryBus) dispatchLoop() {
	for {
		select {
		case ev := <-mb.inbox:
			mb.fanOut(ev)
		case <-mb.done:
			return
		}
	}
}

func (mb *memoryBus) fanOut(ev *Envelope) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	for _, sub := range mb.subs {
		if !sub.filter.Match(ev) {
			continue
		}
		select {
		case sub.queue <- ev:
		default:
			mb.dropped.Add(1)
		}
	}
}

type memSub struct {
	bus     *memoryBus
	id      uint64
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
	queue   chan *Envelope
}

func (s *memSub) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.queue:
			s.handler(s.ctx, ev)
			s.bus.consumed.Add(1)
		}
	}
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.cancel()
}
