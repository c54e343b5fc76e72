package hub

import (
	"context"
	"sync"
	"time"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/domain/dao"
)

const (
	DefaultKeepAlive = 30 * time.Second
	DefaultBuffer    = 16
)

// Subscription is a listener handle. Events arrive on Events() in publish
// order; Done() is closed once the listener has been removed, either by
// Unsubscribe, by eviction for falling behind, or by broadcaster shutdown.
type Subscription struct {
	id     uint64
	events chan dao.Event
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) ID() uint64 { return s.id }
func (s *Subscription) Events() <-chan dao.Event { return s.events }
func (s *Subscription) Done() <-chan struct{} { return s.done }
func (s *Subscription) close() { s.once.Do(func() { close(s.done) }) }

// Broadcaster fans lifecycle events out to every registered listener.
// Delivery is best effort: no persistence, no replay, no acknowledgement.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	// pubMu keeps one fan-out (or keep-alive round) at a time so that
	// every listener observes the same global order.
	pubMu sync.Mutex

	buffer    int
	keepAlive time.Duration
	lg        *logger.Logger
}

type Option func(*Broadcaster)

func WithBuffer(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func WithKeepAlive(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.keepAlive = d
		}
	}
}

func WithLogger(lg *logger.Logger) Option {
	return func(b *Broadcaster) {
		if lg != nil {
			b.lg = lg
		}
	}
}

func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		subs:      make(map[uint64]*Subscription),
		buffer:    DefaultBuffer,
		keepAlive: DefaultKeepAlive,
		lg:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Broadcaster) Subscribe() *Subscription { return b.SubscribeWithBuffer(b.buffer) }

func (b *Broadcaster) SubscribeWithBuffer(n int) *Subscription {
	if n <= 0 {
		n = b.buffer
	}
	b.mu.Lock()
	b.nextID++
	s := &Subscription{
		id:     b.nextID,
		events: make(chan dao.Event, n),
		done:   make(chan struct{}),
	}
	if b.closed {
		b.mu.Unlock()
		s.close()
		return s
	}
	b.subs[s.id] = s
	total := len(b.subs)
	b.mu.Unlock()

	b.lg.Debug("listener_subscribed", map[string]any{"listener": s.id, "listeners": total})
	return s
}

// Unsubscribe is safe to call more than once and after eviction.
func (b *Broadcaster) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	b.mu.Lock()
	_, ok := b.subs[s.id]
	delete(b.subs, s.id)
	total := len(b.subs)
	b.mu.Unlock()

	s.close()
	if ok {
		b.lg.Debug("listener_unsubscribed", map[string]any{"listener": s.id, "listeners": total})
	}
}

// Closed reports whether Run has finished and the broadcaster stopped.
func (b *Broadcaster) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish hands the event to every current listener without waiting. A
// listener whose buffer is full is evicted so it can reconnect and resync.
func (b *Broadcaster) Publish(kind dao.EventKind, order dao.Order) {
	snapshot := order.Clone()
	ev := dao.Event{Kind: kind, Order: &snapshot}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	lagging := b.fanOut(ev)
	for _, s := range lagging {
		b.lg.Warn("listener_evicted", map[string]any{
			"listener":     s.id,
			"event":        string(kind),
			"order_number": order.OrderNumber,
		})
		b.Unsubscribe(s)
	}
	b.lg.Debug("event_published", map[string]any{
		"event":        string(kind),
		"order_number": order.OrderNumber,
		"listeners":    b.Len(),
	})
}

func (b *Broadcaster) fanOut(ev dao.Event) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var lagging []*Subscription
	for _, s := range b.subs {
		select {
		case s.events <- ev:
		default:
			lagging = append(lagging, s)
		}
	}
	return lagging
}

// Run emits a keep-alive to every listener each interval until ctx is
// done, then closes all remaining subscriptions. Subscriptions taken after
// that are returned already closed.
func (b *Broadcaster) Run(ctx context.Context) error {
	t := time.NewTicker(b.keepAlive)
	defer t.Stop()
	defer b.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			b.heartbeat()
		}
	}
}

func (b *Broadcaster) heartbeat() {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		select {
		case s.events <- dao.Event{Kind: dao.EventHeartbeat}:
		default:
			// a full buffer already signals traffic; the next publish decides
		}
	}
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[uint64]*Subscription)
	b.closed = true
	b.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
	b.lg.Info("broadcaster_stopped", map[string]any{"listeners_closed": len(subs)})
}
