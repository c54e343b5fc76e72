package relay

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/notificator/hub"
	"dineflow/internal/microservices/order/domain/dao"
)

const (
	publishTimeout = 5 * time.Second
	relayBuffer    = 256
)

// Notification is the message body put on the notifications exchange.
type Notification struct {
	Event       string    `json:"event"`
	OrderID     string    `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	TableNumber int       `json:"table_number"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`
	ChangedAt   time.Time `json:"changed_at"`
	Order       dao.Order `json:"order"`
}

func NewNotification(ev dao.Event) Notification {
	o := *ev.Order
	return Notification{
		Event:       string(ev.Kind),
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		TableNumber: o.TableNumber,
		Status:      string(o.Status),
		Total:       o.Total,
		ChangedAt:   o.UpdatedAt,
		Order:       o,
	}
}

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table) error
}

// Relay is a broadcaster listener that forwards lifecycle events to a
// RabbitMQ fanout exchange. Keep-alives are not forwarded.
type Relay struct {
	hub      *hub.Broadcaster
	pub      Publisher
	exchange string
	lg       *logger.Logger
}

func New(b *hub.Broadcaster, pub Publisher, exchange string, lg *logger.Logger) *Relay {
	if lg == nil {
		lg = logger.Nop()
	}
	return &Relay{hub: b, pub: pub, exchange: exchange, lg: lg}
}

// Run forwards events until ctx is done or the broadcaster shuts down. If
// the relay falls behind and gets evicted it subscribes again.
func (r *Relay) Run(ctx context.Context) error {
	for {
		sub := r.hub.SubscribeWithBuffer(relayBuffer)
		evicted := r.drain(ctx, sub)
		r.hub.Unsubscribe(sub)
		if !evicted || ctx.Err() != nil || r.hub.Closed() {
			return nil
		}
		r.lg.Warn("relay_resubscribed", map[string]any{"exchange": r.exchange})
	}
}

func (r *Relay) drain(ctx context.Context, sub *hub.Subscription) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-sub.Done():
			// shutdown closes subscriptions after ctx is cancelled
			return ctx.Err() == nil
		case ev := <-sub.Events():
			if ev.IsHeartbeat() || ev.Order == nil {
				continue
			}
			r.forward(ctx, ev)
		}
	}
}

func (r *Relay) forward(ctx context.Context, ev dao.Event) {
	msg := NewNotification(ev)
	body, err := json.Marshal(msg)
	if err != nil {
		r.lg.Error("relay_marshal_failed", err, map[string]any{"order_number": msg.OrderNumber})
		return
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	headers := amqp.Table{"x-source": "dineflow", "x-event": msg.Event}
	if err := r.pub.Publish(pctx, r.exchange, msg.Event, body, headers); err != nil {
		r.lg.Error("relay_publish_failed", err, map[string]any{
			"event":        msg.Event,
			"order_number": msg.OrderNumber,
		})
		return
	}
	r.lg.Debug("relay_published", map[string]any{"event": msg.Event, "order_number": msg.OrderNumber})
}
