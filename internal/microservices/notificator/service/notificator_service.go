package service

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/notificator/relay"
)

type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
}

// NotificatorService is the downstream subscriber of the notifications
// exchange. It logs every lifecycle notification it receives.
type NotificatorService struct {
	mq    Consumer
	queue string
	lg    *logger.Logger
}

func NewNotificatorService(mq Consumer, queue string, lg *logger.Logger) *NotificatorService {
	if lg == nil {
		lg = logger.Nop()
	}
	return &NotificatorService{mq: mq, queue: queue, lg: lg}
}

func (ns *NotificatorService) Notify(ctx context.Context) error {
	msgs, err := ns.mq.Consume(ns.queue, "notification-subscriber", 10)
	if err != nil {
		ns.lg.Error("consume_failed", err, map[string]any{"queue": ns.queue})
		return err
	}
	ns.lg.Info("subscriber_started", map[string]any{"queue": ns.queue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("notification channel closed by broker")
			}
			ns.handle(d)
		}
	}
}

func (ns *NotificatorService) handle(d amqp.Delivery) {
	var n relay.Notification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		ns.lg.Error("notification_malformed", err, map[string]any{"delivery_tag": d.DeliveryTag})
		_ = d.Nack(false, false)
		return
	}
	ns.lg.Info("notification_received", map[string]any{
		"event":        n.Event,
		"order_id":     n.OrderID,
		"order_number": n.OrderNumber,
		"table_number": n.TableNumber,
		"status":       n.Status,
	})
	if err := d.Ack(false); err != nil {
		ns.lg.Error("ack_failed", err, map[string]any{"delivery_tag": d.DeliveryTag})
	}
}
