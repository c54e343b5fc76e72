package notificator

import (
	"context"

	"dineflow/internal/common/config"
	"dineflow/internal/common/logger"
	"dineflow/internal/common/mq"
	"dineflow/internal/microservices/notificator/service"
)

// Start runs the notification subscriber until ctx is done.
func Start(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	rmq, err := mq.Dial(cfg.Rabbit.URL())
	if err != nil {
		lg.Error("rabbitmq_connect_failed", err, map[string]any{"host": cfg.Rabbit.Host})
		return err
	}
	defer rmq.Close()

	if err := rmq.DeclareFanout(cfg.Rabbit.Exchange, cfg.Rabbit.Queue); err != nil {
		lg.Error("rabbitmq_topology_failed", err, nil)
		return err
	}
	return service.NewNotificatorService(rmq, cfg.Rabbit.Queue, lg).Notify(ctx)
}
