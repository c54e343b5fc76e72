package order

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dineflow/internal/common/config"
	"dineflow/internal/common/db"
	"dineflow/internal/common/docdb"
	"dineflow/internal/common/httpx"
	"dineflow/internal/common/logger"
	"dineflow/internal/common/mq"
	"dineflow/internal/microservices/notificator/hub"
	"dineflow/internal/microservices/notificator/relay"
	"dineflow/internal/microservices/order/handlers"
	"dineflow/internal/microservices/order/repository"
	"dineflow/internal/microservices/order/service"
)

// Core bundles the order store, the lifecycle engine and the broadcaster.
type Core struct {
	Service *service.Service
	Hub     *hub.Broadcaster
	closers []func()
}

func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func Build(ctx context.Context, cfg config.App, lg *logger.Logger) (*Core, error) {
	c := &Core{}
	repo, err := c.openRepository(ctx, cfg, lg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Hub = hub.New(
		hub.WithBuffer(cfg.Stream.Buffer),
		hub.WithKeepAlive(cfg.Stream.KeepAlive),
		hub.WithLogger(lg.Named("broadcaster")),
	)
	c.Service = service.New(repo, c.Hub, lg.Named("order-service"))
	return c, nil
}

func (c *Core) openRepository(ctx context.Context, cfg config.App, lg *logger.Logger) (repository.OrderRepositoryInterface, error) {
	seed := cfg.Storage.OrderNumberSeed
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.Database.DSN(), lg)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		if err := repository.ApplyMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		lg.Info("store_ready", map[string]any{"backend": config.BackendPostgres})
		return repository.NewPostgresRepository(pool, seed), nil

	case config.BackendMongo:
		cli, err := docdb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, lg)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = cli.Close(dctx)
		})
		repo := repository.NewMongoRepository(cli.Database(), seed)
		if err := repo.Init(ctx); err != nil {
			return nil, fmt.Errorf("init mongo store: %w", err)
		}
		lg.Info("store_ready", map[string]any{"backend": config.BackendMongo})
		return repo, nil

	default:
		lg.Warn("store_ready", map[string]any{"backend": config.BackendMemory, "durable": false})
		return repository.NewMemoryRepository(seed), nil
	}
}

// Run serves the HTTP API, the keep-alive loop and, when configured, the
// RabbitMQ relay until ctx is done.
func Run(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	core, err := Build(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer core.Close()

	var rl *relay.Relay
	if cfg.Rabbit.Enabled() {
		rmq, err := mq.Dial(cfg.Rabbit.URL())
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer rmq.Close()
		if err := rmq.DeclareFanout(cfg.Rabbit.Exchange, cfg.Rabbit.Queue); err != nil {
			return err
		}
		rl = relay.New(core.Hub, rmq, cfg.Rabbit.Exchange, lg.Named("relay"))
		lg.Info("relay_enabled", map[string]any{"exchange": cfg.Rabbit.Exchange})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return core.Hub.Run(gctx) })
	if rl != nil {
		g.Go(func() error { return rl.Run(gctx) })
	}

	h := handlers.New(core.Service, core.Hub, lg.Named("http"))
	srv := httpx.New(fmt.Sprintf(":%d", cfg.HTTP.Port), handlers.Router(h, lg.Named("http")))
	g.Go(func() error { return srv.Run(gctx) })

	lg.Info("api_listening", map[string]any{"port": cfg.HTTP.Port, "backend": cfg.Storage.Backend})
	return g.Wait()
}
