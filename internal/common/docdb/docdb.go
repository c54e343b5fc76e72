package docdb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"dineflow/internal/common/logger"
)

const connectTimeout = 10 * time.Second

type Client struct {
	*mongo.Client
	database string
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, uri, database string, lg *logger.Logger) (*Client, error) {
	if lg == nil {
		lg = logger.Nop()
	}
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(connectTimeout).
		SetAppName("dineflow")
	cli, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(cctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	lg.Info("mongo_connected", map[string]any{"database": database})
	return &Client{Client: cli, database: database}, nil
}

func (c *Client) Database() *mongo.Database { return c.Client.Database(c.database) }

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Disconnect(ctx)
}
