package mq

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PublishAndConsume(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL not set")
	}

	c, err := Dial(url)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping())

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	exchange, queue := "test_fanout_"+suffix, "test_q_"+suffix
	require.NoError(t, c.DeclareFanout(exchange, queue))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Publish(ctx, exchange, "new-order", []byte(`{"order_number":101}`), nil))

	deliveries, err := c.Consume(queue, "test", 1)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.JSONEq(t, `{"order_number":101}`, string(d.Body))
		assert.Equal(t, "application/json", d.ContentType)
		require.NoError(t, d.Ack(false))
	case <-ctx.Done():
		t.Fatal("no delivery")
	}
}
