package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dineflow/internal/microservices/notificator/hub"
	"dineflow/internal/microservices/order/repository"
	"dineflow/internal/microservices/order/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := service.New(repository.NewMemoryRepository(101), hub.New(), nil)
	return NewServer(svc, nil)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func createArgs() map[string]any {
	return map[string]any{
		"table_number": float64(3),
		"items": []any{
			map[string]any{"id": "m1", "name": "Pho", "price": float64(100), "quantity": float64(2)},
			map[string]any{"id": "m2", "name": "Tea", "price": float64(50), "quantity": float64(1)},
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCreateOrder(ctx, call("create_order", createArgs()))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	order := resultJSON(t, res)["order"].(map[string]any)
	assert.EqualValues(t, 101, order["orderNumber"])
	assert.EqualValues(t, 250, order["total"])
	assert.EqualValues(t, 3, order["tableNumber"])
	assert.Equal(t, "Guest", order["customerName"])

	res, err = s.handleGetOrder(ctx, call("get_order", map[string]any{"id": order["id"]}))
	require.NoError(t, err)
	got := resultJSON(t, res)["order"].(map[string]any)
	assert.Equal(t, order["id"], got["id"])
}

func TestCreateOrder_Rejected(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleCreateOrder(context.Background(), call("create_order", map[string]any{"items": []any{}}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "InvalidOrder", resultJSON(t, res)["error"])
}

func TestTransitionOrder(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCreateOrder(ctx, call("create_order", createArgs()))
	require.NoError(t, err)
	id := resultJSON(t, res)["order"].(map[string]any)["id"]

	res, err = s.handleTransitionOrder(ctx, call("transition_order", map[string]any{"id": id, "status": "preparing"}))
	require.NoError(t, err)
	assert.Equal(t, "preparing", resultJSON(t, res)["order"].(map[string]any)["status"])

	res, err = s.handleTransitionOrder(ctx, call("transition_order", map[string]any{"id": id, "status": "new"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	body := resultJSON(t, res)
	assert.Equal(t, "InvalidTransition", body["error"])
	assert.Equal(t, "preparing", body["current"])
	assert.Equal(t, "new", body["requested"])
}

func TestListOrdersAndStats(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.handleCreateOrder(ctx, call("create_order", createArgs()))
		require.NoError(t, err)
	}

	res, err := s.handleListOrders(ctx, call("list_orders", nil))
	require.NoError(t, err)
	body := resultJSON(t, res)
	assert.EqualValues(t, 2, body["count"])
	orders := body["orders"].([]any)
	assert.EqualValues(t, 102, orders[0].(map[string]any)["orderNumber"])

	res, err = s.handleGetStats(ctx, call("get_stats", nil))
	require.NoError(t, err)
	stats := resultJSON(t, res)
	assert.EqualValues(t, 2, stats["totalOrders"])
	assert.EqualValues(t, 2, stats["activeOrders"])
	assert.EqualValues(t, 500, stats["todaysRevenue"])
}

func TestInvalidParams(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	testCases := map[string]struct {
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
	}{
		"should require id for get_order": {
			handler: s.handleGetOrder,
			args:    map[string]any{},
		},
		"should require status for transition_order": {
			handler: s.handleTransitionOrder,
			args:    map[string]any{"id": "x"},
		},
		"should reject unknown status filter": {
			handler: s.handleListOrders,
			args:    map[string]any{"status": "burnt"},
		},
		"should reject non-array items": {
			handler: s.handleCreateOrder,
			args:    map[string]any{"items": "pho"},
		},
		"should reject a fractional price": {
			handler: s.handleCreateOrder,
			args:    map[string]any{"items": []any{
				map[string]any{"name": "Pho", "price": 99.9, "quantity": float64(1)},
			}},
		},
		"should reject a fractional quantity": {
			handler: s.handleCreateOrder,
			args:    map[string]any{"items": []any{
				map[string]any{"name": "Pho", "price": float64(100), "quantity": 1.5},
			}},
		},
		"should reject a fractional table number": {
			handler: s.handleCreateOrder,
			args:    map[string]any{"table_number": 2.9, "items": []any{
				map[string]any{"name": "Pho", "price": float64(100), "quantity": float64(1)},
			}},
		},
		"should reject an out of range price": {
			handler: s.handleCreateOrder,
			args:    map[string]any{"items": []any{
				map[string]any{"name": "Pho", "price": 1e19, "quantity": float64(1)},
			}},
		},
		"should reject a non-numeric quantity": {
			handler: s.handleCreateOrder,
			args:    map[string]any{"items": []any{
				map[string]any{"name": "Pho", "price": float64(100), "quantity": "two"},
			}},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			res, err := tc.handler(ctx, call("tool", tc.args))

			assert.Nil(t, res)
			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleGetOrder(context.Background(), call("get_order", map[string]any{"id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "NotFound", resultJSON(t, res)["error"])
}
