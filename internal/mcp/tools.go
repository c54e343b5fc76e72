package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/dto"
	"dineflow/internal/microservices/order/domain/errs"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
)

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

func (s *Server) handleListOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	status := dao.Status(getStringDefault(args, "status", ""))
	if status != "" && !status.Valid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "unknown status", map[string]interface{}{
			"param": "status",
			"value": string(status),
		})
	}

	orders, err := s.orders.ListOrders(ctx, status)
	if err != nil {
		return domainError(err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":  len(orders),
		"orders": orders,
	})), nil
}

func (s *Server) handleGetOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(args, "id")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return domainError(err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"order": order})), nil
}

func (s *Server) handleCreateOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(args["items"])
	if err != nil {
		return nil, err
	}

	table, err := getInt(args, "table_number", "table_number", 0)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, dto.CreateOrderRequest{
		TableNumber:  int(table),
		CustomerName: getStringDefault(args, "customer_name", ""),
		Notes:        getStringDefault(args, "notes", ""),
		Items:        items,
	})
	if err != nil {
		return domainError(err)
	}
	s.lg.Info("mcp_order_created", map[string]any{"order_number": order.OrderNumber})
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"order": order})), nil
}

func (s *Server) handleTransitionOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	id, err := requiredString(args, "id")
	if err != nil {
		return nil, err
	}
	status, err := requiredString(args, "status")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.TransitionStatus(ctx, id, dao.Status(status))
	if err != nil {
		return domainError(err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"order": order})), nil
}

func (s *Server) handleGetStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.stats.ComputeStats(ctx)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"totalOrders":    st.TotalOrders,
		"activeOrders":   st.ActiveOrders,
		"completedToday": st.CompletedToday,
		"todaysRevenue":  st.TodaysRevenue,
	})), nil
}

// domainError reports business failures as tool errors the model can read.
// Store failures are protocol errors.
func domainError(err error) (*mcp.CallToolResult, error) {
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind == errs.KindStore {
		return nil, newMCPError(ErrorCodeInternalError, "order store unavailable", nil)
	}
	body := map[string]interface{}{"error": string(e.Kind), "message": e.Message}
	if e.Kind == errs.KindInvalidTransition {
		body["current"] = e.Current
		body["requested"] = e.Requested
	}
	return mcp.NewToolResultError(formatJSON(body)), nil
}

func parseItems(raw interface{}) ([]dto.OrderItemInput, error) {
	list, ok := raw.([]interface{})
	if raw != nil && !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "items must be an array", map[string]interface{}{"param": "items"})
	}
	items := make([]dto.OrderItemInput, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "item must be an object", map[string]interface{}{
				"param": fmt.Sprintf("items[%d]", i),
			})
		}
		price, err := getInt(m, "price", fmt.Sprintf("items[%d].price", i), 0)
		if err != nil {
			return nil, err
		}
		qty, err := getInt(m, "quantity", fmt.Sprintf("items[%d].quantity", i), 0)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.OrderItemInput{
			ID:       getStringDefault(m, "id", ""),
			Name:     getStringDefault(m, "name", ""),
			Price:    price,
			Quantity: int(qty),
		})
	}
	return items, nil
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return v, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getInt extracts a whole-number parameter. Fractions and values outside
// the int range are rejected rather than truncated.
func getInt(args map[string]interface{}, key, param string, defaultValue int64) (int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}
	invalid := func(reason string) error {
		return newMCPError(ErrorCodeInvalidParams, param+" must be an integer", map[string]interface{}{
			"param":  param,
			"reason": reason,
		})
	}
	var n int64
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, invalid("fractional value")
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, invalid("out of range")
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, invalid(err.Error())
		}
		n = i
	default:
		return 0, invalid("not a number")
	}
	if n < math.MinInt || n > math.MaxInt {
		return 0, invalid("out of range")
	}
	return n, nil
}

func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
