package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var statusEnum = []string{"new", "preparing", "ready", "completed", "cancelled"}

func listOrdersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_orders",
		Description: "List orders newest first, optionally filtered by status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Only return orders in this status",
					"enum":        statusEnum,
				},
			},
		},
	}
}

func getOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_order",
		Description: "Fetch a single order by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Order id",
				},
			},
			Required: []string{"id"},
		},
	}
}

func createOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_order",
		Description: "Place a new order; the total is computed from the item prices",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_number": map[string]interface{}{
					"type":        "integer",
					"description": "Table number, 0 for takeaway",
					"default":     0,
					"minimum":     0,
				},
				"customer_name": map[string]interface{}{
					"type":        "string",
					"description": "Customer name (defaults to Guest)",
				},
				"notes": map[string]interface{}{
					"type":        "string",
					"description": "Free-form kitchen notes",
				},
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Line items with the price snapshot taken from the menu",
					"minItems":    1,
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id":       map[string]interface{}{"type": "string"},
							"name":     map[string]interface{}{"type": "string"},
							"price":    map[string]interface{}{"type": "integer", "minimum": 1},
							"quantity": map[string]interface{}{"type": "integer", "minimum": 1},
						},
						"required": []string{"name", "price", "quantity"},
					},
				},
			},
			Required: []string{"items"},
		},
	}
}

func transitionOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "transition_order",
		Description: "Move an order to its next status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Order id",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Target status",
					"enum":        statusEnum,
				},
			},
			Required: []string{"id", "status"},
		},
	}
}

func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Today's order count, active orders, completed orders and revenue",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
