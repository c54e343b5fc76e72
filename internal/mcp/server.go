package mcp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "dineflow"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the order boundary operations as MCP tools.
type Server struct {
	mcp    *server.MCPServer
	orders service.OrderServiceInterface
	stats  service.StatsServiceInterface
	lg     *logger.Logger
}

func NewServer(svc *service.Service, lg *logger.Logger) *Server {
	if lg == nil {
		lg = logger.Nop()
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		orders: svc.OrderService,
		stats:  svc.StatsService,
		lg:     lg,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until stdin closes or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.lg.Info("mcp_serving", map[string]any{"transport": "stdio"})
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	s.mcp.AddTool(listOrdersTool(), s.handleListOrders)
	s.mcp.AddTool(getOrderTool(), s.handleGetOrder)
	s.mcp.AddTool(createOrderTool(), s.handleCreateOrder)
	s.mcp.AddTool(transitionOrderTool(), s.handleTransitionOrder)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
}
