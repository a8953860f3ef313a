// Package mcpgw exposes the upstream LMS as MCP tools. The MCP surface is
// tenant-prefixed (/mcp/{tenant}); each request carries the caller's bearer
// token, which the tools forward to the tenant's API untouched.
package mcpgw

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"edugate/internal/lmsapi"
	"edugate/pkg/config"
	"edugate/pkg/middleware"
)

type Gateway struct {
	cfg        config.Config
	log        *zap.SugaredLogger
	lms        *lmsapi.Client
	mcpServer  *server.MCPServer
	streamable *server.StreamableHTTPServer
}

func New(cfg config.Config, log *zap.SugaredLogger, lms *lmsapi.Client) *Gateway {
	s := server.NewMCPServer(
		"edugate",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	g := &Gateway{cfg: cfg, log: log, lms: lms, mcpServer: s}
	g.registerTools()
	g.streamable = server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(requestContext),
		server.WithStateLess(true),
	)
	return g
}

// requestContext carries the tenant path segment and the caller's bearer
// into tool handlers.
func requestContext(ctx context.Context, r *http.Request) context.Context {
	ctx = middleware.WithTenantID(ctx, chi.URLParam(r, "tenant"))
	return middleware.WithBearer(ctx, middleware.BearerFromRequest(r))
}

// RegisterRoutes mounts the streamable HTTP transport under the
// tenant-prefixed MCP path.
func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.Handle("/mcp/{tenant}", g.streamable)
}

func (g *Gateway) registerTools() {
	g.mcpServer.AddTool(mcp.NewTool("list_users",
		mcp.WithDescription("List users in the tenant LMS"),
	), g.handleListUsers)

	g.mcpServer.AddTool(mcp.NewTool("search_users",
		mcp.WithDescription("Search users in the tenant LMS by name or email"),
		mcp.WithString("q",
			mcp.Required(),
			mcp.Description("Search query"),
		),
	), g.handleSearchUsers)

	g.mcpServer.AddTool(mcp.NewTool("list_courses",
		mcp.WithDescription("List courses in the tenant LMS"),
	), g.handleListCourses)

	g.mcpServer.AddTool(mcp.NewTool("list_enrollments",
		mcp.WithDescription("List enrollments for a course"),
		mcp.WithString("course_id",
			mcp.Required(),
			mcp.Description("Course identifier"),
		),
	), g.handleListEnrollments)

	g.mcpServer.AddTool(mcp.NewTool("whoami",
		mcp.WithDescription("Show the LMS profile of the authenticated caller"),
	), g.handleWhoami)
}
