package mcpgw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"edugate/internal/lmsapi"
	"edugate/pkg/middleware"
	"edugate/pkg/tenants"
)

// callContext pulls tenant and bearer for one tool call. A missing bearer
// is a tool-level error telling the client to run the OAuth flow at this
// gateway, not a transport failure.
func (g *Gateway) callContext(ctx context.Context) (tenant, bearer string, errResult *mcp.CallToolResult) {
	tenant = middleware.TenantIDFrom(ctx)
	if tenant == "" {
		return "", "", mcp.NewToolResultError("no tenant in request path; connect via /mcp/{tenant}")
	}
	bearer = middleware.BearerFrom(ctx)
	if bearer == "" {
		return "", "", mcp.NewToolResultError(fmt.Sprintf(
			"authentication required: obtain a token via %s/oauth2/authorize?tenant=%s", g.cfg.PublicBaseURL, tenant))
	}
	return tenant, bearer, nil
}

func (g *Gateway) toolResult(doc any, err error, tenant string) (*mcp.CallToolResult, error) {
	if err != nil {
		var apiErr *lmsapi.APIError
		switch {
		case errors.Is(err, tenants.ErrNotConfigured):
			return mcp.NewToolResultError("tenant " + tenant + " is not configured"), nil
		case errors.As(err, &apiErr):
			return mcp.NewToolResultError(fmt.Sprintf("LMS API returned status %d: %s", apiErr.StatusCode, apiErr.Body)), nil
		default:
			g.log.Errorw("tool call failed", "tenant", tenant, "err", err)
			return mcp.NewToolResultError("upstream LMS unreachable"), nil
		}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (g *Gateway) handleListUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tenant, bearer, errResult := g.callContext(ctx)
	if errResult != nil {
		return errResult, nil
	}
	doc, err := g.lms.ListUsers(ctx, tenant, bearer)
	return g.toolResult(doc, err, tenant)
}

func (g *Gateway) handleSearchUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tenant, bearer, errResult := g.callContext(ctx)
	if errResult != nil {
		return errResult, nil
	}
	q, err := request.RequireString("q")
	if err != nil {
		return mcp.NewToolResultError("q argument is required"), nil
	}
	doc, err := g.lms.SearchUsers(ctx, tenant, bearer, q)
	return g.toolResult(doc, err, tenant)
}

func (g *Gateway) handleListCourses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tenant, bearer, errResult := g.callContext(ctx)
	if errResult != nil {
		return errResult, nil
	}
	doc, err := g.lms.ListCourses(ctx, tenant, bearer)
	return g.toolResult(doc, err, tenant)
}

func (g *Gateway) handleListEnrollments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tenant, bearer, errResult := g.callContext(ctx)
	if errResult != nil {
		return errResult, nil
	}
	courseID, err := request.RequireString("course_id")
	if err != nil {
		return mcp.NewToolResultError("course_id argument is required"), nil
	}
	doc, err := g.lms.ListEnrollments(ctx, tenant, bearer, courseID)
	return g.toolResult(doc, err, tenant)
}

func (g *Gateway) handleWhoami(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tenant, bearer, errResult := g.callContext(ctx)
	if errResult != nil {
		return errResult, nil
	}
	doc, err := g.lms.Self(ctx, tenant, bearer)
	return g.toolResult(doc, err, tenant)
}
