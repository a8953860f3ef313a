// Package lmsapi is a thin client for the per-tenant upstream LMS REST API.
// It forwards the caller's bearer token unchanged: the gateway holds no
// API credentials of its own and the upstream is the sole token validator.
package lmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jmespath/go-jmespath"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"edugate/pkg/config"
	"edugate/pkg/tenants"
)

// APIError carries an upstream non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error: status %d", e.StatusCode)
}

type Client struct {
	registry *tenants.Registry
	http     *http.Client
	log      *zap.SugaredLogger
}

func NewClient(cfg config.Config, registry *tenants.Registry, log *zap.SugaredLogger) *Client {
	return &Client{
		registry: registry,
		http: &http.Client{
			Timeout:   cfg.UpstreamTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// Get performs an authenticated GET against the tenant's API base URL and
// decodes the JSON response.
func (c *Client) Get(ctx context.Context, tenantID, bearer, path string, query url.Values) (any, error) {
	base, err := c.registry.APIBaseURL(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		c.log.Warnw("upstream API error", "tenant", tenantID, "path", path, "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	return out, nil
}

// Project trims an upstream response to the fields a tool wants, via a
// JMESPath expression. An empty expression passes the document through.
func Project(doc any, expression string) (any, error) {
	if expression == "" {
		return doc, nil
	}
	return jmespath.Search(expression, doc)
}

// Typed helpers over the common LMS surface. Each returns the decoded JSON
// already projected down to tool-relevant fields.

func (c *Client) ListUsers(ctx context.Context, tenantID, bearer string) (any, error) {
	doc, err := c.Get(ctx, tenantID, bearer, "/users", nil)
	if err != nil {
		return nil, err
	}
	return Project(doc, "users[].{id: id, name: name, email: email, role: role}")
}

func (c *Client) SearchUsers(ctx context.Context, tenantID, bearer, q string) (any, error) {
	doc, err := c.Get(ctx, tenantID, bearer, "/users/search", url.Values{"q": {q}})
	if err != nil {
		return nil, err
	}
	return Project(doc, "users[].{id: id, name: name, email: email}")
}

func (c *Client) ListCourses(ctx context.Context, tenantID, bearer string) (any, error) {
	doc, err := c.Get(ctx, tenantID, bearer, "/courses", nil)
	if err != nil {
		return nil, err
	}
	return Project(doc, "courses[].{id: id, title: title, code: code, term: term}")
}

func (c *Client) ListEnrollments(ctx context.Context, tenantID, bearer, courseID string) (any, error) {
	doc, err := c.Get(ctx, tenantID, bearer, "/courses/"+url.PathEscape(courseID)+"/enrollments", nil)
	if err != nil {
		return nil, err
	}
	return Project(doc, "enrollments[].{user_id: user_id, role: role, state: state}")
}

func (c *Client) Self(ctx context.Context, tenantID, bearer string) (any, error) {
	return c.Get(ctx, tenantID, bearer, "/users/self", nil)
}
