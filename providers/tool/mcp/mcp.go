package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/grafo-ai/grafo/core/cost"
	"github.com/grafo-ai/grafo/internal/jsonschema"
	"github.com/grafo-ai/grafo/providers/ai"
	"github.com/grafo-ai/grafo/providers/observability"
	"github.com/grafo-ai/grafo/providers/tool"
)

// DefaultTimeout bounds each MCP operation when no timeout option is given.
const DefaultTimeout = 30 * time.Second

const (
	clientName    = "grafo"
	clientVersion = "1.0.0"
)

// Client talks to a single MCP server and exposes its tools as
// [tool.GenericTool] values that can join a [tool.Catalog].
type Client struct {
	mcp     *mcpclient.Client
	timeout time.Duration
}

type options struct {
	timeout time.Duration
	env     []string
	headers map[string]string
}

// Option configures a Client during construction.
type Option func(*options)

// WithTimeout sets the per-operation timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithEnv sets extra environment variables for a stdio server process, as
// KEY=VALUE strings.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithHeaders sets extra HTTP headers for a streamable HTTP connection.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

func applyOptions(opts []Option) *options {
	o := &options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewStdioClient launches command with args and speaks MCP over the process's
// stdin and stdout. The process lives until [Client.Close].
//
// Example:
//
//	mcpClient, err := mcp.NewStdioClient(ctx, "npx", "-y", "@modelcontextprotocol/server-filesystem", "/tmp")
func NewStdioClient(ctx context.Context, command string, args []string, opts ...Option) (*Client, error) {
	if command == "" {
		return nil, fmt.Errorf("mcp: command cannot be empty")
	}
	o := applyOptions(opts)
	return connect(ctx, mcpclient.NewClient(transport.NewStdio(command, o.env, args...)), o)
}

// NewStreamableHTTPClient connects to an MCP server over streamable HTTP at
// the given URL.
func NewStreamableHTTPClient(ctx context.Context, url string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("mcp: url cannot be empty")
	}
	o := applyOptions(opts)

	transportOpts := []transport.StreamableHTTPCOption{}
	if len(o.headers) > 0 {
		transportOpts = append(transportOpts, transport.WithHTTPHeaders(o.headers))
	}
	if o.timeout > 0 {
		transportOpts = append(transportOpts, transport.WithHTTPTimeout(o.timeout))
	}

	httpTransport, err := transport.NewStreamableHTTP(url, transportOpts...)
	if err != nil {
		return nil, fmt.Errorf("mcp: failed to create HTTP transport: %w", err)
	}
	return connect(ctx, mcpclient.NewClient(httpTransport), o)
}

// NewInProcessClient connects to an MCP server running inside the same
// process, without any wire transport. Useful for tests and for embedding
// server implementations directly.
func NewInProcessClient(ctx context.Context, srv *server.MCPServer, opts ...Option) (*Client, error) {
	if srv == nil {
		return nil, fmt.Errorf("mcp: server cannot be nil")
	}
	inner, err := mcpclient.NewInProcessClient(srv)
	if err != nil {
		return nil, fmt.Errorf("mcp: failed to create in-process client: %w", err)
	}
	return connect(ctx, inner, applyOptions(opts))
}

// connect starts the transport and runs the MCP initialize handshake.
func connect(ctx context.Context, inner *mcpclient.Client, o *options) (*Client, error) {
	c := &Client{mcp: inner, timeout: o.timeout}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	if err := inner.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: failed to start transport: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}

	if _, err := inner.Initialize(ctx, initRequest); err != nil {
		_ = inner.Close()
		return nil, fmt.Errorf("mcp: initialize handshake failed: %w", err)
	}
	return c, nil
}

func (c *Client) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Tools lists the tools available on the server and wraps each one as a
// [tool.GenericTool] whose Call proxies back to the server.
func (c *Client) Tools(ctx context.Context) ([]tool.GenericTool, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	result, err := c.mcp.ListTools(opCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp: failed to list tools: %w", err)
	}

	tools := make([]tool.GenericTool, 0, len(result.Tools))
	for _, t := range result.Tools {
		tools = append(tools, &serverTool{
			client:      c,
			description: toolDescription(t),
		})
	}
	return tools, nil
}

// CallTool invokes the named tool on the server. The input is a JSON object
// of arguments; empty input means no arguments. The result's text content is
// returned joined by newlines, falling back to the JSON of the structured
// content for tools that return no text.
func (c *Client) CallTool(ctx context.Context, name string, inputJSON string) (string, error) {
	args, err := parseArguments(inputJSON)
	if err != nil {
		return "", fmt.Errorf("mcp: invalid arguments for tool %q: %w", name, err)
	}

	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.mcp.CallTool(opCtx, request)
	if err != nil {
		return "", fmt.Errorf("mcp: tool %q call failed: %w", name, err)
	}

	text := resultText(result)
	if result.IsError {
		return "", fmt.Errorf("mcp: tool %q returned an error: %s", name, text)
	}
	return text, nil
}

// Close shuts down the connection. For stdio servers this terminates the
// child process.
func (c *Client) Close() error {
	return c.mcp.Close()
}

func parseArguments(inputJSON string) (map[string]any, error) {
	trimmed := strings.TrimSpace(inputJSON)
	if trimmed == "" || trimmed == "{}" || trimmed == "null" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// resultText flattens a tool result into a single string for the model.
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			return string(data)
		}
	}
	data, err := json.Marshal(result.Content)
	if err != nil {
		return ""
	}
	return string(data)
}

// toolDescription converts a server-advertised tool into the shape the chat
// providers expect. The MCP input schema is already JSON schema, so it maps
// across directly.
func toolDescription(t mcp.Tool) ai.ToolDescription {
	parameters := &jsonschema.Schema{Type: "object"}
	if data, err := json.Marshal(t.InputSchema); err == nil {
		var schema jsonschema.Schema
		if unmarshalErr := json.Unmarshal(data, &schema); unmarshalErr == nil {
			parameters = &schema
		}
	}
	return ai.ToolDescription{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  parameters,
	}
}

// serverTool adapts one remote tool to the GenericTool contract.
type serverTool struct {
	client      *Client
	description ai.ToolDescription
}

var _ tool.GenericTool = (*serverTool)(nil)

func (t *serverTool) ToolInfo() ai.ToolDescription {
	return t.description
}

// Cost reports nil: the MCP protocol does not advertise execution pricing.
func (t *serverTool) Cost() *cost.ToolCost {
	return nil
}

func (t *serverTool) Call(ctx context.Context, inputJSON string) (string, error) {
	span := observability.SpanFromContext(ctx)
	start := time.Now()

	if span != nil {
		span.AddEvent(observability.EventToolExecutionStart,
			observability.String(observability.AttrToolName, t.description.Name),
			observability.String(observability.AttrToolInput, observability.TruncateStringDefault(inputJSON)),
		)
	}

	output, err := t.client.CallTool(ctx, t.description.Name, inputJSON)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetAttributes(observability.String(observability.AttrToolError, err.Error()))
		}
		return "", err
	}

	if span != nil {
		span.AddEvent(observability.EventToolExecutionEnd,
			observability.String(observability.AttrToolName, t.description.Name),
			observability.Duration(observability.AttrToolDuration, time.Since(start)),
			observability.String(observability.AttrToolOutput, observability.TruncateStringDefault(output)),
		)
	}
	return output, nil
}
