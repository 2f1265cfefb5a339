package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/grafo-ai/grafo/core/cost"
	"github.com/grafo-ai/grafo/core/overview"
	"github.com/grafo-ai/grafo/internal/jsonschema"
	"github.com/grafo-ai/grafo/providers/ai"
	"github.com/grafo-ai/grafo/providers/memory"
	"github.com/grafo-ai/grafo/providers/observability"
	"github.com/grafo-ai/grafo/providers/tool"
)

// DefaultMaxToolIterations is the number of tool-execution rounds a single
// SendMessage or ContinueConversation call may run before the last response is
// handed back to the caller, pending tool calls included.
const DefaultMaxToolIterations = 3

// Client orchestrates conversations with an LLM provider. It threads the
// configured system prompt, conversation memory, and tool catalog through
// every request, and transparently executes tool calls the model issues for
// tools registered in the catalog.
//
// A Client is immutable after construction (except for
// [Client.SetDefaultOutputSchema]) and safe for concurrent use as long as the
// configured memory provider is.
type Client struct {
	llmProvider         ai.Provider
	memoryProvider      memory.Provider
	observer            observability.Provider
	systemPrompt        string
	defaultModel        string
	toolCatalog         *tool.Catalog
	requiredTools       []ai.ToolDescription
	defaultOutputSchema *jsonschema.Schema
	maxToolIterations   int
	modelCost           *cost.ModelCost
	sendChain           SendFunc
}

// ClientOptions collects the configuration applied by [New]. Use the With*
// functional options to populate it.
type ClientOptions struct {
	memoryProvider      memory.Provider
	observer            observability.Provider
	systemPrompt        string
	defaultModel        string
	tools               []tool.GenericTool
	requiredTools       []tool.GenericTool
	defaultOutputSchema *jsonschema.Schema
	enrichSystemPrompt  bool
	maxToolIterations   int
	modelCost           *cost.ModelCost
	costStrategy        cost.OptimizationStrategy
	middlewares         []Middleware
}

// WithMemory attaches a conversation memory provider. SendMessage appends the
// user prompt to it and sends the stored history with every request;
// ContinueConversation requires it.
func WithMemory(provider memory.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.memoryProvider = provider
	}
}

// WithObserver attaches an observability provider. The observability
// middleware is prepended to the middleware chain so every provider call is
// traced, measured, and logged.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.observer = observer
	}
}

// WithSystemPrompt sets the system instructions sent with every request.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.systemPrompt = prompt
	}
}

// WithDefaultModel sets the model used when a send option does not override it.
func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.defaultModel = model
	}
}

// WithTools registers tools in the client's catalog. Cataloged tools are
// advertised to the model on every request and executed automatically when
// the model calls them.
func WithTools(tools ...tool.GenericTool) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.tools = append(o.tools, tools...)
	}
}

// WithRequiredTools registers tools that the model should treat as essential.
// They join the regular catalog and are additionally tracked so callers can
// inspect which tools were marked required.
func WithRequiredTools(tools ...tool.GenericTool) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.requiredTools = append(o.requiredTools, tools...)
	}
}

// WithDefaultOutputSchema sets a JSON schema applied to every request that
// does not override it with [WithOutputSchema].
func WithDefaultOutputSchema(schema *jsonschema.Schema) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.defaultOutputSchema = schema
	}
}

// WithEnrichSystemPromptWithToolsDescriptions appends a description of every
// cataloged tool to the system prompt at construction time. Useful for models
// that follow tool guidance better when it is spelled out in the prompt.
func WithEnrichSystemPromptWithToolsDescriptions() func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.enrichSystemPrompt = true
	}
}

// WithMaxToolIterations caps the number of tool-execution rounds per exchange.
// Zero disables automatic execution entirely: tool calls are always returned
// to the caller. Negative values cause [New] to fail.
func WithMaxToolIterations(n int) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.maxToolIterations = n
	}
}

// WithModelCost sets the per-token pricing for the client's model. When a
// conversation carries an [overview.Overview] in its context, the pricing is
// stamped onto it so [overview.Overview.CostSummary] can value the recorded
// token usage.
func WithModelCost(modelCost cost.ModelCost) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.modelCost = &modelCost
	}
}

// WithEnrichSystemPromptWithToolsCosts appends each cataloged tool's cost and
// quality metadata to the system prompt at construction time, together with
// guidance to prefer tools that fit the given optimization strategy. Tools
// without cost metadata are listed as having no cost data.
func WithEnrichSystemPromptWithToolsCosts(strategy cost.OptimizationStrategy) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.costStrategy = strategy
	}
}

// WithMiddleware appends middlewares to the send chain. The first middleware
// passed is the outermost wrapper; see [Middleware] for the wrapping rules.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

// New creates a Client for the given LLM provider. Options are applied in
// order; later options override earlier ones for scalar settings and
// accumulate for tools and middlewares.
func New(llmProvider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if llmProvider == nil {
		return nil, errors.New("llm provider cannot be nil")
	}

	options := ClientOptions{maxToolIterations: DefaultMaxToolIterations}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	if options.maxToolIterations < 0 {
		return nil, fmt.Errorf("max tool iterations cannot be negative, got %d", options.maxToolIterations)
	}

	for i, mw := range options.middlewares {
		if mw == nil {
			return nil, fmt.Errorf("middleware[%d] is nil", i)
		}
	}

	catalog := tool.NewCatalog()
	catalog.AddTools(options.tools...)
	catalog.AddTools(options.requiredTools...)

	var requiredDescriptions []ai.ToolDescription
	for _, t := range options.requiredTools {
		requiredDescriptions = append(requiredDescriptions, t.ToolInfo())
	}

	systemPrompt := options.systemPrompt
	if options.enrichSystemPrompt {
		systemPrompt = enrichSystemPromptWithTools(systemPrompt, sortedDescriptions(catalog))
	}
	if options.costStrategy != "" {
		systemPrompt = enrichSystemPromptWithToolCosts(systemPrompt, catalog, options.costStrategy)
	}

	middlewares := options.middlewares
	if options.observer != nil {
		// Outermost, so it observes the final outcome of the whole chain.
		middlewares = append([]Middleware{NewObservabilityMiddleware(options.observer, options.defaultModel)}, middlewares...)
	}

	var sendChain SendFunc
	if len(middlewares) > 0 {
		sendChain = buildSendChain(llmProvider, middlewares)
	}

	return &Client{
		llmProvider:         llmProvider,
		memoryProvider:      options.memoryProvider,
		observer:            options.observer,
		systemPrompt:        systemPrompt,
		defaultModel:        options.defaultModel,
		toolCatalog:         catalog,
		requiredTools:       requiredDescriptions,
		defaultOutputSchema: options.defaultOutputSchema,
		maxToolIterations:   options.maxToolIterations,
		modelCost:           options.modelCost,
		sendChain:           sendChain,
	}, nil
}

// SendMessageOptions collects per-request overrides. Use the send option
// constructors ([WithOutputSchema], [WithModel], [WithGenerationConfig]) to
// populate it.
type SendMessageOptions struct {
	outputSchema     *jsonschema.Schema
	model            string
	generationConfig *ai.GenerationConfig
}

// SendMessageOption customizes a single SendMessage or ContinueConversation
// call.
type SendMessageOption func(*SendMessageOptions)

// WithOutputSchema constrains this request's response to the given JSON
// schema, overriding any default output schema on the client.
func WithOutputSchema(schema *jsonschema.Schema) SendMessageOption {
	return func(o *SendMessageOptions) {
		o.outputSchema = schema
	}
}

// WithModel overrides the client's default model for this request.
func WithModel(model string) SendMessageOption {
	return func(o *SendMessageOptions) {
		o.model = model
	}
}

// WithGenerationConfig sets the sampling parameters for this request.
func WithGenerationConfig(config ai.GenerationConfig) SendMessageOption {
	return func(o *SendMessageOptions) {
		o.generationConfig = &config
	}
}

// SendMessage sends a user prompt and returns the model's response.
//
// When a memory provider is configured, the stored history is sent before the
// prompt and the prompt itself is appended to memory. Responses are never
// auto-saved: persisting the assistant's reply is the caller's decision.
//
// Tool calls for cataloged tools are executed automatically and their results
// fed back to the model, up to the configured iteration cap. Tool calls the
// catalog cannot serve are returned to the caller unexecuted. Intermediate
// tool exchanges extend only the in-flight request, never the memory.
func (c *Client) SendMessage(ctx context.Context, prompt string, opts ...SendMessageOption) (*ai.ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt cannot be empty; use ContinueConversation() to resume from existing memory")
	}

	userMessage := ai.Message{Role: ai.RoleUser, Content: prompt}

	var messages []ai.Message
	if c.memoryProvider != nil {
		history, err := c.memoryProvider.AllMessages(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve messages from memory: %w", err)
		}
		messages = history
		c.memoryProvider.AppendMessage(ctx, &userMessage)
	}
	messages = append(messages, userMessage)

	return c.converse(ctx, messages, opts)
}

// ContinueConversation sends the stored history as-is, without adding a new
// user message. Useful after the caller has appended tool results or other
// messages to memory and wants the model to pick up from there.
//
// A memory provider is required; configure one with [WithMemory].
func (c *Client) ContinueConversation(ctx context.Context, opts ...SendMessageOption) (*ai.ChatResponse, error) {
	if c.memoryProvider == nil {
		return nil, errors.New("ContinueConversation requires a memory provider; configure one with WithMemory()")
	}

	messages, err := c.memoryProvider.AllMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages from memory: %w", err)
	}

	return c.converse(ctx, messages, opts)
}

// Memory returns the client's memory provider, or nil for a stateless client.
func (c *Client) Memory() memory.Provider {
	return c.memoryProvider
}

// ToolCatalog returns a copy of the client's tool catalog. Mutating the copy
// does not affect the client.
func (c *Client) ToolCatalog() *tool.Catalog {
	return c.toolCatalog.Clone()
}

// RequiredTools returns the descriptions of the tools registered via
// [WithRequiredTools], in registration order.
func (c *Client) RequiredTools() []ai.ToolDescription {
	return slices.Clone(c.requiredTools)
}

// SetDefaultOutputSchema replaces the schema applied to requests that carry no
// per-request override. Used by [FromBaseClient] to bind a generated schema.
func (c *Client) SetDefaultOutputSchema(schema *jsonschema.Schema) {
	c.defaultOutputSchema = schema
}

// converse builds the chat request from the accumulated messages and drives
// the tool-execution loop until the model produces a terminal response, the
// iteration cap is reached, or a tool call cannot be served by the catalog.
func (c *Client) converse(ctx context.Context, messages []ai.Message, opts []SendMessageOption) (*ai.ChatResponse, error) {
	var options SendMessageOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	request := ai.ChatRequest{
		Model:            c.defaultModel,
		Messages:         messages,
		SystemPrompt:     c.systemPrompt,
		GenerationConfig: options.generationConfig,
	}
	if options.model != "" {
		request.Model = options.model
	}
	if c.toolCatalog.Size() > 0 {
		request.Tools = sortedDescriptions(c.toolCatalog)
	}

	schema := c.defaultOutputSchema
	if options.outputSchema != nil {
		schema = options.outputSchema
	}
	if schema != nil {
		request.ResponseFormat = &ai.ResponseFormat{
			Type:         "json_schema",
			OutputSchema: schema,
			Strict:       true,
		}
	}

	response, err := c.send(ctx, request)
	if err != nil {
		return nil, err
	}

	for iteration := 0; iteration < c.maxToolIterations; iteration++ {
		if len(response.ToolCalls) == 0 || c.llmProvider.IsStopMessage(response) {
			return response, nil
		}

		results, executed := c.executeToolCalls(ctx, response.ToolCalls, iteration)
		if !executed {
			// The catalog holds none of the requested tools. Hand the calls
			// back to the caller instead of looping on them.
			return response, nil
		}

		request.Messages = append(request.Messages, ai.Message{
			Role:      ai.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		request.Messages = append(request.Messages, results...)

		response, err = c.send(ctx, request)
		if err != nil {
			return nil, err
		}
	}

	return response, nil
}

// send routes the request through the middleware chain when one is
// configured, otherwise straight to the provider. Successful exchanges are
// recorded into the overview attached to ctx, if any.
func (c *Client) send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	var response *ai.ChatResponse
	var err error
	if c.sendChain != nil {
		response, err = c.sendChain(ctx, request)
	} else {
		response, err = c.llmProvider.SendMessage(ctx, request)
	}
	if err != nil {
		return nil, err
	}

	if run := overview.FromContext(ctx); run != nil {
		run.AddRequest(&request)
		run.AddResponse(response)
		run.IncludeUsage(response.Usage)
		run.AddToolCalls(response.ToolCalls)
		if c.modelCost != nil {
			run.SetModelCost(c.modelCost)
		}
	}
	return response, nil
}

// executeToolCalls runs the cataloged tools named by calls and returns their
// results as tool messages, in call order. executed is false when the catalog
// holds none of the requested tools; a partially known set still executes,
// with unknown names answered by a tool_not_found error result so the model
// can recover.
func (c *Client) executeToolCalls(ctx context.Context, calls []ai.ToolCall, iteration int) ([]ai.Message, bool) {
	known := 0
	for _, call := range calls {
		if c.toolCatalog.Has(call.Function.Name) {
			known++
		}
	}
	if known == 0 {
		return nil, false
	}

	if c.observer != nil {
		c.observer.Debug(ctx, "executing tool calls",
			observability.Int(observability.AttrClientToolCalls, len(calls)),
			observability.Int(observability.AttrClientToolIterations, iteration+1),
		)
	}

	results := make([]ai.Message, 0, len(calls))
	for _, call := range calls {
		results = append(results, c.executeToolCall(ctx, call))
	}
	return results, true
}

// executeToolCall runs a single tool call and wraps its outcome in a tool
// message linked back to the call ID.
func (c *Client) executeToolCall(ctx context.Context, call ai.ToolCall) ai.Message {
	message := ai.Message{
		Role:       ai.RoleTool,
		ToolCallID: call.ID,
		Name:       call.Function.Name,
	}

	cataloged, ok := c.toolCatalog.Get(call.Function.Name)
	if !ok {
		message.Content = toolResultJSON(ai.NewToolResultError("tool_not_found",
			fmt.Sprintf("no tool named %q is registered", call.Function.Name)))
		return message
	}

	output, err := cataloged.Call(ctx, call.Function.Arguments)

	// An executed call is billed whether or not it succeeded.
	if run := overview.FromContext(ctx); run != nil {
		run.AddToolExecutionCost(call.Function.Name, cataloged.Cost())
	}

	if err != nil {
		if c.observer != nil {
			c.observer.Warn(ctx, "tool call failed",
				observability.String(observability.AttrToolName, call.Function.Name),
				observability.Error(err),
			)
		}
		message.Content = toolResultJSON(ai.NewToolResultError("tool_execution_failed", err.Error()))
		return message
	}

	message.Content = output
	return message
}

// toolResultJSON renders a ToolResult for a tool message body. Encoding a
// ToolResult cannot realistically fail, but the fallback keeps the loop alive
// if it ever does.
func toolResultJSON(result ai.ToolResult) string {
	encoded, err := result.ToJSON()
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"encoding_failed","message":%q}`, err.Error())
	}
	return encoded
}

// enrichSystemPromptWithTools appends a tool overview to the base prompt.
// With no tools the base prompt is returned unchanged.
func enrichSystemPromptWithTools(basePrompt string, toolDescriptions []ai.ToolDescription) string {
	if len(toolDescriptions) == 0 {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n## Available Tools\n\nYou have access to the following tools:\n\n")
	for _, desc := range toolDescriptions {
		fmt.Fprintf(&b, "- **%s**: %s\n", desc.Name, desc.Description)
	}
	b.WriteString("\nUse function calling to invoke a tool whenever it helps answer the request.\n")
	return b.String()
}

// enrichSystemPromptWithToolCosts appends each tool's cost line to the base
// prompt plus guidance naming the optimization strategy. With no tools the
// base prompt is returned unchanged.
func enrichSystemPromptWithToolCosts(basePrompt string, catalog *tool.Catalog, strategy cost.OptimizationStrategy) string {
	descriptions := sortedDescriptions(catalog)
	if len(descriptions) == 0 {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n## Tool Costs\n\n")
	for _, desc := range descriptions {
		cataloged, ok := catalog.Get(desc.Name)
		if !ok {
			continue
		}
		toolCost := cataloged.Cost()
		if toolCost == nil {
			fmt.Fprintf(&b, "- **%s**: no cost data\n", desc.Name)
			continue
		}
		line := toolCost.String()
		if metrics := toolCost.MetricsString(); metrics != "" {
			line += " [" + metrics + "]"
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", desc.Name, line)
	}
	fmt.Fprintf(&b, "\nWhen several tools could serve a request, prefer the one that best optimizes for: %s.\n", strategy)
	return b.String()
}

// sortedDescriptions returns the catalog's tool descriptions ordered by name,
// so prompts and requests are deterministic.
func sortedDescriptions(catalog *tool.Catalog) []ai.ToolDescription {
	descriptions := catalog.Descriptions()
	slices.SortFunc(descriptions, func(a, b ai.ToolDescription) int {
		return strings.Compare(a.Name, b.Name)
	})
	return descriptions
}
