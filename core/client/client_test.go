package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/grafo-ai/grafo/core/cost"
	"github.com/grafo-ai/grafo/core/overview"
	"github.com/grafo-ai/grafo/internal/jsonschema"
	"github.com/grafo-ai/grafo/providers/ai"
	"github.com/grafo-ai/grafo/providers/memory/inmemory"
	"github.com/grafo-ai/grafo/providers/observability"
	"github.com/grafo-ai/grafo/providers/tool"
)

// ========== Mock Types ==========

// errorMemory is a minimal memory.Provider stub whose AllMessages always
// returns a fixed error. Used to exercise the error-propagation paths in
// SendMessage and ContinueConversation.
type errorMemory struct {
	allMessagesErr error
}

func (e *errorMemory) AppendMessage(_ context.Context, _ *ai.Message) {}

func (e *errorMemory) AllMessages(_ context.Context) ([]ai.Message, error) {
	return nil, e.allMessagesErr
}

func (e *errorMemory) LastMessages(_ context.Context, _ int) ([]ai.Message, error) {
	return nil, nil
}

func (e *errorMemory) PopLastMessage(_ context.Context) (*ai.Message, error) {
	return nil, nil
}

func (e *errorMemory) Count(_ context.Context) (int, error) {
	return 0, nil
}

func (e *errorMemory) ClearMessages(_ context.Context) {}

func (e *errorMemory) FilterByRole(_ context.Context, _ ai.MessageRole) ([]ai.Message, error) {
	return nil, nil
}

// mockProvider is a mock implementation of ai.Provider for testing
type mockProvider struct {
	sendMessageFunc func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)
}

func (m *mockProvider) SendMessage(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, req)
	}
	return &ai.ChatResponse{
		ID:           "test-id",
		Model:        "test-model",
		Content:      "test response",
		FinishReason: "stop",
		Usage: &ai.Usage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
	}, nil
}

func (m *mockProvider) IsStopMessage(resp *ai.ChatResponse) bool {
	return resp.FinishReason == "stop"
}

func (m *mockProvider) WithAPIKey(key string) ai.Provider              { return m }
func (m *mockProvider) WithBaseURL(url string) ai.Provider             { return m }
func (m *mockProvider) WithHTTPClient(client *http.Client) ai.Provider { return m }

// mockTool is a mock implementation of tool.GenericTool for testing
type mockTool struct {
	name          string
	description   string
	callCount     int
	result        string
	callErr       error
	executionCost *cost.ToolCost
}

func (m *mockTool) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        m.name,
		Description: m.description,
		Parameters:  nil,
	}
}

func (m *mockTool) Call(ctx context.Context, arguments string) (string, error) {
	m.callCount++
	if m.callErr != nil {
		return "", m.callErr
	}
	if m.result != "" {
		return m.result, nil
	}
	return `{"result": "success"}`, nil
}

func (m *mockTool) Cost() *cost.ToolCost {
	return m.executionCost
}

// testObserver is a test observer that tracks observability calls
type testObserver struct {
	spanStarted     bool
	spanEnded       bool
	errorLogged     bool
	metricsRecorded bool
}

func (o *testObserver) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	o.spanStarted = true
	return ctx, &testSpan{observer: o}
}

func (o *testObserver) Counter(name string) observability.Counter {
	return &testCounter{observer: o}
}

func (o *testObserver) Histogram(name string) observability.Histogram {
	return &testHistogram{observer: o}
}

func (o *testObserver) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {}
func (o *testObserver) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {}
func (o *testObserver) Info(ctx context.Context, msg string, attrs ...observability.Attribute)  {}
func (o *testObserver) Warn(ctx context.Context, msg string, attrs ...observability.Attribute)  {}
func (o *testObserver) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.errorLogged = true
}

type testSpan struct {
	observer *testObserver
}

func (s *testSpan) End() {
	s.observer.spanEnded = true
}

func (s *testSpan) SetAttributes(attrs ...observability.Attribute)              {}
func (s *testSpan) SetStatus(code observability.StatusCode, description string) {}
func (s *testSpan) RecordError(err error)                                       {}
func (s *testSpan) AddEvent(name string, attrs ...observability.Attribute)      {}

type testCounter struct {
	observer *testObserver
}

func (c *testCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.observer.metricsRecorded = true
}

type testHistogram struct {
	observer *testObserver
}

func (h *testHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.observer.metricsRecorded = true
}

// ========== Client Creation Tests ==========

// TestNewClient_DefaultConfiguration tests client creation with default options.
func TestNewClient_DefaultConfiguration(t *testing.T) {
	provider := &mockProvider{}
	client, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if client.llmProvider == nil {
		t.Error("Expected llmProvider to be set")
	}
	if client.memoryProvider != nil {
		t.Error("Expected memoryProvider to be nil by default")
	}
	if client.observer != nil {
		t.Error("Expected observer to be nil by default")
	}
	if client.maxToolIterations != DefaultMaxToolIterations {
		t.Errorf("Expected maxToolIterations %d, got: %d", DefaultMaxToolIterations, client.maxToolIterations)
	}
}

// TestNewClient_WithOptions tests client creation with various options.
func TestNewClient_WithOptions(t *testing.T) {
	provider := &mockProvider{}
	memory := inmemory.New()
	observer := &testObserver{}
	testTool := &mockTool{name: "test", description: "test tool"}

	client, err := New(
		provider,
		WithMemory(memory),
		WithObserver(observer),
		WithSystemPrompt("Test prompt"),
		WithDefaultModel("gpt-4"),
		WithTools(testTool),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if client.memoryProvider == nil {
		t.Error("Expected memoryProvider to be set")
	}
	if client.observer == nil {
		t.Error("Expected observer to be set")
	}
	if client.systemPrompt != "Test prompt" {
		t.Errorf("Expected systemPrompt 'Test prompt', got: %s", client.systemPrompt)
	}
	if client.defaultModel != "gpt-4" {
		t.Errorf("Expected defaultModel 'gpt-4', got: %s", client.defaultModel)
	}
	if client.toolCatalog.Size() != 1 {
		t.Errorf("Expected 1 tool in catalog, got: %d", client.toolCatalog.Size())
	}
}

// TestNewClient_NilProvider tests that a nil provider is rejected.
func TestNewClient_NilProvider(t *testing.T) {
	_, err := New(nil)
	if err == nil {
		t.Fatal("Expected error for nil provider, got nil")
	}
	if !strings.Contains(err.Error(), "llm provider cannot be nil") {
		t.Errorf("Expected nil-provider error, got: %v", err)
	}
}

// TestNewClient_NegativeToolIterations tests that a negative iteration cap is
// rejected.
func TestNewClient_NegativeToolIterations(t *testing.T) {
	provider := &mockProvider{}
	_, err := New(provider, WithMaxToolIterations(-1))
	if err == nil {
		t.Fatal("Expected error for negative tool iterations, got nil")
	}
	if !strings.Contains(err.Error(), "max tool iterations cannot be negative") {
		t.Errorf("Expected negative-iterations error, got: %v", err)
	}
}

// ========== SendMessage Tests ==========

// TestSendMessage_StatelessMode tests basic stateless message sending.
func TestSendMessage_StatelessMode(t *testing.T) {
	provider := &mockProvider{}
	client, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	resp, err := client.SendMessage(ctx, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if resp.Content != "test response" {
		t.Errorf("Expected 'test response', got: %s", resp.Content)
	}
}

// TestSendMessage_StatefulMode tests message sending with memory.
func TestSendMessage_StatefulMode(t *testing.T) {
	var capturedRequest ai.ChatRequest
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedRequest = req
			return &ai.ChatResponse{
				ID:           "test-id",
				Model:        "test-model",
				Content:      "Response 1",
				FinishReason: "stop",
			}, nil
		},
	}

	memory := inmemory.New()
	client, err := New(provider, WithMemory(memory))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()

	resp1, err := client.SendMessage(ctx, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Only the user message is saved; responses are never auto-saved.
	count, countErr := memory.Count(ctx)
	if countErr != nil {
		t.Fatalf("Count returned unexpected error: %v", countErr)
	}
	if count != 1 {
		t.Errorf("Expected 1 message in memory, got: %d", count)
	}

	_, err = client.SendMessage(ctx, "World")
	if err != nil {
		t.Fatalf("Second SendMessage failed: %v", err)
	}

	count, countErr = memory.Count(ctx)
	if countErr != nil {
		t.Fatalf("Count returned unexpected error: %v", countErr)
	}
	if count != 2 {
		t.Errorf("Expected 2 messages in memory, got: %d", count)
	}

	// The second request carries the first user message as history.
	if len(capturedRequest.Messages) < 2 {
		t.Errorf("Expected at least 2 messages in request, got: %d", len(capturedRequest.Messages))
	}

	if resp1.Content != "Response 1" {
		t.Errorf("Expected 'Response 1', got: %s", resp1.Content)
	}
}

// TestSendMessage_EmptyPrompt tests that empty prompts are rejected.
func TestSendMessage_EmptyPrompt(t *testing.T) {
	provider := &mockProvider{}
	client, err := New(provider, WithMemory(inmemory.New()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "")

	if err == nil {
		t.Fatal("Expected error when sending empty prompt, got nil")
	}

	if !strings.Contains(err.Error(), "prompt cannot be empty") {
		t.Errorf("Expected error about empty prompt, got: %s", err.Error())
	}

	if !strings.Contains(err.Error(), "ContinueConversation()") {
		t.Errorf("Expected error to suggest ContinueConversation(), got: %s", err.Error())
	}
}

// TestSendMessage_WithOutputSchema tests the output schema send option.
func TestSendMessage_WithOutputSchema(t *testing.T) {
	var capturedRequest ai.ChatRequest
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedRequest = req
			return &ai.ChatResponse{
				ID:           "test-id",
				Model:        "test-model",
				Content:      `{"result": "structured"}`,
				FinishReason: "stop",
			}, nil
		},
	}

	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"result": {Type: "string"},
		},
	}

	client, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "Get structured data", WithOutputSchema(schema))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if capturedRequest.ResponseFormat == nil || capturedRequest.ResponseFormat.OutputSchema == nil {
		t.Error("Expected ResponseFormat.OutputSchema to be set in request")
	}
}

// TestSendMessage_WithModel tests the per-request model override.
func TestSendMessage_WithModel(t *testing.T) {
	var capturedModel string
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedModel = req.Model
			return &ai.ChatResponse{Content: "ok", FinishReason: "stop"}, nil
		},
	}

	client, err := New(provider, WithDefaultModel("gpt-4"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if _, err = client.SendMessage(ctx, "Hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if capturedModel != "gpt-4" {
		t.Errorf("Expected default model 'gpt-4', got: %s", capturedModel)
	}

	if _, err = client.SendMessage(ctx, "Hello", WithModel("gpt-4o-mini")); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if capturedModel != "gpt-4o-mini" {
		t.Errorf("Expected override model 'gpt-4o-mini', got: %s", capturedModel)
	}
}

// TestSendMessage_ProviderError tests error handling from the provider.
func TestSendMessage_ProviderError(t *testing.T) {
	testError := errors.New("provider error")
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
			return nil, testError
		},
	}

	client, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "Hello")

	if err == nil {
		t.Fatal("Expected error from provider, got nil")
	}

	if !errors.Is(err, testError) {
		t.Errorf("Expected wrapped test error, got: %v", err)
	}
}

// ========== ContinueConversation Tests ==========

// TestContinueConversation_Success tests successful conversation continuation.
func TestContinueConversation_Success(t *testing.T) {
	var capturedRequest ai.ChatRequest
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedRequest = req
			return &ai.ChatResponse{
				ID:           "test-id",
				Model:        "test-model",
				Content:      "Final answer based on tool results",
				FinishReason: "stop",
			}, nil
		},
	}

	memory := inmemory.New()
	client, err := New(provider, WithMemory(memory))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()

	// Simulate a conversation that already holds a tool exchange.
	memory.AppendMessage(ctx, &ai.Message{
		Role:    ai.RoleUser,
		Content: "What is 2+2?",
	})

	memory.AppendMessage(ctx, &ai.Message{
		Role:    ai.RoleAssistant,
		Content: "Let me calculate that",
		ToolCalls: []ai.ToolCall{
			{
				ID:   "call_123",
				Type: "function",
				Function: ai.ToolCallFunction{
					Name:      "calculator",
					Arguments: `{"operation":"add","a":2,"b":2}`,
				},
			},
		},
	})

	memory.AppendMessage(ctx, &ai.Message{
		Role:       ai.RoleTool,
		Content:    "4",
		ToolCallID: "call_123",
		Name:       "calculator",
	})

	resp, err := client.ContinueConversation(ctx)
	if err != nil {
		t.Fatalf("ContinueConversation failed: %v", err)
	}

	if resp.Content != "Final answer based on tool results" {
		t.Errorf("Expected specific content, got: %s", resp.Content)
	}

	if len(capturedRequest.Messages) != 3 {
		t.Errorf("Expected 3 messages in request, got %d", len(capturedRequest.Messages))
	}
}

// TestContinueConversation_WithoutMemory tests that memory is required.
func TestContinueConversation_WithoutMemory(t *testing.T) {
	provider := &mockProvider{}
	client, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.ContinueConversation(ctx)

	if err == nil {
		t.Fatal("Expected error when calling ContinueConversation without memory, got nil")
	}

	if !strings.Contains(err.Error(), "ContinueConversation requires a memory provider") {
		t.Errorf("Expected error about missing memory, got: %s", err.Error())
	}

	if !strings.Contains(err.Error(), "WithMemory()") {
		t.Errorf("Expected error to suggest WithMemory(), got: %s", err.Error())
	}
}

// TestContinueConversation_EmptyMemory tests continuation with empty memory.
func TestContinueConversation_EmptyMemory(t *testing.T) {
	var capturedRequest ai.ChatRequest
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedRequest = req
			return &ai.ChatResponse{
				ID:           "test-id",
				Model:        "test-model",
				Content:      "Response",
				FinishReason: "stop",
			}, nil
		},
	}

	memory := inmemory.New()
	client, err := New(provider, WithMemory(memory))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.ContinueConversation(ctx)
	if err != nil {
		t.Fatalf("ContinueConversation with empty memory failed: %v", err)
	}

	if len(capturedRequest.Messages) != 0 {
		t.Errorf("Expected 0 messages in request with empty memory, got %d", len(capturedRequest.Messages))
	}
}

// TestToolExecutionWorkflow tests the manual tool workflow: with no cataloged
// tools the client hands tool calls back to the caller, who appends the
// result to memory and continues the conversation.
func TestToolExecutionWorkflow(t *testing.T) {
	callCount := 0
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
			callCount++
			if callCount == 1 {
				return &ai.ChatResponse{
					ID:           "test-id-1",
					Model:        "test-model",
					Content:      "Let me search for that",
					FinishReason: "tool_calls",
					ToolCalls: []ai.ToolCall{
						{
							ID:   "call_123",
							Type: "function",
							Function: ai.ToolCallFunction{
								Name:      "search",
								Arguments: `{"query":"golang"}`,
							},
						},
					},
				}, nil
			}
			return &ai.ChatResponse{
				ID:           "test-id-2",
				Model:        "test-model",
				Content:      "Based on the search results, here's the answer",
				FinishReason: "stop",
			}, nil
		},
	}

	memory := inmemory.New()
	client, err := New(provider, WithMemory(memory))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()

	resp1, err := client.SendMessage(ctx, "Tell me about golang")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if len(resp1.ToolCalls) == 0 {
		t.Fatal("Expected tool calls in first response")
	}

	memory.AppendMessage(ctx, &ai.Message{
		Role:       ai.RoleTool,
		Content:    `{"results": "Go is a programming language..."}`,
		ToolCallID: resp1.ToolCalls[0].ID,
		Name:       resp1.ToolCalls[0].Function.Name,
	})

	resp2, err := client.ContinueConversation(ctx)
	if err != nil {
		t.Fatalf("ContinueConversation failed: %v", err)
	}

	if resp2.FinishReason != "stop" {
		t.Errorf("Expected stop finish reason, got: %s", resp2.FinishReason)
	}

	if !strings.Contains(resp2.Content, "answer") {
		t.Errorf("Expected final answer in response, got: %s", resp2.Content)
	}
}

// ========== Observability Tests ==========

// TestSendMessage_ObservabilityTracing tests that spans and metrics are
// recorded when an observer is configured.
func TestSendMessage_ObservabilityTracing(t *testing.T) {
	provider := &mockProvider{}
	observer := &testObserver{}

	client, err := New(provider, WithObserver(observer))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if !observer.spanStarted {
		t.Error("Expected span to be started")
	}
	if !observer.spanEnded {
		t.Error("Expected span to be ended")
	}
	if !observer.metricsRecorded {
		t.Error("Expected metrics to be recorded")
	}
}

// TestSendMessage_ErrorObservability tests observability on the error path.
func TestSendMessage_ErrorObservability(t *testing.T) {
	testError := errors.New("test error")
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
			return nil, testError
		},
	}
	observer := &testObserver{}

	client, err := New(provider, WithObserver(observer))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "Hello")

	if err == nil {
		t.Fatal("Expected error from provider")
	}

	if !observer.spanStarted {
		t.Error("Expected span to be started even on error")
	}
	if !observer.spanEnded {
		t.Error("Expected span to be ended even on error")
	}
	if !observer.errorLogged {
		t.Error("Expected error to be logged")
	}
}

// TestSendMessage_NilObserver_NoPanic tests nil observer safety.
func TestSendMessage_NilObserver_NoPanic(t *testing.T) {
	provider := &mockProvider{}
	client, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
}

// ========== Prompt Enrichment Tests ==========

// TestEnrichSystemPromptWithTools tests the system prompt enrichment.
func TestEnrichSystemPromptWithTools(t *testing.T) {
	basePrompt := "You are a helpful assistant."

	toolDescriptions := []ai.ToolDescription{
		{Name: "calculator", Description: "Performs arithmetic operations"},
		{Name: "search", Description: "Searches the web"},
	}

	enriched := enrichSystemPromptWithTools(basePrompt, toolDescriptions)

	if !strings.Contains(enriched, basePrompt) {
		t.Error("Enriched prompt should contain the base prompt")
	}

	if !strings.Contains(enriched, "## Available Tools") {
		t.Error("Enriched prompt should contain 'Available Tools' section")
	}

	for _, desc := range toolDescriptions {
		if !strings.Contains(enriched, desc.Name) {
			t.Errorf("Enriched prompt should contain tool name '%s'", desc.Name)
		}
		if !strings.Contains(enriched, desc.Description) {
			t.Errorf("Enriched prompt should contain tool description for '%s'", desc.Name)
		}
	}

	if !strings.Contains(enriched, "function calling") {
		t.Error("Enriched prompt should contain function calling guidance")
	}
}

// TestEnrichSystemPromptWithTools_EmptyTools tests enrichment with no tools.
func TestEnrichSystemPromptWithTools_EmptyTools(t *testing.T) {
	basePrompt := "You are a helpful assistant."

	enriched := enrichSystemPromptWithTools(basePrompt, nil)

	if enriched != basePrompt {
		t.Error("Expected enriched prompt to equal base prompt when no tools provided")
	}
}

// TestNewClient_WithEnrichSystemPrompt_Enabled tests enrichment at
// construction time.
func TestNewClient_WithEnrichSystemPrompt_Enabled(t *testing.T) {
	provider := &mockProvider{}
	testTool := &mockTool{
		name:        "TestTool",
		description: "A tool for testing",
	}

	client, err := New(
		provider,
		WithSystemPrompt("You are a helpful assistant."),
		WithTools(testTool),
		WithEnrichSystemPromptWithToolsDescriptions(),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if !strings.Contains(client.systemPrompt, "You are a helpful assistant.") {
		t.Error("Client system prompt should contain base prompt")
	}
	if !strings.Contains(client.systemPrompt, "Available Tools") {
		t.Error("Client system prompt should be enriched with tools section")
	}
	if !strings.Contains(client.systemPrompt, "TestTool") {
		t.Error("Client system prompt should contain tool name")
	}
	if !strings.Contains(client.systemPrompt, "A tool for testing") {
		t.Error("Client system prompt should contain tool description")
	}
}

// TestNewClient_WithEnrichSystemPrompt_Disabled tests that enrichment is off
// by default.
func TestNewClient_WithEnrichSystemPrompt_Disabled(t *testing.T) {
	provider := &mockProvider{}
	testTool := &mockTool{
		name:        "TestTool",
		description: "A tool for testing",
	}

	basePrompt := "You are a helpful assistant."

	client, err := New(
		provider,
		WithSystemPrompt(basePrompt),
		WithTools(testTool),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if client.systemPrompt != basePrompt {
		t.Error("Client system prompt should not be enriched when enrichment is disabled")
	}
	if strings.Contains(client.systemPrompt, "Available Tools") {
		t.Error("Client system prompt should not contain tools section when enrichment is disabled")
	}
}

// TestNewClient_WithEnrichSystemPrompt_Integration tests that the enriched
// prompt reaches the provider.
func TestNewClient_WithEnrichSystemPrompt_Integration(t *testing.T) {
	var capturedSystemPrompt string
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedSystemPrompt = req.SystemPrompt
			return &ai.ChatResponse{
				Content:      "Response",
				FinishReason: "stop",
			}, nil
		},
	}

	testTool := &mockTool{
		name:        "Calculator",
		description: "Performs calculations",
	}

	basePrompt := "You are a math assistant."

	client, err := New(
		provider,
		WithSystemPrompt(basePrompt),
		WithTools(testTool),
		WithEnrichSystemPromptWithToolsDescriptions(),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	_, err = client.SendMessage(ctx, "What is 2+2?")
	if err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}

	if capturedSystemPrompt == "" {
		t.Fatal("System prompt was not captured")
	}

	if !strings.Contains(capturedSystemPrompt, basePrompt) {
		t.Error("Captured system prompt should contain base prompt")
	}

	if !strings.Contains(capturedSystemPrompt, "Available Tools") {
		t.Error("Captured system prompt should contain tools section")
	}

	if !strings.Contains(capturedSystemPrompt, "Calculator") {
		t.Error("Captured system prompt should contain tool name")
	}

	if !strings.Contains(capturedSystemPrompt, "Performs calculations") {
		t.Error("Captured system prompt should contain tool description")
	}
}

// TestNewClient_WithEnrichSystemPromptWithToolsCosts verifies that the cost
// enrichment lists priced and unpriced tools and names the strategy.
func TestNewClient_WithEnrichSystemPromptWithToolsCosts(t *testing.T) {
	provider := &mockProvider{}
	pricedTool := &mockTool{
		name:          "search",
		description:   "Searches the web",
		executionCost: &cost.ToolCost{Amount: 0.005, Accuracy: 0.95},
	}
	freeTool := &mockTool{name: "calculator", description: "Does math"}

	aiClient, err := New(
		provider,
		WithSystemPrompt("You are a helpful assistant."),
		WithTools(pricedTool, freeTool),
		WithEnrichSystemPromptWithToolsCosts(cost.OptimizeForCost),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !strings.Contains(aiClient.systemPrompt, "Tool Costs") {
		t.Error("Client system prompt should contain the tool costs section")
	}
	if !strings.Contains(aiClient.systemPrompt, "0.005000 USD") {
		t.Error("Client system prompt should contain the priced tool's cost")
	}
	if !strings.Contains(aiClient.systemPrompt, "Accuracy: 95.0%") {
		t.Error("Client system prompt should contain the priced tool's metrics")
	}
	if !strings.Contains(aiClient.systemPrompt, "no cost data") {
		t.Error("Client system prompt should flag tools without cost metadata")
	}
	if !strings.Contains(aiClient.systemPrompt, "optimizes for: cost") {
		t.Error("Client system prompt should name the optimization strategy")
	}
}

// ========== Cost Tracking Tests ==========

// TestWithModelCost_AffectsOverview verifies that configuring model pricing
// causes the overview's cost summary to include model token costs after
// SendMessage.
func TestWithModelCost_AffectsOverview(t *testing.T) {
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
			return &ai.ChatResponse{
				ID:           "cost-test",
				Model:        "test-model",
				Content:      "hello",
				FinishReason: "stop",
				Usage: &ai.Usage{
					PromptTokens:     1000,
					CompletionTokens: 500,
					TotalTokens:      1500,
				},
			}, nil
		},
	}

	aiClient, err := New(provider, WithModelCost(cost.ModelCost{
		InputCostPerMillion:  2.50,
		OutputCostPerMillion: 10.00,
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	run := overview.New()
	ctx := run.ToContext(context.Background())

	if _, sendErr := aiClient.SendMessage(ctx, "test prompt"); sendErr != nil {
		t.Fatalf("SendMessage failed: %v", sendErr)
	}

	if run.ModelCost == nil {
		t.Fatal("expected ModelCost to be set on the overview after SendMessage")
	}

	summary := run.CostSummary()
	expectedInputCost := (1000.0 / 1_000_000.0) * 2.50
	expectedOutputCost := (500.0 / 1_000_000.0) * 10.00
	if summary.ModelInputCost != expectedInputCost {
		t.Errorf("expected model input cost %f, got %f", expectedInputCost, summary.ModelInputCost)
	}
	if summary.ModelOutputCost != expectedOutputCost {
		t.Errorf("expected model output cost %f, got %f", expectedOutputCost, summary.ModelOutputCost)
	}
	if run.TotalUsage.TotalTokens != 1500 {
		t.Errorf("expected 1500 total tokens recorded, got %d", run.TotalUsage.TotalTokens)
	}
}

// TestSendMessage_RecordsConversationInOverview verifies that every exchange
// made under an overview-carrying context lands in its history.
func TestSendMessage_RecordsConversationInOverview(t *testing.T) {
	provider := &mockProvider{}
	aiClient, err := New(provider)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	run := overview.New()
	ctx := run.ToContext(context.Background())

	if _, sendErr := aiClient.SendMessage(ctx, "first"); sendErr != nil {
		t.Fatalf("SendMessage failed: %v", sendErr)
	}
	if _, sendErr := aiClient.SendMessage(ctx, "second"); sendErr != nil {
		t.Fatalf("SendMessage failed: %v", sendErr)
	}

	if len(run.Requests) != 2 {
		t.Errorf("expected 2 recorded requests, got %d", len(run.Requests))
	}
	if len(run.Responses) != 2 {
		t.Errorf("expected 2 recorded responses, got %d", len(run.Responses))
	}
	// The default mock response reports 30 total tokens per exchange.
	if run.TotalUsage.TotalTokens != 60 {
		t.Errorf("expected 60 total tokens across both exchanges, got %d", run.TotalUsage.TotalTokens)
	}
	if run.LastResponse == nil || run.LastResponse.Content != "test response" {
		t.Errorf("expected last response to be recorded, got %+v", run.LastResponse)
	}
}

// ========== Memory AllMessages Error Path Tests ==========

// TestSendMessage_MemoryAllMessagesError verifies that when AllMessages
// returns an error, SendMessage propagates it wrapped with context.
func TestSendMessage_MemoryAllMessagesError(t *testing.T) {
	memErr := errors.New("db connection lost")
	provider := &mockProvider{}
	client, err := New(provider, WithMemory(&errorMemory{allMessagesErr: memErr}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, sendErr := client.SendMessage(context.Background(), "hello")
	if sendErr == nil {
		t.Fatal("expected error from SendMessage, got nil")
	}
	if !errors.Is(sendErr, memErr) {
		t.Errorf("expected wrapped memErr, got: %v", sendErr)
	}
	if !strings.Contains(sendErr.Error(), "failed to retrieve messages from memory") {
		t.Errorf("expected wrapping message in error, got: %v", sendErr)
	}
}

// TestContinueConversation_MemoryAllMessagesError verifies that when
// AllMessages returns an error, ContinueConversation propagates it wrapped
// with context.
func TestContinueConversation_MemoryAllMessagesError(t *testing.T) {
	memErr := errors.New("db timeout")
	provider := &mockProvider{}
	client, err := New(provider, WithMemory(&errorMemory{allMessagesErr: memErr}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, contErr := client.ContinueConversation(context.Background())
	if contErr == nil {
		t.Fatal("expected error from ContinueConversation, got nil")
	}
	if !errors.Is(contErr, memErr) {
		t.Errorf("expected wrapped memErr, got: %v", contErr)
	}
	if !strings.Contains(contErr.Error(), "failed to retrieve messages from memory") {
		t.Errorf("expected wrapping message in error, got: %v", contErr)
	}
}

// ========== Tool Catalog & Required Tools Tests ==========

// TestWithRequiredTools verifies that tools registered via WithRequiredTools
// appear in the tool catalog alongside regular tools.
func TestWithRequiredTools(t *testing.T) {
	provider := &mockProvider{}
	regularTool := &mockTool{name: "regular_tool", description: "a regular tool"}
	requiredTool := &mockTool{name: "required_tool", description: "a required tool"}

	aiClient, err := New(
		provider,
		WithTools(regularTool),
		WithRequiredTools(requiredTool),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	catalog := aiClient.ToolCatalog()

	if catalog.Size() != 2 {
		t.Errorf("expected 2 tools in catalog, got %d", catalog.Size())
	}

	// Catalog stores names in lowercase.
	if !catalog.Has("regular_tool") {
		t.Error("expected catalog to contain 'regular_tool'")
	}
	if !catalog.Has("required_tool") {
		t.Error("expected catalog to contain 'required_tool'")
	}

	required := aiClient.RequiredTools()
	if len(required) != 1 {
		t.Fatalf("expected 1 required tool description, got %d", len(required))
	}
	if required[0].Name != "required_tool" {
		t.Errorf("expected required tool name 'required_tool', got %q", required[0].Name)
	}
}

// TestToolCatalog_ReturnsAllRegisteredTools verifies that ToolCatalog returns
// a map containing every registered tool, keyed by its lowercase name.
func TestToolCatalog_ReturnsAllRegisteredTools(t *testing.T) {
	provider := &mockProvider{}
	tools := []tool.GenericTool{
		&mockTool{name: "Alpha", description: "first tool"},
		&mockTool{name: "Bravo", description: "second tool"},
		&mockTool{name: "Charlie", description: "third tool"},
	}

	aiClient, err := New(provider, WithTools(tools...))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	catalog := aiClient.ToolCatalog()
	toolMap := catalog.Tools()

	if len(toolMap) != 3 {
		t.Fatalf("expected 3 tools in catalog map, got %d", len(toolMap))
	}

	expectedNames := []string{"alpha", "bravo", "charlie"}
	for _, name := range expectedNames {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("expected catalog to contain tool %q", name)
		}
	}

	// The returned catalog is a clone; clearing it must not affect the client.
	catalog.Clear()
	originalCatalog := aiClient.ToolCatalog()
	if originalCatalog.Size() != 3 {
		t.Error("modifying the returned catalog should not affect the client's internal catalog")
	}
}

// ========== DefaultOutputSchema Tests ==========

// TestWithDefaultOutputSchema verifies that WithDefaultOutputSchema stores
// the schema and that it is applied to requests sent through SendMessage.
func TestWithDefaultOutputSchema(t *testing.T) {
	var capturedRequest ai.ChatRequest
	provider := &mockProvider{
		sendMessageFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			capturedRequest = req
			return &ai.ChatResponse{
				Content:      `{"answer":"42"}`,
				FinishReason: "stop",
			}, nil
		},
	}

	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"answer": {Type: "string"},
		},
	}

	aiClient, err := New(provider, WithDefaultOutputSchema(schema))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if aiClient.defaultOutputSchema == nil {
		t.Fatal("expected defaultOutputSchema to be set on the client")
	}
	if aiClient.defaultOutputSchema.Type != "object" {
		t.Errorf("expected schema type 'object', got %q", aiClient.defaultOutputSchema.Type)
	}

	ctx := context.Background()
	_, sendErr := aiClient.SendMessage(ctx, "What is the meaning of life?")
	if sendErr != nil {
		t.Fatalf("SendMessage failed: %v", sendErr)
	}

	if capturedRequest.ResponseFormat == nil {
		t.Fatal("expected ResponseFormat to be set on the request")
	}
	if capturedRequest.ResponseFormat.OutputSchema == nil {
		t.Fatal("expected OutputSchema to be set on the request's ResponseFormat")
	}
	if capturedRequest.ResponseFormat.Type != "json_schema" {
		t.Errorf("expected ResponseFormat.Type 'json_schema', got %q", capturedRequest.ResponseFormat.Type)
	}
}
