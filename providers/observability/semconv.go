package observability

// Semantic conventions for observability attributes. These constants define
// the standard attribute keys, span names, event names, and metric names used
// across the library so that every component reports the same vocabulary.

// --- Pipeline Attributes ---

const (
	// AttrPipelineNode is the name of the node being executed
	AttrPipelineNode = "pipeline.node"

	// AttrPipelineStep is the 1-based position of the node in the current run
	AttrPipelineStep = "pipeline.step"

	// AttrPipelineSteps is the total number of nodes executed by a run
	AttrPipelineSteps = "pipeline.steps"

	// AttrPipelineTarget is the endpoint an edge resolved to
	AttrPipelineTarget = "pipeline.target"

	// AttrPipelineState is the state snapshot (serialized, truncated)
	AttrPipelineState = "pipeline.state"

	// AttrPipelineModule is the name of a chain module
	AttrPipelineModule = "pipeline.module"

	// AttrPipelineModuleIndex is the 0-based position of a chain module
	AttrPipelineModuleIndex = "pipeline.module.index"

	// AttrPipelineCollection is the vector store collection an ingestion targets
	AttrPipelineCollection = "pipeline.collection"
)

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4o-mini")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Token Usage Attributes ---

const (
	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Embedder Attributes ---

const (
	// AttrEmbedderProvider is the name of the embedding provider
	AttrEmbedderProvider = "embedder.provider"

	// AttrEmbedderModel is the embedding model identifier
	AttrEmbedderModel = "embedder.model"

	// AttrEmbedderInputCount is the number of texts embedded in one call
	AttrEmbedderInputCount = "embedder.input_count"

	// AttrEmbedderDimensions is the dimensionality of the returned vectors
	AttrEmbedderDimensions = "embedder.dimensions"
)

// --- Tool Execution Attributes ---

const (
	// AttrToolName is the name of the tool being executed
	AttrToolName = "tool.name"

	// AttrToolInput is the tool input (serialized, truncated)
	AttrToolInput = "tool.input"

	// AttrToolOutput is the tool output (serialized, truncated)
	AttrToolOutput = "tool.output"

	// AttrToolError is the error message if tool execution failed
	AttrToolError = "tool.error"

	// AttrToolDuration is the wall-clock duration of the tool execution
	AttrToolDuration = "tool.duration"
)

// --- Chat Client Attributes ---

const (
	// AttrClientMessagesCount is the number of messages in the outgoing request
	AttrClientMessagesCount = "client.messages_count"

	// AttrClientToolCalls is the number of tool calls in the model response
	AttrClientToolCalls = "client.tool_calls"

	// AttrClientToolIterations is the number of tool rounds run in one exchange
	AttrClientToolIterations = "client.tool_iterations"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Memory Attributes ---

const (
	// AttrMemoryMessageRole is the role of the message being stored
	AttrMemoryMessageRole = "memory.message.role"

	// AttrMemoryMessageLength is the length of the message content
	AttrMemoryMessageLength = "memory.message.length"

	// AttrMemoryTotalMessages is the total number of messages in memory
	AttrMemoryTotalMessages = "memory.total_messages"
)

// --- Vector Store Attributes ---

const (
	// AttrVectorStoreProvider is the name of the vector store backend
	AttrVectorStoreProvider = "vectorstore.provider"

	// AttrVectorStoreCollection is the collection being operated on
	AttrVectorStoreCollection = "vectorstore.collection"

	// AttrVectorStorePoints is the number of points written or returned
	AttrVectorStorePoints = "vectorstore.points"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanPipelineRun is the span name for a full state-graph run
	SpanPipelineRun = "pipeline.run"

	// SpanPipelineNode is the span name for a single node execution
	SpanPipelineNode = "pipeline.node"

	// SpanChainRun is the span name for a chain run
	SpanChainRun = "chain.run"

	// SpanIngestionRun is the span name for an ingestion run
	SpanIngestionRun = "ingestion.run"

	// SpanClientSendMessage is the span name for a chat client exchange
	SpanClientSendMessage = "client.send_message"

	// SpanLLMRequest is the span name for LLM API requests
	SpanLLMRequest = "llm.request"

	// SpanToolExecution is the span name for tool executions
	SpanToolExecution = "tool.execution"
)

// --- Event Names ---

const (
	// EventNodeStart marks the start of a node execution
	EventNodeStart = "pipeline.node.start"

	// EventNodeEnd marks the end of a node execution
	EventNodeEnd = "pipeline.node.end"

	// EventBranchResolved marks a conditional edge choosing its target
	EventBranchResolved = "pipeline.branch.resolved"

	// EventMemoryAppend marks a message appended to memory
	EventMemoryAppend = "memory.append"

	// EventMemoryClear marks a memory wipe
	EventMemoryClear = "memory.clear"

	// EventToolExecutionStart marks the start of a tool execution
	EventToolExecutionStart = "tool.execution.start"

	// EventToolExecutionEnd marks the end of a tool execution
	EventToolExecutionEnd = "tool.execution.end"

	// EventHTTPRequest marks an outgoing HTTP request
	EventHTTPRequest = "http.request"

	// EventHTTPResponse marks an HTTP response being received
	EventHTTPResponse = "http.response"
)

// --- Metric Names ---

const (
	// MetricPipelineRunCount is the counter for state-graph runs
	MetricPipelineRunCount = "grafo.pipeline.run.count"

	// MetricPipelineRunDuration is the histogram for run duration
	MetricPipelineRunDuration = "grafo.pipeline.run.duration"

	// MetricPipelineNodeCount is the counter for executed nodes
	MetricPipelineNodeCount = "grafo.pipeline.node.count"

	// MetricPipelineNodeDuration is the histogram for node duration
	MetricPipelineNodeDuration = "grafo.pipeline.node.duration"

	// MetricPipelineErrorCount is the counter for failed runs
	MetricPipelineErrorCount = "grafo.pipeline.error.count"

	// MetricClientRequestCount is the counter for chat client requests
	MetricClientRequestCount = "grafo.client.request.count"

	// MetricClientRequestDuration is the histogram for chat request duration
	MetricClientRequestDuration = "grafo.client.request.duration"

	// MetricClientTokensTotal is the counter for total consumed tokens
	MetricClientTokensTotal = "grafo.client.tokens.total"

	// MetricClientTokensPrompt is the counter for consumed prompt tokens
	MetricClientTokensPrompt = "grafo.client.tokens.prompt"

	// MetricClientTokensCompletion is the counter for consumed completion tokens
	MetricClientTokensCompletion = "grafo.client.tokens.completion"
)
