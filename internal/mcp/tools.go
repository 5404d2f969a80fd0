package mcp

import "github.com/mark3labs/mcp-go/mcp"

// simulateWebhookTool defines the simulate_webhook MCP tool.
var simulateWebhookTool = mcp.NewTool("simulate_webhook",
	mcp.WithDescription("Run a v1 or v2 webhook payload through the configured handlers and return the HTTP status and JSON response that would be sent back."),
	mcp.WithString("payload",
		mcp.Required(),
		mcp.Description("Raw webhook request body as JSON"),
	),
)

// listActionsTool defines the list_actions MCP tool.
var listActionsTool = mcp.NewTool("list_actions",
	mcp.WithDescription("List the action names the webhook has handlers for. \"*\" marks the catch-all handler."),
)

// listTranscriptsTool defines the list_transcripts MCP tool.
var listTranscriptsTool = mcp.NewTool("list_transcripts",
	mcp.WithDescription("List recorded webhook exchanges, newest first."),
	mcp.WithString("session",
		mcp.Description("Only exchanges from this session"),
	),
	mcp.WithString("action",
		mcp.Description("Only exchanges for this action"),
	),
	mcp.WithString("outcome",
		mcp.Description("Only exchanges with this outcome"),
		mcp.Enum("answered", "no_handler", "failed", "rejected"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 20)"),
	),
)

// getTranscriptTool defines the get_transcript MCP tool.
var getTranscriptTool = mcp.NewTool("get_transcript",
	mcp.WithDescription("Get one recorded webhook exchange including the raw request and response."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Transcript ID"),
	),
)
