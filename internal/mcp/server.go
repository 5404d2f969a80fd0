package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
	"github.com/ziadkadry99/webhook-fulfillment/internal/webhook"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that lets agents exercise the webhook and
// inspect recorded transcripts.
type Server struct {
	processor *webhook.Processor
	actions   []string
	store     *transcript.Store
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. Simulated calls are never recorded.
// store may be nil, in which case the transcript tools report that
// recording is disabled.
func NewServer(handler fulfillment.Handler, actions []string, store *transcript.Store) *Server {
	s := &Server{
		processor: webhook.NewProcessor(handler, nil, nil),
		actions:   actions,
		store:     store,
	}

	s.mcp = server.NewMCPServer(
		"fulfillment",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(simulateWebhookTool, s.handleSimulateWebhook)
	s.mcp.AddTool(listActionsTool, s.handleListActions)
	s.mcp.AddTool(listTranscriptsTool, s.handleListTranscripts)
	s.mcp.AddTool(getTranscriptTool, s.handleGetTranscript)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
