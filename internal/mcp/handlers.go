package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
)

const recordingDisabled = "Transcript recording is disabled. Set transcripts.enabled in the config file."

// handleSimulateWebhook runs a payload through the handlers without
// recording it.
func (s *Server) handleSimulateWebhook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := request.RequireString("payload")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: payload"), nil
	}

	ex := s.processor.Process(ctx, []byte(payload))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %d\nOutcome: %s\n", ex.Status, ex.Outcome)
	if ex.Request != nil {
		fmt.Fprintf(&sb, "Protocol: v%d\nAction: %s\n", ex.Request.Version, ex.Request.Action)
		if src := ex.Request.Source; !src.IsUnspecified() {
			fmt.Fprintf(&sb, "Source: %s\n", src)
		}
	}
	if ex.Err != nil {
		fmt.Fprintf(&sb, "Error: %v\n", ex.Err)
	}
	if ex.Response != nil {
		sb.WriteString("\nResponse:\n")
		sb.WriteString(indentJSON(ex.Response))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListActions lists the configured action names.
func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if len(s.actions) == 0 {
		return mcp.NewToolResultText("No actions configured."), nil
	}
	names := append([]string(nil), s.actions...)
	sort.Strings(names)
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

// handleListTranscripts lists recorded exchanges.
func (s *Server) handleListTranscripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError(recordingDisabled), nil
	}

	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	filter := transcript.QueryFilter{
		Session: request.GetString("session", ""),
		Action:  request.GetString("action", ""),
		Outcome: transcript.Outcome(request.GetString("outcome", "")),
		Limit:   limit,
	}

	entries, err := s.store.Query(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No transcripts found."), nil
	}
	return mcp.NewToolResultText(formatTranscripts(entries)), nil
}

// handleGetTranscript returns one exchange in full.
func (s *Server) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError(recordingDisabled), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	entry, err := s.store.GetByID(ctx, id)
	if errors.Is(err, transcript.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No transcript with ID %q.", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding transcript: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// formatTranscripts renders one line per exchange.
func formatTranscripts(entries []transcript.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d transcript(s):\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n%s  %s  v%d  %s  status=%d  outcome=%s",
			e.ID, e.Timestamp.Format("2006-01-02 15:04:05"), e.Version, orDash(e.Action), e.Status, e.Outcome)
		if e.Error != "" {
			fmt.Fprintf(&sb, "  error=%q", e.Error)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func indentJSON(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}
