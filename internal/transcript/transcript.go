// Package transcript records webhook exchanges and serves them back over
// HTTP and websocket.
package transcript

import (
	"encoding/json"
	"time"
)

// Outcome classifies how a webhook call ended.
type Outcome string

const (
	// OutcomeAnswered means a handler ran and a response was sent.
	OutcomeAnswered Outcome = "answered"
	// OutcomeNoHandler means no handler matched the action.
	OutcomeNoHandler Outcome = "no_handler"
	// OutcomeFailed means a handler or the send step returned an error.
	OutcomeFailed Outcome = "failed"
	// OutcomeRejected means the payload could not be read as a webhook call.
	OutcomeRejected Outcome = "rejected"
)

// Entry is a single recorded webhook exchange.
type Entry struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Version    int             `json:"version"`
	Session    string          `json:"session,omitempty"`
	Action     string          `json:"action,omitempty"`
	Intent     string          `json:"intent,omitempty"`
	Source     string          `json:"source,omitempty"`
	Query      string          `json:"query,omitempty"`
	Status     int             `json:"status"`
	Outcome    Outcome         `json:"outcome"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	Request    json.RawMessage `json:"request,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
}
