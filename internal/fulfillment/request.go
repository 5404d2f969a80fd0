package fulfillment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
)

// ProtocolVersion is the webhook wire-protocol version of a request.
type ProtocolVersion int

const (
	V1 ProtocolVersion = 1
	V2 ProtocolVersion = 2
)

// Context is a conversational context carried in or out of a request.
// Lifespan 0 means the lifespan is left to the platform default.
type Context struct {
	Name       string         `json:"name"`
	Lifespan   int            `json:"lifespan,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// FollowupEvent triggers another intent after this response is delivered.
type FollowupEvent struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Request is the normalized view of an inbound webhook call. It is built
// once by NewAgent and must not be modified afterwards.
type Request struct {
	Version    ProtocolVersion
	ResponseID string
	Session    string
	Action     string
	Intent     string
	Parameters map[string]any
	Contexts   []Context
	Source     Platform
	RawSource  string
	Query      string
	Locale     string

	// OriginalRequest is the platform's own request, when forwarded.
	OriginalRequest json.RawMessage
	// ConsoleMessages are the responses configured for the matched intent.
	ConsoleMessages []Element
}

// Inbound gives access to the raw webhook request body.
type Inbound interface {
	Body() ([]byte, error)
}

// Outbound is the host's response channel.
type Outbound interface {
	SetStatus(code int)
	Send(payload []byte) error
}

// RawInbound is an Inbound backed by an in-memory body.
type RawInbound []byte

// Body returns the stored body.
func (b RawInbound) Body() ([]byte, error) { return b, nil }

type httpInbound struct {
	r *http.Request
}

// HTTPInbound adapts an *http.Request into an Inbound. The body is read on
// first use.
func HTTPInbound(r *http.Request) Inbound {
	if r == nil {
		return nil
	}
	return &httpInbound{r: r}
}

func (h *httpInbound) Body() ([]byte, error) {
	if h.r.Body == nil {
		return nil, fmt.Errorf("reading request body: empty body")
	}
	defer h.r.Body.Close()
	body, err := io.ReadAll(h.r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return body, nil
}

type httpOutbound struct {
	w      http.ResponseWriter
	status int
}

// HTTPOutbound adapts an http.ResponseWriter into an Outbound. The status
// set through SetStatus is written together with the payload.
func HTTPOutbound(w http.ResponseWriter) Outbound {
	if w == nil {
		return nil
	}
	return &httpOutbound{w: w, status: http.StatusOK}
}

func (h *httpOutbound) SetStatus(code int) {
	h.status = code
}

func (h *httpOutbound) Send(payload []byte) error {
	h.w.Header().Set("Content-Type", "application/json")
	h.w.WriteHeader(h.status)
	_, err := h.w.Write(payload)
	return err
}

// selectAdapter detects the protocol version of the body and returns the
// matching adapter.
func selectAdapter(body []byte) (versionAdapter, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}
	if _, ok := top["result"]; ok {
		return &v1Adapter{}, nil
	}
	if _, ok := top["queryResult"]; ok {
		return &v2Adapter{}, nil
	}
	return nil, ErrUnknownProtocol
}

// DetectVersion reports which protocol version a raw payload uses.
func DetectVersion(body []byte) (ProtocolVersion, error) {
	a, err := selectAdapter(body)
	if err != nil {
		return 0, err
	}
	return a.version(), nil
}

func copyContext(c Context) Context {
	out := Context{Name: c.Name, Lifespan: c.Lifespan}
	if c.Parameters != nil {
		out.Parameters = make(map[string]any, len(c.Parameters))
		for k, v := range c.Parameters {
			out.Parameters[k] = v
		}
	}
	return out
}

// copyRequest returns a copy of r that shares no maps or slices with it.
func copyRequest(r Request) Request {
	out := r
	out.Parameters = maps.Clone(r.Parameters)
	out.OriginalRequest = bytes.Clone(r.OriginalRequest)
	if r.Contexts != nil {
		out.Contexts = make([]Context, len(r.Contexts))
		for i, c := range r.Contexts {
			out.Contexts[i] = copyContext(c)
		}
	}
	if r.ConsoleMessages != nil {
		out.ConsoleMessages = make([]Element, len(r.ConsoleMessages))
		for i, e := range r.ConsoleMessages {
			out.ConsoleMessages[i] = copyElement(e)
		}
	}
	return out
}
