package fulfillment

import (
	"encoding/json"
	"fmt"
)

// versionAdapter owns everything that depends on the wire-protocol version.
// One adapter is selected per request when the Agent is constructed.
type versionAdapter interface {
	version() ProtocolVersion
	// processRequest fills a Request from the raw payload.
	processRequest(body []byte) (*Request, error)
	// addContext normalizes c and merges it into the outgoing set.
	addContext(outgoing []Context, c Context) []Context
	// matchContext reports whether a context named name answers to short.
	matchContext(name, short string) bool
	// buildResponse produces the wire response for the accumulated state.
	buildResponse(req *Request, elements []Element, event *FollowupEvent, contexts []Context) (any, error)
}

// sendResponse serializes the accumulated state with the adapter and writes
// it to out.
func sendResponse(a versionAdapter, out Outbound, req *Request, elements []Element, event *FollowupEvent, contexts []Context) error {
	resp, err := a.buildResponse(req, elements, event, contexts)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding v%d response: %w", a.version(), err)
	}
	if err := out.Send(payload); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// upsertContext replaces the context with the same name or appends c.
func upsertContext(outgoing []Context, c Context) []Context {
	for i := range outgoing {
		if outgoing[i].Name == c.Name {
			outgoing[i] = c
			return outgoing
		}
	}
	return append(outgoing, c)
}

// messagePlatform decides which platform a message is tagged with on the
// wire: the element's own tag, or the request source when the element has
// none and the source is a supported platform.
func messagePlatform(e Element, source Platform) Platform {
	if p := e.TargetPlatform(); !p.IsUnspecified() {
		return p
	}
	if source.IsSupported() {
		return source
	}
	return PlatformUnspecified
}

// isSimpleText reports whether the response is a single untagged Text.
func isSimpleText(elements []Element) (*Text, bool) {
	if len(elements) != 1 {
		return nil, false
	}
	t, ok := elements[0].(*Text)
	if !ok || !t.TargetPlatform().IsUnspecified() {
		return nil, false
	}
	return t, true
}

// firstText returns the first Text meant for the source platform or for no
// platform in particular.
func firstText(elements []Element, source Platform) *Text {
	for _, e := range elements {
		t, ok := e.(*Text)
		if !ok {
			continue
		}
		if t.TargetPlatform().IsUnspecified() || samePlatform(t.Platform, source) {
			return t
		}
	}
	return nil
}

// sourcePayload returns the payload element addressed to the request source.
func sourcePayload(elements []Element, source Platform) *Payload {
	if source.IsUnspecified() {
		return nil
	}
	for _, e := range elements {
		if p, ok := e.(*Payload); ok && samePlatform(p.Platform, source) {
			return p
		}
	}
	return nil
}
