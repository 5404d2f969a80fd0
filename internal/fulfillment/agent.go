// Package fulfillment turns webhook calls from a conversational-AI platform
// into a single request model, lets handler code build up rich responses,
// and writes them back in the protocol version the call arrived on.
package fulfillment

import (
	"fmt"
	"maps"
)

// Agent is the per-request fulfillment client. It is created for one
// inbound call, used from one goroutine and discarded after Send.
type Agent struct {
	// Request is the normalized inbound call. It is a copy; changing it does
	// not affect validation or the response.
	Request *Request

	req      Request
	adapter  versionAdapter
	out      Outbound
	elements []Element
	outgoing []Context
	event    *FollowupEvent
	sent     bool
}

// NewAgent reads the inbound body, detects the protocol version and builds
// the request model. It fails when either handle is missing or the payload
// matches neither protocol.
func NewAgent(in Inbound, out Outbound) (*Agent, error) {
	if in == nil {
		return nil, ErrMissingRequest
	}
	if out == nil {
		return nil, ErrMissingResponse
	}
	body, err := in.Body()
	if err != nil {
		return nil, err
	}
	adapter, err := selectAdapter(body)
	if err != nil {
		return nil, err
	}
	req, err := adapter.processRequest(body)
	if err != nil {
		return nil, err
	}
	public := copyRequest(*req)
	return &Agent{Request: &public, req: *req, adapter: adapter, out: out}, nil
}

// Version returns the protocol version of the inbound call.
func (a *Agent) Version() ProtocolVersion {
	return a.adapter.version()
}

// Add appends a response. A string becomes a Text element; Suggestions are
// merged into an existing block for the same platform. The element is
// copied, so later changes by the caller are not sent.
func (a *Agent) Add(response any) error {
	e, err := toElement(response)
	if err != nil {
		return err
	}
	a.elements = appendElement(a.elements, e)
	return nil
}

// appendElement adds a copy of e to elements, merging Suggestions into the
// first block with the same platform.
func appendElement(elements []Element, e Element) []Element {
	if s, ok := e.(*Suggestions); ok {
		if existing := findSuggestions(elements, s.TargetPlatform()); existing != nil {
			existing.Replies = append(existing.Replies, s.Replies...)
			if existing.Title == "" {
				existing.Title = s.Title
			}
			return elements
		}
	}
	return append(elements, copyElement(e))
}

// copyElement returns a copy of e that shares no slices or maps with it.
func copyElement(e Element) Element {
	switch v := e.(type) {
	case *Text:
		c := *v
		return &c
	case *Card:
		c := *v
		c.Buttons = append([]Button(nil), v.Buttons...)
		return &c
	case *Image:
		c := *v
		return &c
	case *Suggestions:
		c := *v
		c.Replies = append([]string(nil), v.Replies...)
		return &c
	case *Payload:
		c := *v
		c.Payload = maps.Clone(v.Payload)
		return &c
	}
	return e
}

// toElement wraps strings and value variants into an Element.
func toElement(response any) (Element, error) {
	switch r := response.(type) {
	case string:
		return &Text{Text: r, Platform: PlatformUnspecified}, nil
	case Text:
		return &r, nil
	case Card:
		return &r, nil
	case Image:
		return &r, nil
	case Suggestions:
		return &r, nil
	case Payload:
		return &r, nil
	case Element:
		if r == nil || isNilElement(r) {
			return nil, fmt.Errorf("%w: nil element", ErrUnknownResponseType)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownResponseType, response)
	}
}

// toElements flattens Send arguments into elements. Strings, Elements and
// slices of either are accepted.
func toElements(responses []any) ([]Element, error) {
	var out []Element
	add := func(r any) error {
		e, err := toElement(r)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	}
	for _, r := range responses {
		switch list := r.(type) {
		case []string:
			for _, s := range list {
				if err := add(s); err != nil {
					return nil, err
				}
			}
		case []Element:
			for _, e := range list {
				if err := add(e); err != nil {
					return nil, err
				}
			}
		case []any:
			for _, item := range list {
				if err := add(item); err != nil {
					return nil, err
				}
			}
		default:
			if err := add(r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func isNilElement(e Element) bool {
	switch v := e.(type) {
	case *Text:
		return v == nil
	case *Card:
		return v == nil
	case *Image:
		return v == nil
	case *Suggestions:
		return v == nil
	case *Payload:
		return v == nil
	}
	return false
}

// Elements returns a copy of the accumulated response sequence.
func (a *Agent) Elements() []Element {
	out := make([]Element, len(a.elements))
	copy(out, a.elements)
	return out
}

// ExistingSuggestions returns the first Suggestions block for platform.
func (a *Agent) ExistingSuggestions(platform Platform) *Suggestions {
	return findSuggestions(a.elements, platform)
}

func findSuggestions(elements []Element, platform Platform) *Suggestions {
	for _, e := range elements {
		if s, ok := e.(*Suggestions); ok && samePlatform(s.Platform, platform) {
			return s
		}
	}
	return nil
}

// ExistingPayload returns the first Payload for platform.
func (a *Agent) ExistingPayload(platform Platform) *Payload {
	return findPayload(a.elements, platform)
}

func findPayload(elements []Element, platform Platform) *Payload {
	for _, e := range elements {
		if p, ok := e.(*Payload); ok && samePlatform(p.Platform, platform) {
			return p
		}
	}
	return nil
}

// Send adds any final responses, validates the accumulated sequence and
// writes it to the host. Each argument may be a string, an Element or a
// slice of either. Send can only succeed once per Agent; when it fails the
// accumulated state is left as it was.
func (a *Agent) Send(responses ...any) error {
	if a.sent {
		return ErrAlreadySent
	}
	source := a.req.Source
	if !source.IsUnspecified() && !source.IsSupported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, source)
	}
	extra, err := toElements(responses)
	if err != nil {
		return err
	}

	elements := make([]Element, 0, len(a.elements)+len(extra)+1)
	for _, e := range a.elements {
		elements = append(elements, copyElement(e))
	}
	for _, e := range extra {
		elements = appendElement(elements, e)
	}
	elements = withLeadingText(source, elements)

	if err := sendResponse(a.adapter, a.out, &a.req, elements, a.event, a.outgoing); err != nil {
		return err
	}
	a.sent = true
	a.elements = nil
	a.outgoing = nil
	a.event = nil
	return nil
}

// withLeadingText prepends a blank Text for the voice assistant when the
// response would otherwise open with a rich element and no native payload
// replaces it.
func withLeadingText(source Platform, elements []Element) []Element {
	if source != PlatformActionsOnGoogle || len(elements) == 0 {
		return elements
	}
	if _, ok := elements[0].(*Text); ok {
		return elements
	}
	if findPayload(elements, PlatformActionsOnGoogle) != nil {
		return elements
	}
	return append([]Element{&Text{Text: "", Platform: PlatformUnspecified}}, elements...)
}

// SetContext adds or replaces an outgoing context. c may be a context name
// or a Context.
func (a *Agent) SetContext(c any) error {
	var ctx Context
	switch v := c.(type) {
	case string:
		ctx = Context{Name: v}
	case Context:
		ctx = copyContext(v)
	case *Context:
		if v == nil {
			return ErrContextName
		}
		ctx = copyContext(*v)
	default:
		return fmt.Errorf("%w: unsupported context type %T", ErrContextName, c)
	}
	if ctx.Name == "" {
		return ErrContextName
	}
	a.outgoing = a.adapter.addContext(a.outgoing, ctx)
	return nil
}

// ClearContext removes the outgoing contexts answering to name.
func (a *Agent) ClearContext(name string) {
	kept := a.outgoing[:0]
	for _, c := range a.outgoing {
		if !a.adapter.matchContext(c.Name, name) {
			kept = append(kept, c)
		}
	}
	a.outgoing = kept
}

// ClearOutgoingContexts removes every outgoing context.
func (a *Agent) ClearOutgoingContexts() {
	a.outgoing = nil
}

// OutgoingContexts returns a copy of the outgoing context set.
func (a *Agent) OutgoingContexts() []Context {
	out := make([]Context, 0, len(a.outgoing))
	for _, c := range a.outgoing {
		out = append(out, copyContext(c))
	}
	return out
}

// GetContext looks name up among the input contexts of the request.
func (a *Agent) GetContext(name string) *Context {
	for _, c := range a.req.Contexts {
		if a.adapter.matchContext(c.Name, name) {
			found := copyContext(c)
			return &found
		}
	}
	return nil
}

// SetFollowupEvent sets the event triggered after this response,
// replacing any previous one. ev may be an event name or a FollowupEvent.
func (a *Agent) SetFollowupEvent(ev any) error {
	var event FollowupEvent
	switch v := ev.(type) {
	case string:
		event = FollowupEvent{Name: v}
	case FollowupEvent:
		event = v
	case *FollowupEvent:
		if v == nil {
			return ErrEventName
		}
		event = *v
	default:
		return fmt.Errorf("%w: unsupported event type %T", ErrEventName, ev)
	}
	if event.Name == "" {
		return ErrEventName
	}
	a.event = &event
	return nil
}

// FollowupEvent returns the pending followup event, if any.
func (a *Agent) FollowupEvent() *FollowupEvent {
	if a.event == nil {
		return nil
	}
	ev := *a.event
	return &ev
}
