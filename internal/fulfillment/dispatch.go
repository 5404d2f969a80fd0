package fulfillment

import (
	"context"
	"fmt"
	"net/http"
)

// Wildcard is the ActionMap key used when no handler matches the action.
const Wildcard = ""

// Handler is either a HandlerFunc, run for every request, or an ActionMap
// that picks a HandlerFunc by action name.
type Handler interface {
	resolve(action string) (HandlerFunc, bool)
}

// HandlerFunc handles one request by adding responses and contexts to the
// Agent. Returning an error aborts the request without sending anything.
type HandlerFunc func(ctx context.Context, agent *Agent) error

func (f HandlerFunc) resolve(string) (HandlerFunc, bool) {
	return f, f != nil
}

// ActionMap routes requests by action name. The Wildcard entry, when
// present, handles actions without an exact match.
type ActionMap map[string]HandlerFunc

func (m ActionMap) resolve(action string) (HandlerFunc, bool) {
	if h, ok := m[action]; ok && h != nil {
		return h, true
	}
	if h, ok := m[Wildcard]; ok && h != nil {
		return h, true
	}
	return nil, false
}

// HandleRequest runs the handler matching the request action and sends the
// accumulated response once it returns. When no handler matches, the host
// response is marked 400 and ErrNoHandler is returned.
func (a *Agent) HandleRequest(ctx context.Context, h Handler) error {
	if h == nil || isNilHandler(h) {
		return ErrInvalidHandler
	}
	fn, ok := h.resolve(a.req.Action)
	if !ok {
		a.out.SetStatus(http.StatusBadRequest)
		return fmt.Errorf("%w %q", ErrNoHandler, a.req.Action)
	}
	if err := fn(ctx, a); err != nil {
		return fmt.Errorf("handling action %q: %w", a.req.Action, err)
	}
	return a.Send()
}

func isNilHandler(h Handler) bool {
	switch v := h.(type) {
	case HandlerFunc:
		return v == nil
	case ActionMap:
		return v == nil
	}
	return false
}
