package fulfillment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRequest_SingleFunc(t *testing.T) {
	agent, rec := newTestAgent(t, v2Body("anything", ""))
	calls := 0

	err := agent.HandleRequest(context.Background(), HandlerFunc(func(_ context.Context, a *Agent) error {
		calls++
		return a.Add("done")
	}))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rec.sends)
	assert.Equal(t, "done", rec.decode(t)["fulfillmentText"])
}

func TestHandleRequest_ActionMap(t *testing.T) {
	var ran string
	handlers := ActionMap{
		"booking.create": func(_ context.Context, a *Agent) error {
			ran = "create"
			return a.Add("created")
		},
		Wildcard: func(_ context.Context, a *Agent) error {
			ran = "wildcard"
			return a.Add("fallback")
		},
	}

	agent, rec := newTestAgent(t, v2Body("booking.create", ""))
	require.NoError(t, agent.HandleRequest(context.Background(), handlers))
	assert.Equal(t, "create", ran)
	assert.Equal(t, "created", rec.decode(t)["fulfillmentText"])

	agent, rec = newTestAgent(t, v1Body("booking.cancel", ""))
	require.NoError(t, agent.HandleRequest(context.Background(), handlers))
	assert.Equal(t, "wildcard", ran)
	assert.Equal(t, "fallback", rec.decode(t)["speech"])
}

func TestHandleRequest_NoMatch(t *testing.T) {
	agent, rec := newTestAgent(t, v2Body("unknown.action", ""))
	handlers := ActionMap{
		"booking.create": func(context.Context, *Agent) error { return nil },
	}

	err := agent.HandleRequest(context.Background(), handlers)

	assert.ErrorIs(t, err, ErrNoHandler)
	assert.Contains(t, err.Error(), "unknown.action")
	assert.Equal(t, http.StatusBadRequest, rec.status)
	assert.Zero(t, rec.sends)
}

func TestHandleRequest_EmptyMap(t *testing.T) {
	agent, rec := newTestAgent(t, v2Body("a", ""))

	err := agent.HandleRequest(context.Background(), ActionMap{})

	assert.ErrorIs(t, err, ErrNoHandler)
	assert.Equal(t, http.StatusBadRequest, rec.status)
	assert.Zero(t, rec.sends)
}

func TestHandleRequest_HandlerError(t *testing.T) {
	agent, rec := newTestAgent(t, v2Body("a", ""))
	boom := errors.New("boom")

	err := agent.HandleRequest(context.Background(), HandlerFunc(func(_ context.Context, a *Agent) error {
		_ = a.Add("never sent")
		return boom
	}))

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, rec.sends)
}

func TestHandleRequest_InvalidHandler(t *testing.T) {
	agent, rec := newTestAgent(t, v2Body("a", ""))

	assert.ErrorIs(t, agent.HandleRequest(context.Background(), nil), ErrInvalidHandler)
	assert.ErrorIs(t, agent.HandleRequest(context.Background(), HandlerFunc(nil)), ErrInvalidHandler)
	assert.ErrorIs(t, agent.HandleRequest(context.Background(), ActionMap(nil)), ErrInvalidHandler)
	assert.Zero(t, rec.sends)
}

func TestHandleRequest_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	agent, _ := newTestAgent(t, v2Body("a", ""))

	var got any
	require.NoError(t, agent.HandleRequest(ctx, HandlerFunc(func(ctx context.Context, a *Agent) error {
		got = ctx.Value(key{})
		return nil
	})))
	assert.Equal(t, "value", got)
}
