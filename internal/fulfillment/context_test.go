package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextNames(ctxs []Context) []string {
	names := make([]string, 0, len(ctxs))
	for _, c := range ctxs {
		names = append(names, c.Name)
	}
	return names
}

func TestSetContext_V2QualifiesShortNames(t *testing.T) {
	agent, _ := newTestAgent(t, v2Body("a", ""))

	require.NoError(t, agent.SetContext("booking"))
	require.NoError(t, agent.SetContext(Context{Name: "payment", Lifespan: 5, Parameters: map[string]any{"k": "v"}}))
	require.NoError(t, agent.SetContext(&Context{Name: testSession + "/contexts/already"}))

	out := agent.OutgoingContexts()
	assert.Equal(t, []string{
		testSession + "/contexts/booking",
		testSession + "/contexts/payment",
		testSession + "/contexts/already",
	}, contextNames(out))
	assert.Equal(t, 5, out[1].Lifespan)
}

func TestSetContext_V1KeepsShortNames(t *testing.T) {
	agent, _ := newTestAgent(t, v1Body("a", ""))
	require.NoError(t, agent.SetContext("booking"))

	assert.Equal(t, []string{"booking"}, contextNames(agent.OutgoingContexts()))
}

func TestSetContext_ReplacesSameName(t *testing.T) {
	agent, _ := newTestAgent(t, v1Body("a", ""))
	require.NoError(t, agent.SetContext(Context{Name: "booking", Lifespan: 1}))
	require.NoError(t, agent.SetContext(Context{Name: "booking", Lifespan: 9}))

	out := agent.OutgoingContexts()
	require.Len(t, out, 1)
	assert.Equal(t, 9, out[0].Lifespan)
}

func TestSetContext_RequiresName(t *testing.T) {
	agent, _ := newTestAgent(t, v2Body("a", ""))

	assert.ErrorIs(t, agent.SetContext(""), ErrContextName)
	assert.ErrorIs(t, agent.SetContext(Context{Lifespan: 3}), ErrContextName)
	assert.ErrorIs(t, agent.SetContext((*Context)(nil)), ErrContextName)
	assert.ErrorIs(t, agent.SetContext(12), ErrContextName)
	assert.Empty(t, agent.OutgoingContexts())
}

func TestClearContext_V2MatchesPathSuffix(t *testing.T) {
	agent, _ := newTestAgent(t, v2Body("a", ""))
	agent.outgoing = []Context{
		{Name: testSession + "/contexts/foo"},
		{Name: "foo"},
		{Name: testSession + "/contexts/foobar"},
		{Name: testSession + "/contexts/barfoo"},
		{Name: "other/path/foo"},
		{Name: "bar"},
	}

	agent.ClearContext("foo")

	assert.Equal(t, []string{testSession + "/contexts/foobar", testSession + "/contexts/barfoo", "bar"}, contextNames(agent.OutgoingContexts()))
}

func TestClearContext_V1MatchesExactName(t *testing.T) {
	agent, _ := newTestAgent(t, v1Body("a", ""))
	agent.outgoing = []Context{
		{Name: "foo"},
		{Name: "foobar"},
		{Name: "x/foo"},
	}

	agent.ClearContext("foo")

	assert.Equal(t, []string{"foobar", "x/foo"}, contextNames(agent.OutgoingContexts()))
}

func TestClearOutgoingContexts(t *testing.T) {
	agent, _ := newTestAgent(t, v2Body("a", ""))
	require.NoError(t, agent.SetContext("one"))
	require.NoError(t, agent.SetContext("two"))

	agent.ClearOutgoingContexts()
	assert.Empty(t, agent.OutgoingContexts())
}

func TestGetContext_ReadsInputContexts(t *testing.T) {
	agent, _ := newTestAgent(t, v2Body("a", ""))
	require.NoError(t, agent.SetContext("outgoing-only"))

	got := agent.GetContext("booking")
	require.NotNil(t, got)
	assert.Equal(t, testSession+"/contexts/booking", got.Name)
	assert.Equal(t, "Berlin", got.Parameters["city"])

	got.Parameters["city"] = "Paris"
	assert.Equal(t, "Berlin", agent.Request.Contexts[0].Parameters["city"])

	assert.Nil(t, agent.GetContext("outgoing-only"))
	assert.Nil(t, agent.GetContext("book"))
}

func TestGetContext_V1(t *testing.T) {
	agent, _ := newTestAgent(t, v1Body("a", ""))

	got := agent.GetContext("booking")
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Lifespan)
	assert.Nil(t, agent.GetContext("book"))
}

func TestSetFollowupEvent(t *testing.T) {
	agent, _ := newTestAgent(t, v2Body("a", ""))

	assert.ErrorIs(t, agent.SetFollowupEvent(""), ErrEventName)
	assert.ErrorIs(t, agent.SetFollowupEvent(FollowupEvent{}), ErrEventName)
	assert.ErrorIs(t, agent.SetFollowupEvent(1), ErrEventName)
	assert.Nil(t, agent.FollowupEvent())

	require.NoError(t, agent.SetFollowupEvent("first"))
	require.NoError(t, agent.SetFollowupEvent(&FollowupEvent{Name: "second", Parameters: map[string]any{"x": 1}}))

	ev := agent.FollowupEvent()
	require.NotNil(t, ev)
	assert.Equal(t, "second", ev.Name)
}
