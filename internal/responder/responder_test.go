package responder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/webhook-fulfillment/internal/config"
	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
)

const v2Call = `{
	"session": "projects/p/agent/sessions/s1",
	"queryResult": {
		"queryText": "table for four",
		"action": %q,
		"parameters": {"guests": 4, "name": "Ada"},
		"languageCode": "en"
	}
}`

func newAgent(t *testing.T, action string) (*fulfillment.Agent, *httptest.ResponseRecorder) {
	t.Helper()
	body := strings.Replace(v2Call, "%q", `"`+action+`"`, 1)
	r := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	agent, err := fulfillment.NewAgent(fulfillment.HTTPInbound(r), fulfillment.HTTPOutbound(w))
	require.NoError(t, err)
	return agent, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestExpand(t *testing.T) {
	req := &fulfillment.Request{
		Action:     "booking.create",
		Intent:     "Book",
		Query:      "table for four",
		Locale:     "en",
		Parameters: map[string]any{"guests": float64(4), "name": "Ada", "none": nil},
	}

	assert.Equal(t, "Booked 4 seats for Ada.", Expand("Booked {{guests}} seats for {{ name }}.", req))
	assert.Equal(t, "You said: table for four", Expand("You said: {{$query}}", req))
	assert.Equal(t, "booking.create/Book/en", Expand("{{$action}}/{{$intent}}/{{$locale}}", req))
	assert.Equal(t, "missing: ", Expand("missing: {{unknown}}", req))
	assert.Equal(t, "nil: ", Expand("nil: {{none}}", req))
	assert.Equal(t, "plain", Expand("plain", req))
	assert.Equal(t, "{{x}}", Expand("{{x}}", nil))
}

func TestHandlers_ConfiguredAction(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Actions = []config.ActionConfig{{
		Name: "booking.create",
		Responses: []config.ResponseSpec{
			{Text: "Booked for {{guests}}, {{name}}."},
			{Suggestions: []string{"Change", "Cancel"}},
			{Context: &config.ContextSpec{Name: "booking", Lifespan: 2}},
		},
	}}
	handlers := New(cfg).Handlers()

	agent, w := newAgent(t, "booking.create")
	require.NoError(t, agent.HandleRequest(context.Background(), handlers))

	out := decode(t, w)
	assert.Equal(t, "Booked for 4, Ada.", out["fulfillmentText"])
	msgs := out["fulfillmentMessages"].([]any)
	require.Len(t, msgs, 2)
	ctxs := out["outputContexts"].([]any)
	require.Len(t, ctxs, 1)
	assert.Equal(t, "projects/p/agent/sessions/s1/contexts/booking", ctxs[0].(map[string]any)["name"])
}

func TestHandlers_FallbackIsWildcard(t *testing.T) {
	cfg := config.DefaultConfig()
	handlers := New(cfg).Handlers()
	require.Contains(t, handlers, fulfillment.Wildcard)

	agent, w := newAgent(t, "unknown.action")
	require.NoError(t, agent.HandleRequest(context.Background(), handlers))
	assert.Equal(t, config.DefaultFallbackText, decode(t, w)["fulfillmentText"])
}

func TestHandlers_StarActionWinsOverFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Actions = []config.ActionConfig{{
		Name:      config.WildcardAction,
		Responses: []config.ResponseSpec{{Text: "star"}},
	}}
	handlers := New(cfg).Handlers()

	agent, w := newAgent(t, "anything")
	require.NoError(t, agent.HandleRequest(context.Background(), handlers))
	assert.Equal(t, "star", decode(t, w)["fulfillmentText"])
}

func TestHandlers_NoFallback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fallback = nil
	handlers := New(cfg).Handlers()

	agent, w := newAgent(t, "unknown.action")
	err := agent.HandleRequest(context.Background(), handlers)
	assert.ErrorIs(t, err, fulfillment.ErrNoHandler)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApply_AllElementKinds(t *testing.T) {
	agent, _ := newAgent(t, "x")
	specs := []config.ResponseSpec{
		{Text: "hi", Platform: "slack"},
		{Card: &config.CardSpec{Title: "T {{name}}", Buttons: []config.ButtonSpec{{Text: "Go", URL: "https://example.com"}}}},
		{Image: "https://example.com/i.png"},
		{Suggestions: []string{"{{guests}}"}},
		{Payload: map[string]any{"k": "v"}, Platform: "facebook"},
		{Event: "followup"},
	}
	require.NoError(t, Apply(agent, specs))

	elems := agent.Elements()
	require.Len(t, elems, 5)
	assert.Equal(t, fulfillment.PlatformSlack, elems[0].TargetPlatform())
	card := elems[1].(*fulfillment.Card)
	assert.Equal(t, "T Ada", card.Title)
	assert.Equal(t, "https://example.com", card.Buttons[0].URL)
	assert.Equal(t, fulfillment.KindImage, elems[2].Kind())
	assert.Equal(t, []string{"4"}, elems[3].(*fulfillment.Suggestions).Replies)
	assert.Equal(t, fulfillment.PlatformFacebook, elems[4].TargetPlatform())

	ev := agent.FollowupEvent()
	require.NotNil(t, ev)
	assert.Equal(t, "followup", ev.Name)
}

func TestActions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Actions = []config.ActionConfig{{Name: "a"}, {Name: "b"}}
	assert.ElementsMatch(t, []string{"a", "b"}, New(cfg).Actions())
}
