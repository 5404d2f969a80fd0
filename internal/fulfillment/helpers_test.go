package fulfillment

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSession = "projects/demo/agent/sessions/abc123"

// recorder implements Outbound for tests.
type recorder struct {
	status int
	body   []byte
	sends  int
}

func (r *recorder) SetStatus(code int) { r.status = code }

func (r *recorder) Send(payload []byte) error {
	r.sends++
	r.body = payload
	return nil
}

func (r *recorder) decode(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out))
	return out
}

func v2Body(action, source string) string {
	return fmt.Sprintf(`{
		"responseId": "resp-1",
		"session": %q,
		"queryResult": {
			"queryText": "book a table",
			"action": %q,
			"parameters": {"guests": 4},
			"languageCode": "en-us",
			"intent": {"name": "projects/demo/agent/intents/1", "displayName": "Book Table"},
			"outputContexts": [
				{"name": %q, "lifespanCount": 2, "parameters": {"city": "Berlin"}}
			],
			"fulfillmentMessages": [
				{"text": {"text": ["Console says hi"]}},
				{"platform": "FACEBOOK", "quickReplies": {"quickReplies": ["Yes", "No"]}}
			]
		},
		"originalDetectIntentRequest": {"source": %q, "payload": {"user": {"locale": "en-US"}}}
	}`, testSession, action, testSession+"/contexts/booking", source)
}

func v1Body(action, source string) string {
	return fmt.Sprintf(`{
		"id": "id-1",
		"sessionId": "sess-1",
		"lang": "en",
		"result": {
			"source": "agent",
			"resolvedQuery": "book a table",
			"action": %q,
			"parameters": {"guests": 4},
			"contexts": [{"name": "booking", "lifespan": 3, "parameters": {"city": "Berlin"}}],
			"metadata": {"intentName": "Book Table"},
			"fulfillment": {
				"speech": "Console says hi",
				"messages": [
					{"type": 0, "speech": "Console says hi"},
					{"type": 2, "platform": "facebook", "replies": ["Yes", "No"]}
				]
			}
		},
		"originalRequest": {"source": %q, "data": {"id": 1}}
	}`, action, source)
}

func newTestAgent(t *testing.T, body string) (*Agent, *recorder) {
	t.Helper()
	rec := &recorder{}
	agent, err := NewAgent(RawInbound(body), rec)
	require.NoError(t, err)
	return agent, rec
}
