package fulfillment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// v2 inbound shapes.

type v2Request struct {
	ResponseID                  string             `json:"responseId"`
	Session                     string             `json:"session"`
	QueryResult                 v2QueryResult      `json:"queryResult"`
	OriginalDetectIntentRequest *v2OriginalRequest `json:"originalDetectIntentRequest"`
}

type v2QueryResult struct {
	QueryText           string         `json:"queryText"`
	Action              string         `json:"action"`
	Parameters          map[string]any `json:"parameters"`
	OutputContexts      []v2Context    `json:"outputContexts"`
	Intent              *v2Intent      `json:"intent"`
	LanguageCode        string         `json:"languageCode"`
	FulfillmentMessages []v2Message    `json:"fulfillmentMessages"`
}

type v2Intent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type v2OriginalRequest struct {
	Source  string          `json:"source"`
	Version string          `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// v2 shared and outbound shapes.

type v2Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

type v2Message struct {
	Platform     string          `json:"platform,omitempty"`
	Text         *v2Text         `json:"text,omitempty"`
	Card         *v2Card         `json:"card,omitempty"`
	Image        *v2Image        `json:"image,omitempty"`
	QuickReplies *v2QuickReplies `json:"quickReplies,omitempty"`
	Payload      map[string]any  `json:"payload,omitempty"`
}

type v2Text struct {
	Text []string `json:"text"`
}

type v2Card struct {
	Title    string     `json:"title,omitempty"`
	Subtitle string     `json:"subtitle,omitempty"`
	ImageURI string     `json:"imageUri,omitempty"`
	Buttons  []v2Button `json:"buttons,omitempty"`
}

type v2Button struct {
	Text     string `json:"text"`
	Postback string `json:"postback,omitempty"`
}

type v2Image struct {
	ImageURI string `json:"imageUri"`
}

type v2QuickReplies struct {
	Title        string   `json:"title,omitempty"`
	QuickReplies []string `json:"quickReplies"`
}

type v2EventInput struct {
	Name         string         `json:"name"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	LanguageCode string         `json:"languageCode"`
}

type v2Response struct {
	FulfillmentText     string         `json:"fulfillmentText,omitempty"`
	FulfillmentMessages []v2Message    `json:"fulfillmentMessages,omitempty"`
	OutputContexts      []v2Context    `json:"outputContexts,omitempty"`
	FollowupEventInput  *v2EventInput  `json:"followupEventInput,omitempty"`
	Payload             map[string]any `json:"payload,omitempty"`
}

// v2Adapter speaks the queryResult protocol, where context names are
// session-scoped resource paths.
type v2Adapter struct {
	session string
}

func (a *v2Adapter) version() ProtocolVersion { return V2 }

func (a *v2Adapter) processRequest(body []byte) (*Request, error) {
	var in v2Request
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("decoding v2 payload: %w", err)
	}
	a.session = in.Session

	qr := in.QueryResult
	req := &Request{
		Version:    V2,
		ResponseID: in.ResponseID,
		Session:    in.Session,
		Action:     qr.Action,
		Parameters: qr.Parameters,
		Query:      qr.QueryText,
		Locale:     qr.LanguageCode,
		Source:     PlatformUnspecified,
	}
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}
	if qr.Intent != nil {
		req.Intent = qr.Intent.DisplayName
	}
	for _, c := range qr.OutputContexts {
		req.Contexts = append(req.Contexts, Context{
			Name:       c.Name,
			Lifespan:   c.LifespanCount,
			Parameters: c.Parameters,
		})
	}
	if o := in.OriginalDetectIntentRequest; o != nil {
		req.RawSource = o.Source
		req.Source = ParseSource(o.Source)
		if len(o.Payload) > 0 {
			req.OriginalRequest = o.Payload
		}
	}
	for _, m := range qr.FulfillmentMessages {
		req.ConsoleMessages = append(req.ConsoleMessages, decodeV2Message(m)...)
	}
	return req, nil
}

// contextPath expands a short context name into its session resource path.
func (a *v2Adapter) contextPath(name string) string {
	if a.session == "" || strings.Contains(name, "/contexts/") {
		return name
	}
	return a.session + "/contexts/" + name
}

func (a *v2Adapter) addContext(outgoing []Context, c Context) []Context {
	c.Name = a.contextPath(c.Name)
	return upsertContext(outgoing, c)
}

// matchContext treats the context name as a path: it matches the exact name
// or a trailing path segment, never a bare substring.
func (a *v2Adapter) matchContext(name, short string) bool {
	if short == "" {
		return false
	}
	return name == short || strings.HasSuffix(name, "/"+short)
}

func (a *v2Adapter) buildResponse(req *Request, elements []Element, event *FollowupEvent, contexts []Context) (any, error) {
	resp := v2Response{}

	if t, ok := isSimpleText(elements); ok {
		resp.FulfillmentText = t.Text
	} else {
		if t := firstText(elements, req.Source); t != nil {
			resp.FulfillmentText = t.Text
		}
		lifted := sourcePayload(elements, req.Source)
		if lifted != nil {
			resp.Payload = map[string]any{v1PlatformName(req.Source): lifted.Payload}
		}
		for _, e := range elements {
			if lifted != nil && e == Element(lifted) {
				continue
			}
			msg, err := encodeV2Message(e, req.Source)
			if err != nil {
				return nil, err
			}
			resp.FulfillmentMessages = append(resp.FulfillmentMessages, msg)
		}
	}

	for _, c := range contexts {
		resp.OutputContexts = append(resp.OutputContexts, v2Context{
			Name:          c.Name,
			LifespanCount: c.Lifespan,
			Parameters:    c.Parameters,
		})
	}

	if event != nil {
		lang := req.Locale
		if lang == "" {
			lang = "en"
		}
		resp.FollowupEventInput = &v2EventInput{
			Name:         event.Name,
			Parameters:   event.Parameters,
			LanguageCode: lang,
		}
	}
	return resp, nil
}

func encodeV2Message(e Element, source Platform) (v2Message, error) {
	msg := v2Message{}
	if p := messagePlatform(e, source); !p.IsUnspecified() {
		msg.Platform = p.String()
	}
	switch e.Kind() {
	case KindText:
		msg.Text = &v2Text{Text: []string{e.(*Text).Text}}
	case KindCard:
		c := e.(*Card)
		card := &v2Card{Title: c.Title, Subtitle: c.Subtitle, ImageURI: c.ImageURL}
		for _, b := range c.Buttons {
			card.Buttons = append(card.Buttons, v2Button{Text: b.Text, Postback: b.URL})
		}
		msg.Card = card
	case KindImage:
		msg.Image = &v2Image{ImageURI: e.(*Image).ImageURL}
	case KindSuggestions:
		s := e.(*Suggestions)
		msg.QuickReplies = &v2QuickReplies{Title: s.Title, QuickReplies: s.Replies}
	case KindPayload:
		msg.Payload = e.(*Payload).Payload
		if msg.Payload == nil {
			msg.Payload = map[string]any{}
		}
	default:
		return msg, fmt.Errorf("%w: %s", ErrUnknownResponseType, e.Kind())
	}
	return msg, nil
}

func decodeV2Message(m v2Message) []Element {
	platform := ParseSource(m.Platform)
	switch {
	case m.Text != nil:
		out := make([]Element, 0, len(m.Text.Text))
		for _, s := range m.Text.Text {
			out = append(out, &Text{Text: s, Platform: platform})
		}
		return out
	case m.Card != nil:
		c := &Card{Title: m.Card.Title, Subtitle: m.Card.Subtitle, ImageURL: m.Card.ImageURI, Platform: platform}
		for _, b := range m.Card.Buttons {
			c.Buttons = append(c.Buttons, Button{Text: b.Text, URL: b.Postback})
		}
		return []Element{c}
	case m.Image != nil:
		return []Element{&Image{ImageURL: m.Image.ImageURI, Platform: platform}}
	case m.QuickReplies != nil:
		return []Element{&Suggestions{Title: m.QuickReplies.Title, Replies: m.QuickReplies.QuickReplies, Platform: platform}}
	case m.Payload != nil:
		return []Element{&Payload{Payload: m.Payload, Platform: platform}}
	}
	return nil
}
