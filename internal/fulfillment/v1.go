package fulfillment

import (
	"encoding/json"
	"fmt"
)

// v1 message type codes.
const (
	v1TypeText         = 0
	v1TypeCard         = 1
	v1TypeQuickReplies = 2
	v1TypeImage        = 3
	v1TypePayload      = 4
)

// v1 inbound shapes.

type v1Request struct {
	ID              string             `json:"id"`
	SessionID       string             `json:"sessionId"`
	Lang            string             `json:"lang"`
	Result          v1Result           `json:"result"`
	OriginalRequest *v1OriginalRequest `json:"originalRequest"`
}

type v1Result struct {
	Source        string         `json:"source"`
	ResolvedQuery string         `json:"resolvedQuery"`
	Action        string         `json:"action"`
	Parameters    map[string]any `json:"parameters"`
	Contexts      []v1Context    `json:"contexts"`
	Metadata      struct {
		IntentName string `json:"intentName"`
	} `json:"metadata"`
	Fulfillment struct {
		Speech   string      `json:"speech"`
		Messages []v1Message `json:"messages"`
	} `json:"fulfillment"`
}

type v1OriginalRequest struct {
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data"`
}

// v1 shared and outbound shapes.

type v1Context struct {
	Name       string         `json:"name"`
	Lifespan   int            `json:"lifespan,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type v1Message struct {
	Type     int             `json:"type"`
	Platform string          `json:"platform,omitempty"`
	Speech   json.RawMessage `json:"speech,omitempty"`
	Title    string          `json:"title,omitempty"`
	Subtitle string          `json:"subtitle,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Buttons  []v1Button      `json:"buttons,omitempty"`
	Replies  []string        `json:"replies,omitempty"`
	Payload  map[string]any  `json:"payload,omitempty"`
}

type v1Button struct {
	Text     string `json:"text"`
	Postback string `json:"postback,omitempty"`
}

type v1Event struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

type v1Response struct {
	Speech        string         `json:"speech,omitempty"`
	DisplayText   string         `json:"displayText,omitempty"`
	Messages      []v1Message    `json:"messages,omitempty"`
	ContextOut    []v1Context    `json:"contextOut,omitempty"`
	FollowupEvent *v1Event       `json:"followupEvent,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// v1Adapter speaks the result protocol, where context names are plain
// identifiers.
type v1Adapter struct{}

func (a *v1Adapter) version() ProtocolVersion { return V1 }

func (a *v1Adapter) processRequest(body []byte) (*Request, error) {
	var in v1Request
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("decoding v1 payload: %w", err)
	}

	res := in.Result
	req := &Request{
		Version:    V1,
		ResponseID: in.ID,
		Session:    in.SessionID,
		Action:     res.Action,
		Intent:     res.Metadata.IntentName,
		Parameters: res.Parameters,
		Query:      res.ResolvedQuery,
		Locale:     in.Lang,
		Source:     PlatformUnspecified,
	}
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}
	for _, c := range res.Contexts {
		req.Contexts = append(req.Contexts, Context{
			Name:       c.Name,
			Lifespan:   c.Lifespan,
			Parameters: c.Parameters,
		})
	}
	if o := in.OriginalRequest; o != nil {
		req.RawSource = o.Source
		req.Source = ParseSource(o.Source)
		if len(o.Data) > 0 {
			req.OriginalRequest = o.Data
		}
	}
	for _, m := range res.Fulfillment.Messages {
		req.ConsoleMessages = append(req.ConsoleMessages, decodeV1Message(m)...)
	}
	if len(req.ConsoleMessages) == 0 && res.Fulfillment.Speech != "" {
		req.ConsoleMessages = []Element{&Text{Text: res.Fulfillment.Speech, Platform: PlatformUnspecified}}
	}
	return req, nil
}

func (a *v1Adapter) addContext(outgoing []Context, c Context) []Context {
	return upsertContext(outgoing, c)
}

func (a *v1Adapter) matchContext(name, short string) bool {
	return short != "" && name == short
}

func (a *v1Adapter) buildResponse(req *Request, elements []Element, event *FollowupEvent, contexts []Context) (any, error) {
	resp := v1Response{}

	if t, ok := isSimpleText(elements); ok {
		resp.Speech = plainSpeech(t.Text)
		resp.DisplayText = t.Text
	} else {
		if t := firstText(elements, req.Source); t != nil {
			resp.Speech = plainSpeech(t.Text)
			resp.DisplayText = t.Text
		}
		lifted := sourcePayload(elements, req.Source)
		if lifted != nil {
			resp.Data = map[string]any{v1PlatformName(req.Source): lifted.Payload}
		}
		for _, e := range elements {
			if lifted != nil && e == Element(lifted) {
				continue
			}
			msg, err := encodeV1Message(e, req.Source)
			if err != nil {
				return nil, err
			}
			resp.Messages = append(resp.Messages, msg)
		}
	}

	for _, c := range contexts {
		resp.ContextOut = append(resp.ContextOut, v1Context(c))
	}

	if event != nil {
		resp.FollowupEvent = &v1Event{Name: event.Name, Data: event.Parameters}
	}
	return resp, nil
}

func encodeV1Message(e Element, source Platform) (v1Message, error) {
	msg := v1Message{}
	if p := messagePlatform(e, source); !p.IsUnspecified() {
		msg.Platform = v1PlatformName(p)
	}
	switch e.Kind() {
	case KindText:
		msg.Type = v1TypeText
		speech, err := json.Marshal(e.(*Text).Text)
		if err != nil {
			return msg, fmt.Errorf("encoding text message: %w", err)
		}
		msg.Speech = speech
	case KindCard:
		c := e.(*Card)
		msg.Type = v1TypeCard
		msg.Title = c.Title
		msg.Subtitle = c.Subtitle
		msg.ImageURL = c.ImageURL
		for _, b := range c.Buttons {
			msg.Buttons = append(msg.Buttons, v1Button{Text: b.Text, Postback: b.URL})
		}
	case KindImage:
		msg.Type = v1TypeImage
		msg.ImageURL = e.(*Image).ImageURL
	case KindSuggestions:
		s := e.(*Suggestions)
		msg.Type = v1TypeQuickReplies
		msg.Title = s.Title
		msg.Replies = s.Replies
	case KindPayload:
		msg.Type = v1TypePayload
		msg.Payload = e.(*Payload).Payload
		if msg.Payload == nil {
			msg.Payload = map[string]any{}
		}
	default:
		return msg, fmt.Errorf("%w: %s", ErrUnknownResponseType, e.Kind())
	}
	return msg, nil
}

func decodeV1Message(m v1Message) []Element {
	platform := v1PlatformFromName(m.Platform)
	switch m.Type {
	case v1TypeText:
		var many []string
		if err := json.Unmarshal(m.Speech, &many); err == nil {
			out := make([]Element, 0, len(many))
			for _, s := range many {
				out = append(out, &Text{Text: s, Platform: platform})
			}
			return out
		}
		var one string
		if err := json.Unmarshal(m.Speech, &one); err == nil {
			return []Element{&Text{Text: one, Platform: platform}}
		}
	case v1TypeCard:
		c := &Card{Title: m.Title, Subtitle: m.Subtitle, ImageURL: m.ImageURL, Platform: platform}
		for _, b := range m.Buttons {
			c.Buttons = append(c.Buttons, Button{Text: b.Text, URL: b.Postback})
		}
		return []Element{c}
	case v1TypeQuickReplies:
		return []Element{&Suggestions{Title: m.Title, Replies: m.Replies, Platform: platform}}
	case v1TypeImage:
		return []Element{&Image{ImageURL: m.ImageURL, Platform: platform}}
	case v1TypePayload:
		return []Element{&Payload{Payload: m.Payload, Platform: platform}}
	}
	return nil
}
