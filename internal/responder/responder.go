// Package responder answers webhook calls from canned responses declared in
// the configuration file.
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ziadkadry99/webhook-fulfillment/internal/config"
	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
)

// Responder maps action names to configured responses.
type Responder struct {
	actions  map[string][]config.ResponseSpec
	fallback []config.ResponseSpec
}

// New creates a Responder from the actions and fallback in cfg.
func New(cfg *config.Config) *Responder {
	r := &Responder{actions: make(map[string][]config.ResponseSpec, len(cfg.Actions))}
	for _, a := range cfg.Actions {
		r.actions[a.Name] = a.Responses
	}
	r.fallback = cfg.Fallback
	return r
}

// Handlers returns an ActionMap with one handler per configured action.
// A "*" action, or else the fallback list, becomes the wildcard entry.
func (r *Responder) Handlers() fulfillment.ActionMap {
	m := make(fulfillment.ActionMap, len(r.actions)+1)
	for name, specs := range r.actions {
		key := name
		if name == config.WildcardAction {
			key = fulfillment.Wildcard
		}
		m[key] = handlerFor(specs)
	}
	if _, ok := m[fulfillment.Wildcard]; !ok && len(r.fallback) > 0 {
		m[fulfillment.Wildcard] = handlerFor(r.fallback)
	}
	return m
}

// Actions returns the configured action names, "*" included.
func (r *Responder) Actions() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

func handlerFor(specs []config.ResponseSpec) fulfillment.HandlerFunc {
	return func(ctx context.Context, agent *fulfillment.Agent) error {
		slog.DebugContext(ctx, "answering from config",
			"action", agent.Request.Action, "responses", len(specs))
		return Apply(agent, specs)
	}
}

// Apply adds the responses, contexts and events described by specs to the
// agent, expanding templates against the agent's request.
func Apply(agent *fulfillment.Agent, specs []config.ResponseSpec) error {
	req := agent.Request
	for i, spec := range specs {
		if e := buildElement(spec, req); e != nil {
			if err := agent.Add(e); err != nil {
				return fmt.Errorf("response %d: %w", i, err)
			}
		}
		if spec.Context != nil {
			c := fulfillment.Context{
				Name:       spec.Context.Name,
				Lifespan:   spec.Context.Lifespan,
				Parameters: spec.Context.Parameters,
			}
			if err := agent.SetContext(c); err != nil {
				return fmt.Errorf("response %d: %w", i, err)
			}
		}
		if spec.Event != "" {
			if err := agent.SetFollowupEvent(Expand(spec.Event, req)); err != nil {
				return fmt.Errorf("response %d: %w", i, err)
			}
		}
	}
	return nil
}

func buildElement(spec config.ResponseSpec, req *fulfillment.Request) fulfillment.Element {
	platform := fulfillment.ParseSource(spec.Platform)
	switch {
	case spec.Text != "":
		return &fulfillment.Text{Text: Expand(spec.Text, req), Platform: platform}
	case spec.Card != nil:
		card := &fulfillment.Card{
			Title:    Expand(spec.Card.Title, req),
			Subtitle: Expand(spec.Card.Subtitle, req),
			ImageURL: spec.Card.ImageURL,
			Platform: platform,
		}
		for _, b := range spec.Card.Buttons {
			card.Buttons = append(card.Buttons, fulfillment.Button{Text: Expand(b.Text, req), URL: b.URL})
		}
		return card
	case spec.Image != "":
		return &fulfillment.Image{ImageURL: spec.Image, Platform: platform}
	case len(spec.Suggestions) > 0:
		replies := make([]string, len(spec.Suggestions))
		for i, s := range spec.Suggestions {
			replies[i] = Expand(s, req)
		}
		return fulfillment.NewSuggestions(platform, replies...)
	case spec.Payload != nil:
		return &fulfillment.Payload{Payload: spec.Payload, Platform: platform}
	}
	return nil
}

var placeholder = regexp.MustCompile(`\{\{\s*(\$?[A-Za-z0-9_.\-]+)\s*\}\}`)

// Expand replaces {{name}} with the request parameter of that name and
// {{$query}}, {{$action}}, {{$intent}} and {{$locale}} with the matching
// request fields. Unknown names expand to the empty string.
func Expand(tmpl string, req *fulfillment.Request) string {
	if req == nil || !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		switch name {
		case "$query":
			return req.Query
		case "$action":
			return req.Action
		case "$intent":
			return req.Intent
		case "$locale":
			return req.Locale
		}
		v, ok := req.Parameters[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
