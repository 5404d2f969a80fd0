// Package webhook runs one fulfillment exchange per inbound payload and
// records the outcome.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
)

// MaxBodyBytes bounds the size of an accepted webhook payload.
const MaxBodyBytes = 1 << 20

// Exchange is the result of processing one payload.
type Exchange struct {
	Status   int
	Response []byte
	Outcome  transcript.Outcome
	Err      error
	Request  *fulfillment.Request
	Duration time.Duration
	// TranscriptID is set when the exchange was recorded.
	TranscriptID string
}

// Processor routes payloads through a fulfillment handler. Store and
// broadcaster are optional.
type Processor struct {
	handler fulfillment.Handler
	store   *transcript.Store
	bc      *transcript.Broadcaster
}

// NewProcessor creates a Processor. store and bc may be nil to skip
// recording or live streaming.
func NewProcessor(handler fulfillment.Handler, store *transcript.Store, bc *transcript.Broadcaster) *Processor {
	return &Processor{handler: handler, store: store, bc: bc}
}

// bufferOutbound collects the response instead of writing it.
type bufferOutbound struct {
	status int
	body   []byte
}

func (b *bufferOutbound) SetStatus(code int) { b.status = code }

func (b *bufferOutbound) Send(payload []byte) error {
	b.body = payload
	return nil
}

// Process runs the handler for body and returns what would be written back.
func (p *Processor) Process(ctx context.Context, body []byte) Exchange {
	start := time.Now()
	out := &bufferOutbound{status: http.StatusOK}
	ex := Exchange{}

	agent, err := fulfillment.NewAgent(fulfillment.RawInbound(body), out)
	if err != nil {
		ex.Status = http.StatusBadRequest
		ex.Outcome = transcript.OutcomeRejected
		ex.Err = err
	} else {
		ex.Request = agent.Request
		err = agent.HandleRequest(ctx, p.handler)
		switch {
		case err == nil:
			ex.Status = out.status
			ex.Response = out.body
			ex.Outcome = transcript.OutcomeAnswered
		case errors.Is(err, fulfillment.ErrNoHandler):
			ex.Status = out.status
			ex.Outcome = transcript.OutcomeNoHandler
			ex.Err = err
		default:
			ex.Status = http.StatusInternalServerError
			ex.Outcome = transcript.OutcomeFailed
			ex.Err = err
		}
	}
	ex.Duration = time.Since(start)

	p.logExchange(ctx, ex)
	p.record(ctx, body, &ex)
	return ex
}

func (p *Processor) logExchange(ctx context.Context, ex Exchange) {
	attrs := []any{
		"outcome", ex.Outcome,
		"status", ex.Status,
		"duration", ex.Duration,
	}
	if ex.Request != nil {
		attrs = append(attrs,
			"version", int(ex.Request.Version),
			"action", ex.Request.Action,
			"source", ex.Request.Source.String(),
		)
	}
	if ex.Err != nil {
		slog.WarnContext(ctx, "webhook exchange", append(attrs, "error", ex.Err)...)
		return
	}
	slog.InfoContext(ctx, "webhook exchange", attrs...)
}

func (p *Processor) record(ctx context.Context, body []byte, ex *Exchange) {
	if p.store == nil {
		return
	}
	entry := transcript.Entry{
		Status:     ex.Status,
		Outcome:    ex.Outcome,
		DurationMS: ex.Duration.Milliseconds(),
		Response:   ex.Response,
	}
	if json.Valid(body) {
		entry.Request = body
	}
	if ex.Err != nil {
		entry.Error = ex.Err.Error()
	}
	if req := ex.Request; req != nil {
		entry.Version = int(req.Version)
		entry.Session = req.Session
		entry.Action = req.Action
		entry.Intent = req.Intent
		entry.Source = req.Source.String()
		entry.Query = req.Query
	}

	stored, err := p.store.Log(ctx, entry)
	if err != nil {
		slog.ErrorContext(ctx, "recording transcript", "error", err)
		return
	}
	ex.TranscriptID = stored.ID
	if p.bc != nil {
		p.bc.Publish(stored)
	}
}

// ServeHTTP handles a webhook POST.
func (p *Processor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, "reading request body: "+err.Error())
		return
	}

	ex := p.Process(r.Context(), body)
	if ex.Response != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ex.Status)
		w.Write(ex.Response)
		return
	}
	msg := http.StatusText(ex.Status)
	if ex.Err != nil {
		msg = ex.Err.Error()
	}
	writeError(w, ex.Status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
