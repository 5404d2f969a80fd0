package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/webhook-fulfillment/internal/config"
	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
	"github.com/ziadkadry99/webhook-fulfillment/internal/responder"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
	"github.com/ziadkadry99/webhook-fulfillment/internal/webhook"
)

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func processor() *webhook.Processor {
	return webhook.NewProcessor(fulfillment.ActionMap{
		"greet": func(_ context.Context, a *fulfillment.Agent) error { return a.Add("hello") },
	}, nil, nil)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.json", "{}")
	b := writeFixture(t, dir, "nested/deep/b.json", "{}")
	writeFixture(t, dir, "nested/skip.json", "{}")
	writeFixture(t, dir, "a"+ResponseSuffix, "{}")
	writeFixture(t, dir, "notes.txt", "")

	pattern := filepath.Join(dir, "**", "*.json")
	files, err := Expand([]string{pattern, pattern}, []string{"skip.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestExpandBadPattern(t *testing.T) {
	_, err := Expand([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}

type countingReporter struct {
	total, updates int
	finished       bool
}

func (r *countingReporter) Start(total int)    { r.total = total }
func (r *countingReporter) Update(int, string) { r.updates++ }
func (r *countingReporter) Finish()            { r.finished = true }

func TestRun(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFixture(t, dir, "greet.json", `{"queryResult":{"action":"greet"}}`),
		writeFixture(t, dir, "unknown.json", `{"queryResult":{"action":"nope"}}`),
		writeFixture(t, dir, "broken.json", `{"neither":true}`),
	}
	outDir := filepath.Join(dir, "out")
	rep := &countingReporter{}

	summary, err := Run(context.Background(), processor(), files, outDir, rep)
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, 1, summary.Counts[transcript.OutcomeAnswered])
	assert.Equal(t, 1, summary.Counts[transcript.OutcomeNoHandler])
	assert.Equal(t, 1, summary.Counts[transcript.OutcomeRejected])
	assert.Equal(t, 2, summary.Failed())

	assert.Equal(t, 3, rep.total)
	assert.Equal(t, 3, rep.updates)
	assert.True(t, rep.finished)

	greet, err := os.ReadFile(filepath.Join(outDir, "greet"+ResponseSuffix))
	require.NoError(t, err)
	assert.JSONEq(t, `{"fulfillmentText":"hello"}`, string(greet))

	unknown, err := os.ReadFile(summary.Results[1].OutPath)
	require.NoError(t, err)
	assert.Contains(t, string(unknown), `"outcome": "no_handler"`)
}

func TestRunWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	file := writeFixture(t, dir, "greet.json", `{"result":{"action":"greet"}}`)

	summary, err := Run(context.Background(), processor(), []string{file}, "", nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Empty(t, summary.Results[0].OutPath)
	assert.Equal(t, 0, summary.Failed())
}

func TestRunMissingFile(t *testing.T) {
	_, err := Run(context.Background(), processor(), []string{"/does/not/exist.json"}, "", nil)
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, processor(), []string{"x.json"}, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSamplePayloads(t *testing.T) {
	cfg, err := config.Load("../../fulfillment.example.yml")
	require.NoError(t, err)
	cfg.Fallback = nil
	proc := webhook.NewProcessor(responder.New(cfg).Handlers(), nil, nil)

	files, err := Expand([]string{"../../testdata/payloads/*.json"}, nil)
	require.NoError(t, err)
	require.Len(t, files, 3)

	summary, err := Run(context.Background(), proc, files, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Counts[transcript.OutcomeAnswered])
	assert.Equal(t, 1, summary.Counts[transcript.OutcomeNoHandler])
}

func TestRunRejectsResponseNameCollision(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFixture(t, dir, "a/greet.json", `{"queryResult":{"action":"greet"}}`),
		writeFixture(t, dir, "b/greet.json", `{"queryResult":{"action":"greet"}}`),
	}
	outDir := filepath.Join(dir, "out")

	_, err := Run(context.Background(), processor(), files, outDir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would both write")
	assert.NoDirExists(t, outDir)

	summary, err := Run(context.Background(), processor(), files, "", nil)
	require.NoError(t, err)
	assert.Len(t, summary.Results, 2)
}
