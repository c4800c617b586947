package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikiguide/ikiguide/internal/client"
	"github.com/ikiguide/ikiguide/internal/config"
)

type fakeAPI struct {
	results    []string
	resultsErr error
	emailed    []string
}

func (f *fakeAPI) StartSession(ctx context.Context) (string, error) { return "fresh-id", nil }

func (f *fakeAPI) ValidateSession(ctx context.Context, sessionID string) error { return nil }

func (f *fakeAPI) SaveResponse(ctx context.Context, sessionID string, question int, text string) error {
	return nil
}

func (f *fakeAPI) Results(ctx context.Context, sessionID string) ([]string, error) {
	return f.results, f.resultsErr
}

func (f *fakeAPI) Reset(ctx context.Context, sessionID string) error { return nil }

func (f *fakeAPI) EmailResults(ctx context.Context, address string) error {
	f.emailed = append(f.emailed, address)
	return nil
}

func (f *fakeAPI) SessionCookie() string { return "" }

func newTestRunner(t *testing.T, api *fakeAPI, input string) (*runner, *bytes.Buffer, *client.Flow) {
	t.Helper()
	flow := client.NewFlow(api, client.NewMemoryLocalStore())
	out := &bytes.Buffer{}
	return &runner{
		flow:      flow,
		questions: config.DefaultQuestions(),
		in:        bufio.NewScanner(strings.NewReader(input)),
		out:       out,
	}, out, flow
}

func prefill(t *testing.T, flow *client.Flow, id string, upTo int) {
	t.Helper()
	for q := 1; q <= upTo; q++ {
		require.NoError(t, flow.Answers().Put(id, q, "answer"))
	}
}

func TestRunEndsAfterResultsFailure(t *testing.T) {
	api := &fakeAPI{resultsErr: &client.StatusError{Status: 500, Message: "generation failed"}}
	r, out, flow := newTestRunner(t, api, "final answer\n")
	prefill(t, flow, "sid", 3)

	require.NoError(t, r.run(context.Background(), "sid"))

	assert.Contains(t, out.String(), "could not generate results")
	assert.NotContains(t, out.String(), "Email these results")
	assert.Empty(t, api.emailed)
}

func TestRunShowsResultsThenOffersEmail(t *testing.T) {
	api := &fakeAPI{results: []string{"A", "desc A", "SUMMARY: wrap-up"}}
	r, out, flow := newTestRunner(t, api, "final answer\n\n")
	prefill(t, flow, "sid", 3)

	require.NoError(t, r.run(context.Background(), "sid"))

	assert.Contains(t, out.String(), "Your Ikigai Paths")
	assert.Contains(t, out.String(), "wrap-up")
	assert.Contains(t, out.String(), "Email these results")
}
