package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/ai/prompt"
)

// fakeClient answers completions from a script and records every prompt.
type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	replies []reply
	block   chan struct{}
}

type reply struct {
	content string
	err     error
}

func (f *fakeClient) Complete(ctx context.Context, p string) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.prompts)
	f.prompts = append(f.prompts, p)
	if i >= len(f.replies) {
		return "", errors.New("unexpected call")
	}
	return f.replies[i].content, f.replies[i].err
}

const repairedJSON = `{
  "Categorization": {
    "Links": ["https://example.com"],
    "Quotes": ["Wow, great article!"],
    "Personal-notes": ["note"],
    "Recommendations": ["Tech Trends 2024"],
    "Timestamp-metadata": ["[1/2/24, 9:15:23 AM]"]
  },
  "Themes": ["Technology trends"],
  "Patterns": {"FrequentContributors": ["Alice", "Bob"], "TypicalFlow": "Alice shares a link; Bob provides feedback."},
  "FrequencyAnalysis": {"TotalLinks": 1, "TotalQuotes": 1, "TotalRecommendations": 1, "MostActiveParticipant": "Alice"},
  "Insights": ["Discussions center around technology trends."]
}`

func TestAnalyze_TwoSequentialCalls(t *testing.T) {
	chat := "[1/2/24, 9:15:23 AM] Alice: https://example.com"
	raw := "  \"{\"Themes\": [\"Technology trends\",],}\"  "
	fc := &fakeClient{replies: []reply{{content: raw}, {content: repairedJSON}}}
	svc := NewService(fc, nil)

	res, err := svc.Analyze(context.Background(), chat)
	require.NoError(t, err)

	require.Len(t, fc.prompts, 2)
	assert.Equal(t, prompt.Analysis(chat), fc.prompts[0])
	assert.Equal(t, prompt.Repair(`{"Themes": ["Technology trends"]}`), fc.prompts[1])
	assert.Contains(t, fc.prompts[1], prompt.Sanitize(raw))

	require.NotNil(t, res.Categorization)
	assert.Equal(t, []string{"https://example.com"}, res.Categorization.Links)
	assert.Equal(t, []string{"note"}, res.Categorization.PersonalNotes)
	assert.Equal(t, []string{"Technology trends"}, res.Themes)
	require.NotNil(t, res.FrequencyAnalysis)
	assert.Equal(t, domain.Count(1), res.FrequencyAnalysis.TotalLinks)
	assert.Equal(t, "Alice", res.FrequencyAnalysis.MostActiveParticipant)
	assert.False(t, svc.Analyzing())
}

func TestAnalyze_FailuresYieldEmptyResult(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name      string
		replies   []reply
		wantCalls int
	}{
		{name: "first call fails", replies: []reply{{err: boom}}, wantCalls: 1},
		{name: "repair call fails", replies: []reply{{content: "{}"}, {err: boom}}, wantCalls: 2},
		{name: "repaired output not JSON", replies: []reply{{content: "{}"}, {content: "Here is your JSON: {"}}, wantCalls: 2},
		{name: "repaired output has code fences", replies: []reply{{content: "{}"}, {content: "```json\n{}\n```"}}, wantCalls: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{replies: tt.replies}
			svc := NewService(fc, nil)

			var (
				res domain.Result
				err error
			)
			assert.NotPanics(t, func() { res, err = svc.Analyze(context.Background(), "chat") })
			assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
			assert.True(t, res.IsEmpty())
			assert.Len(t, fc.prompts, tt.wantCalls)
			assert.False(t, svc.Analyzing())
		})
	}
}

func TestAnalyze_MissingSectionsStillParse(t *testing.T) {
	fc := &fakeClient{replies: []reply{{content: "{}"}, {content: `{"Insights":["only this"]}`}}}
	res, err := NewService(fc, nil).Analyze(context.Background(), "chat")
	require.NoError(t, err)
	assert.Nil(t, res.Categorization)
	assert.Equal(t, []string{"only this"}, res.Insights)
}

func TestAnalyze_MistypedFieldsStillParse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		check func(t *testing.T, res domain.Result)
	}{
		{
			name:  "most active participant as a list",
			reply: `{"FrequencyAnalysis":{"TotalLinks":3,"MostActiveParticipant":["Alice","Bob"]},"Insights":["x"]}`,
			check: func(t *testing.T, res domain.Result) {
				require.NotNil(t, res.FrequencyAnalysis)
				assert.Equal(t, domain.Count(3), res.FrequencyAnalysis.TotalLinks)
				assert.Equal(t, "Alice, Bob", res.FrequencyAnalysis.MostActiveParticipant)
				assert.Equal(t, []string{"x"}, res.Insights)
			},
		},
		{
			name:  "typical flow as a list",
			reply: `{"Patterns":{"FrequentContributors":["Alice"],"TypicalFlow":["Alice shares","Bob replies"]}}`,
			check: func(t *testing.T, res domain.Result) {
				require.NotNil(t, res.Patterns)
				assert.Equal(t, "Alice shares, Bob replies", res.Patterns.TypicalFlow)
			},
		},
		{
			name:  "insights as a string",
			reply: `{"Insights":"The group plans trips."}`,
			check: func(t *testing.T, res domain.Result) {
				assert.Equal(t, []string{"The group plans trips."}, res.Insights)
			},
		},
		{
			name:  "count not a number",
			reply: `{"FrequencyAnalysis":{"TotalLinks":"N/A","TotalQuotes":"2"}}`,
			check: func(t *testing.T, res domain.Result) {
				require.NotNil(t, res.FrequencyAnalysis)
				assert.Equal(t, domain.Count(0), res.FrequencyAnalysis.TotalLinks)
				assert.Equal(t, domain.Count(2), res.FrequencyAnalysis.TotalQuotes)
			},
		},
		{
			name:  "top level array",
			reply: `[1,2]`,
			check: func(t *testing.T, res domain.Result) {
				assert.True(t, res.IsEmpty())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{replies: []reply{{content: "{}"}, {content: tt.reply}}}
			res, err := NewService(fc, nil).Analyze(context.Background(), "chat")
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestAnalyze_RejectsConcurrentCall(t *testing.T) {
	fc := &fakeClient{
		replies: []reply{{content: "{}"}, {content: "{}"}},
		block:   make(chan struct{}),
	}
	svc := NewService(fc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, svc.Analyzing, timeout, tick)

	_, err := svc.Analyze(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)

	close(fc.block)
	require.NoError(t, <-done)
	require.Len(t, fc.prompts, 2)
	for _, p := range fc.prompts {
		assert.False(t, strings.Contains(p, "second"))
	}
}

func TestAnalyze_IgnoresCallerCancellation(t *testing.T) {
	fc := &fakeClient{replies: []reply{{content: "{}"}, {content: `{"Themes":["x"]}`}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewService(&ctxCheckingClient{fakeClient: fc, t: t}, nil).Analyze(ctx, "chat")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Themes)
}

type ctxCheckingClient struct {
	*fakeClient
	t *testing.T
}

func (c *ctxCheckingClient) Complete(ctx context.Context, p string) (string, error) {
	assert.NoError(c.t, ctx.Err())
	return c.fakeClient.Complete(ctx, p)
}

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)
