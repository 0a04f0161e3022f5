package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummaryPrompt(t *testing.T) {
	tests := []struct {
		name string
		opts SummaryOptions
		want string
	}{
		{
			name: "extractive short",
			opts: SummaryOptions{Method: "extractive", Length: "short"},
			want: "Extract the most important sentences from this article. Provide a very brief summary in 2-3 sentences.\n\nBODY",
		},
		{
			name: "abstractive detailed",
			opts: SummaryOptions{Method: "abstractive", Length: "detailed"},
			want: "Provide a detailed summary of the following article. Provide a detailed summary covering all key points.\n\nBODY",
		},
		{
			name: "unknown method falls back to abstractive",
			opts: SummaryOptions{Method: "other", Length: "medium"},
			want: "Provide a medium summary of the following article. Provide a concise summary in about 1-2 paragraphs.\n\nBODY",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSummaryPrompt("BODY", tt.opts))
		})
	}
}

func TestBuildAnswerPrompt(t *testing.T) {
	assert.Equal(t, "Context:\nctx\n\nQuestion: why?", BuildAnswerPrompt("ctx", "why?"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "héé...", Truncate("hééllo", 3))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "", "", 100)
	assert.Error(t, err)
}

func TestOpenAIClientSummarize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","created":0,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"A summary."}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("test-key", srv.URL, "test-model", 5)
	require.NoError(t, err)

	summary, err := client.Summarize(context.Background(), "0123456789", SummaryOptions{Method: "extractive", Length: "short"})
	require.NoError(t, err)
	assert.Equal(t, "A summary.", summary)

	assert.Equal(t, "test-model", got["model"])
	assert.EqualValues(t, 1000, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.True(t, strings.HasSuffix(user["content"].(string), "\n\n01234..."))
}

func TestOpenAIClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","created":0,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("k", srv.URL, "m", 0)
	require.NoError(t, err)

	_, err = client.Answer(context.Background(), "ctx", "q")
	assert.ErrorContains(t, err, "no choices")
}
