package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", slog.New(slog.NewTextHandler(io.Discard, nil)), WithHTTPClient(srv.Client())), &hits
}

type countingTransport struct {
	calls int32
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.next.RoundTrip(r)
}

func TestWithHTTPClientIsUsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"summary": "ok"})
	}))
	t.Cleanup(srv.Close)

	rt := &countingTransport{next: srv.Client().Transport}
	client := New(srv.URL, nil, WithHTTPClient(&http.Client{Transport: rt}))

	got, err := client.SummarizeText(context.Background(), SummaryRequest{Text: "Some text.", Method: MethodExtractive, Length: LengthShort})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rt.calls))
}

func TestSummarizeText(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, EndpointSummarizeText, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello world. This is a test.", body["text"])
		assert.Equal(t, "extractive", body["method"])
		assert.Equal(t, "short", body["length"])
		// useOpenAI travels as a JSON boolean
		assert.Equal(t, false, body["useOpenAI"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"Hello world."}`))
	})

	summary, err := client.SummarizeText(context.Background(), SummaryRequest{
		Text:   "Hello world. This is a test.",
		Method: MethodExtractive,
		Length: LengthShort,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello world.", summary)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestAskQuestion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EndpointAskQuestion, r.URL.Path)
		var req QARequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, QARequest{Context: "Hello world.", Question: "What is X?"}, req)
		_, _ = w.Write([]byte(`{"answer":"X is a letter."}`))
	})

	answer, err := client.AskQuestion(context.Background(), QARequest{Context: "Hello world.", Question: "What is X?"})

	require.NoError(t, err)
	assert.Equal(t, "X is a letter.", answer)
}

func TestUploadSendsMultipartFields(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		call     func(*Client, Upload) (string, error)
	}{
		{
			name:     "pdf",
			endpoint: EndpointUploadPDF,
			call: func(c *Client, up Upload) (string, error) {
				return c.UploadPDF(context.Background(), up)
			},
		},
		{
			name:     "document",
			endpoint: EndpointUploadDocument,
			call: func(c *Client, up Upload) (string, error) {
				return c.UploadDocument(context.Background(), up)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.endpoint, r.URL.Path)
				require.NoError(t, r.ParseMultipartForm(1<<20))

				file, header, err := r.FormFile("file")
				require.NoError(t, err)
				defer file.Close()
				content, _ := io.ReadAll(file)
				assert.Equal(t, "report.bin", header.Filename)
				assert.Equal(t, "payload", string(content))

				assert.Equal(t, "abstractive", r.FormValue("method"))
				assert.Equal(t, "detailed", r.FormValue("length"))
				// useOpenAI travels as a string in form fields
				assert.Equal(t, "true", r.FormValue("useOpenAI"))

				_, _ = w.Write([]byte(`{"summary":"uploaded"}`))
			})

			summary, err := tt.call(client, Upload{
				Filename:  "report.bin",
				Data:      []byte("payload"),
				Method:    MethodAbstractive,
				Length:    LengthDetailed,
				UseOpenAI: true,
			})

			require.NoError(t, err)
			assert.Equal(t, "uploaded", summary)
		})
	}
}

func TestNonSuccessStatusIsNetworkError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				// A well-formed body must not rescue a failing status.
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"summary":"looks fine"}`))
			})

			summary, err := client.SummarizeText(context.Background(), SummaryRequest{
				Text:   "some text",
				Method: MethodExtractive,
			})

			assert.Empty(t, summary)
			var ne *NetworkError
			require.True(t, errors.As(err, &ne), "expected NetworkError, got %v", err)
			assert.Equal(t, status, ne.StatusCode)
			assert.Equal(t, EndpointSummarizeText, ne.Endpoint)
		})
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, nil)
	_, err := client.AskQuestion(context.Background(), QARequest{Context: "c", Question: "q?"})

	assert.True(t, IsNetworkError(err))
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Zero(t, ne.StatusCode)
}

func TestUndecodableBodyIsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.AskQuestion(context.Background(), QARequest{Context: "c", Question: "q?"})

	assert.True(t, IsNetworkError(err))
}

func TestCanceledContextIsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"late"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.AskQuestion(ctx, QARequest{Context: "c", Question: "q?"})

	require.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidationShortCircuits(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	})
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() error
		wantField string
	}{
		{
			name: "blank text",
			call: func() error {
				_, err := client.SummarizeText(ctx, SummaryRequest{Text: "  \n\t", Method: MethodExtractive})
				return err
			},
			wantField: "Text",
		},
		{
			name: "unknown method",
			call: func() error {
				_, err := client.SummarizeText(ctx, SummaryRequest{Text: "text", Method: "magic"})
				return err
			},
			wantField: "Method",
		},
		{
			name: "unknown length",
			call: func() error {
				_, err := client.SummarizeText(ctx, SummaryRequest{Text: "text", Method: MethodExtractive, Length: "epic"})
				return err
			},
			wantField: "Length",
		},
		{
			name: "blank question",
			call: func() error {
				_, err := client.AskQuestion(ctx, QARequest{Context: "c", Question: "   "})
				return err
			},
			wantField: "Question",
		},
		{
			name: "missing file",
			call: func() error {
				_, err := client.UploadPDF(ctx, Upload{Filename: "a.pdf", Method: MethodExtractive, Length: LengthMedium})
				return err
			},
			wantField: "Data",
		},
		{
			name: "missing filename",
			call: func() error {
				_, err := client.UploadDocument(ctx, Upload{Data: []byte("x"), Method: MethodExtractive, Length: LengthMedium})
				return err
			},
			wantField: "Filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.NotEmpty(t, ve.Message)
			assert.False(t, IsNetworkError(err))
		})
	}
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestValidateMessages(t *testing.T) {
	err := Validate(SummaryRequest{Text: "x", Method: "nope"})
	require.Error(t, err)
	assert.Equal(t, "method must be one of: extractive, abstractive", err.Error())

	err = Validate(QARequest{Question: ""})
	require.Error(t, err)
	assert.Equal(t, "question is required", err.Error())

	assert.NoError(t, Validate(SummaryRequest{Text: "x", Method: MethodAbstractive}))
}
