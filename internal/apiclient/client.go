package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// Client talks to the summarization service over HTTP. It never retries
// and sets no timeout of its own; the caller's context is the only way to
// stop waiting.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client against baseURL (scheme, host and port only).
func New(baseURL string, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SummarizeText(ctx context.Context, req SummaryRequest) (string, error) {
	if err := Validate(req); err != nil {
		return "", err
	}
	var out summaryResponse
	if err := c.postJSON(ctx, EndpointSummarizeText, req, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *Client) AskQuestion(ctx context.Context, req QARequest) (string, error) {
	if err := Validate(req); err != nil {
		return "", err
	}
	var out answerResponse
	if err := c.postJSON(ctx, EndpointAskQuestion, req, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

func (c *Client) UploadPDF(ctx context.Context, up Upload) (string, error) {
	return c.upload(ctx, EndpointUploadPDF, up)
}

func (c *Client) UploadDocument(ctx context.Context, up Upload) (string, error) {
	return c.upload(ctx, EndpointUploadDocument, up)
}

func (c *Client) upload(ctx context.Context, endpoint string, up Upload) (string, error) {
	if err := Validate(up); err != nil {
		return "", err
	}
	body, contentType, err := encodeMultipart(up)
	if err != nil {
		return "", &NetworkError{Endpoint: endpoint, Err: err}
	}
	var out summaryResponse
	if err := c.send(ctx, endpoint, body, contentType, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: fmt.Errorf("marshal payload: %w", err)}
	}
	return c.send(ctx, endpoint, bytes.NewReader(body), "application/json", out)
}

// send issues one POST and decodes a JSON body into out. Every failure mode
// collapses into a *NetworkError.
func (c *Client) send(ctx context.Context, endpoint string, body io.Reader, contentType string, out any) error {
	log := c.log.With("endpoint", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("request failed", "err", err)
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for diagnostics only.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Error("unexpected status", "status", resp.StatusCode, "body", string(snippet))
		return &NetworkError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response", "err", err)
		return &NetworkError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	log.Debug("request succeeded", "status", resp.StatusCode)
	return nil
}

func encodeMultipart(up Upload) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile("file", up.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, "", err
	}
	fields := []struct{ name, value string }{
		{"method", string(up.Method)},
		{"length", string(up.Length)},
		{"useOpenAI", strconv.FormatBool(up.UseOpenAI)},
	}
	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}
