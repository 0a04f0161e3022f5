package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"doc-summarizer/internal/app"
	"doc-summarizer/internal/cache"
	"doc-summarizer/internal/extract"
	"doc-summarizer/internal/httputil"
	"doc-summarizer/internal/llm"
)

// Minimum trimmed input length worth sending to the model.
const minInputChars = 10

const (
	msgTextTooShort     = "Text too short for meaningful summarization"
	msgPDFTooShort      = "Could not extract sufficient text from the PDF file."
	msgDocumentTooShort = "Document text too short for meaningful summarization"
	msgUnsupportedDoc   = "Unsupported document type. Please upload a .txt or .docx file."
)

type summarizeTextRequest struct {
	Text      string `json:"text"`
	Method    string `json:"method" validate:"required,oneof=extractive abstractive"`
	Length    string `json:"length" validate:"omitempty,oneof=short medium detailed"`
	UseOpenAI *bool  `json:"useOpenAI"`
}

type uploadForm struct {
	Method string `validate:"required,oneof=extractive abstractive"`
	Length string `validate:"omitempty,oneof=short medium detailed"`
}

type askQuestionRequest struct {
	Context  string `json:"context"`
	Question string `json:"question" validate:"required"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

func main() {
	deps, err := app.BuildServer(os.Stdout)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		deps.Log.Info("summarization server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
	}
}

func newRouter(deps app.ServerDeps) chi.Router {
	v := httputil.NewValidator()
	r := httputil.NewRouter(deps.Log, 2*time.Minute)

	r.Post("/summarize-text", summarizeTextHandler(deps, v))
	r.Post("/upload-pdf", uploadPDFHandler(deps, v))
	r.Post("/upload-document", uploadDocumentHandler(deps, v))
	r.Post("/ask-question", askQuestionHandler(deps, v))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

func summarizeTextHandler(deps app.ServerDeps, v *httputil.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeTextRequest
		if err := v.DecodeJSON(r, &req); err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}
		deps.Log.Info("summarize text", "method", req.Method, "length", req.Length, "chars", len(req.Text))

		if len(strings.TrimSpace(req.Text)) < minInputChars {
			httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: msgTextTooShort})
			return
		}
		summary, err := summarize(r.Context(), deps, req.Text, llm.SummaryOptions{Method: req.Method, Length: lengthOrDefault(req.Length)})
		if err != nil {
			httputil.Fail(deps.Log, w, "summarization failed", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: summary})
	}
}

func uploadPDFHandler(deps app.ServerDeps, v *httputil.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, content, opts, ok := readUpload(deps, v, w, r)
		if !ok {
			return
		}
		text, err := extract.PDFText(content)
		if err != nil {
			httputil.Fail(deps.Log.With("filename", filename), w, "could not read PDF file", err, http.StatusBadRequest)
			return
		}
		if len(strings.TrimSpace(text)) < minInputChars {
			deps.Log.Warn("extracted PDF text too short", "filename", filename)
			httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: msgPDFTooShort})
			return
		}
		deps.Log.Info("extracted PDF text", "filename", filename, "chars", len(text))

		summary, err := summarize(r.Context(), deps, text, opts)
		if err != nil {
			httputil.Fail(deps.Log, w, "summarization failed", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: summary})
	}
}

func uploadDocumentHandler(deps app.ServerDeps, v *httputil.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, content, opts, ok := readUpload(deps, v, w, r)
		if !ok {
			return
		}
		text, err := extract.DocumentText(filename, content)
		if errors.Is(err, extract.ErrUnsupportedType) {
			deps.Log.Warn("unsupported document type", "filename", filename)
			httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: msgUnsupportedDoc})
			return
		}
		if err != nil {
			httputil.Fail(deps.Log.With("filename", filename), w, "could not read document", err, http.StatusBadRequest)
			return
		}
		if len(strings.TrimSpace(text)) < minInputChars {
			deps.Log.Warn("document text too short", "filename", filename)
			httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: msgDocumentTooShort})
			return
		}

		summary, err := summarize(r.Context(), deps, text, opts)
		if err != nil {
			httputil.Fail(deps.Log, w, "summarization failed", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summaryResponse{Summary: summary})
	}
}

func askQuestionHandler(deps app.ServerDeps, v *httputil.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askQuestionRequest
		if err := v.DecodeJSON(r, &req); err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		key := cache.Key("answer", req.Context, req.Question)
		if cached, ok := cacheGet(ctx, deps, key); ok {
			httputil.WriteJSON(w, http.StatusOK, answerResponse{Answer: cached})
			return
		}

		answer, err := deps.LLM.Answer(ctx, req.Context, req.Question)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to answer question", err, http.StatusInternalServerError)
			return
		}
		cacheSet(ctx, deps, key, answer)
		httputil.WriteJSON(w, http.StatusOK, answerResponse{Answer: answer})
	}
}

// readUpload parses the multipart body shared by both upload endpoints. On
// failure it has already written the response.
func readUpload(deps app.ServerDeps, v *httputil.Validator, w http.ResponseWriter, r *http.Request) (string, []byte, llm.SummaryOptions, bool) {
	maxSize := deps.Config.MaxUploadSize
	if r.ContentLength > maxSize {
		httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxSize), nil, http.StatusBadRequest)
		return "", nil, llm.SummaryOptions{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
		return "", nil, llm.SummaryOptions{}, false
	}
	defer file.Close()

	form := uploadForm{Method: r.FormValue("method"), Length: r.FormValue("length")}
	if err := v.Validate(form); err != nil {
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
		return "", nil, llm.SummaryOptions{}, false
	}

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
		return "", nil, llm.SummaryOptions{}, false
	}
	deps.Log.Info("received upload", "filename", header.Filename, "bytes", len(content), "method", form.Method, "length", form.Length)
	return header.Filename, content, llm.SummaryOptions{Method: form.Method, Length: lengthOrDefault(form.Length)}, true
}

func summarize(ctx context.Context, deps app.ServerDeps, text string, opts llm.SummaryOptions) (string, error) {
	key := cache.Key("summary", text, opts.Method, opts.Length)
	if cached, ok := cacheGet(ctx, deps, key); ok {
		return cached, nil
	}
	summary, err := deps.LLM.Summarize(ctx, text, opts)
	if err != nil {
		return "", err
	}
	cacheSet(ctx, deps, key, summary)
	return summary, nil
}

// Cache failures are logged and otherwise ignored.
func cacheGet(ctx context.Context, deps app.ServerDeps, key string) (string, bool) {
	val, ok, err := deps.Cache.Get(ctx, key)
	if err != nil {
		deps.Log.Warn("cache read failed", "err", err)
		return "", false
	}
	if ok {
		deps.Log.Debug("cache hit", "key", key)
	}
	return val, ok
}

func cacheSet(ctx context.Context, deps app.ServerDeps, key, val string) {
	ttl := time.Duration(deps.Config.CacheTTL) * time.Second
	if err := deps.Cache.Set(ctx, key, val, ttl); err != nil {
		deps.Log.Warn("cache write failed", "err", err)
	}
}

func lengthOrDefault(length string) string {
	if length == "" {
		return "medium"
	}
	return length
}
