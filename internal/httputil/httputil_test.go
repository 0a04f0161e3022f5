package httputil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestDecodeJSON(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		body       string
		wantFields map[string]string
		wantErr    bool
	}{
		{name: "valid", body: `{"name":"x","kind":"a"}`},
		{name: "missing name", body: `{"kind":"a"}`, wantFields: map[string]string{"Name": "is required"}},
		{name: "bad kind", body: `{"name":"x","kind":"c"}`, wantFields: map[string]string{"Kind": "must be one of: a, b"}},
		{name: "malformed", body: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := v.DecodeJSON(r, &p)

			switch {
			case tt.wantFields != nil:
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantFields, ve.Fields)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "is required", "a": "is required"}}
	assert.Equal(t, "validation failed: a: is required; b: is required", err.Error())
}

func TestRecovererReturns500(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recoverer(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(slog.New(slog.DiscardHandler))(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
