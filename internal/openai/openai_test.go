package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heritage-bijoux/appraiser/internal/providers"
)

func TestExtractTextSendsImages(t *testing.T) {
	var received struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string        `json:"role"`
			Content []contentPart `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"title\":\"Bague\"}"}}]}`))
	}))
	defer server.Close()

	o := New()
	o.BaseURL = server.URL
	o.APIKey = "test-key"

	got, err := o.ExtractText(context.Background(), providers.Config{
		Model:  "gpt-4o",
		Prompt: "Décris",
		Images: [][]byte{[]byte("jpg")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"title":"Bague"}` {
		t.Errorf("unexpected text %q", got)
	}

	if received.Model != "gpt-4o" || len(received.Messages) != 1 {
		t.Fatalf("unexpected request %+v", received)
	}
	parts := received.Messages[0].Content
	if len(parts) != 2 || parts[0].Text != "Décris" {
		t.Fatalf("unexpected content parts %+v", parts)
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/jpeg;base64,anBn" {
		t.Errorf("unexpected image part %+v", parts[1])
	}
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: providers.ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			o := New()
			o.BaseURL = server.URL
			o.APIKey = "k"
			_, err := o.ExtractText(context.Background(), providers.Config{Model: "gpt-4o"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
