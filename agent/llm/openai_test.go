package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
	openrouterx "github.com/tanpawarit/transfer-orchestrator/pkg/openrouter"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"ok\": true}"}
  }]
}`

func newTestChatModel(t *testing.T, url string) *OpenAIChatModel {
	t.Helper()

	client := openrouterx.NewClient(openrouterx.Config{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
	if client == nil {
		t.Fatal("client must not be nil")
	}
	m, err := NewOpenAIChatModel(client, "gpt-4o-mini", 256)
	if err != nil {
		t.Fatalf("NewOpenAIChatModel() error = %v", err)
	}
	return m
}

func TestOpenAIChatModelJSONObject(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	m := newTestChatModel(t, srv.URL)
	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("usr"),
	}, einomodel.WithTemperature(0.5))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out.Role != schema.Assistant || out.Content != `{"ok": true}` {
		t.Fatalf("unexpected message: %+v", out)
	}

	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %v", body["model"])
	}
	if body["temperature"] != 0.5 {
		t.Fatalf("unexpected temperature: %v", body["temperature"])
	}
	if body["max_completion_tokens"] != float64(256) {
		t.Fatalf("unexpected max tokens: %v", body["max_completion_tokens"])
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected two messages, got %v", body["messages"])
	}
}

func TestOpenAIChatModelWrapsFailureWithoutRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestChatModel(t, srv.URL).Generate(context.Background(), []*schema.Message{schema.UserMessage("usr")})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestOpenAIChatModelEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`))
	}))
	defer srv.Close()

	_, err := newTestChatModel(t, srv.URL).Generate(context.Background(), []*schema.Message{schema.UserMessage("usr")})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestOpenAIChatModelRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	m := newTestChatModel(t, "http://127.0.0.1:1")
	_, err := m.Generate(context.Background(), []*schema.Message{schema.ToolMessage("x", "call-1")})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOpenAIChatModelStreamsSingleChunk(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	sr, err := newTestChatModel(t, srv.URL).Stream(context.Background(), []*schema.Message{schema.UserMessage("usr")})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer sr.Close()

	chunk, err := sr.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if chunk.Content != `{"ok": true}` {
		t.Fatalf("unexpected chunk: %q", chunk.Content)
	}
	if _, err := sr.Recv(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the single chunk, got %v", err)
	}
}
