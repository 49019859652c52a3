package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteJSONReturnsContent(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"score\":42}"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "test-model"})
	content, err := client.CompleteJSON(context.Background(), "system", "user", 0.2)
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"score":42}` {
		t.Fatalf("unexpected content %q", content)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody.Model != "test-model" {
		t.Fatalf("unexpected model %q", gotBody.Model)
	}
	if gotBody.Temperature != 0.2 {
		t.Fatalf("unexpected temperature %v", gotBody.Temperature)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", gotBody.Messages)
	}
	if gotBody.ResponseFormat["type"] != jsonResponseType {
		t.Fatalf("expected json response_format, got %+v", gotBody.ResponseFormat)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user", 0); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestCompleteJSONNoRetryByDefault(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "server busy", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user", 0); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestCompleteJSONRetriesWhenConfigured(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "key", BaseURL: server.URL, Model: "m", RetryAttempts: 3},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(10*time.Millisecond, 100*time.Millisecond),
	)
	content, err := client.CompleteJSON(context.Background(), "system", "user", 0)
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(slept))
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "key", BaseURL: server.URL, Model: "m", RetryAttempts: 3},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.CompleteJSON(context.Background(), "system", "user", 0); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected no retries on 4xx, got %d attempts", calls)
	}
}

func TestCompleteJSONAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model offline"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	_, err := client.CompleteJSON(context.Background(), "system", "user", 0)
	if err == nil || !strings.Contains(err.Error(), "model offline") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	type parsed struct {
		Score int `json:"score"`
	}

	cases := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "plain", content: `{"score":7}`, want: 7},
		{name: "fenced", content: "```json\n{\"score\":7}\n```", want: 7},
		{name: "fenced no language", content: "```\n{\"score\":7}\n```", want: 7},
		{name: "leading prose", content: "Here is the result:\n{\"score\":7}", want: 7},
		{name: "empty", content: "   ", wantErr: true},
		{name: "not json", content: "no structure here", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out parsed
			err := DecodeLLMJSON(tc.content, &out)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeLLMJSON: %v", err)
			}
			if out.Score != tc.want {
				t.Fatalf("score = %d, want %d", out.Score, tc.want)
			}
		})
	}
}

func TestSummarizePayloadSnippet(t *testing.T) {
	long := strings.Repeat("x", 400)
	snippet := summarizePayloadSnippet(long)
	if len(snippet) > 170 {
		t.Fatalf("snippet too long: %d", len(snippet))
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Fatalf("expected truncated snippet, got %q", snippet)
	}
	if summarizePayloadSnippet("  ") != "<empty>" {
		t.Fatal("expected <empty> marker")
	}
}
