package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestValidToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  bool
	}{
		{"ExponentPushToken[xxxxxxxxxxxxxx]", true},
		{"ExponentPushToken[a]", true},
		{"ExponentPushToken[]", false},
		{"ExpoPushToken[xxxxxxxx]", false},
		{"ExponentPushToken[xxxxxxxx", false},
		{"xxxxxxxx", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidToken(tt.token); got != tt.want {
			t.Errorf("ValidToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestSendBatch(t *testing.T) {
	t.Parallel()

	t.Run("posts messages with auth header", func(t *testing.T) {
		t.Parallel()

		var (
			mu       sync.Mutex
			received []Message
			auth     string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var chunk []Message
			if err := json.NewDecoder(r.Body).Decode(&chunk); err != nil {
				t.Errorf("decode request: %v", err)
			}
			mu.Lock()
			received = append(received, chunk...)
			auth = r.Header.Get("Authorization")
			mu.Unlock()
			fmt.Fprint(w, `{"data":[]}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, "secret-key")
		err := client.SendBatch(context.Background(), []Message{
			{To: "ExponentPushToken[aaa]", Title: "Game on!", Body: "confirmed"},
			{To: "ExponentPushToken[bbb]", Title: "Game on!", Body: "confirmed"},
		})
		if err != nil {
			t.Fatalf("SendBatch: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(received) != 2 {
			t.Errorf("provider received %d messages, want 2", len(received))
		}
		if auth != "Bearer secret-key" {
			t.Errorf("Authorization = %q, want bearer key", auth)
		}
	})

	t.Run("splits oversized batches", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			calls int
			total int
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var chunk []Message
			if err := json.NewDecoder(r.Body).Decode(&chunk); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if len(chunk) > chunkSize {
				t.Errorf("chunk of %d messages exceeds provider limit %d", len(chunk), chunkSize)
			}
			mu.Lock()
			calls++
			total += len(chunk)
			mu.Unlock()
			fmt.Fprint(w, `{"data":[]}`)
		}))
		defer server.Close()

		messages := make([]Message, chunkSize+25)
		for i := range messages {
			messages[i] = Message{To: fmt.Sprintf("ExponentPushToken[m%d]", i), Title: "t", Body: "b"}
		}

		client := NewClient(server.URL, "")
		if err := client.SendBatch(context.Background(), messages); err != nil {
			t.Fatalf("SendBatch: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if calls != 2 {
			t.Errorf("provider calls = %d, want 2", calls)
		}
		if total != len(messages) {
			t.Errorf("provider received %d messages, want %d", total, len(messages))
		}
	})

	t.Run("non-2xx fails the whole call", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		err := client.SendBatch(context.Background(), []Message{{To: "ExponentPushToken[aaa]"}})
		if err == nil {
			t.Fatal("expected an error for status 502")
		}
		if !strings.Contains(err.Error(), "502") {
			t.Errorf("error %q does not mention the provider status", err)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		client := NewClient("http://127.0.0.1:0", "")
		if err := client.SendBatch(context.Background(), nil); err != nil {
			t.Fatalf("SendBatch(nil): %v", err)
		}
	})
}
