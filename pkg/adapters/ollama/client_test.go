package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInfer(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: `{"intent": "SET_ALARM"}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "qwen2.5:3b")
	out, err := c.Infer(context.Background(), "wake me at 7", "classify this")
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if out != `{"intent": "SET_ALARM"}` {
		t.Errorf("out = %q", out)
	}

	if got.Model != "qwen2.5:3b" || got.Stream {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "wake me at 7" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Format != nil {
		t.Errorf("free text request must not set format, got %s", got.Format)
	}
}

func TestInferWithGrammar_EnablesJSONMode(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "{}"}, Done: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "m")
	if _, err := c.InferWithGrammar(context.Background(), "p", "s", "risk.gbnf"); err != nil {
		t.Fatalf("InferWithGrammar: %v", err)
	}
	if string(got.Format) != `"json"` {
		t.Errorf("format = %s", got.Format)
	}
}

func TestInfer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "nope")
	if _, err := c.Infer(context.Background(), "p", ""); err == nil {
		t.Fatal("non-200 must error")
	}
}

func TestIsModelReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	if !New(srv.URL, "m").IsModelReady(context.Background()) {
		t.Error("reachable server reported not ready")
	}

	srv.Close()
	if New(srv.URL, "m").IsModelReady(context.Background()) {
		t.Error("closed server reported ready")
	}
}
