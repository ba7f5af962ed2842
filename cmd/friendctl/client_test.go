package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
)

func testClient(srv *httptest.Server) *resty.Client {
	return resty.New().SetBaseURL(srv.URL)
}

func TestRunAddMemory(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/memories" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := runAddMemory(testClient(srv), "elder-1", "had tea", "", &out); err != nil {
		t.Fatalf("runAddMemory: %v", err)
	}
	if gotBody["elderId"] != "elder-1" || gotBody["rawText"] != "had tea" {
		t.Fatalf("body = %v", gotBody)
	}
	if _, hasType := gotBody["type"]; hasType {
		t.Fatal("empty type must be omitted so the server classifies")
	}
	if !strings.Contains(out.String(), "m1") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunListMemories_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"memories":[],"count":0}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := runListMemories(testClient(srv), "elder-1", "story", "keys", 5, &out); err != nil {
		t.Fatalf("runListMemories: %v", err)
	}
	for _, want := range []string{"elderId=elder-1", "type=story", "tag=keys", "limit=5"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestCheckAndPrint_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Bad Request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := runAsk(testClient(srv), "", "?", &out)
	if err == nil || !strings.Contains(err.Error(), "http 400") {
		t.Fatalf("expected http 400 error, got %v", err)
	}
}
