package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"librarycatalog/internal/app"
	"librarycatalog/internal/ratelimit"
	"librarycatalog/pkg/ai"
	"librarycatalog/pkg/domain"
	"librarycatalog/pkg/store"

	"github.com/alicebob/miniredis/v2"
)

func newTestServer(t *testing.T, gen ai.Generator, limiter *ratelimit.FixedWindowLimiter) (*httptest.Server, *app.App) {
	t.Helper()
	if gen == nil {
		gen = generatorFunc(func(prompt string) (string, error) { return "ok", nil })
	}
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore(), Generator: gen})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := httptest.NewServer(New(Config{App: appCore, ChatLimiter: limiter}).Router())
	t.Cleanup(srv.Close)
	return srv, appCore
}

type generatorFunc func(prompt string) (string, error)

func (f generatorFunc) Generate(_ context.Context, prompt string) (string, error) { return f(prompt) }

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func TestCreateBookThenDuplicateRejected(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	payload := map[string]any{"title": "Dune", "author": "Frank Herbert", "year": 1965, "genre": "Sci-Fi"}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/books", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	var created domain.Book
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", created)
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/books", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d", resp.StatusCode)
	}
	var errBody map[string]string
	if err := json.Unmarshal(body, &errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] != "Book already exists" {
		t.Fatalf(`error = %q, want "Book already exists"`, errBody["error"])
	}
}

func TestCreateBookMissingFields(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/books", map[string]any{"title": "Dune"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var errBody map[string]string
	_ = json.Unmarshal(body, &errBody)
	if errBody["error"] != "Title and author are required" {
		t.Fatalf(`error = %q`, errBody["error"])
	}
}

func TestGetUnknownBookReturns404(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	for _, path := range []string{"/books/99999", "/books/not-a-number"} {
		resp, body := doJSON(t, http.MethodGet, srv.URL+path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
		var errBody map[string]string
		_ = json.Unmarshal(body, &errBody)
		if errBody["error"] != "Book not found" {
			t.Fatalf("%s error = %q", path, errBody["error"])
		}
	}
}

func TestListBooksReturnsArray(t *testing.T) {
	srv, appCore := newTestServer(t, nil, nil)
	if err := appCore.SeedCatalog(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/books", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var books []domain.Book
	if err := json.Unmarshal(body, &books); err != nil {
		t.Fatalf("decode list: %v (body %s)", err, body)
	}
	if len(books) != len(store.SeedBooks) {
		t.Fatalf("list size = %d, want %d", len(books), len(store.SeedBooks))
	}
}

func TestUpdateBookPartialPatch(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	_, body := doJSON(t, http.MethodPost, srv.URL+"/books",
		map[string]any{"title": "Dune", "author": "Frank Herbert", "year": 1965, "genre": "Sci-Fi"})
	var created domain.Book
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	resp, body := doJSON(t, http.MethodPut, fmt.Sprintf("%s/books/%d", srv.URL, created.ID),
		map[string]any{"year": 2000})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, body %s", resp.StatusCode, body)
	}
	var updated domain.Book
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Year != 2000 {
		t.Fatalf("year = %d, want 2000", updated.Year)
	}
	if updated.Title != "Dune" || updated.Author != "Frank Herbert" || updated.Genre != "Sci-Fi" {
		t.Fatalf("other fields changed: %+v", updated)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/books/99999", map[string]any{"year": 2000})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown id update status = %d", resp.StatusCode)
	}
}

func TestDeleteBook(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	_, body := doJSON(t, http.MethodPost, srv.URL+"/books",
		map[string]any{"title": "The Hobbit", "author": "J.R.R. Tolkien"})
	var created domain.Book
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	url := fmt.Sprintf("%s/books/%d", srv.URL, created.ID)
	resp, body := doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if len(body) != 0 {
		t.Fatalf("delete body not empty: %s", body)
	}
	resp, _ = doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d", resp.StatusCode)
	}
}

func TestChatForwardsToUpstreamAndNormalizesReply(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Inputs == "" {
			t.Errorf("empty inputs forwarded")
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "A desert planet saga."}})
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, ai.NewInferenceClient(upstream.URL, "", time.Second), nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/chat", map[string]any{
		"message": "Summarize this",
		"book":    map[string]any{"title": "Dune", "author": "Frank Herbert", "year": 1965, "genre": "Sci-Fi"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d, body %s", resp.StatusCode, body)
	}
	var chat domain.ChatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if chat.Response != "A desert planet saga." {
		t.Fatalf("response = %q", chat.Response)
	}
}

func TestChatMalformedUpstreamShapeYieldsFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, ai.NewInferenceClient(upstream.URL, "", time.Second), nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/chat", map[string]any{"message": "Summarize this"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d", resp.StatusCode)
	}
	var chat domain.ChatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if chat.Response != "No response generated or API response structure changed" {
		t.Fatalf("fallback mismatch: %q", chat.Response)
	}
}

func TestChatUpstreamFailureReturns500WithMessage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer upstream.Close()

	srv, _ := newTestServer(t, ai.NewInferenceClient(upstream.URL, "", time.Second), nil)
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/chat", map[string]any{"message": "hi"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("chat status = %d", resp.StatusCode)
	}
	var errBody map[string]string
	_ = json.Unmarshal(body, &errBody)
	if errBody["error"] == "" {
		t.Fatalf("expected error message, body %s", body)
	}
}

func TestChatRateLimited(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(redis.Addr(), "", "test:chat", 1, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	srv, _ := newTestServer(t, nil, limiter)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/chat", map[string]any{"message": "hi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first chat status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/chat", map[string]any{"message": "hi"})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second chat status = %d, want 429", resp.StatusCode)
	}
}
