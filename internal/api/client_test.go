package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("default client", func(t *testing.T) {
		c := NewClient("http://localhost:8080/api/", "test-token")
		if c.baseURL != "http://localhost:8080/api" {
			t.Errorf("baseURL = %v, want trailing slash trimmed", c.baseURL)
		}
		if c.token != "test-token" {
			t.Errorf("token = %v, want test-token", c.token)
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		c := NewClient(DefaultBaseURL, "", WithHTTPClient(custom))
		if c.httpClient != custom {
			t.Error("custom HTTP client not set")
		}
	})

	t.Run("with custom timeout", func(t *testing.T) {
		c := NewClient(DefaultBaseURL, "", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("timeout = %v, want 5s", c.httpClient.Timeout)
		}
	})

	t.Run("timeout leaves shared client alone", func(t *testing.T) {
		shared := &http.Client{Timeout: 10 * time.Second}
		c := NewClient(DefaultBaseURL, "", WithHTTPClient(shared), WithTimeout(2*time.Second))
		if shared.Timeout != 10*time.Second {
			t.Errorf("shared timeout = %v, want 10s", shared.Timeout)
		}
		if c.httpClient == shared || c.httpClient.Timeout != 2*time.Second {
			t.Errorf("client timeout = %v, want 2s on a copy", c.httpClient.Timeout)
		}
	})

	t.Run("timeout after nil HTTP client", func(t *testing.T) {
		c := NewClient(DefaultBaseURL, "", WithHTTPClient(nil), WithTimeout(3*time.Second))
		if c.httpClient == nil || c.httpClient.Timeout != 3*time.Second {
			t.Errorf("httpClient = %+v, want 3s timeout", c.httpClient)
		}
	})

	t.Run("with token copies", func(t *testing.T) {
		base := NewClient(DefaultBaseURL, "")
		authed := base.WithToken("abc")
		if base.token != "" {
			t.Error("WithToken mutated the original client")
		}
		if authed.token != "abc" {
			t.Errorf("token = %q, want abc", authed.token)
		}
		if authed.httpClient != base.httpClient {
			t.Error("WithToken should share the HTTP client")
		}
	})
}

func TestClient_Analyze(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("Authorization = %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
			var req AnalysisRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if req.Text != "some text to check" || !req.CheckParaphrasing {
				t.Errorf("body = %+v", req)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"similarityScore": 0.42,
				"aiDetected":      true,
				"aiConfidence":    0.9,
				"matchedSources": []map[string]any{
					{"url": "https://example.com", "similarityPercentage": 42.0, "matchedText": "some"},
				},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL+"/api", "test-token")
		res, err := c.Analyze(context.Background(), AnalysisRequest{Text: "some text to check", CheckParaphrasing: true})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.SimilarityScore != 0.42 || !res.AIDetected {
			t.Errorf("result = %+v", res)
		}
		if len(res.MatchedSources) != 1 || res.MatchedSources[0].URL != "https://example.com" {
			t.Errorf("sources = %+v", res.MatchedSources)
		}
	})

	t.Run("server error text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Server error: model offline"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "t")
		_, err := c.Analyze(context.Background(), AnalysisRequest{Text: "0123456789"})
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if apiErr.StatusCode != 500 || apiErr.Op != "Analyze" {
			t.Errorf("apiErr = %+v", apiErr)
		}
		if got := ServerMessage(err); got != "Server error: model offline" {
			t.Errorf("ServerMessage = %q", got)
		}
	})

	t.Run("non JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer server.Close()

		c := NewClient(server.URL, "t")
		_, err := c.Analyze(context.Background(), AnalysisRequest{Text: "0123456789"})
		if ServerMessage(err) != "" {
			t.Errorf("expected empty server message, got %q", ServerMessage(err))
		}
		if err.Error() != "Analyze: 502 Bad Gateway" {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := NewClient(server.URL, "good").Health(context.Background()); err != nil {
		t.Errorf("Health with valid token: %v", err)
	}

	err := NewClient(server.URL, "bad").Health(context.Background())
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestClient_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("size") != "10" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"content":[{"id":7,"searchQuery":"q","similarityScore":0.5,"status":"COMPLETED","createdAt":"2024-03-01T10:15:30"}],"totalElements":21,"totalPages":3,"currentPage":2,"size":10}`))
	}))
	defer server.Close()

	page, err := NewClient(server.URL, "t").History(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(page.Content) != 1 {
		t.Fatalf("content = %+v", page.Content)
	}
	item := page.Content[0]
	if item.ID != 7 || item.Status != StatusCompleted {
		t.Errorf("item = %+v", item)
	}
	if item.SimilarityScore == nil || *item.SimilarityScore != 0.5 {
		t.Errorf("similarityScore = %v", item.SimilarityScore)
	}
	if item.CreatedAt.Year() != 2024 || item.CreatedAt.Minute() != 15 {
		t.Errorf("createdAt = %v", item.CreatedAt)
	}
	if page.HasNext() || !page.HasPrev() {
		t.Errorf("HasNext=%v HasPrev=%v", page.HasNext(), page.HasPrev())
	}
}

func TestClient_HistoryEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	page, err := NewClient(server.URL, "t").History(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Content == nil || len(page.Content) != 0 {
		t.Errorf("expected empty non-nil content, got %#v", page.Content)
	}
}

func TestClient_HistorySources(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/history/42/sources" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.Write([]byte(`[{"title":"T","url":"https://a","similarityPercentage":12.5,"matchedText":"m"}]`))
		}))
		defer server.Close()

		sources, err := NewClient(server.URL, "t").HistorySources(context.Background(), 42)
		if err != nil {
			t.Fatalf("HistorySources: %v", err)
		}
		if len(sources) != 1 || sources[0].SimilarityPercentage != 12.5 {
			t.Errorf("sources = %+v", sources)
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "t").HistorySources(context.Background(), 1)
		if !IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send an Authorization header")
		}
		var req LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.Write([]byte(`{"message":"Invalid username or password","success":false}`))
			return
		}
		w.Write([]byte(`{"token":"jwt","type":"Bearer","user":{"id":1,"username":"ana"},"success":true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	resp, err := c.Login(context.Background(), LoginRequest{Username: "ana", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "jwt" || resp.User == nil || resp.User.Username != "ana" {
		t.Errorf("resp = %+v", resp)
	}

	_, err = c.Login(context.Background(), LoginRequest{Username: "ana", Password: "wrong"})
	if !errors.Is(err, ErrLoginRejected) {
		t.Fatalf("expected ErrLoginRejected, got %v", err)
	}
	if got := ServerMessage(err); got != "Invalid username or password" {
		t.Errorf("ServerMessage = %q", got)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, "t").Statistics(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an *Error, got %v", apiErr)
	}
}
