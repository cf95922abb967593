package reportapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(
		server.URL+"/oauth/token",
		server.URL+"/reports/",
		server.URL+"/queries/{queryId}/results",
		"client-id",
		"client-secret",
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("client_id") != "client-id" || r.PostForm.Get("client_secret") != "client-secret" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-123", "token_type": "Bearer"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"token_type": "Bearer"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Authenticate(context.Background()); err == nil {
		t.Fatalf("expected error when access_token is missing")
	}
}

func TestAuthenticateNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.Authenticate(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error; got %v", err)
	}
}

func TestFetchReportHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-123"})
		case "/reports/Staging by Report":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
				t.Fatalf("unexpected auth header %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"report_id": "2", "name": "Staging by Report", "query_id": "q-2",
			})
		case "/reports/No Query Report":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"report_id": "3", "name": "No Query Report",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	handle, err := client.FetchReportHandle(context.Background(), "Staging by Report")
	if err != nil {
		t.Fatalf("FetchReportHandle: %v", err)
	}
	if handle.QueryId != "q-2" {
		t.Fatalf("expected query id q-2; got %q", handle.QueryId)
	}

	// A handle without a query id is unusable and must error.
	if _, err := client.FetchReportHandle(context.Background(), "No Query Report"); err == nil {
		t.Fatalf("expected error for report with no query id")
	}
	if _, err := client.FetchReportHandle(context.Background(), "No Such Report"); err == nil {
		t.Fatalf("expected error for unknown report name")
	}
}

func TestFetchResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-123"})
		case "/queries/q-2/results":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"rows": []map[string]interface{}{
					{"inventory_items.line_item_id": "1"},
					{"inventory_items.line_item_id": "2"},
				},
			})
		case "/queries/q-3/results":
			// Row array returned directly, no envelope.
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{"inventory_items.line_item_id": "3"},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	rows, err := client.FetchResults(context.Background(), "q-2")
	if err != nil {
		t.Fatalf("FetchResults: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows; got %d", len(rows))
	}

	rows, err = client.FetchResults(context.Background(), "q-3")
	if err != nil {
		t.Fatalf("FetchResults (bare array): %v", err)
	}
	if len(rows) != 1 || rows[0]["inventory_items.line_item_id"] != "3" {
		t.Fatalf("unexpected bare array rows: %v", rows)
	}
}

func TestFetchResultsRequiresAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.FetchResults(context.Background(), "q-2"); err == nil {
		t.Fatalf("expected error before Authenticate")
	}
}
