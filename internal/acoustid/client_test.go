package acoustid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/lookup" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.Form.Get("client") != "key" {
			t.Errorf("client = %q", r.Form.Get("client"))
		}
		if r.Form.Get("duration") != "214" {
			t.Errorf("duration = %q", r.Form.Get("duration"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"results": [
				{"id": "x", "score": 0.62, "recordings": [{"id": "rec-low", "title": "B", "artists": [{"name": "Low"}]}]},
				{"id": "y", "score": 0.98, "recordings": [{"id": "rec-high", "title": "A", "artists": [{"name": "First"}, {"name": "Second"}]}]}
			]
		}`))
	}))
	defer srv.Close()

	client, err := New("key", srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	matches, err := client.Lookup(context.Background(), "AQAD", 213.7)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].RecordingID != "rec-high" || matches[0].Score != 0.98 {
		t.Fatalf("best match = %+v", matches[0])
	}
	if matches[0].Artist != "First; Second" {
		t.Fatalf("artist = %q", matches[0].Artist)
	}
}

func TestLookupServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "error": {"message": "invalid API key"}}`))
	}))
	defer srv.Close()

	client, _ := New("key", srv.URL)
	if _, err := client.Lookup(context.Background(), "AQAD", 100); err == nil {
		t.Fatal("expected error")
	}
}

func TestLookupHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, _ := New("key", srv.URL)
	if _, err := client.Lookup(context.Background(), "AQAD", 100); err == nil {
		t.Fatal("expected error")
	}
}

func TestLookupValidation(t *testing.T) {
	client, _ := New("key", "https://example.com")
	if _, err := client.Lookup(context.Background(), "", 100); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
	if _, err := client.Lookup(context.Background(), "AQAD", 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", "https://example.com"); err == nil {
		t.Fatal("expected error for missing key")
	}
	if _, err := New("key", ""); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
