package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dropzone/internal/config"
	"dropzone/internal/testsupport"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func testConfig(t *testing.T, topic string) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t, testsupport.WithNtfyTopic(topic))
}

func TestNewServiceReturnsNoopWithoutTopic(t *testing.T) {
	svc := NewService(testConfig(t, ""))
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noopService, got %T", svc)
	}
	if err := svc.NotifyImportCompleted(context.Background(), "Song", "Artist"); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
}

func TestNotifyImportCompleted(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := NewService(testConfig(t, server.URL))
	if err := svc.NotifyImportCompleted(context.Background(), "Song", "Artist"); err != nil {
		t.Fatalf("NotifyImportCompleted: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d requests, want 1", len(got))
	}
	if got[0].title != "Dropzone - Imported" {
		t.Fatalf("title = %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "Artist - Song") {
		t.Fatalf("body = %q", got[0].body)
	}
}

func TestNotifyTransferCompleted(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := NewService(testConfig(t, server.URL))
	if err := svc.NotifyTransferCompleted(context.Background(), "zig", "~/incoming/", 1); err != nil {
		t.Fatalf("NotifyTransferCompleted: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d requests, want 1", len(got))
	}
	if !strings.Contains(got[0].body, "Copied 1 file to zig:~/incoming/") {
		t.Fatalf("body = %q", got[0].body)
	}
}

func TestNotifyErrorSetsHighPriority(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := NewService(testConfig(t, server.URL))
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "import"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if got[0].priority != "high" {
		t.Fatalf("priority = %q", got[0].priority)
	}
	if !strings.Contains(got[0].body, "Error with import: boom") {
		t.Fatalf("body = %q", got[0].body)
	}
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	cfg.Notifications.Imports = false
	cfg.Notifications.Transfers = false
	svc := NewService(cfg)

	if err := svc.NotifyImportCompleted(context.Background(), "Song", ""); err != nil {
		t.Fatalf("NotifyImportCompleted: %v", err)
	}
	if err := svc.NotifyTransferCompleted(context.Background(), "zig", "/srv", 2); err != nil {
		t.Fatalf("NotifyTransferCompleted: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no requests, got %d", len(got))
	}
}

func TestSendReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewService(testConfig(t, server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want 404 detail", err)
	}
}
