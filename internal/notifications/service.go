package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dropzone/internal/config"
)

const userAgent = "Dropzone/0.1.0"

// Service defines the notification surface exposed to commands.
type Service interface {
	NotifyImportCompleted(ctx context.Context, title, artist string) error
	NotifyTransferCompleted(ctx context.Context, host, destination string, fileCount int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		imports:   cfg.Notifications.Imports,
		transfers: cfg.Notifications.Transfers,
		errors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	imports   bool
	transfers bool
	errors    bool
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, title, artist string) error {
	if !n.imports {
		return nil
	}
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	message := fmt.Sprintf("Added to Music: %s", title)
	if artist != "" {
		message = fmt.Sprintf("Added to Music: %s - %s", artist, title)
	}
	data := payload{
		title:   "Dropzone - Imported",
		message: message,
		tags:    []string{"dropzone", "import", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTransferCompleted(ctx context.Context, host, destination string, fileCount int) error {
	if !n.transfers {
		return nil
	}
	host = strings.TrimSpace(host)
	destination = strings.TrimSpace(destination)
	noun := "files"
	if fileCount == 1 {
		noun = "file"
	}
	data := payload{
		title:   "Dropzone - Transfer Complete",
		message: fmt.Sprintf("Copied %d %s to %s:%s", fileCount, noun, host, destination),
		tags:    []string{"dropzone", "transfer", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Dropzone - Error",
		message:  builder.String(),
		tags:     []string{"dropzone", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Dropzone - Test",
		message:  "Notification system test",
		tags:     []string{"dropzone", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyImportCompleted(context.Context, string, string) error        { return nil }
func (noopService) NotifyTransferCompleted(context.Context, string, string, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
