package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cinedex/internal/config"
)

const userAgent = "cinedex/0.1"

// Event names a notification type.
type Event string

const (
	EventRunCompleted   Event = "run_completed"
	EventRunFailed      Event = "run_failed"
	EventDedupCompleted Event = "dedup_completed"
	EventTest           Event = "test"
)

// Payload carries event fields by name.
type Payload map[string]string

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, p Payload) (message, bool) {
	switch event {
	case EventRunCompleted:
		body := fmt.Sprintf("%s finished: %s processed, %s matched, %s unmatched",
			p["operation"], p["processed"], p["matched"], p["unmatched"])
		if failed := p["failed"]; failed != "" && failed != "0" {
			body += fmt.Sprintf(", %s failed", failed)
		}
		if d := p["duration"]; d != "" {
			body += " in " + d
		}
		return message{
			title: "cinedex - " + p["operation"] + " complete",
			body:  body,
			tags:  []string{"cinedex", p["operation"], "completed"},
		}, true
	case EventRunFailed:
		return message{
			title:    "cinedex - " + p["operation"] + " failed",
			body:     fmt.Sprintf("%s failed: %s", p["operation"], strings.TrimSpace(p["error"])),
			tags:     []string{"cinedex", "error", "alert"},
			priority: "high",
		}, true
	case EventDedupCompleted:
		return message{
			title: "cinedex - dedup complete",
			body:  fmt.Sprintf("Merged %s duplicate groups; %s entries remain", p["groups"], p["entries"]),
			tags:  []string{"cinedex", "dedup", "completed"},
		}, true
	case EventTest:
		return message{
			title:    "cinedex - test",
			body:     "Notification system test",
			tags:     []string{"cinedex", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
