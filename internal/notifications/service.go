package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"motioncomic/internal/config"
)

const userAgent = "motioncomic/0.1"

// Event names a notification type.
type Event string

const (
	EventRunCompleted    Event = "run_completed"
	EventRunFailed       Event = "run_failed"
	EventReflowCompleted Event = "reflow_completed"
	EventTest            Event = "test"
)

// Payload carries the values a notification is formatted from.
type Payload map[string]any

// Service publishes notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint: strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:   &http.Client{Timeout: cfg.NotifyTimeout()},
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

func format(event Event, payload Payload) (message, bool) {
	archive := payload.text("archive")
	switch event {
	case EventRunCompleted:
		body := fmt.Sprintf("🎬 %s: %d panels, %s timeline", archive, payload.count("panels"), payload.span("duration"))
		tags := []string{"motioncomic", "run", "completed"}
		if n := payload.count("diagnostics"); n > 0 {
			body += fmt.Sprintf("\n%d diagnostics recorded", n)
			tags = append(tags, "degraded")
		}
		return message{title: "motioncomic - Run Complete", body: body, tags: tags}, true
	case EventRunFailed:
		return message{
			title:    "motioncomic - Run Failed",
			body:     fmt.Sprintf("❌ %s: %s", archive, payload.text("error")),
			tags:     []string{"motioncomic", "run", "failed"},
			priority: "high",
		}, true
	case EventReflowCompleted:
		return message{
			title: "motioncomic - Re-flowed",
			body:  fmt.Sprintf("⏱️ %s: %d events shifted, %s timeline", archive, payload.count("shifted"), payload.span("duration")),
			tags:  []string{"motioncomic", "reflow"},
		}, true
	case EventTest:
		return message{
			title:    "motioncomic - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"motioncomic", "test"},
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

func (p Payload) text(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) count(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (p Payload) span(key string) string {
	d, _ := p[key].(time.Duration)
	if d < 0 {
		d = 0
	}
	return d.Round(100 * time.Millisecond).String()
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
