package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestRunPublishesNotifications(t *testing.T) {
	var (
		mu     sync.Mutex
		titles []string
		bodies []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		titles = append(titles, r.Header.Get("Title"))
		bodies = append(bodies, string(body))
		mu.Unlock()
	}))
	defer server.Close()

	env := setupCLITestEnv(t)
	env.cfg.Notifications.NtfyTopic = server.URL
	writeTestConfig(t, env.configPath, env.cfg)

	runArchiveJSON(t, env)
	out, _, err := runCLI(t, env.configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Sent test notification")

	mu.Lock()
	defer mu.Unlock()
	if len(titles) != 2 || titles[0] != "motioncomic - Run Complete" || titles[1] != "motioncomic - Test" {
		t.Fatalf("unexpected notifications: %v", titles)
	}
	requireContains(t, bodies[0], "issue-1: 8 panels")
}

func TestTestNotifyDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env.configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications are disabled")
}
