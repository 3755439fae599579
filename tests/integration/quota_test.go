//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

// TestQuotaGate_ConcurrentCallers verifies the single-statement conditional
// update against a real Postgres: many goroutines race on the same user and
// exactly the cap is granted.
func TestQuotaGate_ConcurrentCallers(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()

	user, err := env.UserSvc.Create(ctx, "quota-racer", "irrelevant-hash")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	const callers = 50
	var granted atomic.Int64
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			ok, err := env.QuotaSvc.CheckAndIncrement(ctx, user.ID)
			if err != nil {
				t.Errorf("gate error: %v", err)
				return
			}
			if ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := granted.Load(); got != 10 {
		t.Fatalf("expected exactly 10 grants under contention, got %d", got)
	}

	status, err := env.QuotaSvc.Status(ctx, user.ID)
	if err != nil {
		t.Fatalf("reading status: %v", err)
	}
	if status.CallsToday != 10 || status.Remaining != 0 {
		t.Fatalf("unexpected status after exhaustion: %+v", status)
	}
}

// TestQuotaGate_EndToEnd exhausts the cap through the HTTP surface and checks
// the 429 with the user-facing message.
func TestQuotaGate_EndToEnd(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "quota-http", "Abcdef1!")
	token := LoginUser(t, env, "quota-http", "Abcdef1!")

	body := map[string]any{
		"job_description": "Go developer",
		"style":           "Technical",
		"count":           3,
	}

	for i := 0; i < 10; i++ {
		resp := DoRequest(t, env, "POST", "/api/v1/questions", body, token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := DoRequest(t, env, "POST", "/api/v1/questions", body, token)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after cap, got %d", resp.StatusCode)
	}
	result := ParseResponse(t, resp)
	if result["error"] != "you have reached the maximum allowed number of calls for today, please try again tomorrow" {
		t.Fatalf("unexpected denial message: %v", result["error"])
	}

	// Denied attempts are visible in /usage as an exhausted counter.
	resp = DoRequest(t, env, "GET", "/api/v1/usage", nil, token)
	usage := ParseResponse(t, resp)["data"].(map[string]any)
	quota := usage["quota"].(map[string]any)
	if quota["remaining"].(float64) != 0 {
		t.Fatalf("expected zero remaining, got %v", quota["remaining"])
	}
}

// TestChatFlow_EndToEnd covers chat creation, listing, fetching and deletion.
func TestChatFlow_EndToEnd(t *testing.T) {
	env := SetupTestEnv(t)

	RegisterUser(t, env, "chatter", "Abcdef1!")
	token := LoginUser(t, env, "chatter", "Abcdef1!")

	resp := DoRequest(t, env, "POST", "/api/v1/chats/messages", map[string]any{
		"expert_type": "Software Engineer",
		"technique":   "Zero Shot",
		"model":       "gpt-4",
		"temperature": 0.7,
		"message":     "What is a goroutine?",
	}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send message: status %d", resp.StatusCode)
	}
	sent := ParseResponse(t, resp)["data"].(map[string]any)
	if sent["reply"] != "stub reply" {
		t.Fatalf("unexpected reply: %v", sent["reply"])
	}
	chatID := sent["chat_id"].(float64)
	if chatID == 0 {
		t.Fatal("expected a persisted chat id")
	}

	resp = DoRequest(t, env, "GET", "/api/v1/chats/", nil, token)
	listed := ParseResponse(t, resp)["data"].([]any)
	if len(listed) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(listed))
	}

	chatPath := fmt.Sprintf("/api/v1/chats/%d", int64(chatID))

	// Another user cannot see the chat.
	RegisterUser(t, env, "intruder", "Abcdef1!")
	otherToken := LoginUser(t, env, "intruder", "Abcdef1!")
	resp = DoRequest(t, env, "GET", chatPath, nil, otherToken)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign chat, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = DoRequest(t, env, "DELETE", chatPath, nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete chat: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
