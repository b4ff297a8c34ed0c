package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yhirano/auctionwatch/internal/core"
)

func testSender(t *testing.T, handler http.HandlerFunc) (*Sender, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sender, err := NewSender(Credentials{
		ChannelAccessToken: "token-123",
		UserID:             "user-456",
	}, time.Second, 0, nil)
	if err != nil {
		t.Fatalf("new sender failed: %v", err)
	}
	sender.endpoint = server.URL
	return sender, server
}

func TestNotifySendsPush(t *testing.T) {
	var gotAuth string
	var gotBody pushRequest
	sender, _ := testSender(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := sender.Notify(context.Background(), "hello listing", core.Item{ID: "a"})
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody.To != "user-456" {
		t.Fatalf("unexpected recipient: %q", gotBody.To)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Text != "hello listing" || gotBody.Messages[0].Type != "text" {
		t.Fatalf("unexpected message payload: %+v", gotBody.Messages)
	}
}

func TestNotifyReportsAPIFailure(t *testing.T) {
	sender, _ := testSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"monthly limit"}`))
	})

	err := sender.Notify(context.Background(), "m", core.Item{ID: "a"})
	if err == nil {
		t.Fatalf("expected error for 429 response")
	}
}

func TestNewSenderRequiresCredentials(t *testing.T) {
	if _, err := NewSender(Credentials{UserID: "u"}, time.Second, 0, nil); err == nil {
		t.Fatalf("expected error for missing token")
	}
	if _, err := NewSender(Credentials{ChannelAccessToken: "t"}, time.Second, 0, nil); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestThrottleSpacesSends(t *testing.T) {
	count := 0
	sender, _ := testSender(t, func(w http.ResponseWriter, r *http.Request) {
		count++
		w.WriteHeader(http.StatusOK)
	})
	sender.minInterval = 30 * time.Millisecond

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := sender.Notify(context.Background(), "m", core.Item{}); err != nil {
			t.Fatalf("notify %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("three sends should span at least two intervals, took %v", elapsed)
	}
	if count != 3 {
		t.Fatalf("expected 3 deliveries, got %d", count)
	}
}
