// Package line delivers notifications through the LINE Messaging API push
// endpoint.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yhirano/auctionwatch/internal/core"
)

const defaultEndpoint = "https://api.line.me/v2/bot/message/push"

// Credentials for the Messaging API. They are injected explicitly so the
// sender can be constructed with fakes in tests instead of reading the
// process environment.
type Credentials struct {
	ChannelAccessToken string
	UserID             string
}

type Sender struct {
	creds    Credentials
	client   *http.Client
	endpoint string
	logger   *slog.Logger

	// The push API enforces a per-period send cap, so pushes from one
	// process are spaced out explicitly rather than left to chance.
	minInterval time.Duration
	mu          sync.Mutex
	lastSend    time.Time
}

func NewSender(creds Credentials, timeout, minInterval time.Duration, logger *slog.Logger) (*Sender, error) {
	if creds.ChannelAccessToken == "" {
		return nil, fmt.Errorf("line channel access token is required")
	}
	if creds.UserID == "" {
		return nil, fmt.Errorf("line user id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		creds:       creds,
		client:      &http.Client{Timeout: timeout},
		endpoint:    defaultEndpoint,
		logger:      logger,
		minInterval: minInterval,
	}, nil
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *Sender) Notify(ctx context.Context, message string, item core.Item) error {
	if err := s.throttle(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(pushRequest{
		To:       s.creds.UserID,
		Messages: []textMessage{{Type: "text", Text: message}},
	})
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.creds.ChannelAccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line push returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	s.logger.Debug("line push delivered", "item_id", item.ID)
	return nil
}

// throttle blocks until minInterval has elapsed since the previous send.
func (s *Sender) throttle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.minInterval > 0 && !s.lastSend.IsZero() {
		wait := s.minInterval - time.Since(s.lastSend)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	s.lastSend = time.Now()
	return nil
}
