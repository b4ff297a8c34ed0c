// Package email delivers listing notifications over SMTP. The plain-text
// message is also rendered through markdown so HTML-capable clients get a
// clickable listing link.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	mail "github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yhirano/auctionwatch/internal/core"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Subject  string
}

type Sender struct {
	cfg       Config
	logger    *slog.Logger
	converter goldmark.Markdown
}

func NewSender(cfg Config, logger *slog.Logger) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.To == "" {
		return nil, fmt.Errorf("email recipient is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("email sender address is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = "New listing found"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		cfg:       cfg,
		logger:    logger,
		converter: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

func (s *Sender) Notify(ctx context.Context, message string, item core.Item) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", s.cfg.From, err)
	}
	if err := m.ToFromString(s.cfg.To); err != nil {
		return fmt.Errorf("invalid to address %q: %w", s.cfg.To, err)
	}
	subject := s.cfg.Subject
	if item.Title != "" {
		subject = fmt.Sprintf("%s: %s", s.cfg.Subject, item.Title)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, message)

	html, err := s.renderHTML(message, item)
	if err != nil {
		s.logger.Warn("falling back to plain text body", "error", err)
	} else {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.logger.Debug("email delivered", "item_id", item.ID)
	return nil
}

func (s *Sender) renderHTML(message string, item core.Item) (string, error) {
	md := message
	if item.URL != "" {
		md = fmt.Sprintf("%s\n\n[View listing](%s)\n", message, item.URL)
	}
	var buf bytes.Buffer
	if err := s.converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
