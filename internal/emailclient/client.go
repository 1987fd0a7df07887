// Package emailclient delivers transactional email to subscribers through
// an HTTP email API (Postmark-compatible) or AWS SES v2.
package emailclient

import (
	"context"
	"fmt"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
)

// Client sends one message to one recipient.
type Client interface {
	Send(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlContent, textContent string) error
}

// New builds the client selected by cfg.Provider. The sender address is
// validated like any subscriber address.
func New(ctx context.Context, cfg config.EmailClientConfig) (Client, error) {
	sender, err := cfg.Sender()
	if err != nil {
		return nil, fmt.Errorf("invalid sender email address: %w", err)
	}

	switch cfg.Provider {
	case "http":
		return NewHTTPClient(cfg.BaseURL, sender, cfg.AuthorizationToken, cfg.Timeout(), cfg.MaxRetries), nil
	case "ses":
		return NewSESClient(ctx, cfg, sender)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
