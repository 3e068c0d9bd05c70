package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/rentkart/rentkart-backend/pkg/config"
	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
	"github.com/rentkart/rentkart-backend/pkg/logger"
)

// Sender exposes the outbound mail surface used by services.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Client sends transactional mail through SendGrid.
type Client struct {
	apiKey    string
	fromEmail string
	fromName  string
}

// NewClient builds the SendGrid-backed mail client.
func NewClient(cfg config.SendgridConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("sendgrid from email is required")
	}
	return &Client{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

// Send delivers a single message. Callers treat delivery as
// best-effort; a failed send never rolls back the triggering write.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mail client not configured")
	}
	if strings.TrimSpace(msg.ToEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}

	from := sgmail.NewEmail(c.fromName, c.fromEmail)
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	client := sendgrid.NewSendClient(c.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	if resp.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned status %d", resp.StatusCode))
	}
	return nil
}

// SendAsync fires the message on a goroutine and logs failures instead
// of returning them.
func SendAsync(ctx context.Context, sender Sender, logg *logger.Logger, msg Message) {
	if sender == nil {
		return
	}
	go func() {
		detached := context.WithoutCancel(ctx)
		if err := sender.Send(detached, msg); err != nil && logg != nil {
			detached = logg.WithField(detached, "to", msg.ToEmail)
			logg.Error(detached, "send notification email", err)
		}
	}()
}
