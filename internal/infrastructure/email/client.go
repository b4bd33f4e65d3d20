// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/pulsekit/pulse-go/internal/infrastructure/email/templates"
	"github.com/pulsekit/pulse-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendReengagementEmail(toEmail, name string, score int, trend string) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: config.EmailFrom,
		fromName:  config.EmailFromName,
	}, nil
}

// SendReengagementEmail composes and sends a re-engagement email to a user
// whose engagement has gone dormant and declining.
func (c *ResendClient) SendReengagementEmail(toEmail, name string, score int, trend string) error {
	subject := "We miss you! Come back and see what's new"

	content := templates.GetReengagementEmailContent(templates.ReengagementEmailProps{
		Name:  name,
		Score: score,
		Trend: trend,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "It has been a while since your last visit",
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send re-engagement email via Resend: %w", err)
	}

	return nil
}
