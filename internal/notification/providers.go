package notification

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is one outbound email, already rendered.
type Email struct {
	To       string
	ToName   string
	Subject  string
	Text     string
	HTMLBody string
}

// EmailProvider defines the email provider interface
type EmailProvider interface {
	SendEmail(ctx context.Context, email *Email) error
}

// SendGridEmailProvider implements EmailProvider using SendGrid
type SendGridEmailProvider struct {
	apiKey   string
	from     string
	fromName string
}

// NewSendGridEmailProvider creates a new SendGrid email provider
func NewSendGridEmailProvider(apiKey, from string) EmailProvider {
	return &SendGridEmailProvider{
		apiKey:   apiKey,
		from:     from,
		fromName: "Coexist",
	}
}

// SendEmail sends an email using SendGrid
func (p *SendGridEmailProvider) SendEmail(ctx context.Context, email *Email) error {
	from := mail.NewEmail(p.fromName, p.from)
	to := mail.NewEmail(email.ToName, email.To)

	message := mail.NewSingleEmail(from, email.Subject, to, email.Text, email.HTMLBody)
	client := sendgrid.NewSendClient(p.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}

	return nil
}

// MockEmailProvider logs emails instead of sending them, for development
// and tests.
type MockEmailProvider struct {
	mu   sync.Mutex
	Sent []*Email
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(ctx context.Context, email *Email) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sent = append(p.Sent, email)
	log.Printf("📧 Mock email to %s: %s", email.To, email.Subject)
	return nil
}
