package scheduler

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	templates "github.com/dnounce/dnounce-api/templates/html"
)

const defaultFromEmail = "no-reply@dnounce.com"

// Mailer delivers a rendered message to one recipient.
type Mailer interface {
	Send(toEmail, toName string, msg templates.Message) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
}

// NewSendGridMailer returns a nil Mailer when apiKey is empty, which disables
// e-mail.
func NewSendGridMailer(apiKey, fromEmail string) Mailer {
	if apiKey == "" {
		return nil
	}
	if fromEmail == "" {
		fromEmail = defaultFromEmail
	}
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail}
}

// Send implements Mailer.
func (m *SendGridMailer) Send(toEmail, toName string, msg templates.Message) error {
	from := mail.NewEmail("DNounce", m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	response, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid status %d", response.StatusCode)
	}
	return nil
}
