// Package mailer sends notification emails.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a plain text email addressed to one recipient.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
}

// Mailer delivers email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var errNoRecipient = errors.New("mailer: message has no recipient")

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	log        zerolog.Logger
}

// NewSendGridMailer creates a SendGridMailer. appName prefixes every subject.
func NewSendGridMailer(key, appName, fromAddress string, log zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{
		key:        key,
		from:       sgmail.NewEmail(appName, fromAddress),
		subjPrefix: "[" + appName + "] ",
		log:        log.With().Str("component", "sendgrid_mailer").Logger(),
	}
}

// Send posts msg to SendGrid. A 4xx/5xx answer is returned as an error.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if msg.ToAddress == "" {
		return errNoRecipient
	}

	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))

	req := sendgrid.GetRequest(m.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := sendgrid.MakeRequest(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}

	m.log.Debug().Str("to", msg.ToAddress).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used when no
// SendGrid key is configured.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "log_mailer").Logger()}
}

// Send logs msg.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if msg.ToAddress == "" {
		return errNoRecipient
	}
	m.log.Info().
		Str("to", msg.ToAddress).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("Email (not sent, no provider configured)")
	return nil
}

// New picks SendGrid when apiKey is set and falls back to LogMailer otherwise.
func New(apiKey, appName, fromAddress string, log zerolog.Logger) Mailer {
	if apiKey == "" {
		return NewLogMailer(log)
	}
	return NewSendGridMailer(apiKey, appName, fromAddress, log)
}
