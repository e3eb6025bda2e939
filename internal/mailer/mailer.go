package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	sl "finlet/internal/lib/logger"
	"finlet/internal/models"

	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	log    *slog.Logger
	from   string
	sender Sender
}

func New(log *slog.Logger, host string, port int, username, password, from string) *Mailer {
	if from == "" {
		from = username
	}

	return &Mailer{
		log:    log,
		from:   from,
		sender: gomail.NewDialer(host, port, username, password),
	}
}

// NewWithSender is used when the transport is provided by the caller.
func NewWithSender(log *slog.Logger, from string, sender Sender) *Mailer {
	return &Mailer{log: log, from: from, sender: sender}
}

var verificationTmpl = template.Must(template.New("verify").Parse(
	`<p>Confirm your email address for Finlet by following the link below.</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>If you did not create an account you can ignore this message.</p>`,
))

func (m *Mailer) Compose(msg models.Message) (*gomail.Message, error) {
	const op = "mailer.Compose"

	subject := msg.Subject
	if subject == "" {
		subject = "Verify your email address"
	}

	var html bytes.Buffer
	if err := verificationTmpl.Execute(&html, msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.Email)
	gm.SetHeader("Subject", subject)
	gm.SetBody("text/plain", "Verify your email address: "+msg.Link)
	gm.AddAlternative("text/html", html.String())

	return gm, nil
}

// Handle delivers one queued message; it is the consumer callback of the
// mailer command.
func (m *Mailer) Handle(_ context.Context, msg models.Message) error {
	const op = "mailer.Handle"

	log := m.log.With(slog.String("op", op), slog.String("purpose", msg.Purpose))

	gm, err := m.Compose(msg)
	if err != nil {
		return err
	}

	if err := m.sender.DialAndSend(gm); err != nil {
		log.Error("failed to send message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("message sent successfully")

	return nil
}
