// Package notifications delivers email alerts for new posts and comments.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends a single message. Implementations must honor ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers messages over SMTP.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

// SMTPConfig holds the settings needed to build an SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// NewSMTPMailer returns a Mailer that talks to the configured SMTP server.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		timeout:  timeout,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	message := mail.NewMsg()
	if err := message.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", m.from, err)
	}
	if err := message.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(m.timeout),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	} else {
		// Local dev relays (mailpit, mailhog) take unauthenticated plain connections.
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
