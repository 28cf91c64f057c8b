package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/assetline-io/assetline-backend/pkg/config"
	"github.com/assetline-io/assetline-backend/pkg/errors"
)

// Message is a single outbound email. Body is plain text.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages. Satisfied by Mailer and by test fakes.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends plain-text email over SMTP with AUTH PLAIN.
type Mailer struct {
	cfg config.MailConfig
}

func New(cfg config.MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New(errors.CodeInternal, "mail host is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, errors.New(errors.CodeInternal, "mail default from address is required")
	}
	return &Mailer{cfg: cfg}, nil
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New(errors.CodeValidation, "message has no recipients")
	}

	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprintf("%d", m.cfg.Port))

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, msg)
	}()

	sendCtx, cancel := context.WithTimeout(ctx, m.cfg.SendTimeout)
	defer cancel()

	select {
	case <-sendCtx.Done():
		return errors.Wrap(errors.CodeDependency, sendCtx.Err(), "smtp send timed out")
	case err := <-done:
		if err != nil {
			return errors.Wrap(errors.CodeDependency, err, "smtp send failed")
		}
		return nil
	}
}

func (m *Mailer) send(addr string, msg Message) error {
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.DefaultFrom, msg.To, buildRFC822(m.cfg.DefaultFrom, msg))
}

func buildRFC822(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// sanitizeHeader strips CR/LF so caller input cannot inject headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
