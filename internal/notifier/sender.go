package notifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"dlremindme/internal/config"
)

// Sender delivers one message. It reports false, and never panics, when the
// message could not be handed to the transport.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// SMTPSender sends plain-text mail through an authenticated SMTP relay.
type SMTPSender struct {
	cfg     config.SMTPConfig
	logger  *slog.Logger
	deliver func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPSender(cfg config.SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SMTPSender{
		cfg:    cfg,
		logger: logger.With("component", "smtp"),
	}
	s.deliver = s.dialAndSend
	return s
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while sending mail", "to", to, "panic", r)
			ok = false
		}
	}()

	if !s.cfg.Configured() {
		s.logger.Error("sender credentials are not configured, mail not sent", "to", to)
		return false
	}
	to = strings.TrimSpace(to)
	if to == "" {
		s.logger.Error("empty recipient, mail not sent")
		return false
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.Username); err != nil {
		s.logger.Error("invalid sender address", "from", s.cfg.Username, "error", err)
		return false
	}
	if err := msg.To(to); err != nil {
		s.logger.Error("invalid recipient address", "to", to, "error", err)
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.deliver(ctx, msg); err != nil {
		s.logger.Error("failed to send mail", "to", to, "error", err)
		return false
	}
	s.logger.Debug("mail sent", "to", to, "subject", subject)
	return true
}

// dialAndSend opens a fresh session per message. Port 465 uses implicit
// TLS; any other port requires STARTTLS.
func (s *SMTPSender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
