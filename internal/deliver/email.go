package deliver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/hasibx0/ai-blogger-bot/internal/compose"
)

const (
	// MethodEmail sends the post to a mail-to-blog address.
	MethodEmail = "email"

	maxSubjectRunes = 180
	smtpTimeout     = 30 * time.Second
)

// mailSender is the part of *mail.Client the adapter uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailSettings configures the SMTP relay.
type EmailSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

// EmailAdapter delivers a post as a multipart email.
type EmailAdapter struct {
	settings EmailSettings
	sender   mailSender
	now      func() time.Time
	logger   *slog.Logger
}

// NewEmailAdapter creates an adapter that authenticates with PLAIN over
// STARTTLS, or implicit TLS when the port is 465.
func NewEmailAdapter(settings EmailSettings, logger *slog.Logger) (*EmailAdapter, error) {
	opts := []mail.Option{
		mail.WithPort(settings.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(settings.User),
		mail.WithPassword(settings.Password),
		mail.WithTimeout(smtpTimeout),
	}
	if settings.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return newEmailAdapter(settings, client, logger), nil
}

func newEmailAdapter(settings EmailSettings, sender mailSender, logger *slog.Logger) *EmailAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailAdapter{settings: settings, sender: sender, now: time.Now, logger: logger}
}

func (a *EmailAdapter) Method() string { return MethodEmail }

// Subject is "{title} - Auto Post {YYYY-MM-DD}", cut to 180 characters.
func Subject(title string, now time.Time) string {
	s := fmt.Sprintf("%s - Auto Post %s", title, now.Format("2006-01-02"))
	if r := []rune(s); len(r) > maxSubjectRunes {
		return string(r[:maxSubjectRunes])
	}
	return s
}

func (a *EmailAdapter) Deliver(ctx context.Context, post compose.Post) (*Confirmation, error) {
	msg, err := a.message(post)
	if err != nil {
		return nil, a.fail(err)
	}

	if err := a.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return nil, a.fail(err)
	}

	a.logger.Info("email sent", "to", a.settings.To)
	return &Confirmation{
		Method: MethodEmail,
		Detail: "sent to " + a.settings.To,
	}, nil
}

func (a *EmailAdapter) message(post compose.Post) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(a.settings.User); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(a.settings.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(Subject(post.Title, a.now()))
	msg.SetBodyString(mail.TypeTextPlain, post.Plain)
	msg.AddAlternativeString(mail.TypeTextHTML, post.HTML)
	return msg, nil
}

func (a *EmailAdapter) fail(err error) error {
	a.logger.Error("failed to send email", "error", err)
	return &Error{Method: MethodEmail, Err: err}
}
