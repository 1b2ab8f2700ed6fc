package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"traffic-service/internal/config"
	"traffic-service/internal/model"
)

type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SendGridMailer struct {
	client   *sendgrid.Client
	fromName string
	from     string
	timeout  time.Duration
	log      zerolog.Logger
}

func NewSendGridMailer(cfg config.MailConfig, log zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName: cfg.FromName,
		from:     cfg.FromEmail,
		timeout:  cfg.Timeout,
		log:      log,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	from := mail.NewEmail(m.fromName, m.from)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		m.log.Error().Int("status", response.StatusCode).Str("body", response.Body).Str("to", msg.ToEmail).Msg("sendgrid returned error status")
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	m.log.Info().Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// Notifier turns paid violations into e-ticket emails.
type Notifier struct {
	mailer        Mailer
	currencyLabel string
	loc           *time.Location
}

func NewNotifier(mailer Mailer, currencyLabel string, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.Local
	}
	return &Notifier{mailer: mailer, currencyLabel: currencyLabel, loc: loc}
}

// SendETicket reports sent=false without error when the owner has no email on file.
func (n *Notifier) SendETicket(ctx context.Context, record model.ViolationRecord) (bool, error) {
	ticket, ok := BuildETicket(record, n.currencyLabel, n.loc)
	if !ok {
		return false, nil
	}
	html, err := ticket.HTML()
	if err != nil {
		return false, fmt.Errorf("render e-ticket: %w", err)
	}
	if err := n.mailer.Send(ctx, Message{
		ToEmail:   ticket.OwnerEmail,
		ToName:    ticket.OwnerName,
		Subject:   ticket.Subject(),
		PlainText: ticket.PlainText(),
		HTML:      html,
	}); err != nil {
		return false, err
	}
	return true, nil
}
