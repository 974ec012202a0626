// Package notify emails applicants about status changes and support replies.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"strings"

	"adaptgrant/pkg/types"

	mail "github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"
)

// Sender delivers composed messages. *mail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

type Mailer struct {
	sender Sender
	from   string
	logger *logrus.Logger
}

// NewDialer builds an SMTP dialer that requires STARTTLS.
func NewDialer(config *types.Config) *mail.Dialer {
	d := mail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: config.SMTPHost}
	return d
}

func NewMailer(sender Sender, from string, logger *logrus.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, logger: logger}
}

// New returns an SMTP backed mailer, or Noop when SMTP_HOST is unset.
func New(config *types.Config, logger *logrus.Logger) Notifier {
	if strings.TrimSpace(config.SMTPHost) == "" || strings.TrimSpace(config.SMTPFrom) == "" {
		logger.Info("smtp not configured, email notifications disabled")
		return Noop{}
	}
	return NewMailer(NewDialer(config), config.SMTPFrom, logger)
}

// Notifier is the full set of emails the platform sends.
type Notifier interface {
	StatusChanged(ctx context.Context, profile *types.ApplicationProfile, change *types.StatusChange) error
	TicketResponded(ctx context.Context, ticket *types.SupportTicket, response *types.SupportResponse) error
}

var statusTemplate = template.Must(template.New("status").Parse(`<p>Dear {{.Name}},</p>
<p>The status of your application for <strong>{{.Business}}</strong> has changed from
<em>{{.From}}</em> to <strong>{{.To}}</strong>.</p>
{{if .Reason}}<p>Note from the review team: {{.Reason}}</p>{{end}}
<p>Reference: {{.ApplicationID}}</p>`))

var ticketTemplate = template.Must(template.New("ticket").Parse(`<p>There is a new reply on support ticket <strong>{{.Number}}</strong> ({{.Subject}}):</p>
<blockquote>{{.Message}}</blockquote>
<p>Current status: {{.Status}}</p>`))

func (m *Mailer) StatusChanged(ctx context.Context, profile *types.ApplicationProfile, change *types.StatusChange) error {
	if profile == nil || profile.Applicant == nil || profile.Applicant.Email == "" {
		return nil
	}

	data := struct {
		Name          string
		Business      string
		From          string
		To            string
		Reason        string
		ApplicationID string
	}{
		Name:          profile.Applicant.FullName(),
		From:          statusLabel(change.FromStatus),
		To:            statusLabel(change.ToStatus),
		ApplicationID: change.ApplicationID,
	}
	if profile.Business != nil {
		data.Business = profile.Business.Name
	}
	if change.Reason != nil {
		data.Reason = *change.Reason
	}

	subject := fmt.Sprintf("Your application is now %s", statusLabel(change.ToStatus))
	return m.send(ctx, profile.Applicant.Email, subject, statusTemplate, data)
}

func (m *Mailer) TicketResponded(ctx context.Context, ticket *types.SupportTicket, response *types.SupportResponse) error {
	if ticket.Email == "" || !response.IsAdmin {
		return nil
	}

	data := struct {
		Number  string
		Subject string
		Message string
		Status  string
	}{
		Number:  ticket.Number,
		Subject: ticket.Subject,
		Message: response.Message,
		Status:  strings.ReplaceAll(string(ticket.Status), "_", " "),
	}

	subject := fmt.Sprintf("[%s] New reply to your support ticket", ticket.Number)
	return m.send(ctx, ticket.Email, subject, ticketTemplate, data)
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %s email: %w", tmpl.Name(), err)
	}

	m.logger.WithFields(logrus.Fields{
		"to":       to,
		"template": tmpl.Name(),
	}).Debug("email sent")

	return nil
}

func statusLabel(status types.ApplicationStatus) string {
	if status == types.ApplicationStatusDragonsDen {
		return "Dragon's Den"
	}
	return strings.ReplaceAll(string(status), "_", " ")
}

// Noop drops every notification.
type Noop struct{}

func (Noop) StatusChanged(context.Context, *types.ApplicationProfile, *types.StatusChange) error {
	return nil
}

func (Noop) TicketResponded(context.Context, *types.SupportTicket, *types.SupportResponse) error {
	return nil
}
