package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/queue"

	"github.com/wneessen/go-mail"
)

// Sender delivers built messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseSSL   bool
}

func (c Config) IsConfigured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// NewClient creates a go-mail client with plain SMTP auth
func NewClient(cfg Config) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithPort(cfg.Port),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(cfg.Host, opts...)
}

// Mailer renders queue messages into emails and sends them
type Mailer struct {
	sender    Sender
	from      string
	templates map[string]*template.Template
	subjects  map[string]string
}

func New(sender Sender, from string) *Mailer {
	return &Mailer{
		sender: sender,
		from:   from,
		templates: map[string]*template.Template{
			domain.MailTypeStatusChanged: template.Must(template.New("status_changed").Parse(statusChangedTemplate)),
		},
		subjects: map[string]string{
			domain.MailTypeStatusChanged: "Your application status has been updated",
		},
	}
}

// Build turns a queue message into a ready mail.Msg.
// Unknown types and undecodable data wrap queue.ErrMalformed.
func (m *Mailer) Build(msg domain.MailMessage) (*mail.Msg, error) {
	tmpl, ok := m.templates[msg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", queue.ErrMalformed, msg.Type)
	}
	data, err := decodeData(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", queue.ErrMalformed, err)
	}

	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient: %v", queue.ErrMalformed, err)
	}
	out.Subject(m.subjects[msg.Type])
	if err := out.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, fmt.Errorf("%w: render: %v", queue.ErrMalformed, err)
	}
	return out, nil
}

// Handle is a queue.Handler
func (m *Mailer) Handle(ctx context.Context, msg domain.MailMessage) error {
	out, err := m.Build(msg)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// decodeData re-types the generic Data payload for the template
func decodeData(msg domain.MailMessage) (any, error) {
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return nil, err
	}
	switch msg.Type {
	case domain.MailTypeStatusChanged:
		var d domain.StatusChangedMailData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("no data type for %q", msg.Type)
}

const statusChangedTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Application status update</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .status { font-size: 18px; font-weight: bold; }
        .feedback { background: white; padding: 15px; border-left: 4px solid #0066cc; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Application status update</h1>
        </div>
        <div class="content">
            <p>Dear {{.FullName}},</p>
            <p>The status of your application is now:</p>
            <p class="status">{{.StatusLabel}}</p>
            {{if .Feedback}}<div class="feedback">{{.Feedback}}</div>{{end}}
            <p>Updated at {{.ChangedAt}}.</p>
        </div>
        <div class="footer">
            <p>Reference: {{.CandidateID}}</p>
        </div>
    </div>
</body>
</html>`
