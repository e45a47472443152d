package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	config SMTPConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTPSender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		logger: logger,
	}
}

// Send delivers one message. A cancelled context stops the send before dialing.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

// LogSender logs emails instead of sending them. Used when SMTP
// credentials are not configured. Nothing is retained after logging.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the recipient and subject of the message
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Warn().
		Str("to", to).
		Str("subject", subject).
		Int("bodyBytes", len(body)).
		Msg("SMTP credentials not configured - email not sent")
	return nil
}

// NewSender returns an SMTP sender when credentials are configured and a
// LogSender otherwise.
func NewSender(config SMTPConfig, logger zerolog.Logger) Sender {
	if config.Host == "" || config.Username == "" || config.Password == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(config, logger)
}

const layout = `
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">%s</h2>
				%s
				<p>Best regards,<br>The Placement Cell</p>
			</div>
		</body>
		</html>
	`

func render(heading, inner string) string {
	return fmt.Sprintf(layout, html.EscapeString(heading), inner)
}

// InvitationEmail builds the registration invitation sent to a student
func InvitationEmail(registrationURL string) (subject, body string) {
	link := html.EscapeString(registrationURL)
	inner := fmt.Sprintf(`
				<p>You have been invited to register on the college placement portal.</p>
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Complete Registration</a>
				</div>
				<p>If the button does not work, open this link: %s</p>
				<p>This link will expire in 24 hours.</p>`, link, link)
	return "Placement Portal Registration", render("Welcome to the Placement Portal", inner)
}

// MessageEmail wraps an announcement from the placement cell
func MessageEmail(content string) (subject, body string) {
	paragraphs := strings.Split(html.EscapeString(content), "\n")
	inner := "<p>" + strings.Join(paragraphs, "<br>") + "</p>"
	return "New message from the Placement Cell", render("Placement Cell Announcement", inner)
}

// JobPosting is the subset of a job included in an announcement email
type JobPosting struct {
	Title    string
	Company  string
	Location string
	Salary   string
	Deadline string
	URL      string
}

// JobEmail announces a new job posting
func JobEmail(job JobPosting) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\t\t\t\t<p><strong>%s</strong> at <strong>%s</strong></p>", html.EscapeString(job.Title), html.EscapeString(job.Company))
	if job.Location != "" {
		fmt.Fprintf(&b, "\n\t\t\t\t<p>Location: %s</p>", html.EscapeString(job.Location))
	}
	if job.Salary != "" {
		fmt.Fprintf(&b, "\n\t\t\t\t<p>Salary: %s</p>", html.EscapeString(job.Salary))
	}
	if job.Deadline != "" {
		fmt.Fprintf(&b, "\n\t\t\t\t<p>Apply before: %s</p>", html.EscapeString(job.Deadline))
	}
	if job.URL != "" {
		fmt.Fprintf(&b, "\n\t\t\t\t<p><a href=\"%s\">View the posting</a></p>", html.EscapeString(job.URL))
	}
	return fmt.Sprintf("New job opportunity: %s at %s", job.Title, job.Company), render("New Job Posting", b.String())
}
