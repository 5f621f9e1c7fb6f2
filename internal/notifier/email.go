package notifier

import (
	"class-seat-monitor/internal/config"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// EmailNotifier handles email notifications
type EmailNotifier struct {
	config config.EmailConfig
	auth   smtp.Auth
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now    func() time.Time
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	auth := smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)

	return &EmailNotifier{
		config: cfg,
		auth:   auth,
		send:   smtp.SendMail,
		now:    time.Now,
	}
}

// Deliver sends one notification to all recipients.
func (e *EmailNotifier) Deliver(title, body string) error {
	message := e.buildMessage(title, e.buildEmailBody(body))

	addr := fmt.Sprintf("%s:%d", e.config.SMTP.Host, e.config.SMTP.Port)
	if err := e.send(addr, e.auth, e.config.From, e.config.To, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// TestConnection tests the email configuration
func (e *EmailNotifier) TestConnection() error {
	return e.Deliver(TestTitle, "This is a test email from Class Seat Monitor.")
}

// buildEmailBody creates the email body content
func (e *EmailNotifier) buildEmailBody(body string) string {
	var sb strings.Builder

	sb.WriteString(body)
	sb.WriteString("\n\n----------------------------\n\n")
	sb.WriteString("Scheduler: ")
	sb.WriteString(config.DefaultSchedulerURL)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Checked at: %s\n", e.now().Format("2006-01-02 15:04:05")))

	return sb.String()
}

// buildMessage creates the full email message with headers
func (e *EmailNotifier) buildMessage(title, body string) string {
	subject := e.config.Subject
	if subject == "" {
		subject = title
	} else if title != "" {
		subject += ": " + title
	}

	headers := [][2]string{
		{"From", e.config.From},
		{"To", strings.Join(e.config.To, ", ")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	return message.String()
}
