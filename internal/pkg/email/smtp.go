// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// sendSMTPEmail sends email using SMTP (Gmail, Outlook, or self-hosted)
func (s *EmailService) sendSMTPEmail(ctx context.Context, email *Email) error {
	cfg := s.config.Email
	if cfg.SMTPHost == "" {
		return ErrDisabled
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	serverAddr := net.JoinHostPort(cfg.SMTPHost, fmt.Sprint(cfg.SMTPPort))
	msg := buildMessage(s.fromHeader(), cfg.ReplyTo, email)

	if cfg.SMTPUseTLS {
		return s.sendSMTPWithTLS(ctx, serverAddr, auth, cfg.FromEmail, email.To, msg)
	}
	return smtp.SendMail(serverAddr, auth, cfg.FromEmail, email.To, msg)
}

func (s *EmailService) fromHeader() string {
	if s.config.Email.FromName == "" {
		return s.config.Email.FromEmail
	}
	return fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
}

// buildMessage writes the headers in a fixed order followed by the HTML body
func buildMessage(from, replyTo string, email *Email) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(email.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(email.HTMLContent)
	return msg.Bytes()
}

// sendSMTPWithTLS sends email over an implicit TLS connection
func (s *EmailService) sendSMTPWithTLS(ctx context.Context, serverAddr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.config.Email.SMTPHost}}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("failed to create TLS connection: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Email.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish email content: %w", err)
	}
	return nil
}
