package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"inkpost/internal/config"
)

// Mailer sends account emails. A disabled MailService drops them.
type Mailer interface {
	SendVerificationCode(email, name, code string)
}

type MailService struct {
	cfg     config.SMTPConfig
	Enabled bool
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg config.SMTPConfig) *MailService {
	enabled := cfg.Enabled()
	if !enabled {
		slog.Warn("mail service disabled: missing SMTP settings")
	}
	return &MailService{cfg: cfg, Enabled: enabled, send: smtp.SendMail}
}

var verificationTmpl = template.Must(template.New("verify").Parse(
	`<p>Hi {{.Name}},</p>
<p>Your inkpost verification code is <strong>{{.Code}}</strong>.</p>
<p>If you did not create an account you can ignore this email.</p>`))

func (s *MailService) SendVerificationCode(email, name, code string) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, map[string]string{"Name": name, "Code": code}); err != nil {
		slog.Error("render verification email", "error", err)
		return
	}
	s.sendAsync([]string{email}, "Verify your inkpost account", buf.String())
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		if err := s.deliver(to, subject, body); err != nil {
			slog.Error("send email failed", "to", to, "error", err)
			return
		}
		slog.Info("email sent", "to", to, "subject", subject)
	}()
}

func (s *MailService) deliver(to []string, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	return s.send(addr, auth, s.cfg.From, to, buildMessage(s.cfg.From, to, subject, body))
}

func buildMessage(from string, to []string, subject, body string) []byte {
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: inkpost <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), from, subject, mime, body))
}
