package mail

import (
	"gopkg.in/gomail.v2"

	"github.com/techaway/backend/internal/config"
)

// Message is one outbound email.
type Message struct {
	To             string
	Subject        string
	HTML           string
	AttachmentPath string
	AttachmentName string
}

// Mailer sends transactional mail. The SMTP implementation below is the only
// production one; tests substitute fakes.
type Mailer interface {
	Send(msg Message) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a gomail-backed mailer from config.
func NewSMTPMailer(cfg config.MailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", msg.HTML)
	if msg.AttachmentPath != "" {
		if msg.AttachmentName != "" {
			mail.Attach(msg.AttachmentPath, gomail.Rename(msg.AttachmentName))
		} else {
			mail.Attach(msg.AttachmentPath)
		}
	}
	return m.dialer.DialAndSend(mail)
}
