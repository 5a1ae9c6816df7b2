package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)

	raw := []byte(
		"From: " + s.Username + "\r\n" +
			"To: " + msg.Recipient + "\r\n" +
			"Reply-To: " + msg.ReplyTo + "\r\n" +
			"Subject: " + msg.Subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			msg.BodyHTML,
	)

	if err := smtp.SendMail(addr, auth, s.Username, []string{msg.Recipient}, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
