package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"paylink_backend/internal/config"
)

type SMTPSender struct {
	cfg *config.Config
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (e *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.cfg.Email.FromEmail, e.cfg.Email.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		e.cfg.Email.SMTPHost,
		e.cfg.Email.SMTPPort,
		e.cfg.Email.SMTPUsername,
		e.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

// PaymentRequestBody renders the payer-facing notification email.
func PaymentRequestBody(recipientName, amount, currency, description, link string, refundable bool) (subject, body string) {
	subject = fmt.Sprintf("Payment request: %s %s", amount, currency)

	refundNote := ""
	if refundable {
		refundNote = "<p>This payment is refundable: the full amount will be returned to you automatically after 30 days.</p>"
	}

	body = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>You have received a payment request for <b>%s %s</b>.</p>
<p>%s</p>
%s
<p><a href="%s">Pay now</a></p>
</body></html>`, recipientName, amount, currency, description, refundNote, link)
	return subject, body
}
