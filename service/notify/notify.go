package notify

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/anurajthakur333/backend/cmd/config"
	"github.com/anurajthakur333/backend/cmd/models"
)

// Mailer emails the admin when a new sell request comes in. It is entirely
// best-effort; send failures are logged and swallowed.
type Mailer struct {
	host string
	port int
	user string
	pass string
	to   string
}

// NewMailer returns nil when the SMTP settings are incomplete, which turns
// notifications off without any further configuration.
func NewMailer(cfg config.Config) *Mailer {
	if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.SMTPUser == "" || cfg.AdminEmail == "" {
		return nil
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		logrus.WithField("SMTP_PORT", cfg.SMTPPort).Warn("invalid SMTP port, notifications disabled")
		return nil
	}

	return &Mailer{
		host: cfg.SMTPHost,
		port: port,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		to:   cfg.AdminEmail,
	}
}

func (m *Mailer) TransactionCreated(tx models.Transaction) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", "New sell request on SellMyPi")
	msg.SetBody("text/plain", fmt.Sprintf(
		"User %s (%s) submitted a sell request for %.4f Pi (INR %s) to UPI %s.\nTransaction ID: %s",
		tx.UserInfo.Username, tx.UserInfo.Email, tx.PiAmount, tx.INRValue, tx.UPIID, tx.ID,
	))

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		logrus.WithError(err).WithField("transactionId", tx.ID).Warn("failed to send admin notification")
	}
}
