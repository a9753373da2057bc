// Package mailer sends the four transactional emails over SMTP. Delivery is
// guarded upstream by the notifications ledger, so a replayed webhook never
// reaches Send twice for the same (order, kind).
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"iheadshot-backend/internal/models"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendOrderConfirmed(email string, order *models.Order) error {
	subject := "Your iHeadshot order is confirmed"
	body := fmt.Sprintf(
		"<h1>Thanks for your order!</h1>"+
			"<p>Your <b>%s</b> package (%d headshots) is ready to go.</p>"+
			"<p>Upload 10-20 selfies to start training your AI model.</p>"+
			"<p>Order reference: %s</p>",
		order.Tier, order.HeadshotCount, order.ID)
	return m.send(email, subject, body)
}

func (m *Mailer) SendTrainingStarted(email string, order *models.Order) error {
	subject := "We're training your AI model"
	body := fmt.Sprintf(
		"<h1>Training started</h1>"+
			"<p>Your photos are in. Training usually takes 20-30 minutes, "+
			"and generation starts automatically after that.</p>"+
			"<p>Order reference: %s</p>",
		order.ID)
	return m.send(email, subject, body)
}

func (m *Mailer) SendHeadshotsReady(email string, order *models.Order) error {
	subject := "Your headshots are ready!"
	body := fmt.Sprintf(
		"<h1>They're here</h1>"+
			"<p>All %d of your professional headshots are ready to download.</p>"+
			"<p>Order reference: %s</p>",
		order.HeadshotCount, order.ID)
	return m.send(email, subject, body)
}

func (m *Mailer) SendGenerationFailed(email string, order *models.Order, reason string) error {
	subject := "A problem with your iHeadshot order"
	body := fmt.Sprintf(
		"<h1>Something went wrong</h1>"+
			"<p>We hit a problem while generating your headshots: %s</p>"+
			"<p>Our team has been notified and will restart your order. "+
			"No action is needed on your side.</p>"+
			"<p>Order reference: %s</p>",
		reason, order.ID)
	return m.send(email, subject, body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.cfg.Username == "" {
		return fmt.Errorf("mailer: SMTP_USERNAME not configured")
	}

	from := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	raw := buildRaw(from, to, subject, htmlBody)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, raw)
}

func buildRaw(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
