package mailing

import (
	"Foodgram-Backend/internal/utils"
	"fmt"
	"gopkg.in/gomail.v2"
	"html"
	"strconv"
)

// Sender delivers one message. SendMail is the SMTP implementation.
type Sender func(toEmail string, subject string, body string) error

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func SendMail(toEmail string, subject string, body string) error {
	emailConfig := LoadMailConfig()

	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", emailConfig.SMTPEmail, emailConfig.SMTPSender)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	port, err := strconv.Atoi(emailConfig.SMTPPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT %q: %w", emailConfig.SMTPPort, err)
	}
	dialer := gomail.NewDialer(
		emailConfig.SMTPHost,
		port,
		emailConfig.SMTPEmail,
		emailConfig.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}

func ResetPasswordBody(username, link string) string {
	return fmt.Sprintf(
		`<p>Hello %s,</p><p>Follow <a href="%s">this link</a> to choose a new Foodgram password. The link expires in one hour.</p><p>If you did not ask for a reset you can ignore this message.</p>`,
		html.EscapeString(username),
		html.EscapeString(link),
	)
}
