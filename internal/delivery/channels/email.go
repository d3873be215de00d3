// Package channels chứa các kênh gửi của Delivery System.
package channels

import (
	"fmt"

	"estate_crm/config"
	"estate_crm/internal/utility"

	"gopkg.in/gomail.v2"
)

// EmailChannel gửi email qua SMTP cấu hình trong env.
type EmailChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailChannel tạo EmailChannel từ cấu hình server.
// Trả về nil nếu SMTP chưa được cấu hình (deploy không cần gửi email).
func NewEmailChannel(cfg *config.Configuration) *EmailChannel {
	if cfg == nil || cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return nil
	}
	return &EmailChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// Send gửi một email đã render sẵn subject/content.
func (ch *EmailChannel) Send(recipient, subject, content string) error {
	if recipient == "" {
		return fmt.Errorf("recipient rỗng")
	}
	if err := utility.ValidateEmail(recipient); err != nil {
		return fmt.Errorf("recipient không phải địa chỉ email hợp lệ: %s", recipient)
	}
	if subject == "" {
		subject = "Thông báo từ hệ thống"
	}

	htmlContent := fmt.Sprintf("<div style='font-family:sans-serif;font-size:14px;'>%s</div>", content)

	msg := gomail.NewMessage()
	msg.SetHeader("From", ch.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlContent)

	dialer := gomail.NewDialer(ch.host, ch.port, ch.username, ch.password)
	return dialer.DialAndSend(msg)
}
