// Package notify доставляет пользователю служебные письма (активация аккаунта).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Message исходящее письмо
type Message struct {
	To      string
	Subject string
	Body    string
}

//go:generate moq -out sender_mock.go . Sender

// Sender отправляет письма
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender пишет письмо в лог вместо отправки. Используется, когда SMTP не настроен.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender создает LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send логирует письмо
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "outgoing mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_len", len(msg.Body)))
	return nil
}

// SMTPConfig параметры SMTP сервера
type SMTPConfig struct {
	Host     string
	Username string
	Password string
	From     string
	Port     int
}

// sendMailFunc сигнатура smtp.SendMail, подменяется в тестах
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender отправляет письма через SMTP с PLAIN авторизацией
type SMTPSender struct {
	send sendMailFunc
	cfg  SMTPConfig
}

// NewSMTPSender создает SMTPSender
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

// Send отправляет письмо
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, s.cfg.From, []string{msg.To}, s.compose(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

// compose собирает RFC 5322 сообщение
func (s *SMTPSender) compose(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.cfg.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
