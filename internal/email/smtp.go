package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender отправляет готовое сообщение. *gomail.Dialer удовлетворяет интерфейсу.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig — параметры SMTP-шлюза.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPGateway отправляет письма через SMTP (gomail).
type SMTPGateway struct {
	sender Sender
	from   string
}

// Проверка на соответствие интерфейсу Gateway.
var _ Gateway = (*SMTPGateway)(nil)

// NewSMTPGateway создаёт шлюз с gomail.Dialer.
func NewSMTPGateway(cfg SMTPConfig) *SMTPGateway {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewWithSender(dialer, cfg.From)
}

// NewWithSender создаёт шлюз с произвольным Sender.
func NewWithSender(s Sender, from string) *SMTPGateway {
	return &SMTPGateway{sender: s, from: from}
}

func (g *SMTPGateway) SendRegistrationCode(ctx context.Context, email, code string) error {
	const op = "email.smtp.SendRegistrationCode"

	body := fmt.Sprintf(`
		<h3>注册验证码</h3>
		<p>您的验证码是：</p>
		<p><strong>%s</strong></p>
		<p>验证码 10 分钟内有效。如果这不是您本人的操作，请忽略此邮件。</p>
	`, code)

	if err := g.send(ctx, email, "注册验证码", body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (g *SMTPGateway) SendPasswordResetCode(ctx context.Context, email, code string) error {
	const op = "email.smtp.SendPasswordResetCode"

	body := fmt.Sprintf(`
		<h3>重置密码</h3>
		<p>我们收到了重置您账户密码的请求。</p>
		<p>您的验证码（10 分钟内有效）：</p>
		<p><strong>%s</strong></p>
		<p>如果这不是您本人的操作，可以忽略此邮件。</p>
	`, code)

	if err := g.send(ctx, email, "重置密码验证码", body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (g *SMTPGateway) SendWelcomeEmail(ctx context.Context, email, username string) error {
	const op = "email.smtp.SendWelcomeEmail"

	body := fmt.Sprintf(`
		<h2>欢迎，%s！</h2>
		<p>您的账户已创建成功。</p>
	`, username)

	if err := g.send(ctx, email, "欢迎加入", body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (g *SMTPGateway) send(ctx context.Context, to, subject, html string) error {
	// DialAndSend не принимает контекст: проверяем отмену до начала.
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	return g.sender.DialAndSend(m)
}
