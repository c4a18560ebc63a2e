package email

import (
	"fmt"
	"github.com/spf13/viper"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

type EmailOutbound struct {
	Cfg *viper.Viper

	// SendMail defaults to smtp.SendMail.
	SendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	Now      func() time.Time

	auth     smtp.Auth
	addr     string
	email    string
	fromName string
}

func (out *EmailOutbound) Init() {
	out.email = out.Cfg.GetString("email.user")
	out.fromName = out.Cfg.GetString("email.from_name")
	out.addr = fmt.Sprintf("%s:%d", out.Cfg.GetString("email.host"), out.Cfg.GetInt("email.port"))
	out.auth = smtp.CRAMMD5Auth(out.Cfg.GetString("email.user"), out.Cfg.GetString("email.password"))

	if out.SendMail == nil {
		out.SendMail = smtp.SendMail
	}
	if out.Now == nil {
		out.Now = time.Now
	}
}

// Send delivers a UTF-8 plain text message. Amounts in bodies carry currency symbols.
func (out *EmailOutbound) Send(to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	from := out.email
	if out.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", out.fromName), out.email)
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		from,
		strings.Join(to, ","),
		mime.QEncoding.Encode("utf-8", subject),
		out.Now().Format(time.RFC1123Z),
		body,
	))

	err := out.SendMail(out.addr, out.auth, out.email, to, message)
	if err != nil {
		return fmt.Errorf("email: send to %s: %w", strings.Join(to, ","), err)
	}

	return nil
}
