package outreach

import (
	"context"
	"fmt"
	"html"
	"net"
	"strings"
	"time"

	"github.com/devvault2026/revampai/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers one outreach email.
type Sender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// SMTPSender delivers outreach drafts over the operator's own SMTP server.
type SMTPSender struct {
	cfg config.OutreachConfig
}

func NewSMTPSender(cfg config.OutreachConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, toEmail, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetOutreachFromName(), s.cfg.GetOutreachFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	msg.AddAlternativeString(gomail.TypeTextHTML, renderHTMLBody(body))

	client, err := gomail.NewClient(s.cfg.GetSMTPHost(),
		gomail.WithPort(s.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.GetSMTPUsername()),
		gomail.WithPassword(s.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// renderHTMLBody wraps the plain-text draft in paragraphs so clients that
// prefer HTML render the same copy.
func renderHTMLBody(body string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
