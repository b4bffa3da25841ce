package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun delivers rendered messages through the Mailgun API.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), Sender: sender}
}

// Send sends m. HTML is optional; Text is the fallback body.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	out := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, out)
	return err
}
