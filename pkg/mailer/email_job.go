package mailer

import (
	"errors"
	"strings"

	tpl "github.com/oksasatya/campus-resource-tracker/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (rendered with Data) or Subject plus Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome" or "resource_rated"
	Data     map[string]any `json:"data,omitempty"`
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

var ErrEmptyJob = errors.New("email job has no recipient or content")

// Render turns a job into a deliverable message.
func (j EmailJob) Render() (Message, error) {
	to := strings.TrimSpace(j.To)
	if to == "" {
		return Message{}, ErrEmptyJob
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return Message{}, ErrEmptyJob
		}
		return Message{To: to, Subject: j.Subject, Text: j.Text, HTML: j.HTML}, nil
	}
	subject, text, html, err := tpl.Render(j.Template, j.Data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, Text: text, HTML: html}, nil
}
