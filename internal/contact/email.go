package contact

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"performer-site-backend/internal/mail"
)

var notificationTemplate = template.Must(template.New("notification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333; border-bottom: 2px solid #4a90d9; padding-bottom: 10px;">
    New Contact Form Submission
  </h2>

  <div style="margin: 20px 0;">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Phone:</strong> {{.Phone}}</p>
    <p><strong>Event Type:</strong> {{.EventType}}</p>
    {{- if .Date}}
    <p><strong>Event Date:</strong> {{.Date}}</p>
    {{- end}}
  </div>

  <div style="margin: 20px 0; padding: 15px; background-color: #f5f5f5; border-radius: 5px;">
    <p style="margin: 0 0 10px 0; font-weight: bold;">Message:</p>
    <p style="margin: 0; white-space: pre-wrap;">{{.Message}}</p>
  </div>

  <p style="color: #666; font-size: 12px; margin-top: 30px;">
    This message was sent from the contact form on {{.SiteName}}{{if .Reference}} (ref {{.Reference}}){{end}}
  </p>
</div>
`))

// Composer builds notification emails for the site operator.
type Composer struct {
	From     string
	To       string
	SiteName string
}

type notificationData struct {
	SubmissionRequest
	SiteName  string
	Reference string
}

var subjectSanitizer = strings.NewReplacer("\r", " ", "\n", " ")

// Compose renders the notification for a validated submission. Submitter
// values are HTML-escaped.
func (c Composer) Compose(req SubmissionRequest, reference string) (mail.Message, error) {
	var body bytes.Buffer
	err := notificationTemplate.Execute(&body, notificationData{
		SubmissionRequest: req,
		SiteName:          c.SiteName,
		Reference:         reference,
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("render notification: %w", err)
	}

	return mail.Message{
		From:    c.From,
		To:      []string{c.To},
		Subject: "New Booking Inquiry from " + subjectSanitizer.Replace(req.Name),
		HTML:    body.String(),
		ReplyTo: req.Email,
	}, nil
}
