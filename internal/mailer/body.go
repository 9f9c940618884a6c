package mailer

import (
	"bytes"
	_ "embed"
	"text/template"
	"time"
)

// bodyTemplate is the plain-text message body.
//
//go:embed body.txt
var bodyTemplate string

//nolint:gochecknoglobals // Parsed once
var body = template.Must(template.New("body").Parse(bodyTemplate))

// renderBody renders the message body for an attachment generated at the given time.
func renderBody(attachment string, generated time.Time) (string, error) {
	var buf bytes.Buffer
	if err := body.Execute(&buf, map[string]any{
		"Attachment": attachment,
		"Generated":  generated,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
