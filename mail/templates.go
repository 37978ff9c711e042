// fixit/mail/templates.go
package mail

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the markdown source is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

const resetSubject = "FixIt: Passwort zurücksetzen"

const resetBody = `# Passwort zurücksetzen

Für Ihr Administratorkonto wurde das Zurücksetzen des Passworts angefordert.

[Neues Passwort festlegen](%[1]s)

Falls der Link nicht funktioniert, kopieren Sie diese Adresse in Ihren Browser:
%[1]s

Der Link ist eine Stunde gültig. Wenn Sie diese Anfrage nicht gestellt haben, können Sie diese E-Mail ignorieren.
`

// ResetPasswordMessage builds the password reset email for recipient.
func ResetPasswordMessage(recipient, link string) (Message, error) {
	text := fmt.Sprintf(resetBody, link)
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(text), &buf); err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	return Message{
		To:      []string{recipient},
		Subject: resetSubject,
		HTML:    buf.String(),
		Text:    text,
	}, nil
}
