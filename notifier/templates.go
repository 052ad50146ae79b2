package notifier

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/pkg/errors"
)

const (
	TemplateMagicLink       = "magic_link.html"
	TemplateNewContact      = "new_contact.html"
	TemplateContactReceived = "contact_received.html"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// MagicLinkData fills the magic link email.
type MagicLinkData struct {
	TenantName   string
	AccountName  string
	Link         string
	ValidMinutes int
}

// ContactData fills the contact emails.
type ContactData struct {
	Name    string
	Email   string
	Phone   string
	Company string
}

// Render executes the named embedded template.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "[notifier.Render] %s", name)
	}
	return buf.String(), nil
}
