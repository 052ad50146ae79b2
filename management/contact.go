package management

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/internal/utils"
	"github.com/jrsteele09/go-tenant-auth/notifier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	ContactSentMessage = "Contact info sent successfully"

	newContactSubject      = "New website contact"
	contactReceivedSubject = "Contact received"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// Contact forwards website contact requests to the team inbox and
// acknowledges them to the sender.
type Contact struct {
	notifier  notifier.Notifier
	inbox     string
	testEmail string
}

// NewContact builds the contact flow. Requests from testEmail are accepted but
// never mailed.
func NewContact(n notifier.Notifier, inbox, testEmail string) (*Contact, error) {
	if n == nil {
		return nil, errors.New("[management.NewContact] notifier is required")
	}
	if inbox == "" {
		return nil, errors.New("[management.NewContact] inbox is required")
	}
	return &Contact{notifier: n, inbox: inbox, testEmail: testEmail}, nil
}

func (c *Contact) Submit(ctx context.Context, in ContactInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", apperrors.Invalid("name is required")
	}
	if !utils.IsEmail(in.Email) {
		return "", apperrors.Invalid("a valid email is required")
	}

	if c.testEmail != "" && strings.EqualFold(in.Email, c.testEmail) {
		log.Debug().Str("email", in.Email).Msg("contact from test user not mailed")
		return ContactSentMessage, nil
	}

	data := notifier.ContactData{Name: in.Name, Email: in.Email, Phone: in.Phone, Company: in.Company}
	if err := c.send(ctx, c.inbox, newContactSubject, notifier.TemplateNewContact, data); err != nil {
		return "", err
	}
	if err := c.send(ctx, in.Email, contactReceivedSubject, notifier.TemplateContactReceived, data); err != nil {
		return "", err
	}
	return ContactSentMessage, nil
}

func (c *Contact) send(ctx context.Context, to, subject, template string, data notifier.ContactData) error {
	body, err := notifier.Render(template, data)
	if err != nil {
		return errors.Wrap(err, "[Contact.send]")
	}
	if err := c.notifier.Send(ctx, to, subject, body); err != nil {
		return errors.Wrapf(err, "[Contact.send] %s", subject)
	}
	return nil
}
