package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-tenant-auth/magiclink"
	"github.com/jrsteele09/go-tenant-auth/notifier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Delivery describes one magic link email.
type Delivery struct {
	To          string
	AccountName string
	TenantName  string
	CallbackURL string
	Token       string
}

// Link joins the callback URL and the token.
func (d Delivery) Link() string {
	return d.CallbackURL + d.Token
}

// EmailProvider is the passwordless provider: it signs magic links and mails them.
type EmailProvider struct {
	codec    *magiclink.Codec
	notifier notifier.Notifier
}

func NewEmailProvider(codec *magiclink.Codec, n notifier.Notifier) (*EmailProvider, error) {
	if codec == nil {
		return nil, errors.New("[providers.NewEmailProvider] codec is required")
	}
	if n == nil {
		return nil, errors.New("[providers.NewEmailProvider] notifier is required")
	}
	return &EmailProvider{codec: codec, notifier: n}, nil
}

func (p *EmailProvider) Tag() Tag {
	return TagEmail
}

// MaxAge is how long an issued link stays redeemable.
func (p *EmailProvider) MaxAge() time.Duration {
	return p.codec.MaxAge()
}

func (p *EmailProvider) IssueLink(email string) (string, error) {
	return p.codec.Issue(email)
}

// Verify returns the email a link was issued for.
func (p *EmailProvider) Verify(raw string) (*Identity, error) {
	email, err := p.codec.Verify(raw)
	if err != nil {
		return nil, err
	}
	return &Identity{Provider: TagEmail, Email: email, Subject: email}, nil
}

// Deliver renders and sends the login email. Failures are logged and not
// returned; the login request still succeeds.
func (p *EmailProvider) Deliver(ctx context.Context, d Delivery) {
	body, err := notifier.Render(notifier.TemplateMagicLink, notifier.MagicLinkData{
		TenantName:   d.TenantName,
		AccountName:  d.AccountName,
		Link:         d.Link(),
		ValidMinutes: int(p.codec.MaxAge() / time.Minute),
	})
	if err != nil {
		log.Error().Err(err).Str("to", d.To).Msg("render magic link email")
		return
	}

	subject := fmt.Sprintf("%s - Login link", d.TenantName)
	if err := p.notifier.Send(ctx, d.To, subject, body); err != nil {
		log.Error().Err(err).Str("to", d.To).Msg("send magic link email")
	}
}
