// Package providers adapts the supported login mechanisms to one identity shape.
package providers

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
)

// Tag names a login provider.
type Tag string

const (
	TagEmail     Tag = "email"
	TagGoogle    Tag = "google"
	TagMicrosoft Tag = "microsoft"
)

// ParseTag maps a route or request value to a provider tag.
func ParseTag(s string) (Tag, error) {
	switch t := Tag(strings.ToLower(strings.TrimSpace(s))); t {
	case TagEmail, TagGoogle, TagMicrosoft:
		return t, nil
	}
	return "", apperrors.ErrUnsupportedProvider
}

// Federated reports whether the provider redirects to an external identity provider.
func (t Tag) Federated() bool {
	return t == TagGoogle || t == TagMicrosoft
}

// Identity is the verified result of a provider login.
type Identity struct {
	Provider Tag
	Email    string
	Name     string
	Subject  string
}

// Federated is an OAuth2 authorization code provider.
type Federated interface {
	Tag() Tag
	// AuthCodeURL returns the provider URL the browser is sent to.
	AuthCodeURL(callbackURL, state string) string
	// Identify exchanges code for tokens and returns the verified identity.
	// Every failure is reported as ErrProviderAuthFailed.
	Identify(ctx context.Context, code, callbackURL string) (*Identity, error)
}

// Registry dispatches on provider tag.
type Registry struct {
	federated map[Tag]Federated
}

func NewRegistry(providers ...Federated) *Registry {
	r := &Registry{federated: make(map[Tag]Federated)}
	for _, p := range providers {
		if p != nil {
			r.federated[p.Tag()] = p
		}
	}
	return r
}

// Federated returns the provider registered for tag or ErrUnsupportedProvider.
func (r *Registry) Federated(tag Tag) (Federated, error) {
	p, ok := r.federated[tag]
	if !ok {
		return nil, apperrors.ErrUnsupportedProvider
	}
	return p, nil
}
