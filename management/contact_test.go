package management_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-tenant-auth/management"
	"github.com/jrsteele09/go-tenant-auth/notifier/fakenotifier"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	testInbox     = "hello@example.com"
	testTestEmail = "qa@example.com"
)

func newContact(t *testing.T) (*management.Contact, *fakenotifier.FakeNotifier) {
	t.Helper()
	n := fakenotifier.NewFakeNotifier()
	c, err := management.NewContact(n, testInbox, testTestEmail)
	require.NoError(t, err)
	return c, n
}

func TestContactSubmit(t *testing.T) {
	c, n := newContact(t)

	msg, err := c.Submit(context.Background(), management.ContactInput{
		Name:    testUserName,
		Email:   testUserEmail,
		Phone:   "600000000",
		Company: "Globex",
	})
	require.NoError(t, err)
	require.Equal(t, management.ContactSentMessage, msg)

	sent := n.Messages()
	require.Len(t, sent, 2)
	require.Equal(t, testInbox, sent[0].To)
	require.Equal(t, "New website contact", sent[0].Subject)
	require.Contains(t, sent[0].HTML, "Globex")
	require.Equal(t, testUserEmail, sent[1].To)
	require.Equal(t, "Contact received", sent[1].Subject)
}

func TestContactFromTestUserIsNotMailed(t *testing.T) {
	c, n := newContact(t)

	msg, err := c.Submit(context.Background(), management.ContactInput{Name: "QA", Email: "QA@example.com"})
	require.NoError(t, err)
	require.Equal(t, management.ContactSentMessage, msg)
	require.Empty(t, n.Messages())
}

func TestContactRejects(t *testing.T) {
	c, _ := newContact(t)

	tests := []struct {
		name string
		in   management.ContactInput
	}{
		{"missing name", management.ContactInput{Email: testUserEmail}},
		{"bad email", management.ContactInput{Name: testUserName, Email: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Submit(context.Background(), tt.in)
			require.Error(t, err)
		})
	}
}

func TestContactSendFailure(t *testing.T) {
	c, n := newContact(t)
	n.Err = errors.New("ses unavailable")

	_, err := c.Submit(context.Background(), management.ContactInput{Name: testUserName, Email: testUserEmail})
	require.ErrorIs(t, err, n.Err)
}

func TestNewContactValidates(t *testing.T) {
	_, err := management.NewContact(nil, testInbox, "")
	require.Error(t, err)
	_, err = management.NewContact(fakenotifier.NewFakeNotifier(), "", "")
	require.Error(t, err)
}
