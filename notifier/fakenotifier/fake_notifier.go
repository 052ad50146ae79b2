package fakenotifier

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-tenant-auth/notifier"
)

var _ notifier.Notifier = (*FakeNotifier)(nil)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// FakeNotifier records every message. Err, when set, is returned from Send.
type FakeNotifier struct {
	Err      error
	messages []Message
	lock     sync.RWMutex
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.messages = append(n.messages, Message{To: to, Subject: subject, HTML: htmlBody})
	return nil
}

func (n *FakeNotifier) Messages() []Message {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return append([]Message(nil), n.messages...)
}

func (n *FakeNotifier) Last() (Message, bool) {
	n.lock.RLock()
	defer n.lock.RUnlock()
	if len(n.messages) == 0 {
		return Message{}, false
	}
	return n.messages[len(n.messages)-1], true
}
