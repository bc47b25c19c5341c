// Package notify delivers best-effort messages about orders and accounts.
// Callers log delivery failures and carry on.
package notify

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/models"
)

const (
	KeyOrderAssigned = "order.assigned"
	KeyPasswordReset = "password.reset"
)

type AssignmentMessage struct {
	OrderID  uint   `json:"order_id"`
	ClientID uint   `json:"client_id"`
	WasherID uint   `json:"washer_id"`
	WashType string `json:"wash_type"`
}

type PasswordResetMessage struct {
	ClientID uint   `json:"client_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Link     string `json:"link"`
}

func assignmentMessage(o *models.WashOrder) AssignmentMessage {
	msg := AssignmentMessage{
		OrderID:  o.ID,
		ClientID: o.ClientID,
		WashType: o.WashType,
	}
	if o.WasherID != nil {
		msg.WasherID = *o.WasherID
	}
	return msg
}

// LogNotifier writes notifications to the log. Reset links carry a bearer
// token and are redacted unless RevealLinks is set.
type LogNotifier struct {
	log         *logrus.Entry
	revealLinks bool
}

type LogOption func(*LogNotifier)

// RevealLinks logs reset links in full. Meant for local development.
func RevealLinks(reveal bool) LogOption {
	return func(n *LogNotifier) { n.revealLinks = reveal }
}

func NewLogNotifier(log *logrus.Entry, opts ...LogOption) *LogNotifier {
	n := &LogNotifier{log: log}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// redactLink drops the token, the last path segment of a reset link.
func redactLink(link string) string {
	i := strings.LastIndex(link, "/")
	if i < 0 {
		return "[redacted]"
	}
	return link[:i+1] + "[redacted]"
}

func (n *LogNotifier) NotifyAssignment(_ context.Context, o *models.WashOrder) error {
	msg := assignmentMessage(o)
	n.log.WithFields(logrus.Fields{
		"order_id":  msg.OrderID,
		"client_id": msg.ClientID,
		"washer_id": msg.WasherID,
	}).Info("order assigned")
	return nil
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, c *models.Client, link string) error {
	if !n.revealLinks {
		link = redactLink(link)
	}
	n.log.WithFields(logrus.Fields{
		"client_id": c.ID,
		"email":     c.Email,
		"link":      link,
	}).Info("password reset requested")
	return nil
}
