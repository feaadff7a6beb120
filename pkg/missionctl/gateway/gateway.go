// Package gateway – gateway.go defines the black-box delivery boundary.
// The daemon only needs "deliver this text to this session"; whether
// that goes over HTTP to a running OpenClaw gateway or shells out to the
// openclaw CLI is an implementation detail.
package gateway

import (
	"context"
	"fmt"
)

// Gateway delivers a text payload to an agent's external session.
// An error means the delivery is not confirmed and must be retried.
type Gateway interface {
	// Deliver sends text to the session identified by sessionKey.
	// agentID is the logical recipient, passed through for targeting
	// and logging on the gateway side.
	Deliver(ctx context.Context, sessionKey, agentID, text string) error
}

// FormatNotification renders the text payload injected into an agent
// session. Names fall back to raw agent ids when the roster lookup has
// nothing better.
func FormatNotification(recipientName, senderName, content, taskTitle string) string {
	msg := fmt.Sprintf("📬 [NOTIFICATION] @%s: %s", recipientName, content)
	if senderName != "" {
		msg += fmt.Sprintf(" (from %s", senderName)
		if taskTitle != "" {
			msg += fmt.Sprintf(" on task: %s", taskTitle)
		}
		msg += ")"
	}
	return msg
}
