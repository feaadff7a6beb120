// Package collab – fanout.go computes the recipient set for a posted
// message. Rules: explicit mentions and task subscribers are notified,
// the sender never is, and each recipient gets exactly one notification
// per message no matter how many paths reach them.
package collab

import "github.com/openclaw/missionctl/pkg/missionctl/store"

// Recipients returns the deduplicated set of agent ids to notify for a
// message from fromAgentID, given its explicit mentions and the task's
// current subscribers. Order is deterministic: mentions first (input
// order), then remaining subscribers.
func Recipients(fromAgentID string, mentions, subscriberIDs []string) []string {
	seen := map[string]bool{fromAgentID: true} // Self-notify always suppressed.
	out := make([]string, 0, len(mentions)+len(subscriberIDs))

	for _, id := range mentions {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range subscriberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// buildNotifications materializes one notification row per recipient,
// each carrying a denormalized copy of the raw message text.
func buildNotifications(recipients []string, fromAgentID, content, taskID string) []store.Notification {
	ns := make([]store.Notification, 0, len(recipients))
	for _, r := range recipients {
		ns = append(ns, store.Notification{
			MentionedAgentID: r,
			FromAgentID:      fromAgentID,
			Content:          content,
			TaskID:           taskID,
		})
	}
	return ns
}
