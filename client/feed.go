package client

import "context"

// Feed is the conversation list for the signed-in user. It is a plain
// fetch, independent of the live channel.
type Feed struct {
	api      *Client
	identity Identity
}

func NewFeed(api *Client, identity Identity) *Feed {
	return &Feed{api: api, identity: identity}
}

func (f *Feed) Load(ctx context.Context) ([]Conversation, error) {
	return f.api.ConversationsForUser(ctx, f.identity.UserID)
}

// Partner returns the other member of a two-member conversation.
func (f *Feed) Partner(conv Conversation) (User, bool) {
	for _, m := range conv.Members {
		if m.ID != f.identity.UserID {
			return m, true
		}
	}
	return User{}, false
}

// Preview is the list row's last-message line, prefixed with "You: " when
// the signed-in user wrote it.
func (f *Feed) Preview(conv Conversation) string {
	if len(conv.Messages) == 0 {
		return ""
	}
	last := conv.Messages[0]
	if last.AuthorID == f.identity.UserID {
		return "You: " + last.Content
	}
	return last.Content
}
