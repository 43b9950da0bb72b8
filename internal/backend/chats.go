package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// ChatsClient wraps the chats microservice: chat rooms and memberships.
type ChatsClient struct {
	c caller
}

// NewChatsClient builds a ChatsClient targeting baseURL.
func NewChatsClient(httpClient doer, baseURL string, log *slog.Logger) *ChatsClient {
	return &ChatsClient{c: newCaller(httpClient, baseURL, log)}
}

// ListChats lists every chat room.
func (c *ChatsClient) ListChats(ctx context.Context, requestID string) ([]Chat, error) {
	var chats []Chat
	if err := c.c.requestJSON(ctx, requestID, http.MethodGet, "/v1/chats", nil, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetChatByName looks up a chat by its "#name". Per §4.5 CHANNEL_JOIN /
// CHANNEL_PART, the lookup must resolve to exactly one chat.
func (c *ChatsClient) GetChatByName(ctx context.Context, requestID, name string) (*Chat, error) {
	var chats []Chat
	q := query(strParam("name", name))
	if err := c.c.requestJSON(ctx, requestID, http.MethodGet, "/v1/chats", q, nil, &chats); err != nil {
		return nil, err
	}
	if len(chats) != 1 {
		return nil, ErrUnavailable
	}
	return &chats[0], nil
}

// ListMembers lists every member of one chat.
func (c *ChatsClient) ListMembers(ctx context.Context, requestID string, chatID int64) ([]Member, error) {
	var members []Member
	path := fmt.Sprintf("/v1/chats/%d/members", chatID)
	if err := c.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember joins a session to a chat.
func (c *ChatsClient) AddMember(ctx context.Context, requestID string, chatID int64, m Member) (*Member, error) {
	var created Member
	path := fmt.Sprintf("/v1/chats/%d/members", chatID)
	if err := c.c.requestJSON(ctx, requestID, http.MethodPost, path, nil, m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// RemoveMember removes a session's membership in a chat.
func (c *ChatsClient) RemoveMember(ctx context.Context, requestID string, chatID int64, sessionID uuid.UUID) error {
	path := fmt.Sprintf("/v1/chats/%d/members/%s", chatID, sessionID)
	return c.c.requestJSON(ctx, requestID, http.MethodDelete, path, nil, nil, nil)
}
