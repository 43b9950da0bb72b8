// Package gatectx defines the per-request ambient context threaded through
// every handler, login step, and backend call (§4.3).
package gatectx

import (
	"context"
	"log/slog"

	"github.com/osu-server/bancho-gateway/internal/backend"
)

// Context is created once per inbound HTTP request and is the single
// handle downstream code uses to reach the outside world: the correlation
// id, the four backend clients, a request-scoped logger, and — for
// packet-dispatch endpoints — the already-fetched Session.
type Context struct {
	Ctx       context.Context
	RequestID string
	Log       *slog.Logger

	Users    *backend.UsersClient
	Chats    *backend.ChatsClient
	Beatmaps *backend.BeatmapsClient
	Scores   *backend.ScoresClient

	// Session is populated by the /v1/bancho handler after it validates
	// the osu-token header; it is nil for /v1/login (no session exists
	// yet) and for /v1/web/... (unauthenticated surface).
	Session *backend.Session
}

// New builds a request Context. clients is expected to be a long-lived,
// process-wide set of service clients (they hold the shared *http.Client);
// New never constructs its own.
func New(ctx context.Context, requestID string, log *slog.Logger, users *backend.UsersClient, chats *backend.ChatsClient, beatmaps *backend.BeatmapsClient, scores *backend.ScoresClient) *Context {
	return &Context{
		Ctx:       ctx,
		RequestID: requestID,
		Log:       log.With("request_id", requestID),
		Users:     users,
		Chats:     chats,
		Beatmaps:  beatmaps,
		Scores:    scores,
	}
}

// WithSession returns a shallow copy of c carrying session, used once the
// /v1/bancho handler has validated the osu-token header.
func (c *Context) WithSession(session *backend.Session) *Context {
	cp := *c
	cp.Session = session
	return &cp
}
