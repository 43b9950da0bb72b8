package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// UsersClient wraps the users microservice: accounts, sessions, presences,
// queued packets, and the spectator graph.
type UsersClient struct {
	c caller
}

// NewUsersClient builds a UsersClient targeting baseURL.
func NewUsersClient(httpClient doer, baseURL string, log *slog.Logger) *UsersClient {
	return &UsersClient{c: newCaller(httpClient, baseURL, log)}
}

type loginRequest struct {
	Username    string `json:"username"`
	PasswordMD5 string `json:"password_md5"`
}

// Login authenticates username/passwordMD5 and returns the new Session.
func (u *UsersClient) Login(ctx context.Context, requestID, username, passwordMD5 string) (*Session, error) {
	var s Session
	err := u.c.requestJSON(ctx, requestID, http.MethodPost, "/v1/sessions", nil,
		loginRequest{Username: username, PasswordMD5: passwordMD5}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession fetches a session by id.
func (u *UsersClient) GetSession(ctx context.Context, requestID string, sessionID uuid.UUID) (*Session, error) {
	var s Session
	path := fmt.Sprintf("/v1/sessions/%s", sessionID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type extendSessionRequest struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// ExtendSession PATCHes a session's expiry, used by every /v1/bancho poll.
func (u *UsersClient) ExtendSession(ctx context.Context, requestID string, sessionID uuid.UUID, expiresAt time.Time) (*Session, error) {
	var s Session
	path := fmt.Sprintf("/v1/sessions/%s", sessionID)
	err := u.c.requestJSON(ctx, requestID, http.MethodPatch, path, nil, extendSessionRequest{ExpiresAt: expiresAt}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession destroys a session at logout.
func (u *UsersClient) DeleteSession(ctx context.Context, requestID string, sessionID uuid.UUID) error {
	path := fmt.Sprintf("/v1/sessions/%s", sessionID)
	return u.c.requestJSON(ctx, requestID, http.MethodDelete, path, nil, nil, nil)
}

// FindSessionByAccountID resolves the (at most one) live session for an
// account, used by START_SPECTATING to find the host's session.
func (u *UsersClient) FindSessionByAccountID(ctx context.Context, requestID string, accountID int64) (*Session, error) {
	var sessions []Session
	q := query(intParam("account_id", accountID, 0))
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, "/v1/sessions", q, nil, &sessions); err != nil {
		return nil, err
	}
	if len(sessions) != 1 {
		return nil, ErrUnavailable
	}
	return &sessions[0], nil
}

// GetAccount fetches an account record by id.
func (u *UsersClient) GetAccount(ctx context.Context, requestID string, accountID int64) (*Account, error) {
	var a Account
	path := fmt.Sprintf("/v1/accounts/%d", accountID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetStats fetches (accountID, mode) stats.
func (u *UsersClient) GetStats(ctx context.Context, requestID string, accountID int64, mode uint8) (*Stats, error) {
	var s Stats
	path := fmt.Sprintf("/v1/accounts/%d/stats/%d", accountID, mode)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListPresences lists all presences, optionally filtered by username.
// An empty usernameFilter omits the query parameter entirely (§4.2).
func (u *UsersClient) ListPresences(ctx context.Context, requestID, usernameFilter string) ([]Presence, error) {
	var presences []Presence
	q := query(strParam("username", usernameFilter))
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, "/v1/presences", q, nil, &presences); err != nil {
		return nil, err
	}
	return presences, nil
}

// GetPresence fetches one session's presence.
func (u *UsersClient) GetPresence(ctx context.Context, requestID string, sessionID uuid.UUID) (*Presence, error) {
	var p Presence
	path := fmt.Sprintf("/v1/presences/%s", sessionID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePresence creates the presence row for a newly logged-in session.
func (u *UsersClient) CreatePresence(ctx context.Context, requestID string, p Presence) (*Presence, error) {
	var created Presence
	if err := u.c.requestJSON(ctx, requestID, http.MethodPost, "/v1/presences", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePresence applies a CHANGE_ACTION patch to a session's presence.
func (u *UsersClient) UpdatePresence(ctx context.Context, requestID string, sessionID uuid.UUID, patch PresencePatch) (*Presence, error) {
	var p Presence
	path := fmt.Sprintf("/v1/presences/%s", sessionID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodPatch, path, nil, patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePresence deletes a session's presence at logout.
func (u *UsersClient) DeletePresence(ctx context.Context, requestID string, sessionID uuid.UUID) error {
	path := fmt.Sprintf("/v1/presences/%s", sessionID)
	return u.c.requestJSON(ctx, requestID, http.MethodDelete, path, nil, nil, nil)
}

type enqueueRequest struct {
	Data []byte `json:"data"`
}

// EnqueuePacket appends an opaque packet to a session's mailbox. At-least
// once delivery is the downstream service's contract (§5): the gateway
// never retries a failed enqueue.
func (u *UsersClient) EnqueuePacket(ctx context.Context, requestID string, sessionID uuid.UUID, data []byte) error {
	path := fmt.Sprintf("/v1/sessions/%s/queued-packets", sessionID)
	return u.c.requestJSON(ctx, requestID, http.MethodPost, path, nil, enqueueRequest{Data: data}, nil)
}

// DrainQueuedPackets retrieves and clears a session's mailbox. Called once
// per /v1/bancho poll after the packet dispatch loop.
func (u *UsersClient) DrainQueuedPackets(ctx context.Context, requestID string, sessionID uuid.UUID) ([]QueuedPacket, error) {
	var packets []QueuedPacket
	path := fmt.Sprintf("/v1/sessions/%s/queued-packets", sessionID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &packets); err != nil {
		return nil, err
	}
	return packets, nil
}

type addSpectatorRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	AccountID int64     `json:"account_id"`
}

// AddSpectator creates a spectator → host edge.
func (u *UsersClient) AddSpectator(ctx context.Context, requestID string, hostSessionID, spectatorSessionID uuid.UUID, spectatorAccountID int64) (*Spectator, error) {
	var sp Spectator
	path := fmt.Sprintf("/v1/sessions/%s/spectators", hostSessionID)
	body := addSpectatorRequest{SessionID: spectatorSessionID, AccountID: spectatorAccountID}
	if err := u.c.requestJSON(ctx, requestID, http.MethodPost, path, nil, body, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// RemoveSpectator deletes a spectator → host edge.
func (u *UsersClient) RemoveSpectator(ctx context.Context, requestID string, hostSessionID, spectatorSessionID uuid.UUID) error {
	path := fmt.Sprintf("/v1/sessions/%s/spectators/%s", hostSessionID, spectatorSessionID)
	return u.c.requestJSON(ctx, requestID, http.MethodDelete, path, nil, nil, nil)
}

// ListSpectators lists every session currently spectating hostSessionID.
func (u *UsersClient) ListSpectators(ctx context.Context, requestID string, hostSessionID uuid.UUID) ([]Spectator, error) {
	var spectators []Spectator
	path := fmt.Sprintf("/v1/sessions/%s/spectators", hostSessionID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &spectators); err != nil {
		return nil, err
	}
	return spectators, nil
}

// GetSpectating looks up the host a session is currently spectating, used
// by STOP_SPECTATING.
func (u *UsersClient) GetSpectating(ctx context.Context, requestID string, sessionID uuid.UUID) (*Spectator, error) {
	var sp Spectator
	path := fmt.Sprintf("/v1/sessions/%s/spectating", sessionID)
	if err := u.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}
