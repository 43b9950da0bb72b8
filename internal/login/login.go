// Package login implements the /v1/login ceremony (§4.6): parse the raw
// osu! login text, authenticate, and build the initial packet buffer the
// client needs to enter the chat lobby.
package login

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
	"github.com/osu-server/bancho-gateway/internal/gatewayerr"
	"github.com/osu-server/bancho-gateway/internal/handlers"
)

// clientPrivileges is the fixed privilege mask every logged-in account
// carries. The full privilege model is out of scope (§4.6); this constant
// and its client-side byte mask are the only privilege bits the gateway
// ever produces. It deliberately clears bit 3, the elevated-privilege bit
// SEND_PRIVATE_MESSAGE checks to bypass a recipient's pm_private flag, so
// that bypass stays meaningful instead of being unconditionally true.
const clientPrivileges int32 = 0x7FFFFFFF &^ (1 << 3)

// ErrMalformedBody is returned when the raw login text doesn't match the
// expected username\npassword\nclient-info shape. It wraps
// gatewayerr.ErrValidation so callers can check either sentinel.
var ErrMalformedBody = fmt.Errorf("login: malformed body: %w", gatewayerr.ErrValidation)

// Request is the parsed osu! login text (§4.6).
type Request struct {
	Username    string
	PasswordMD5 string
	OsuVersion  string
	UTCOffset   int8
	DisplayCity bool
	PMPrivate   bool
}

// Parse decodes the raw login body. The client-hash group is split off but
// otherwise ignored — the gateway has no hardware-ban surface (Non-goals).
func Parse(raw string) (Request, error) {
	lines := strings.SplitN(raw, "\n", 3)
	if len(lines) < 3 {
		return Request{}, ErrMalformedBody
	}
	fields := strings.SplitN(strings.TrimRight(lines[2], "\r\n"), "|", 5)
	if len(fields) < 4 {
		return Request{}, ErrMalformedBody
	}

	var req Request
	req.Username = lines[0]
	req.PasswordMD5 = lines[1]
	req.OsuVersion = fields[0]

	offset, err := strconv.Atoi(fields[1])
	if err != nil {
		return Request{}, ErrMalformedBody
	}
	req.UTCOffset = int8(offset)
	req.DisplayCity = fields[2] == "1"
	if len(fields) >= 5 {
		req.PMPrivate = fields[4] == "1"
	}
	return req, nil
}

// Result is the outcome of a login attempt: either a full packet buffer
// plus session id, or a failure that the caller renders as
// ACCOUNT_ID(-1) + cho-token: no.
type Result struct {
	Buffer    []byte
	SessionID string
	OK        bool
}

// welcomeMessage is the NOTIFICATION text appended to every successful
// login (§4.6 step 10).
const welcomeMessage = "Welcome to the server."

// Run executes the eleven-step login sequence against gc's backend clients.
// gc.Session is not yet populated when Run is called — it has no meaning
// until a session exists.
func Run(gc *gatectx.Context, req Request) Result {
	// Step 1: already-logged-in check.
	existing, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, req.Username)
	if err != nil {
		gc.Log.Warn("login: list presences failed", "err", err)
		return Result{}
	}
	if len(existing) > 0 {
		buf := codec.WritePacket(codec.ServerNotification, codec.NotificationBody("Your account is already logged in."))
		return Result{Buffer: buf}
	}

	// Step 2: authenticate.
	session, err := gc.Users.Login(gc.Ctx, gc.RequestID, req.Username, req.PasswordMD5)
	if err != nil {
		gc.Log.Warn("login: authentication failed", "username", req.Username, "err", err)
		return Result{}
	}

	var buf []byte

	// Step 3: protocol version, account id, privileges.
	buf = append(buf, codec.WritePacket(codec.ServerProtocolVersion, codec.Int32Body(19))...)
	buf = append(buf, codec.WritePacket(codec.ServerAccountID, codec.Int32Body(int32(session.AccountID)))...)
	buf = append(buf, codec.WritePacket(codec.ServerPrivileges, codec.Int32Body(clientPrivileges))...)

	// Step 4: channel list.
	chats, err := gc.Chats.ListChats(gc.Ctx, gc.RequestID)
	if err != nil {
		gc.Log.Warn("login: list chats failed", "err", err)
		return Result{}
	}
	for _, chat := range chats {
		if chat.Name == "#lobby" {
			continue
		}
		members, err := gc.Chats.ListMembers(gc.Ctx, gc.RequestID, chat.ChatID)
		if err != nil {
			gc.Log.Warn("login: list members failed", "chat_id", chat.ChatID, "err", err)
			return Result{}
		}
		buf = append(buf, codec.WritePacket(codec.ServerChannelInfo,
			codec.ChannelInfoBody(chat.Name, chat.Topic, uint16(len(members))))...)
	}
	buf = append(buf, codec.WritePacket(codec.ServerChannelInfoEnd, codec.EmptyBody())...)

	// Step 5: friends list, silence end.
	buf = append(buf, codec.WritePacket(codec.ServerFriendsList, codec.FriendsListBody(nil))...)
	buf = append(buf, codec.WritePacket(codec.ServerSilenceEnd, codec.Int32Body(0))...)

	// Step 6: create presence.
	presence, err := gc.Users.CreatePresence(gc.Ctx, gc.RequestID, backend.Presence{
		SessionID:   session.SessionID,
		AccountID:   session.AccountID,
		Username:    req.Username,
		Privileges:  clientPrivileges,
		OsuVersion:  req.OsuVersion,
		UTCOffset:   req.UTCOffset,
		DisplayCity: req.DisplayCity,
		PMPrivate:   req.PMPrivate,
	})
	if err != nil {
		gc.Log.Warn("login: create presence failed", "err", err)
		return Result{}
	}

	// Step 7: own stats.
	stats, err := gc.Users.GetStats(gc.Ctx, gc.RequestID, session.AccountID, presence.GameMode)
	if err != nil {
		gc.Log.Warn("login: get stats failed", "err", err)
		return Result{}
	}

	// Step 8: self USER_PRESENCE + USER_STATS.
	selfPresencePacket := handlers.BuildUserPresencePacket(*presence, 0)
	selfStatsPacket := handlers.BuildUserStatsPacket(*presence, *stats)
	buf = append(buf, selfPresencePacket...)
	buf = append(buf, selfStatsPacket...)

	// Step 9: fan out to and from every other presence.
	others, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, "")
	if err != nil {
		gc.Log.Warn("login: list all presences failed", "err", err)
		return Result{}
	}
	for _, other := range others {
		if other.SessionID == session.SessionID {
			continue
		}
		otherStats, err := gc.Users.GetStats(gc.Ctx, gc.RequestID, other.AccountID, other.GameMode)
		if err != nil {
			gc.Log.Warn("login: get other stats failed", "account_id", other.AccountID, "err", err)
			continue
		}
		buf = append(buf, handlers.BuildUserPresencePacket(other, 0)...)
		buf = append(buf, handlers.BuildUserStatsPacket(other, *otherStats)...)

		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, other.SessionID, append(append([]byte{}, selfPresencePacket...), selfStatsPacket...)); err != nil {
			gc.Log.Warn("login: enqueue self presence/stats failed", "to_session", other.SessionID, "err", err)
		}
	}

	// Step 10: welcome notification.
	buf = append(buf, codec.WritePacket(codec.ServerNotification, codec.NotificationBody(welcomeMessage))...)

	return Result{Buffer: buf, SessionID: session.SessionID.String(), OK: true}
}
