package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// Logout implements §4.5 LOGOUT: delete the session's presence, delete the
// session, leave every chat it belongs to, then tell every other presence
// the account logged out. Each step only runs if the previous one
// succeeded; any backend error short-circuits to an empty response.
func Logout(gc *gatectx.Context, body []byte) []byte {
	sessionID := gc.Session.SessionID
	accountID := gc.Session.AccountID

	if err := gc.Users.DeletePresence(gc.Ctx, gc.RequestID, sessionID); err != nil {
		gc.Log.Warn("logout: delete presence failed", "err", err)
		return nil
	}

	if err := gc.Users.DeleteSession(gc.Ctx, gc.RequestID, sessionID); err != nil {
		gc.Log.Warn("logout: delete session failed", "err", err)
		return nil
	}

	chats, err := gc.Chats.ListChats(gc.Ctx, gc.RequestID)
	if err != nil {
		gc.Log.Warn("logout: list chats failed", "err", err)
		return nil
	}
	for _, chat := range chats {
		if err := gc.Chats.RemoveMember(gc.Ctx, gc.RequestID, chat.ChatID, sessionID); err != nil {
			gc.Log.Warn("logout: leave chat failed", "chat_id", chat.ChatID, "err", err)
			return nil
		}
	}

	presences, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, "")
	if err != nil {
		gc.Log.Warn("logout: list presences failed", "err", err)
		return nil
	}
	logoutBody := codec.UserLogoutBody(int32(accountID))
	packet := codec.WritePacket(codec.ServerUserLogout, logoutBody)
	for _, p := range presences {
		if p.SessionID == sessionID {
			continue
		}
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, p.SessionID, packet); err != nil {
			gc.Log.Warn("logout: enqueue USER_LOGOUT failed", "to_session", p.SessionID, "err", err)
		}
	}
	return nil
}
