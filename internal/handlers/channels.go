package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// ChannelJoin implements §4.5 CHANNEL_JOIN: resolve the named chat, reject
// if the caller is already a member, add the caller as a member, broadcast
// a refreshed CHANNEL_INFO (user_count + 1) to every presence, and reply
// with CHANNEL_JOIN_SUCCESS. A lookup or membership failure drops the
// request silently.
func ChannelJoin(gc *gatectx.Context, body []byte) []byte {
	channel, err := codec.ParseChannelName(body)
	if err != nil {
		logDecodeError(gc, "channel_join", err)
		return nil
	}
	if clientOnlyChannels[channel] {
		return nil
	}

	chat, err := gc.Chats.GetChatByName(gc.Ctx, gc.RequestID, channel)
	if err != nil {
		gc.Log.Warn("channel_join: chat lookup failed", "channel", channel, "err", err)
		return nil
	}

	members, err := gc.Chats.ListMembers(gc.Ctx, gc.RequestID, chat.ChatID)
	if err != nil {
		gc.Log.Warn("channel_join: list members failed", "chat_id", chat.ChatID, "err", err)
		return nil
	}
	for _, m := range members {
		if m.SessionID == gc.Session.SessionID {
			return nil
		}
	}

	member := backend.Member{
		ChatID:    chat.ChatID,
		SessionID: gc.Session.SessionID,
		AccountID: gc.Session.AccountID,
	}
	if _, err := gc.Chats.AddMember(gc.Ctx, gc.RequestID, chat.ChatID, member); err != nil {
		gc.Log.Warn("channel_join: add member failed", "chat_id", chat.ChatID, "err", err)
		return nil
	}

	broadcastChannelInfo(gc, "channel_join", chat, uint16(len(members)+1))
	return codec.WritePacket(codec.ServerChannelJoinSuccess, codec.ChannelJoinSuccessBody(chat.Name))
}

// ChannelPart implements §4.5 CHANNEL_PART: resolve the named chat, drop
// silently if the caller isn't a member, remove the caller's membership,
// and broadcast a refreshed CHANNEL_INFO (user_count - 1) to every
// presence. There is no success response.
func ChannelPart(gc *gatectx.Context, body []byte) []byte {
	channel, err := codec.ParseChannelName(body)
	if err != nil {
		logDecodeError(gc, "channel_part", err)
		return nil
	}
	if clientOnlyChannels[channel] {
		return nil
	}

	chat, err := gc.Chats.GetChatByName(gc.Ctx, gc.RequestID, channel)
	if err != nil {
		gc.Log.Warn("channel_part: chat lookup failed", "channel", channel, "err", err)
		return nil
	}

	members, err := gc.Chats.ListMembers(gc.Ctx, gc.RequestID, chat.ChatID)
	if err != nil {
		gc.Log.Warn("channel_part: list members failed", "chat_id", chat.ChatID, "err", err)
		return nil
	}
	isMember := false
	for _, m := range members {
		if m.SessionID == gc.Session.SessionID {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil
	}

	if err := gc.Chats.RemoveMember(gc.Ctx, gc.RequestID, chat.ChatID, gc.Session.SessionID); err != nil {
		gc.Log.Warn("channel_part: remove member failed", "chat_id", chat.ChatID, "err", err)
		return nil
	}

	broadcastChannelInfo(gc, "channel_part", chat, uint16(len(members)-1))
	return nil
}

// broadcastChannelInfo fans a refreshed CHANNEL_INFO for chat out to every
// presence, logging per-recipient enqueue failures under op.
func broadcastChannelInfo(gc *gatectx.Context, op string, chat *backend.Chat, userCount uint16) {
	presences, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, "")
	if err != nil {
		gc.Log.Warn(op+": list presences failed", "chat_id", chat.ChatID, "err", err)
		return
	}
	packet := codec.WritePacket(codec.ServerChannelInfo, codec.ChannelInfoBody(chat.Name, chat.Topic, userCount))
	for _, p := range presences {
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, p.SessionID, packet); err != nil {
			gc.Log.Warn(op+": channel info broadcast failed", "to_session", p.SessionID, "err", err)
		}
	}
}
