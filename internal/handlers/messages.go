package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// overflowNotification is returned verbatim to the sender when a message
// exceeds the length cap.
const overflowNotification = "Your message is too long (exceeded 1K character limit)."

// SendPublicMessage implements §4.5 SEND_PUBLIC_MESSAGE: validate the
// message, resolve the target chat, and relay it to every other member.
func SendPublicMessage(gc *gatectx.Context, body []byte) []byte {
	parsed, err := codec.ParsePublicMessage(body)
	if err != nil {
		logDecodeError(gc, "send_public_message", err)
		return nil
	}

	if clientOnlyChannels[parsed.Recipient] {
		return nil
	}

	trimmed, overflow, ok := validateMessage(parsed.Message)
	if overflow {
		return notificationPacket(overflowNotification)
	}
	if !ok {
		return nil
	}

	chat, err := gc.Chats.GetChatByName(gc.Ctx, gc.RequestID, parsed.Recipient)
	if err != nil {
		gc.Log.Warn("send_public_message: chat lookup failed", "channel", parsed.Recipient, "err", err)
		return nil
	}

	members, err := gc.Chats.ListMembers(gc.Ctx, gc.RequestID, chat.ChatID)
	if err != nil {
		gc.Log.Warn("send_public_message: list members failed", "chat_id", chat.ChatID, "err", err)
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
		gc.Log.Warn("send_public_message: sender is not a chat member", "chat_id", chat.ChatID)
		return nil
	}

	account, err := gc.Users.GetAccount(gc.Ctx, gc.RequestID, gc.Session.AccountID)
	if err != nil {
		gc.Log.Warn("send_public_message: get account failed", "err", err)
		return nil
	}

	packet := codec.WritePacket(codec.ServerSendMessage,
		codec.SendMessageBody(account.Username, trimmed, chat.Name, int32(account.AccountID)))
	for _, m := range members {
		if m.SessionID == gc.Session.SessionID {
			continue
		}
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, m.SessionID, packet); err != nil {
			gc.Log.Warn("send_public_message: enqueue failed", "to_session", m.SessionID, "err", err)
		}
	}
	return nil
}

// privilegeBypassPMPrivate is the privilege bit that lets a sender reach a
// recipient whose presence has pm_private set. The full privilege model is
// out of scope (spec.md §4.6); this single bit is the minimal hook needed
// to make SEND_PRIVATE_MESSAGE's pm_private gate meaningful at all. Bit 3
// is deliberately excluded from login's clientPrivileges default, so an
// ordinary session never carries it and the gate actually fires.
const privilegeBypassPMPrivate = 1 << 3

// SendPrivateMessage implements the supplemental SEND_PRIVATE_MESSAGE
// handler (SPEC_FULL.md §4.5): same validation as SEND_PUBLIC_MESSAGE, but
// the recipient is a username resolved to a single session, gated by that
// session's pm_private flag.
func SendPrivateMessage(gc *gatectx.Context, body []byte) []byte {
	parsed, err := codec.ParsePublicMessage(body)
	if err != nil {
		logDecodeError(gc, "send_private_message", err)
		return nil
	}

	trimmed, overflow, ok := validateMessage(parsed.Message)
	if overflow {
		return notificationPacket(overflowNotification)
	}
	if !ok {
		return nil
	}

	recipients, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, parsed.Recipient)
	if err != nil || len(recipients) != 1 {
		gc.Log.Warn("send_private_message: recipient lookup failed", "username", parsed.Recipient, "err", err)
		return nil
	}
	recipient := recipients[0]

	senderPresence, err := gc.Users.GetPresence(gc.Ctx, gc.RequestID, gc.Session.SessionID)
	if err != nil {
		gc.Log.Warn("send_private_message: get sender presence failed", "err", err)
		return nil
	}
	if recipient.PMPrivate && senderPresence.Privileges&privilegeBypassPMPrivate == 0 {
		return nil
	}

	account, err := gc.Users.GetAccount(gc.Ctx, gc.RequestID, gc.Session.AccountID)
	if err != nil {
		gc.Log.Warn("send_private_message: get account failed", "err", err)
		return nil
	}

	packet := codec.WritePacket(codec.ServerSendMessage,
		codec.SendMessageBody(account.Username, trimmed, recipient.Username, int32(account.AccountID)))
	if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, recipient.SessionID, packet); err != nil {
		gc.Log.Warn("send_private_message: enqueue failed", "to_session", recipient.SessionID, "err", err)
	}
	return nil
}
