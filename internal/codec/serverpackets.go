package codec

// This file builds the body bytes for every canonical server→client packet
// shape in the spec (§4.1). Callers wrap the returned body with
// WritePacket(opcode, body) to get a full wire frame. Keeping body
// construction separate from framing lets tests assert on body shape
// without re-deriving the frame header each time.

// UserStatsBody builds the USER_STATS body. accuracyPercent is the 0–100
// percentage as returned by the stats service; it is divided by 100 here,
// at the wire boundary, and nowhere else — see SPEC_FULL.md §9.
func UserStatsBody(accountID int32, action uint8, infoText, mapMD5 string, mods uint32, mode uint8, mapID int32, rankedScore int64, accuracyPercent float32, playCount int32, totalScore int64, globalRank int32, pp int16) []byte {
	return NewWriter(64).
		I32(accountID).
		U8(action).
		String(infoText).
		String(mapMD5).
		U32(mods).
		U8(mode).
		I32(mapID).
		I64(rankedScore).
		F32(accuracyPercent / 100).
		I32(playCount).
		I64(totalScore).
		I32(globalRank).
		I16(pp).
		Bytes()
}

// UserPresenceBody builds the USER_PRESENCE body. utcOffset is encoded as
// utcOffset+24 and banchoPrivileges is packed with the game mode in its
// high bits, per §4.1.
func UserPresenceBody(accountID int32, username string, utcOffset int8, countryCode uint8, banchoPrivileges uint8, mode uint8, latitude, longitude float32, globalRank int32) []byte {
	return NewWriter(32).
		I32(accountID).
		String(username).
		U8(uint8(int16(utcOffset) + 24)).
		U8(countryCode).
		U8(banchoPrivileges | (mode << 5)).
		F32(latitude).
		F32(longitude).
		I32(globalRank).
		Bytes()
}

// ChannelInfoBody builds one CHANNEL_INFO body.
func ChannelInfoBody(channel, topic string, userCount uint16) []byte {
	return NewWriter(16).String(channel).String(topic).U16(userCount).Bytes()
}

// ChannelJoinSuccessBody builds the CHANNEL_JOIN_SUCCESS body: the channel
// name the client just joined.
func ChannelJoinSuccessBody(channel string) []byte {
	return NewWriter(8).String(channel).Bytes()
}

// MainMenuIconBody builds the MAIN_MENU_ICON body: a single string of
// iconURL + "|" + onclickURL.
func MainMenuIconBody(iconURL, onclickURL string) []byte {
	return NewWriter(8).String(iconURL + "|" + onclickURL).Bytes()
}

// FriendsListBody builds the FRIENDS_LIST body: a u16 count followed by
// that many u32 account ids.
func FriendsListBody(accountIDs []uint32) []byte {
	w := NewWriter(2 + 4*len(accountIDs)).U16(uint16(len(accountIDs)))
	for _, id := range accountIDs {
		w.U32(id)
	}
	return w.Bytes()
}

// UserLogoutBody builds the USER_LOGOUT body: the departing account id
// followed by a trailing zero byte.
func UserLogoutBody(accountID int32) []byte {
	return NewWriter(8).I32(accountID).U8(0).Bytes()
}

// SendMessageBody builds the SEND_MESSAGE body.
func SendMessageBody(sender, message, recipient string, senderID int32) []byte {
	return NewWriter(32).String(sender).String(message).String(recipient).I32(senderID).Bytes()
}

// RestartBody builds the RESTART body: milliseconds until the client
// should reconnect.
func RestartBody(msUntilRestart int32) []byte {
	return NewWriter(4).I32(msUntilRestart).Bytes()
}

// NotificationBody builds the NOTIFICATION body: a single user-visible
// string.
func NotificationBody(message string) []byte {
	return NewWriter(8).String(message).Bytes()
}

// Int32Body builds a single-i32 body, shared by PROTOCOL_VERSION,
// PRIVILEGES, ACCOUNT_ID, and SILENCE_END.
func Int32Body(v int32) []byte {
	return NewWriter(4).I32(v).Bytes()
}

// EmptyBody is the zero-length body shared by PONG and CHANNEL_INFO_END.
func EmptyBody() []byte {
	return nil
}

// SpectatorAccountBody builds the single-i32-account-id body shared by
// SPECTATOR_JOINED, SPECTATOR_LEFT, FELLOW_SPECTATOR_JOINED, and
// FELLOW_SPECTATOR_LEFT.
func SpectatorAccountBody(accountID int32) []byte {
	return NewWriter(4).I32(accountID).Bytes()
}

// SpectateFramesBody wraps an opaque, gateway-uninterpreted spectator
// frame blob for relay to spectators, unmodified.
func SpectateFramesBody(raw []byte) []byte {
	return NewWriter(len(raw)).Raw(raw).Bytes()
}
