// Package handlers implements one function per bancho client opcode
// (§4.5). Every handler has the same shape — decode the body, drive zero
// or more backend calls, mutate or broadcast presence — and never aborts
// the dispatch loop: a failed backend call is logged and the handler
// returns nil bytes.
package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
	"github.com/osu-server/bancho-gateway/internal/gatewayerr"
)

// maxMessageRunes is the chat message length cap (§4.5 SEND_PUBLIC_MESSAGE,
// §9). The cap is measured in UTF-8 code points, not bytes, so multi-byte
// text isn't penalized relative to ASCII — this resolves the ambiguity
// SPEC_FULL.md §9 flags.
const maxMessageRunes = 1000

// clientOnlyChannels exist only in the client UI; the gateway ignores any
// message addressed to one.
var clientOnlyChannels = map[string]bool{
	"#highlight": true,
	"#userlog":   true,
}

// privilegeClientMask narrows a raw privileges bitmask to the byte range
// the wire format carries (§4.6 step 3).
func privilegeClientMask(privileges int32) uint8 {
	return uint8(privileges & 0xFF)
}

// buildUserStatsPacket constructs a full USER_STATS frame for one presence
// and its matching stats row.
func buildUserStatsPacket(p backend.Presence, s backend.Stats) []byte {
	body := codec.UserStatsBody(
		int32(p.AccountID), p.Action, p.InfoText, p.MapMD5, p.Mods, p.GameMode, p.MapID,
		s.RankedScore, s.Accuracy, s.PlayCount, s.TotalScore, s.GlobalRank, s.Performance,
	)
	return codec.WritePacket(codec.ServerUserStats, body)
}

// BuildUserStatsPacket is buildUserStatsPacket exported for login, which
// needs the same USER_STATS frame during the login fan-out (§4.6 step 8/9).
func BuildUserStatsPacket(p backend.Presence, s backend.Stats) []byte {
	return buildUserStatsPacket(p, s)
}

// BuildUserPresencePacket constructs a full USER_PRESENCE frame. The mode
// bits are packed into the privilege byte by codec.UserPresenceBody itself.
// Exported for login, its only caller: no packet handler sends a
// USER_PRESENCE body (§4.6 step 8/9).
func BuildUserPresencePacket(p backend.Presence, globalRank int32) []byte {
	body := codec.UserPresenceBody(
		int32(p.AccountID), p.Username, p.UTCOffset, p.CountryCode,
		privilegeClientMask(p.Privileges), p.GameMode, p.Latitude, p.Longitude, globalRank,
	)
	return codec.WritePacket(codec.ServerUserPresence, body)
}

// notificationPacket constructs a full NOTIFICATION frame.
func notificationPacket(message string) []byte {
	return codec.WritePacket(codec.ServerNotification, codec.NotificationBody(message))
}

// logDecodeError reports a malformed packet body, tagging it with
// gatewayerr.ErrProtocolDecode (§4.13's protocol-decode error class) so a
// log pipeline can distinguish this from a backend or validation failure.
func logDecodeError(gc *gatectx.Context, op string, cause error) {
	gc.Log.Warn(op+": decode failed", "err", cause, "class", gatewayerr.ErrProtocolDecode)
}

// validateMessage validates a chat message per §4.5: trimmed to
// nothing means "drop, no-op"; over the cap means "notify the sender and
// drop the message". ok is false in both cases; trimmed is returned so
// valid messages aren't re-trimmed by the caller.
func validateMessage(raw string) (trimmed string, overflow bool, ok bool) {
	trimmed = strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false, false
	}
	if utf8.RuneCountInString(trimmed) > maxMessageRunes {
		return trimmed, true, false
	}
	return trimmed, false, true
}
