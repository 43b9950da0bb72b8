package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// ChangeAction implements §4.5 CHANGE_ACTION: patch the caller's presence
// with the six client-supplied fields, then broadcast the caller's fresh
// USER_STATS to every presence (the caller included — they pick it up on
// their next poll via the queued-packets channel, which is intentional).
// The direct response to the caller is always empty.
func ChangeAction(gc *gatectx.Context, body []byte) []byte {
	parsed, err := codec.ParseChangeAction(body)
	if err != nil {
		logDecodeError(gc, "change_action", err)
		return nil
	}

	patch := backend.PresencePatch{
		Action:   parsed.Action,
		InfoText: parsed.InfoText,
		MapMD5:   parsed.MapMD5,
		Mods:     parsed.Mods,
		GameMode: parsed.Mode,
		MapID:    parsed.MapID,
	}
	presence, err := gc.Users.UpdatePresence(gc.Ctx, gc.RequestID, gc.Session.SessionID, patch)
	if err != nil {
		gc.Log.Warn("change_action: update presence failed", "err", err)
		return nil
	}

	stats, err := gc.Users.GetStats(gc.Ctx, gc.RequestID, gc.Session.AccountID, presence.GameMode)
	if err != nil {
		gc.Log.Warn("change_action: get stats failed", "err", err)
		return nil
	}

	presences, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, "")
	if err != nil {
		gc.Log.Warn("change_action: list presences failed", "err", err)
		return nil
	}

	selfStats := buildUserStatsPacket(*presence, *stats)
	for _, p := range presences {
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, p.SessionID, selfStats); err != nil {
			gc.Log.Warn("change_action: enqueue failed", "to_session", p.SessionID, "err", err)
		}
	}
	return nil
}
