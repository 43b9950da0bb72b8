package handlers

import "github.com/osu-server/bancho-gateway/internal/gatectx"

// RequestSelfStats implements §4.5 REQUEST_SELF_STATS: fetch the caller's
// own presence and stats for its current game mode, and reply with one
// USER_STATS packet.
func RequestSelfStats(gc *gatectx.Context, body []byte) []byte {
	presence, err := gc.Users.GetPresence(gc.Ctx, gc.RequestID, gc.Session.SessionID)
	if err != nil {
		gc.Log.Warn("request_self_stats: get presence failed", "err", err)
		return nil
	}
	stats, err := gc.Users.GetStats(gc.Ctx, gc.RequestID, gc.Session.AccountID, presence.GameMode)
	if err != nil {
		gc.Log.Warn("request_self_stats: get stats failed", "err", err)
		return nil
	}
	return buildUserStatsPacket(*presence, *stats)
}

// RequestAllUserStats implements §4.5 REQUEST_ALL_USER_STATS: enumerate
// every presence other than the caller's own and append a USER_STATS
// packet for each.
func RequestAllUserStats(gc *gatectx.Context, body []byte) []byte {
	presences, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, "")
	if err != nil {
		gc.Log.Warn("request_all_user_stats: list presences failed", "err", err)
		return nil
	}

	var out []byte
	for _, p := range presences {
		if p.SessionID == gc.Session.SessionID {
			continue
		}
		stats, err := gc.Users.GetStats(gc.Ctx, gc.RequestID, p.AccountID, p.GameMode)
		if err != nil {
			gc.Log.Warn("request_all_user_stats: get stats failed", "account_id", p.AccountID, "err", err)
			continue
		}
		out = append(out, buildUserStatsPacket(p, *stats)...)
	}
	return out
}
