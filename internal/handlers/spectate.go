package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// StartSpectating implements §4.5 START_SPECTATING: resolve the host's live
// session, record the spectator edge, tell the host a spectator joined, tell
// every existing fellow spectator about the new one, and hand the caller
// back a FELLOW_SPECTATOR_JOINED for each fellow that was already there.
func StartSpectating(gc *gatectx.Context, body []byte) []byte {
	hostAccountID, err := codec.ParseStartSpectating(body)
	if err != nil {
		logDecodeError(gc, "start_spectating", err)
		return nil
	}

	hostSession, err := gc.Users.FindSessionByAccountID(gc.Ctx, gc.RequestID, int64(hostAccountID))
	if err != nil {
		gc.Log.Warn("start_spectating: host session lookup failed", "host_account_id", hostAccountID, "err", err)
		return nil
	}

	fellows, err := gc.Users.ListSpectators(gc.Ctx, gc.RequestID, hostSession.SessionID)
	if err != nil {
		gc.Log.Warn("start_spectating: list fellow spectators failed", "err", err)
		return nil
	}

	if _, err := gc.Users.AddSpectator(gc.Ctx, gc.RequestID, hostSession.SessionID, gc.Session.SessionID, gc.Session.AccountID); err != nil {
		gc.Log.Warn("start_spectating: add spectator failed", "err", err)
		return nil
	}

	joinedPacket := codec.WritePacket(codec.ServerSpectatorJoined, codec.SpectatorAccountBody(int32(gc.Session.AccountID)))
	if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, hostSession.SessionID, joinedPacket); err != nil {
		gc.Log.Warn("start_spectating: notify host failed", "err", err)
	}

	fellowPacket := codec.WritePacket(codec.ServerFellowSpectatorJoined, codec.SpectatorAccountBody(int32(gc.Session.AccountID)))
	var out []byte
	for _, fellow := range fellows {
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, fellow.SessionID, fellowPacket); err != nil {
			gc.Log.Warn("start_spectating: notify fellow spectator failed", "to_session", fellow.SessionID, "err", err)
		}
		out = append(out, codec.WritePacket(codec.ServerFellowSpectatorJoined, codec.SpectatorAccountBody(int32(fellow.AccountID)))...)
	}
	return out
}

// StopSpectating implements §4.5 STOP_SPECTATING: look up the host the
// caller is currently spectating, remove the edge, tell the host, tell
// every remaining fellow spectator, and hand the caller back a
// FELLOW_SPECTATOR_LEFT for each of those remaining fellows.
func StopSpectating(gc *gatectx.Context, body []byte) []byte {
	spectating, err := gc.Users.GetSpectating(gc.Ctx, gc.RequestID, gc.Session.SessionID)
	if err != nil {
		gc.Log.Warn("stop_spectating: get spectating failed", "err", err)
		return nil
	}

	if err := gc.Users.RemoveSpectator(gc.Ctx, gc.RequestID, spectating.HostSessionID, gc.Session.SessionID); err != nil {
		gc.Log.Warn("stop_spectating: remove spectator failed", "err", err)
		return nil
	}

	leftPacket := codec.WritePacket(codec.ServerSpectatorLeft, codec.SpectatorAccountBody(int32(gc.Session.AccountID)))
	if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, spectating.HostSessionID, leftPacket); err != nil {
		gc.Log.Warn("stop_spectating: notify host failed", "err", err)
	}

	fellows, err := gc.Users.ListSpectators(gc.Ctx, gc.RequestID, spectating.HostSessionID)
	if err != nil {
		gc.Log.Warn("stop_spectating: list fellow spectators failed", "err", err)
		return nil
	}
	fellowPacket := codec.WritePacket(codec.ServerFellowSpectatorLeft, codec.SpectatorAccountBody(int32(gc.Session.AccountID)))
	var out []byte
	for _, fellow := range fellows {
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, fellow.SessionID, fellowPacket); err != nil {
			gc.Log.Warn("stop_spectating: notify fellow spectator failed", "to_session", fellow.SessionID, "err", err)
		}
		out = append(out, codec.WritePacket(codec.ServerFellowSpectatorLeft, codec.SpectatorAccountBody(int32(fellow.AccountID)))...)
	}
	return out
}

// SpectateFrames implements §4.5 SPECTATE_FRAMES: relay the opaque frame
// blob, unmodified, to every spectator of the caller's own session.
func SpectateFrames(gc *gatectx.Context, body []byte) []byte {
	spectators, err := gc.Users.ListSpectators(gc.Ctx, gc.RequestID, gc.Session.SessionID)
	if err != nil {
		gc.Log.Warn("spectate_frames: list spectators failed", "err", err)
		return nil
	}

	packet := codec.WritePacket(codec.ServerSpectateFrames, codec.SpectateFramesBody(body))
	for _, spectator := range spectators {
		if err := gc.Users.EnqueuePacket(gc.Ctx, gc.RequestID, spectator.SessionID, packet); err != nil {
			gc.Log.Warn("spectate_frames: relay failed", "to_session", spectator.SessionID, "err", err)
		}
	}
	return nil
}
