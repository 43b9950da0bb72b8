// Package pollapi implements POST /v1/bancho (§4.7): the per-poll
// session-extend, packet-dispatch, and queued-packet-drain cycle.
package pollapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/dispatch"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
	"github.com/osu-server/bancho-gateway/internal/metrics"
)

// sessionExtension is how far expires_at is pushed forward on every poll.
const sessionExtension = 5 * time.Minute

// restartBuffer is the fixed response sent when the session can't be
// extended — the osu-token is stale or the users service doesn't recognize
// it. The client is told to reconnect and re-authenticate.
func restartBuffer() []byte {
	buf := codec.WritePacket(codec.ServerNotification, codec.NotificationBody("Service has restarted"))
	return append(buf, codec.WritePacket(codec.ServerRestart, codec.RestartBody(0))...)
}

// Result is the outcome of one poll: the response body, and whether a
// cho-token header should be echoed back (it is omitted on restart).
type Result struct {
	Buffer    []byte
	EchoToken bool
}

// Run executes §4.7 for one request: extend the session, run the
// dispatcher over body, and drain queued packets into the tail of the
// response. collectors may be nil, in which case the drain-size
// observation (§4.10) is skipped.
func Run(gc *gatectx.Context, registry *dispatch.Registry, collectors *metrics.Collectors, osuToken string, body []byte) Result {
	sessionID, err := uuid.Parse(osuToken)
	if err != nil {
		gc.Log.Warn("bancho poll: malformed osu-token", "err", err)
		return Result{Buffer: restartBuffer()}
	}

	session, err := gc.Users.ExtendSession(gc.Ctx, gc.RequestID, sessionID, time.Now().Add(sessionExtension))
	if err != nil {
		gc.Log.Warn("bancho poll: extend session failed", "session_id", sessionID, "err", err)
		return Result{Buffer: restartBuffer()}
	}

	reqCtx := gc.WithSession(session)
	out := registry.Run(reqCtx, body)

	queued, err := reqCtx.Users.DrainQueuedPackets(reqCtx.Ctx, reqCtx.RequestID, session.SessionID)
	if err != nil {
		gc.Log.Warn("bancho poll: drain queued packets failed", "session_id", sessionID, "err", err)
		return Result{Buffer: out, EchoToken: true}
	}
	if collectors != nil {
		collectors.QueuedPacketsDrained.Observe(float64(len(queued)))
	}
	for _, packet := range queued {
		out = append(out, packet.Data...)
	}
	return Result{Buffer: out, EchoToken: true}
}
