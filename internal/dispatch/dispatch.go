// Package dispatch implements the per-request bancho packet loop: decode
// frames, look up a handler by opcode, and concatenate each handler's
// reply bytes into one response body (§4.4).
package dispatch

import (
	"strconv"

	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
	"github.com/osu-server/bancho-gateway/internal/metrics"
)

// HandlerFunc handles one decoded client packet and returns the bytes (if
// any) to append to the response. A handler must never abort the loop: it
// logs its own failures and returns nil bytes on error.
type HandlerFunc func(gc *gatectx.Context, body []byte) []byte

// Registry maps client opcode to handler. It is built once, explicitly, by
// NewRegistry — no decorator-style hidden mutation (§9).
type Registry struct {
	handlers map[uint16]HandlerFunc
	metrics  *metrics.Collectors
}

// NewRegistry builds a Registry from an explicit opcode→handler map.
func NewRegistry(handlers map[uint16]HandlerFunc) *Registry {
	return &Registry{handlers: handlers}
}

// WithMetrics attaches the collectors Run reports each dispatched opcode
// against (§4.10's "packets dispatched by opcode name"). Optional: a
// Registry with no collectors attached just skips the counter increment.
func (r *Registry) WithMetrics(m *metrics.Collectors) *Registry {
	r.metrics = m
	return r
}

// Run drains every frame in body in order, dispatching each to its
// registered handler and concatenating the returned bytes. Unknown
// opcodes — other than LOGOUT, which the gateway always routes
// externally when configured and otherwise falls through quietly —
// produce a NOTIFICATION packet naming the unhandled opcode.
func (r *Registry) Run(gc *gatectx.Context, body []byte) []byte {
	var out []byte
	for _, frame := range codec.ReadFrames(body) {
		handler, ok := r.handlers[frame.Opcode]
		if !ok {
			if frame.Opcode == codec.ClientLogout {
				continue
			}
			name := codec.ClientOpcodeName(frame.Opcode)
			gc.Log.Warn("unhandled packet", "opcode", name, "opcode_id", frame.Opcode)
			notif := "[Unhandled Packet] " + name + " (" + strconv.Itoa(int(frame.Opcode)) + ")"
			out = append(out, codec.WritePacket(codec.ServerNotification, codec.NotificationBody(notif))...)
			if r.metrics != nil {
				r.metrics.PacketsDispatched.WithLabelValues(name).Inc()
			}
			continue
		}
		name := codec.ClientOpcodeName(frame.Opcode)
		gc.Log.Info("dispatch packet", "opcode", name, "length", len(frame.Body))
		if r.metrics != nil {
			r.metrics.PacketsDispatched.WithLabelValues(name).Inc()
		}
		out = append(out, handler(gc, frame.Body)...)
	}
	return out
}
