package handlers

import "github.com/osu-server/bancho-gateway/internal/gatectx"

// Ping is intentionally a no-op: osu! rests between polls and expects no
// reply (§4.5).
func Ping(gc *gatectx.Context, body []byte) []byte {
	return nil
}
