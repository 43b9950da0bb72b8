package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// UpdatePresenceFilter implements §4.5 UPDATE_PRESENCE_FILTER. Per §9 this
// remains a no-op on the gateway pending a downstream endpoint; out-of-
// range values are logged and otherwise ignored.
func UpdatePresenceFilter(gc *gatectx.Context, body []byte) []byte {
	filter, err := codec.ParsePresenceFilter(body)
	if err != nil {
		logDecodeError(gc, "update_presence_filter", err)
		return nil
	}
	if filter > 2 {
		gc.Log.Warn("update_presence_filter: out of range value", "filter", filter)
	}
	return nil
}
