package handlers

import (
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/dispatch"
)

// NewRegistry builds the dispatch table mapping every known client opcode
// to its handler (§4.4, §4.5). LOGOUT is always registered: the dispatcher
// special-cases an *unregistered* LOGOUT, which never applies here.
func NewRegistry() *dispatch.Registry {
	return dispatch.NewRegistry(map[uint16]dispatch.HandlerFunc{
		codec.ClientChangeAction:         ChangeAction,
		codec.ClientSendPublicMessage:    SendPublicMessage,
		codec.ClientLogout:               Logout,
		codec.ClientRequestSelfStats:     RequestSelfStats,
		codec.ClientPing:                 Ping,
		codec.ClientStartSpectating:      StartSpectating,
		codec.ClientStopSpectating:       StopSpectating,
		codec.ClientSpectateFrames:       SpectateFrames,
		codec.ClientSendPrivateMessage:   SendPrivateMessage,
		codec.ClientChannelJoin:          ChannelJoin,
		codec.ClientChannelPart:          ChannelPart,
		codec.ClientUpdatePresenceFilter: UpdatePresenceFilter,
		codec.ClientRequestAllUserStats:  RequestAllUserStats,
	})
}
