package codec

// Client opcodes: packets the osu! client sends to the gateway.
const (
	ClientChangeAction        uint16 = 0
	ClientSendPublicMessage   uint16 = 1
	ClientLogout              uint16 = 2
	ClientRequestSelfStats    uint16 = 3 // a.k.a. REQUEST_STATUS_UPDATE
	ClientPing                uint16 = 4
	ClientStartSpectating     uint16 = 16
	ClientStopSpectating      uint16 = 17
	ClientSpectateFrames      uint16 = 18
	ClientSendPrivateMessage  uint16 = 25
	ClientChannelJoin         uint16 = 63
	ClientChannelPart         uint16 = 78
	ClientUpdatePresenceFilter uint16 = 79
	ClientRequestAllUserStats uint16 = 85
)

var clientOpcodeNames = map[uint16]string{
	ClientChangeAction:        "OSU_CHANGE_ACTION",
	ClientSendPublicMessage:   "OSU_SEND_PUBLIC_MESSAGE",
	ClientLogout:              "OSU_LOGOUT",
	ClientRequestSelfStats:    "OSU_REQUEST_STATUS_UPDATE",
	ClientPing:                "OSU_PING",
	ClientStartSpectating:     "OSU_START_SPECTATING",
	ClientStopSpectating:      "OSU_STOP_SPECTATING",
	ClientSpectateFrames:      "OSU_SPECTATE_FRAMES",
	ClientSendPrivateMessage:  "OSU_SEND_PRIVATE_MESSAGE",
	ClientChannelJoin:         "OSU_CHANNEL_JOIN",
	ClientChannelPart:         "OSU_CHANNEL_PART",
	ClientUpdatePresenceFilter: "OSU_UPDATE_PRESENCE_FILTER",
	ClientRequestAllUserStats: "OSU_REQUEST_ALL_USER_STATS",
}

// ClientOpcodeName looks up the human-readable name of a client opcode, for
// logging and for the "[Unhandled Packet] NAME (id)" notification. Unknown
// opcodes return "Unknown".
func ClientOpcodeName(id uint16) string {
	if name, ok := clientOpcodeNames[id]; ok {
		return name
	}
	return "Unknown"
}

// Server opcodes: packets the gateway sends to the osu! client.
const (
	ServerAccountID               uint16 = 5
	ServerSendMessage             uint16 = 7
	ServerPong                    uint16 = 8
	ServerUserStats               uint16 = 11
	ServerUserLogout              uint16 = 12
	ServerSpectatorJoined         uint16 = 13
	ServerSpectatorLeft           uint16 = 14
	ServerSpectateFrames          uint16 = 15
	ServerFellowSpectatorJoined   uint16 = 42
	ServerFellowSpectatorLeft     uint16 = 43
	ServerNotification            uint16 = 24
	ServerChannelJoinSuccess      uint16 = 64
	ServerChannelInfo             uint16 = 65
	ServerPrivileges              uint16 = 71
	ServerFriendsList             uint16 = 72
	ServerProtocolVersion         uint16 = 75
	ServerMainMenuIcon            uint16 = 76
	ServerUserPresence            uint16 = 83
	ServerRestart                 uint16 = 86
	ServerChannelInfoEnd          uint16 = 89
	ServerSilenceEnd              uint16 = 92
)

var serverOpcodeNames = map[uint16]string{
	ServerAccountID:             "ACCOUNT_ID",
	ServerSendMessage:           "SEND_MESSAGE",
	ServerPong:                  "PONG",
	ServerUserStats:             "USER_STATS",
	ServerUserLogout:            "USER_LOGOUT",
	ServerSpectatorJoined:       "SPECTATOR_JOINED",
	ServerSpectatorLeft:         "SPECTATOR_LEFT",
	ServerSpectateFrames:        "SPECTATE_FRAMES",
	ServerFellowSpectatorJoined: "FELLOW_SPECTATOR_JOINED",
	ServerFellowSpectatorLeft:   "FELLOW_SPECTATOR_LEFT",
	ServerNotification:          "NOTIFICATION",
	ServerChannelJoinSuccess:    "CHANNEL_JOIN_SUCCESS",
	ServerChannelInfo:           "CHANNEL_INFO",
	ServerPrivileges:            "PRIVILEGES",
	ServerFriendsList:           "FRIENDS_LIST",
	ServerProtocolVersion:       "PROTOCOL_VERSION",
	ServerMainMenuIcon:          "MAIN_MENU_ICON",
	ServerUserPresence:          "USER_PRESENCE",
	ServerRestart:               "RESTART",
	ServerChannelInfoEnd:        "CHANNEL_INFO_END",
	ServerSilenceEnd:            "SILENCE_END",
}

// ServerOpcodeName looks up the human-readable name of a server opcode, for
// logging. Unknown opcodes return "Unknown".
func ServerOpcodeName(id uint16) string {
	if name, ok := serverOpcodeNames[id]; ok {
		return name
	}
	return "Unknown"
}
