// Package backend implements typed REST clients over the gateway's four
// downstream microservices (users, chats, beatmaps, scores). Every method
// maps a non-2xx response or an unparseable JSON body to ErrUnavailable;
// callers never see a raw transport error (§4.2).
package backend

import (
	"time"

	"github.com/google/uuid"
)

// Session is the users-service session record. The gateway holds it
// read-only within a request.
type Session struct {
	SessionID uuid.UUID `json:"session_id"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Presence is a session's live "where I am" state, one per active session.
type Presence struct {
	SessionID   uuid.UUID `json:"session_id"`
	AccountID   int64     `json:"account_id"`
	Username    string    `json:"username"`
	GameMode    uint8     `json:"game_mode"`
	CountryCode uint8     `json:"country_code"`
	Privileges  int32     `json:"privileges"`
	Latitude    float32   `json:"latitude"`
	Longitude   float32   `json:"longitude"`
	Action      uint8     `json:"action"`
	InfoText    string    `json:"info_text"`
	MapMD5      string    `json:"map_md5"`
	MapID       int32     `json:"map_id"`
	Mods        uint32    `json:"mods"`
	OsuVersion  string    `json:"osu_version"`
	UTCOffset   int8      `json:"utc_offset"`
	DisplayCity bool      `json:"display_city"`
	PMPrivate   bool      `json:"pm_private"`
}

// PresencePatch carries the six CHANGE_ACTION fields as a partial update.
type PresencePatch struct {
	Action   uint8  `json:"action"`
	InfoText string `json:"info_text"`
	MapMD5   string `json:"map_md5"`
	Mods     uint32 `json:"mods"`
	GameMode uint8  `json:"game_mode"`
	MapID    int32  `json:"map_id"`
}

// Account is an account record fetched by id, used (at minimum) to resolve
// a username for outbound chat messages.
type Account struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
}

// Stats holds one (account_id, game_mode) stat line. Accuracy is the
// percentage 0–100 as stored; the /100 scaling happens only at the codec
// boundary (§9).
type Stats struct {
	AccountID   int64   `json:"account_id"`
	GameMode    uint8   `json:"game_mode"`
	RankedScore int64   `json:"ranked_score"`
	TotalScore  int64   `json:"total_score"`
	Performance int16   `json:"performance"`
	Accuracy    float32 `json:"accuracy"`
	PlayCount   int32   `json:"play_count"`
	GlobalRank  int32   `json:"global_rank"`
}

// Chat is a chat room. Name leads with "#"; #lobby is excluded from
// auto-join.
type Chat struct {
	ChatID          int64  `json:"chat_id"`
	Name            string `json:"name"`
	Topic           string `json:"topic"`
	ReadPrivileges  int32  `json:"read_privileges"`
	WritePrivileges int32  `json:"write_privileges"`
	AutoJoin        bool   `json:"auto_join"`
	Instance        bool   `json:"instance"`
}

// Member identifies one session's membership in one chat.
type Member struct {
	ChatID    int64     `json:"chat_id"`
	SessionID uuid.UUID `json:"session_id"`
	AccountID int64     `json:"account_id"`
	Username  string    `json:"username"`
	Privileges int32    `json:"privileges"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Spectator is a directed spectator → host edge.
type Spectator struct {
	HostSessionID uuid.UUID `json:"host_session_id"`
	SessionID     uuid.UUID `json:"session_id"`
	AccountID     int64     `json:"account_id"`
}

// QueuedPacket is one opaque byte blob addressed to a session's mailbox.
type QueuedPacket struct {
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Beatmap is a single beatmap difficulty record.
type Beatmap struct {
	BeatmapID    int64  `json:"beatmap_id"`
	SetID        int64  `json:"set_id"`
	MD5          string `json:"md5"`
	Filename     string `json:"filename"`
	RankedStatus int32  `json:"ranked_status"`
}

// BeatmapSet is the parent set of one or more beatmaps.
type BeatmapSet struct {
	SetID  int64  `json:"set_id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Score is one submitted score line, as returned for leaderboard display.
type Score struct {
	ScoreID   int64  `json:"score_id"`
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Score     int64  `json:"score"`
	MaxCombo  int32  `json:"max_combo"`
	Count50   int32  `json:"count_50"`
	Count100  int32  `json:"count_100"`
	Count300  int32  `json:"count_300"`
	CountMiss int32  `json:"count_miss"`
	CountKatu int32  `json:"count_katu"`
	CountGeki int32  `json:"count_geki"`
	Perfect   bool   `json:"perfect"`
	Mods      uint32 `json:"mods"`
	Rank      string `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
}
