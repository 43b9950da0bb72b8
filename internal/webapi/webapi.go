// Package webapi implements the osu! client's legacy /web/*.php surface
// (§4.8): today, just the beatmap leaderboard endpoint.
package webapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// failureResponse is returned verbatim on any validation or backend error
// (§4.8).
const failureResponse = "-1|false"

// rankedStatusMap translates a beatmap's internal ranked_status into the
// client-facing leaderboard status code.
var rankedStatusMap = map[int32]int32{
	-2: 0, -1: 0, 0: 0, 1: 2, 2: 3, 3: 4, 4: 5,
}

const maxScoreLines = 50

// Request is the parsed query string (§4.8's alias table).
type Request struct {
	Username   string
	Password   string
	LeaderboardVersion string
	LeaderboardType    int
	BeatmapMD5 string
	Filename   string
	Mode       int
	SetID      int64
	Mods       uint32
}

// ParseQuery decodes q per the §4.8 alias table. It does not validate
// anything beyond what's needed to read the values; Run performs the
// semantic checks (mode range, md5 length, etc).
func ParseQuery(q url.Values) (Request, error) {
	mode, err := strconv.Atoi(q.Get("m"))
	if err != nil {
		mode = 0
	}
	leaderboardType, err := strconv.Atoi(q.Get("v"))
	if err != nil {
		leaderboardType = 0
	}
	setID, err := strconv.ParseInt(q.Get("i"), 10, 64)
	if err != nil {
		setID = -1
	}
	mods, err := strconv.ParseUint(q.Get("mods"), 10, 32)
	if err != nil {
		mods = 0
	}
	return Request{
		Username:           q.Get("us"),
		Password:           q.Get("ha"),
		LeaderboardVersion: q.Get("vv"),
		LeaderboardType:    leaderboardType,
		BeatmapMD5:         q.Get("c"),
		Filename:           q.Get("f"),
		Mode:               mode,
		SetID:              setID,
		Mods:               uint32(mods),
	}, nil
}

// Run executes §4.8: resolve the beatmap, its set, and its scores, and
// render the leaderboard text response. Any failure — validation or
// backend — collapses to failureResponse.
func Run(gc *gatectx.Context, req Request) string {
	if len(req.BeatmapMD5) != 32 {
		return failureResponse
	}
	if req.Mode < 0 || req.Mode > 3 {
		return failureResponse
	}
	if req.LeaderboardType < 0 || req.LeaderboardType > 4 {
		return failureResponse
	}
	if req.SetID < -1 {
		return failureResponse
	}

	beatmap, err := gc.Beatmaps.GetBeatmapByMD5(gc.Ctx, gc.RequestID, req.BeatmapMD5)
	if err != nil {
		gc.Log.Warn("web getscores: beatmap lookup failed", "md5", req.BeatmapMD5, "err", err)
		return failureResponse
	}
	set, err := gc.Beatmaps.GetBeatmapSet(gc.Ctx, gc.RequestID, beatmap.SetID)
	if err != nil {
		gc.Log.Warn("web getscores: beatmap set lookup failed", "set_id", beatmap.SetID, "err", err)
		return failureResponse
	}

	const leaderboardTypeSelectedMods = 2
	scores, err := gc.Scores.ListScores(gc.Ctx, gc.RequestID, backend.ScoreQuery{
		BeatmapID:  beatmap.BeatmapID,
		Mode:       uint8(req.Mode),
		Mods:       req.Mods,
		ModsFilter: req.LeaderboardType == leaderboardTypeSelectedMods,
	})
	if err != nil {
		gc.Log.Warn("web getscores: list scores failed", "beatmap_id", beatmap.BeatmapID, "err", err)
		return failureResponse
	}

	rankedStatus, ok := rankedStatusMap[beatmap.RankedStatus]
	if !ok {
		rankedStatus = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d|serv_has_osz2=0|%d|%d|%d|0|\n", rankedStatus, beatmap.BeatmapID, beatmap.SetID, len(scores))
	fmt.Fprintf(&b, "0\n%s - %s [%s]\n10.0\n", set.Artist, set.Title, difficultyName(beatmap.Filename))

	personalBest := findPersonalBest(gc, req.Username, scores)
	if personalBest != nil {
		b.WriteString(scoreLine(*personalBest))
	}
	b.WriteString("\n")

	if len(scores) > maxScoreLines {
		gc.Log.Info("web getscores: truncating score list", "total", len(scores), "limit", maxScoreLines)
		scores = scores[:maxScoreLines]
	}
	for _, s := range scores {
		b.WriteString(scoreLine(s))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// difficultyName derives a displayable difficulty name from the beatmap's
// stored filename, since no separate "version" field exists on Beatmap.
func difficultyName(filename string) string {
	name := strings.TrimSuffix(filename, ".osu")
	if idx := strings.LastIndex(name, "["); idx >= 0 {
		if end := strings.LastIndex(name, "]"); end > idx {
			return name[idx+1 : end]
		}
	}
	return name
}

// findPersonalBest resolves the requester's account via their live
// presence (if any) and returns their best-scoring line, if present.
func findPersonalBest(gc *gatectx.Context, username string, scores []backend.Score) *backend.Score {
	if username == "" {
		return nil
	}
	presences, err := gc.Users.ListPresences(gc.Ctx, gc.RequestID, username)
	if err != nil || len(presences) != 1 {
		return nil
	}
	for i := range scores {
		if scores[i].AccountID == presences[0].AccountID {
			return &scores[i]
		}
	}
	return nil
}

func scoreLine(s backend.Score) string {
	perfect := 0
	if s.Perfect {
		perfect = 1
	}
	return fmt.Sprintf("%d|%s|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%s|%d|1",
		s.ScoreID, s.Username, s.Score, s.MaxCombo, s.Count50, s.Count100, s.Count300,
		s.CountMiss, s.CountKatu, s.CountGeki, perfect, s.Mods, s.AccountID, s.Rank, s.CreatedAt.Unix())
}
