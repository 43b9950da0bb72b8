package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// BeatmapsClient wraps the beatmaps microservice.
type BeatmapsClient struct {
	c caller
}

// NewBeatmapsClient builds a BeatmapsClient targeting baseURL.
func NewBeatmapsClient(httpClient doer, baseURL string, log *slog.Logger) *BeatmapsClient {
	return &BeatmapsClient{c: newCaller(httpClient, baseURL, log)}
}

// GetBeatmapByMD5 looks up a single beatmap difficulty by its file hash,
// the primary key the osu! client addresses beatmaps by.
func (b *BeatmapsClient) GetBeatmapByMD5(ctx context.Context, requestID, md5 string) (*Beatmap, error) {
	var maps []Beatmap
	q := query(strParam("md5", md5))
	if err := b.c.requestJSON(ctx, requestID, http.MethodGet, "/v1/beatmaps", q, nil, &maps); err != nil {
		return nil, err
	}
	if len(maps) != 1 {
		return nil, ErrUnavailable
	}
	return &maps[0], nil
}

// GetBeatmapSet fetches the parent set of a beatmap, for the leaderboard's
// "artist - title [version]" header line.
func (b *BeatmapsClient) GetBeatmapSet(ctx context.Context, requestID string, setID int64) (*BeatmapSet, error) {
	var set BeatmapSet
	path := fmt.Sprintf("/v1/beatmapsets/%d", setID)
	if err := b.c.requestJSON(ctx, requestID, http.MethodGet, path, nil, nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}
