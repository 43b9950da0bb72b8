package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// ScoresClient wraps the scores microservice.
type ScoresClient struct {
	c caller
}

// NewScoresClient builds a ScoresClient targeting baseURL.
func NewScoresClient(httpClient doer, baseURL string, log *slog.Logger) *ScoresClient {
	return &ScoresClient{c: newCaller(httpClient, baseURL, log)}
}

// ScoreQuery selects scores for one leaderboard request. AccountID, when
// non-zero, narrows the result to one account's scores (used to fetch the
// requester's personal best); zero means "no filter" and is omitted from
// the outbound query per §4.2. Mods is only honored when ModsFilter is true
// — LeaderboardType 2 ("selected mods") is the only §4.8 leaderboard view
// that filters by exact mod combination; the other four views ignore it.
type ScoreQuery struct {
	BeatmapID  int64
	Mode       uint8
	Mods       uint32
	ModsFilter bool
	AccountID  int64
}

// ListScores fetches scores for a beatmap, optionally narrowed to one
// account or one exact mod combination. Scores come back in the order the
// scores service returns them; no result-count limit is sent.
func (s *ScoresClient) ListScores(ctx context.Context, requestID string, q ScoreQuery) ([]Score, error) {
	var scores []Score
	params := query(
		intParam("beatmap_id", q.BeatmapID, 0),
		intParam("mode", int64(q.Mode), -1),
		intParam("account_id", q.AccountID, 0),
	)
	if q.ModsFilter {
		params.Set("mods", fmt.Sprintf("%d", q.Mods))
	}
	if err := s.c.requestJSON(ctx, requestID, http.MethodGet, "/v1/scores", params, nil, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
