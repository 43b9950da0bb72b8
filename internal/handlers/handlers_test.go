package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

// routedDoer replies to requests keyed by "METHOD path", letting a test
// stand up a handful of backend endpoints without a real server. It counts
// the requests made to each route so tests can assert on fan-out.
type routedDoer struct {
	t       *testing.T
	byRoute map[string]string
	hits    map[string]int
}

func (d *routedDoer) Do(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.Path
	body, ok := d.byRoute[key]
	if !ok {
		d.t.Fatalf("unexpected request: %s", key)
	}
	if d.hits == nil {
		d.hits = map[string]int{}
	}
	d.hits[key]++
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{},
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGC(t *testing.T, routes map[string]string, session backend.Session) *gatectx.Context {
	gc, _ := testGCWithDoer(t, routes, session)
	return gc
}

// testGCWithDoer is testGC that also returns the fake backend, for tests
// that assert on which backend calls were made.
func testGCWithDoer(t *testing.T, routes map[string]string, session backend.Session) (*gatectx.Context, *routedDoer) {
	log := discardLogger()
	d := &routedDoer{t: t, byRoute: routes}
	gc := gatectx.New(context.Background(), "req-1", log,
		backend.NewUsersClient(d, "http://users", log),
		backend.NewChatsClient(d, "http://chats", log),
		backend.NewBeatmapsClient(d, "http://beatmaps", log),
		backend.NewScoresClient(d, "http://scores", log),
	)
	return gc.WithSession(&session), d
}

// requireHits fails the test unless route was requested exactly want times.
func (d *routedDoer) requireHits(route string, want int) {
	d.t.Helper()
	if got := d.hits[route]; got != want {
		d.t.Fatalf("%s requested %d times, want %d", route, got, want)
	}
}

func mustJSON(t *testing.T, v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestPingIsNoOp(t *testing.T) {
	if out := Ping(testGC(t, nil, backend.Session{}), nil); out != nil {
		t.Fatalf("Ping returned %v, want nil", out)
	}
}

func TestLogoutBroadcastsUserLogout(t *testing.T) {
	sessionID := uuid.New()
	otherID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}

	routes := map[string]string{
		"DELETE /v1/presences/" + sessionID.String(): ``,
		"DELETE /v1/sessions/" + sessionID.String():  ``,
		"GET /v1/chats":                               `[]`,
		"GET /v1/presences": mustJSON(t, []backend.Presence{
			{SessionID: sessionID, AccountID: 7},
			{SessionID: otherID, AccountID: 8},
		}),
		"POST /v1/sessions/" + otherID.String() + "/queued-packets": ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	if out := Logout(gc, nil); out != nil {
		t.Fatalf("Logout returned %v, want nil", out)
	}
	d.requireHits("POST /v1/sessions/"+otherID.String()+"/queued-packets", 1)
}

func TestSendPublicMessageRelaysToOtherMembers(t *testing.T) {
	sessionID := uuid.New()
	otherID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}

	body := codec.NewWriter(16).String("").String("hello #osu").String("#osu").I32(0).Bytes()

	routes := map[string]string{
		"GET /v1/chats": mustJSON(t, []backend.Chat{{ChatID: 1, Name: "#osu"}}),
		"GET /v1/chats/1/members": mustJSON(t, []backend.Member{
			{ChatID: 1, SessionID: sessionID, AccountID: 7},
			{ChatID: 1, SessionID: otherID, AccountID: 8},
		}),
		"GET /v1/accounts/7":                                          mustJSON(t, backend.Account{AccountID: 7, Username: "cookiezi"}),
		"POST /v1/sessions/" + otherID.String() + "/queued-packets": ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	if out := SendPublicMessage(gc, body); out != nil {
		t.Fatalf("SendPublicMessage returned %v, want nil", out)
	}
	d.requireHits("POST /v1/sessions/"+otherID.String()+"/queued-packets", 1)
}

func TestSendPublicMessageOverflowNotifiesSender(t *testing.T) {
	longMsg := make([]byte, 0, 1001)
	for i := 0; i < 1001; i++ {
		longMsg = append(longMsg, 'a')
	}
	body := codec.NewWriter(16).String("").String(string(longMsg)).String("#osu").I32(0).Bytes()

	out := SendPublicMessage(testGC(t, nil, backend.Session{}), body)
	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerNotification {
		t.Fatalf("got frames %+v, want one NOTIFICATION", frames)
	}
}

func TestSendPublicMessageIgnoresClientOnlyChannel(t *testing.T) {
	body := codec.NewWriter(16).String("").String("hi").String("#highlight").I32(0).Bytes()
	if out := SendPublicMessage(testGC(t, nil, backend.Session{}), body); out != nil {
		t.Fatalf("got %v, want nil for client-only channel", out)
	}
}

func TestChannelJoinRepliesWithJoinSuccess(t *testing.T) {
	sessionID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(8).String("#osu").Bytes()

	routes := map[string]string{
		"GET /v1/chats":           mustJSON(t, []backend.Chat{{ChatID: 1, Name: "#osu", Topic: "general"}}),
		"GET /v1/chats/1/members": mustJSON(t, []backend.Member{}),
		"POST /v1/chats/1/members": mustJSON(t, backend.Member{ChatID: 1, SessionID: sessionID, AccountID: 7}),
		"GET /v1/presences":      mustJSON(t, []backend.Presence{{SessionID: sessionID, AccountID: 7}}),
		"POST /v1/sessions/" + sessionID.String() + "/queued-packets": ``,
	}
	gc := testGC(t, routes, session)

	out := ChannelJoin(gc, body)
	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerChannelJoinSuccess {
		t.Fatalf("got frames %+v, want CHANNEL_JOIN_SUCCESS", frames)
	}
}

func TestChannelJoinIgnoresExistingMember(t *testing.T) {
	sessionID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(8).String("#osu").Bytes()

	routes := map[string]string{
		"GET /v1/chats":           mustJSON(t, []backend.Chat{{ChatID: 1, Name: "#osu", Topic: "general"}}),
		"GET /v1/chats/1/members": mustJSON(t, []backend.Member{{ChatID: 1, SessionID: sessionID, AccountID: 7}}),
	}
	gc := testGC(t, routes, session)

	if out := ChannelJoin(gc, body); out != nil {
		t.Fatalf("ChannelJoin returned %v, want nil for an already-joined channel", out)
	}
}

func TestChannelPartIgnoresNonMember(t *testing.T) {
	sessionID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(8).String("#osu").Bytes()

	routes := map[string]string{
		"GET /v1/chats":           mustJSON(t, []backend.Chat{{ChatID: 1, Name: "#osu", Topic: "general"}}),
		"GET /v1/chats/1/members": mustJSON(t, []backend.Member{}),
	}
	gc := testGC(t, routes, session)

	if out := ChannelPart(gc, body); out != nil {
		t.Fatalf("ChannelPart returned %v, want nil for a non-member", out)
	}
}

func TestChannelPartIgnoresChatLookupFailure(t *testing.T) {
	sessionID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(8).String("#osu").Bytes()

	routes := map[string]string{
		"GET /v1/chats": mustJSON(t, []backend.Chat{}),
	}
	gc := testGC(t, routes, session)

	if out := ChannelPart(gc, body); out != nil {
		t.Fatalf("ChannelPart returned %v, want nil when the chat can't be resolved", out)
	}
}

func TestChannelPartBroadcastsRefreshedChannelInfo(t *testing.T) {
	sessionID := uuid.New()
	otherID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(8).String("#osu").Bytes()

	routes := map[string]string{
		"GET /v1/chats": mustJSON(t, []backend.Chat{{ChatID: 1, Name: "#osu", Topic: "general"}}),
		"GET /v1/chats/1/members": mustJSON(t, []backend.Member{
			{ChatID: 1, SessionID: sessionID, AccountID: 7},
		}),
		"DELETE /v1/chats/1/members/" + sessionID.String(): ``,
		"GET /v1/presences": mustJSON(t, []backend.Presence{
			{SessionID: sessionID, AccountID: 7},
			{SessionID: otherID, AccountID: 8},
		}),
		"POST /v1/sessions/" + sessionID.String() + "/queued-packets": ``,
		"POST /v1/sessions/" + otherID.String() + "/queued-packets":   ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	if out := ChannelPart(gc, body); out != nil {
		t.Fatalf("ChannelPart returned %v, want nil", out)
	}
	d.requireHits("POST /v1/sessions/"+sessionID.String()+"/queued-packets", 1)
	d.requireHits("POST /v1/sessions/"+otherID.String()+"/queued-packets", 1)
}

func TestStartSpectatingNotifiesHostAndFellows(t *testing.T) {
	sessionID := uuid.New()
	hostSessionID := uuid.New()
	fellowID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(4).I32(99).Bytes()

	routes := map[string]string{
		"GET /v1/sessions":  mustJSON(t, []backend.Session{{SessionID: hostSessionID, AccountID: 99}}),
		"GET /v1/sessions/" + hostSessionID.String() + "/spectators": mustJSON(t, []backend.Spectator{
			{HostSessionID: hostSessionID, SessionID: fellowID, AccountID: 100},
		}),
		"POST /v1/sessions/" + hostSessionID.String() + "/spectators": mustJSON(t, backend.Spectator{
			HostSessionID: hostSessionID, SessionID: sessionID, AccountID: 7,
		}),
		"POST /v1/sessions/" + hostSessionID.String() + "/queued-packets":             ``,
		"POST /v1/sessions/" + fellowID.String() + "/queued-packets":                  ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	out := StartSpectating(gc, body)
	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerFellowSpectatorJoined {
		t.Fatalf("got frames %+v, want one FELLOW_SPECTATOR_JOINED for the existing fellow", frames)
	}
	d.requireHits("POST /v1/sessions/"+hostSessionID.String()+"/queued-packets", 1)
	d.requireHits("POST /v1/sessions/"+fellowID.String()+"/queued-packets", 1)
}

func TestStopSpectatingNotifiesHostAndFellows(t *testing.T) {
	sessionID := uuid.New()
	hostSessionID := uuid.New()
	fellowID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}

	routes := map[string]string{
		"GET /v1/sessions/" + sessionID.String() + "/spectating": mustJSON(t, backend.Spectator{
			HostSessionID: hostSessionID, SessionID: sessionID, AccountID: 7,
		}),
		"DELETE /v1/sessions/" + hostSessionID.String() + "/spectators/" + sessionID.String(): ``,
		"POST /v1/sessions/" + hostSessionID.String() + "/queued-packets":                     ``,
		"GET /v1/sessions/" + hostSessionID.String() + "/spectators": mustJSON(t, []backend.Spectator{
			{HostSessionID: hostSessionID, SessionID: fellowID, AccountID: 100},
		}),
		"POST /v1/sessions/" + fellowID.String() + "/queued-packets": ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	out := StopSpectating(gc, nil)
	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerFellowSpectatorLeft {
		t.Fatalf("got frames %+v, want one FELLOW_SPECTATOR_LEFT for the remaining fellow", frames)
	}
	d.requireHits("POST /v1/sessions/"+hostSessionID.String()+"/queued-packets", 1)
	d.requireHits("POST /v1/sessions/"+fellowID.String()+"/queued-packets", 1)
}

func TestSpectateFramesRelaysToEverySpectator(t *testing.T) {
	sessionID := uuid.New()
	spectatorID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := []byte{1, 2, 3}

	routes := map[string]string{
		"GET /v1/sessions/" + sessionID.String() + "/spectators": mustJSON(t, []backend.Spectator{
			{HostSessionID: sessionID, SessionID: spectatorID, AccountID: 50},
		}),
		"POST /v1/sessions/" + spectatorID.String() + "/queued-packets": ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	if out := SpectateFrames(gc, body); out != nil {
		t.Fatalf("SpectateFrames returned %v, want nil (direct reply is always empty)", out)
	}
	d.requireHits("POST /v1/sessions/"+spectatorID.String()+"/queued-packets", 1)
}

func TestUpdatePresenceFilterIsNoOp(t *testing.T) {
	body := codec.NewWriter(1).U8(1).Bytes()
	if out := UpdatePresenceFilter(testGC(t, nil, backend.Session{}), body); out != nil {
		t.Fatalf("UpdatePresenceFilter returned %v, want nil", out)
	}
}

func TestUpdatePresenceFilterLogsOutOfRangeButStaysNoOp(t *testing.T) {
	body := codec.NewWriter(1).U8(9).Bytes()
	if out := UpdatePresenceFilter(testGC(t, nil, backend.Session{}), body); out != nil {
		t.Fatalf("UpdatePresenceFilter returned %v, want nil even for an out-of-range filter", out)
	}
}

func TestRequestSelfStatsRepliesWithOwnUserStats(t *testing.T) {
	sessionID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}

	routes := map[string]string{
		"GET /v1/presences/" + sessionID.String(): mustJSON(t, backend.Presence{SessionID: sessionID, AccountID: 7, GameMode: 0}),
		"GET /v1/accounts/7/stats/0":                mustJSON(t, backend.Stats{AccountID: 7, GameMode: 0}),
	}
	gc := testGC(t, routes, session)

	out := RequestSelfStats(gc, nil)
	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerUserStats {
		t.Fatalf("got frames %+v, want one USER_STATS", frames)
	}
}

func TestRequestAllUserStatsExcludesCaller(t *testing.T) {
	sessionID := uuid.New()
	otherID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}

	routes := map[string]string{
		"GET /v1/presences": mustJSON(t, []backend.Presence{
			{SessionID: sessionID, AccountID: 7, GameMode: 0},
			{SessionID: otherID, AccountID: 8, GameMode: 0},
		}),
		"GET /v1/accounts/8/stats/0": mustJSON(t, backend.Stats{AccountID: 8, GameMode: 0}),
	}
	gc := testGC(t, routes, session)

	out := RequestAllUserStats(gc, nil)
	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerUserStats {
		t.Fatalf("got frames %+v, want exactly one USER_STATS (caller excluded)", frames)
	}
}

func TestChangeActionBroadcastsToEveryPresenceIncludingSelf(t *testing.T) {
	sessionID := uuid.New()
	otherID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(16).U8(1).String("").String("").U32(0).U8(0).I32(0).Bytes()

	routes := map[string]string{
		"PATCH /v1/presences/" + sessionID.String(): mustJSON(t, backend.Presence{SessionID: sessionID, AccountID: 7, GameMode: 0}),
		"GET /v1/accounts/7/stats/0":                 mustJSON(t, backend.Stats{AccountID: 7, GameMode: 0}),
		"GET /v1/presences": mustJSON(t, []backend.Presence{
			{SessionID: sessionID, AccountID: 7},
			{SessionID: otherID, AccountID: 8},
		}),
		"POST /v1/sessions/" + sessionID.String() + "/queued-packets": ``,
		"POST /v1/sessions/" + otherID.String() + "/queued-packets":   ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	if out := ChangeAction(gc, body); out != nil {
		t.Fatalf("ChangeAction returned %v, want nil (fan-out is via queued packets, not the direct reply)", out)
	}
	d.requireHits("POST /v1/sessions/"+sessionID.String()+"/queued-packets", 1)
	d.requireHits("POST /v1/sessions/"+otherID.String()+"/queued-packets", 1)
}

func TestSendPrivateMessageBlockedByPMPrivate(t *testing.T) {
	sessionID := uuid.New()
	recipientID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(16).String("").String("hi").String("peppy").I32(0).Bytes()

	routes := map[string]string{
		"GET /v1/presences":                          mustJSON(t, []backend.Presence{{SessionID: recipientID, AccountID: 2, Username: "peppy", PMPrivate: true}}),
		"GET /v1/presences/" + sessionID.String(): mustJSON(t, backend.Presence{SessionID: sessionID, AccountID: 7, Privileges: 0}),
	}
	gc := testGC(t, routes, session)

	if out := SendPrivateMessage(gc, body); out != nil {
		t.Fatalf("SendPrivateMessage returned %v, want nil for a pm_private recipient without the bypass bit", out)
	}
}

func TestSendPrivateMessageDeliversWhenNotPrivate(t *testing.T) {
	sessionID := uuid.New()
	recipientID := uuid.New()
	session := backend.Session{SessionID: sessionID, AccountID: 7}
	body := codec.NewWriter(16).String("").String("hi").String("peppy").I32(0).Bytes()

	routes := map[string]string{
		"GET /v1/presences":                          mustJSON(t, []backend.Presence{{SessionID: recipientID, AccountID: 2, Username: "peppy", PMPrivate: false}}),
		"GET /v1/presences/" + sessionID.String(): mustJSON(t, backend.Presence{SessionID: sessionID, AccountID: 7, Privileges: 0}),
		"GET /v1/accounts/7":                         mustJSON(t, backend.Account{AccountID: 7, Username: "cookiezi"}),
		"POST /v1/sessions/" + recipientID.String() + "/queued-packets": ``,
	}
	gc, d := testGCWithDoer(t, routes, session)

	if out := SendPrivateMessage(gc, body); out != nil {
		t.Fatalf("SendPrivateMessage returned %v, want nil (direct reply is always empty)", out)
	}
	d.requireHits("POST /v1/sessions/"+recipientID.String()+"/queued-packets", 1)
}
