package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

// fakeDoer lets tests script a canned response or transport error without
// a real network round trip.
type fakeDoer struct {
	resp      *http.Response
	err       error
	lastURL   string
	lastQuery string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastURL = req.URL.Path
	f.lastQuery = req.URL.RawQuery
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNon2xxMapsToErrUnavailable(t *testing.T) {
	d := &fakeDoer{resp: jsonResponse(http.StatusInternalServerError, `{}`)}
	u := NewUsersClient(d, "http://users", discardLogger())
	_, err := u.GetAccount(context.Background(), "req-1", 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestMalformedJSONMapsToErrUnavailable(t *testing.T) {
	d := &fakeDoer{resp: jsonResponse(http.StatusOK, `not json`)}
	u := NewUsersClient(d, "http://users", discardLogger())
	_, err := u.GetAccount(context.Background(), "req-1", 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestTransportErrorMapsToErrUnavailable(t *testing.T) {
	d := &fakeDoer{err: errors.New("connection refused")}
	u := NewUsersClient(d, "http://users", discardLogger())
	_, err := u.GetAccount(context.Background(), "req-1", 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestListPresencesOmitsEmptyUsernameFilter(t *testing.T) {
	d := &fakeDoer{resp: jsonResponse(http.StatusOK, `[]`)}
	u := NewUsersClient(d, "http://users", discardLogger())
	if _, err := u.ListPresences(context.Background(), "req-1", ""); err != nil {
		t.Fatalf("ListPresences: %v", err)
	}
	if d.lastQuery != "" {
		t.Fatalf("expected no query string, got %q", d.lastQuery)
	}
}

func TestListPresencesIncludesNonEmptyUsernameFilter(t *testing.T) {
	d := &fakeDoer{resp: jsonResponse(http.StatusOK, `[]`)}
	u := NewUsersClient(d, "http://users", discardLogger())
	if _, err := u.ListPresences(context.Background(), "req-1", "cookiezi"); err != nil {
		t.Fatalf("ListPresences: %v", err)
	}
	if d.lastQuery != "username=cookiezi" {
		t.Fatalf("got query %q", d.lastQuery)
	}
}

func TestScoreQueryOmitsZeroAccountIDFilter(t *testing.T) {
	d := &fakeDoer{resp: jsonResponse(http.StatusOK, `[]`)}
	s := NewScoresClient(d, "http://scores", discardLogger())
	if _, err := s.ListScores(context.Background(), "req-1", ScoreQuery{BeatmapID: 5, Mode: 0}); err != nil {
		t.Fatalf("ListScores: %v", err)
	}
	if strings.Contains(d.lastQuery, "account_id") {
		t.Fatalf("expected account_id omitted, got %q", d.lastQuery)
	}
}

func TestGetChatByNameRequiresExactlyOneResult(t *testing.T) {
	d := &fakeDoer{resp: jsonResponse(http.StatusOK, `[]`)}
	c := NewChatsClient(d, "http://chats", discardLogger())
	if _, err := c.GetChatByName(context.Background(), "req-1", "#general"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable for zero matches", err)
	}

	d2 := &fakeDoer{resp: jsonResponse(http.StatusOK, `[{"chat_id":1},{"chat_id":2}]`)}
	c2 := NewChatsClient(d2, "http://chats", discardLogger())
	if _, err := c2.GetChatByName(context.Background(), "req-1", "#general"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable for multiple matches", err)
	}
}
