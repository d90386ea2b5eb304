package match

import (
	"errors"
	"testing"
	"time"

	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/catalog"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var testPalette = catalog.Palette{
	Name: "test",
	P1:   catalog.Colors{Piece: "red", BgLight: "#ffa99c", BgDark: "#61241f"},
	P2:   catalog.Colors{Piece: "blue", BgLight: "#9ca4ff", BgDark: "#1f1f61"},
}

func newTestMatch(t *testing.T, secs int) (*Match, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := New(Meta{
		ID:            "m1",
		P1:            Player{Username: "ann", Displayname: "Ann", Rating: 1200.7},
		P2:            Player{Username: "bob", Displayname: "Bob", Rating: 980},
		SecsPerPlayer: secs,
	}, Options{Palette: testPalette, StartTimeout: 60 * time.Second, Now: clk.Now})
	t.Cleanup(func() { m.Finish(Result{Method: MethodAborted}) })
	return m, clk
}

func move(t *testing.T, m *Match, user, from, to string) {
	t.Helper()
	if err := m.ProcessMove(RawMove{From: from, To: to, Username: user}); err != nil {
		t.Fatalf("%s %s%s: %v", user, from, to, err)
	}
}

func expectResult(t *testing.T, m *Match, want Result) {
	t.Helper()
	select {
	case got, ok := <-m.Events():
		if !ok {
			t.Fatalf("events closed without result")
		}
		if got != want {
			t.Fatalf("result = %+v, want %+v", got, want)
		}
	default:
		t.Fatalf("no result published")
	}
	if _, ok := <-m.Events(); ok {
		t.Fatalf("second result published")
	}
	select {
	case <-m.Done():
	default:
		t.Fatalf("done not closed")
	}
}

func TestProcessMoveRejections(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	cases := []struct {
		name string
		raw  RawMove
		want error
	}{
		{"missing from", RawMove{To: "e4", Username: "ann"}, ErrMalformedMove},
		{"missing user", RawMove{From: "e2", To: "e4"}, ErrMalformedMove},
		{"bad promotion", RawMove{From: "e2", To: "e4", Username: "ann", Promotion: "king"}, ErrInvalidPromotion},
		{"stranger", RawMove{From: "e2", To: "e4", Username: "eve"}, ErrNotParticipant},
		{"out of turn", RawMove{From: "e7", To: "e5", Username: "bob"}, board.ErrOutOfTurn},
		{"illegal", RawMove{From: "e2", To: "e5", Username: "ann"}, board.ErrIllegalShape},
	}
	for _, tc := range cases {
		if err := m.ProcessMove(tc.raw); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	if m.CompletedTurns() != 0 {
		t.Fatalf("rejected moves counted")
	}
}

func TestClockGraceAndCountdown(t *testing.T) {
	m, clk := newTestMatch(t, 300)

	move(t, m, "ann", "e2", "e4")
	clk.Advance(5 * time.Second)
	m.Tick(clk.Now())
	for _, r := range []board.Role{board.P1, board.P2} {
		if left, running := m.TimeLeft(r); running || left != 300*time.Second {
			t.Fatalf("%s during grace: left=%v running=%v", r, left, running)
		}
	}

	move(t, m, "bob", "e7", "e5")
	if _, running := m.TimeLeft(board.P1); !running {
		t.Fatalf("p1 clock should run after both first moves")
	}

	prev := 300 * time.Second
	for i := 0; i < 4; i++ {
		clk.Advance(2 * time.Second)
		m.Tick(clk.Now())
		left, _ := m.TimeLeft(board.P1)
		if left >= prev {
			t.Fatalf("p1 clock not decreasing: %v -> %v", prev, left)
		}
		prev = left
		if other, running := m.TimeLeft(board.P2); running || other != 300*time.Second {
			t.Fatalf("p2 clock changed while waiting: %v", other)
		}
	}
	if prev != 292*time.Second {
		t.Fatalf("p1 left = %v, want 292s", prev)
	}

	clk.Advance(time.Second)
	move(t, m, "ann", "d2", "d4")
	if left, running := m.TimeLeft(board.P1); running || left != 291*time.Second {
		t.Fatalf("p1 after move: left=%v running=%v", left, running)
	}
	if _, running := m.TimeLeft(board.P2); !running {
		t.Fatalf("p2 clock should run")
	}
}

func TestTimeout(t *testing.T) {
	m, clk := newTestMatch(t, 60)
	move(t, m, "ann", "e2", "e4")
	move(t, m, "bob", "e7", "e5")

	clk.Advance(61 * time.Second)
	m.Tick(clk.Now())
	expectResult(t, m, Result{Winner: board.P2, Method: MethodTimeout})

	if err := m.ProcessMove(RawMove{From: "d2", To: "d4", Username: "ann"}); !errors.Is(err, ErrFinished) {
		t.Fatalf("move after finish: %v", err)
	}
}

func TestStartTimeoutAborts(t *testing.T) {
	m, clk := newTestMatch(t, 300)
	move(t, m, "ann", "e2", "e4")

	clk.Advance(59 * time.Second)
	m.Tick(clk.Now())
	if _, ended := m.Ended(); ended {
		t.Fatalf("aborted early")
	}
	clk.Advance(time.Second)
	m.Tick(clk.Now())
	expectResult(t, m, Result{Method: MethodAborted})
	if (Result{Method: MethodAborted}).Rated() {
		t.Fatalf("aborted result rated")
	}
}

func TestStartTimeoutIgnoredOnceUnderway(t *testing.T) {
	m, clk := newTestMatch(t, 300)
	move(t, m, "ann", "e2", "e4")
	move(t, m, "bob", "e7", "e5")
	clk.Advance(90 * time.Second)
	m.Tick(clk.Now())
	if _, ended := m.Ended(); ended {
		t.Fatalf("match ended by start timeout after two turns")
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	m.Finish(Result{Winner: board.P1, Method: MethodResign})
	m.Finish(Result{Winner: board.P2, Method: MethodTimeout})
	expectResult(t, m, Result{Winner: board.P1, Method: MethodResign})
}

func TestResign(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	if err := m.Resign("eve"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("stranger resign: %v", err)
	}
	if err := m.Resign("bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	expectResult(t, m, Result{Winner: board.P1, Method: MethodResign})
	if err := m.Resign("ann"); !errors.Is(err, ErrFinished) {
		t.Fatalf("second resign: %v", err)
	}
}

func loadBoard(t *testing.T, m *Match, d board.Description, turn board.Role) {
	t.Helper()
	b, err := board.FromDescription(d, turn)
	if err != nil {
		t.Fatalf("FromDescription: %v", err)
	}
	m.mu.Lock()
	m.board = b
	m.mu.Unlock()
}

func TestCheckmateFinishes(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	loadBoard(t, m, board.Description{
		"e1": {Piece: board.King, Player: board.P1},
		"a1": {Piece: board.Rook, Player: board.P1},
		"h8": {Piece: board.King, Player: board.P2},
		"g7": {Piece: board.Pawn, Player: board.P2},
		"h7": {Piece: board.Pawn, Player: board.P2},
	}, board.P1)
	move(t, m, "ann", "a1", "a8")
	expectResult(t, m, Result{Winner: board.P1, Method: MethodCheckmate})
}

func TestStalemateIsDraw(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	loadBoard(t, m, board.Description{
		"e1": {Piece: board.King, Player: board.P1},
		"d6": {Piece: board.Queen, Player: board.P1},
		"a8": {Piece: board.King, Player: board.P2},
	}, board.P1)
	move(t, m, "ann", "d6", "c7")
	res, ended := m.Ended()
	if !ended || res.Winner != board.NoRole || res.Method != MethodStalemate {
		t.Fatalf("result = %+v ended=%v", res, ended)
	}
	if res.Outcome() != 0.5 {
		t.Fatalf("outcome = %v", res.Outcome())
	}
}

func TestChatHistory(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	if got := m.History(5); len(got) != 0 || got == nil {
		t.Fatalf("empty history = %#v", got)
	}
	for _, s := range []string{"a", "b", "c", "d"} {
		m.PublishMessage(Message{By: "ann", Content: s})
	}
	got := m.History(2)
	if len(got) != 2 || got[0].Content != "c" || got[1].Content != "d" {
		t.Fatalf("History(2) = %+v", got)
	}
	if all := m.History(10); len(all) != 4 || all[0].Content != "a" {
		t.Fatalf("History(10) = %+v", all)
	}
	if neg := m.History(-1); len(neg) != 0 {
		t.Fatalf("History(-1) = %+v", neg)
	}
}

func TestClientView(t *testing.T) {
	m, _ := newTestMatch(t, 300)
	if _, err := m.ClientView("eve"); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("stranger view: %v", err)
	}

	v, err := m.ClientView("bob")
	if err != nil {
		t.Fatalf("ClientView: %v", err)
	}
	if !v.BoardConfig.IsFlipped || v.OwnRole != "p2" || v.Turn != "p1" {
		t.Fatalf("view header = flipped:%v own:%s turn:%s", v.BoardConfig.IsFlipped, v.OwnRole, v.Turn)
	}
	if v.GameInfo.Turn.Username != "ann" || v.GameInfo.P2.Color != "blue" {
		t.Fatalf("game info = %+v", v.GameInfo)
	}
	if len(v.BoardDesc) != 32 {
		t.Fatalf("board desc has %d squares", len(v.BoardDesc))
	}
	if v.UserDataRundown["ann"].Rating != 1200 {
		t.Fatalf("rating not floored: %+v", v.UserDataRundown["ann"])
	}
	if v.TimeDesc.Own.SecsLeft != 300 || v.TimeDesc.Own.IsTicking {
		t.Fatalf("time desc = %+v", v.TimeDesc)
	}
	n := 0
	for _, to := range v.LegalMovesRundown["p1"] {
		n += len(to)
	}
	if n != 20 {
		t.Fatalf("p1 legal moves = %d", n)
	}
	if v.CheckStatus != nil {
		t.Fatalf("unexpected check status")
	}

	move(t, m, "ann", "e2", "e4")
	v, _ = m.ClientView("ann")
	if v.BoardConfig.IsFlipped || len(v.LastChangedCoords) != 3 {
		t.Fatalf("after move: flipped=%v changed=%v", v.BoardConfig.IsFlipped, v.LastChangedCoords)
	}
}

func TestTickerGoroutineStopsOnFinish(t *testing.T) {
	m := New(Meta{ID: "m2", P1: Player{Username: "a"}, P2: Player{Username: "b"}, SecsPerPlayer: 60},
		Options{Palette: testPalette, TickInterval: time.Millisecond, StartTimeout: 5 * time.Millisecond})
	select {
	case res := <-m.Events():
		if res.Method != MethodAborted {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("start timeout never fired")
	}
}
