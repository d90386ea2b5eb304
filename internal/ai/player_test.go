package ai

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/pkg/paintdto"
)

type call struct {
	kind    string
	move    match.RawMove
	content string
}

type fakeActions struct{ calls chan call }

func newFakeActions() *fakeActions { return &fakeActions{calls: make(chan call, 16)} }

func (f *fakeActions) StartGame(string) { f.calls <- call{kind: "start"} }

func (f *fakeActions) PerformMove(_ string, raw match.RawMove) {
	f.calls <- call{kind: "move", move: raw}
}

func (f *fakeActions) PublishMessage(_ string, content string) {
	f.calls <- call{kind: "chat", content: content}
}

func (f *fakeActions) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("no call from player")
		return call{}
	}
}

type fixedLines struct{}

func (fixedLines) Greeting() string       { return "hello" }
func (fixedLines) RandomResponse() string { return "nice" }

func view(own, turn string) paintdto.ClientView {
	return paintdto.ClientView{
		OwnRole: own,
		Turn:    turn,
		BoardDesc: map[string]paintdto.Slot{
			"e2": {Piece: "pawn", Player: "p1", Turf: "p1"},
			"d3": {Piece: "pawn", Player: "p2", Turf: "p2"},
			"f3": {Turf: "p2"},
		},
		LegalMovesRundown: map[string]map[string][]string{
			"p1": {"e2": {"e3", "e4", "d3"}},
			"p2": {"d3": {"e2"}},
		},
	}
}

func testOptions() Options {
	o := DefaultOptions()
	o.MaxThink = 0
	o.ChatChance = 0
	o.Seed = 7
	return o
}

func TestPlayerLifecycle(t *testing.T) {
	acts := newFakeActions()
	p := New(acts, "@ai-1", fixedLines{}, testOptions())
	defer p.Close()

	p.Send(paintdto.Event{Kind: paintdto.KindFoundGame, Payload: paintdto.FoundGame{GameID: "g"}})
	require.Equal(t, "start", acts.next(t).kind)

	p.Send(paintdto.Event{Kind: paintdto.KindGameStart, Payload: view("p1", "p1")})
	greet := acts.next(t)
	require.Equal(t, call{kind: "chat", content: "hello"}, greet)
	mv := acts.next(t)
	require.Equal(t, "move", mv.kind)
	require.Equal(t, "e2", mv.move.From)
	require.Contains(t, []string{"e3", "e4", "d3"}, mv.move.To)

	// Not our turn: nothing happens.
	p.Send(paintdto.Event{Kind: paintdto.KindMovePerformed, Payload: view("p1", "p2")})
	p.Send(paintdto.Event{Kind: paintdto.KindMovePerformed, Payload: view("p1", "p1")})
	require.Equal(t, "move", acts.next(t).kind)

	p.Send(paintdto.Event{Kind: paintdto.KindGameEnded, Payload: paintdto.GameEnded{}})
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("player did not stop on game-ended")
	}
	p.Send(paintdto.Event{Kind: paintdto.KindFoundGame})
	require.Len(t, acts.calls, 0)
}

func TestPlayerChatsAfterOpponentMove(t *testing.T) {
	acts := newFakeActions()
	opts := testOptions()
	opts.ChatChance = 1
	p := New(acts, "@ai-2", fixedLines{}, opts)
	defer p.Close()

	p.Send(paintdto.Event{Kind: paintdto.KindMovePerformed, Payload: view("p2", "p2")})
	require.Equal(t, call{kind: "chat", content: "nice"}, acts.next(t))
	mv := acts.next(t)
	require.Equal(t, match.RawMove{From: "d3", To: "e2"}, mv.move)
}

func TestCloseInterruptsThinking(t *testing.T) {
	acts := newFakeActions()
	opts := testOptions()
	opts.MaxThink = time.Hour
	p := New(acts, "@ai-3", fixedLines{}, opts)

	p.Send(paintdto.Event{Kind: paintdto.KindMovePerformed, Payload: view("p1", "p1")})
	time.Sleep(10 * time.Millisecond)
	p.Close()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not interrupt the think delay")
	}
	require.Len(t, acts.calls, 0)
}

func TestCandidatesWeighCapturesAndTurf(t *testing.T) {
	cs := Candidates(view("p1", "p1"), DefaultWeights)
	require.Equal(t, []Candidate{
		{From: "e2", To: "d3", Weight: DefaultWeights.Capture},
		{From: "e2", To: "e3", Weight: DefaultWeights.Quiet},
		{From: "e2", To: "e4", Weight: DefaultWeights.Quiet},
	}, cs)

	v := view("p1", "p1")
	v.LegalMovesRundown["p1"]["e2"] = []string{"f3"}
	require.Equal(t, DefaultWeights.Paint, Candidates(v, DefaultWeights)[0].Weight)
}

func TestSelectCandidateFollowsWeights(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	cs := []Candidate{{From: "a", To: "b", Weight: 99}, {From: "c", To: "d", Weight: 1}, {From: "e", To: "f", Weight: 0}}
	heavy := 0
	for i := 0; i < 1000; i++ {
		c, err := SelectCandidate(cs, r)
		require.NoError(t, err)
		require.NotEqual(t, "e", c.From, "zero weight candidate chosen")
		if c.From == "a" {
			heavy++
		}
	}
	require.Greater(t, heavy, 900)

	_, err := SelectCandidate(nil, r)
	require.Error(t, err)
	_, err = SelectCandidate([]Candidate{{Weight: 0}}, r)
	require.Error(t, err)
}
