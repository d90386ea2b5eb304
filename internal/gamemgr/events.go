package gamemgr

import (
	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/pkg/paintdto"
)

func foundGame(id string) paintdto.Event {
	return paintdto.Event{Kind: paintdto.KindFoundGame, Payload: paintdto.FoundGame{GameID: id}}
}

func currentQueue(q []paintdto.QueuedGame) paintdto.Event {
	return paintdto.Event{Kind: paintdto.KindCurrentQueue, Payload: q}
}

func sound(s string) paintdto.Event {
	return paintdto.Event{Kind: paintdto.KindPlaySound, Payload: paintdto.PlaySound{Sound: s}}
}

func moveRejected(err error) paintdto.Event {
	return paintdto.Event{Kind: paintdto.KindMoveRejected, Payload: paintdto.MoveRejected{Reason: err.Error()}}
}

func chatHistory(msgs []match.Message) paintdto.Event {
	h := make([]paintdto.ChatMessage, len(msgs))
	for i, msg := range msgs {
		h[i] = paintdto.ChatMessage{By: msg.By, Content: msg.Content}
	}
	return paintdto.Event{Kind: paintdto.KindChatHistory, Payload: paintdto.ChatHistory{History: h}}
}

func queueSuccess(id string) paintdto.Event {
	return paintdto.Event{Kind: paintdto.KindQueueSuccess, Payload: paintdto.QueueSuccess{GameID: id}}
}

func gameEnded(mt *match.Match, res match.Result) paintdto.Event {
	r := paintdto.GameResult{Method: string(res.Method)}
	if u := mt.UserOf(res.Winner); u != "" {
		role := string(res.Winner)
		r.Winner, r.WinnerUsername = &role, &u
	}
	return paintdto.Event{Kind: paintdto.KindGameEnded, Payload: paintdto.GameEnded{Result: r}}
}

// sendView projects mt for each of users and sends it as kind.
func (m *Manager) sendView(mt *match.Match, kind string, users ...string) {
	for _, u := range users {
		v, err := mt.ClientView(u)
		if err != nil {
			continue
		}
		m.send(u, paintdto.Event{Kind: kind, Payload: v})
	}
}

// sendBoth sends ev to both players of mt.
func (m *Manager) sendBoth(mt *match.Match, ev paintdto.Event) {
	for _, u := range mt.Users() {
		m.send(u, ev)
	}
}
