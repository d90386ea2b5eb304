package paintdto

import "encoding/json"

// Event kinds sent from the server to a player.
const (
	KindFoundGame     = "found-game"
	KindGameStart     = "game-start"
	KindMovePerformed = "move-performed-response"
	KindMoveRejected  = "move-rejected"
	KindPlaySound     = "play-sound"
	KindChatHistory   = "current-chat-history"
	KindGameEnded     = "game-ended"
	KindCurrentQueue  = "current-game-queue"
	KindQueueSuccess  = "game-queue-success-response"
)

// Intent kinds sent from a player to the server.
const (
	KindQueueGame          = "queue-game"
	KindJoinGame           = "join-game-request"
	KindLeaveQueue         = "leave-queue"
	KindRequestQueue       = "request-current-game-queue"
	KindRequestOwnQueue    = "request-own-game-queue-status"
	KindReadyToStart       = "ready-to-start-game"
	KindPerformMove        = "perform-move"
	KindChatPublish        = "chat-publish"
	KindRequestChatHistory = "request-current-chat-history"
	KindResign             = "resign"
)

// Sounds carried by play-sound events.
const (
	SoundMove    = "move"
	SoundGameEnd = "game-end"
)

// Event is an outbound frame.
type Event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

// Envelope is an inbound frame; Payload is decoded per Kind.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type FoundGame struct {
	GameID string `json:"gameId"`
}

// QueueSuccess tells a player which queue entry it is waiting in.
type QueueSuccess struct {
	GameID string `json:"gameId"`
}

type PlaySound struct {
	Sound string `json:"sound"`
}

type ChatMessage struct {
	By      string `json:"by"`
	Content string `json:"content"`
}

type ChatHistory struct {
	History []ChatMessage `json:"history"`
}

// GameResult carries the winning role ("p1" or "p2"), or nil for a draw or an
// aborted match.
type GameResult struct {
	Winner         *string `json:"winner"`
	WinnerUsername *string `json:"winnerUsername,omitempty"`
	Method         string  `json:"method"`
}

type GameEnded struct {
	Result GameResult `json:"result"`
}

type MoveRejected struct {
	Reason string `json:"reason"`
}

// QueuedGame is one open entry of the matchmaking queue.
type QueuedGame struct {
	GameID             string  `json:"gameId"`
	WaitingUsername    string  `json:"waitingUsername"`
	WaitingDisplayname string  `json:"waitingDisplayname"`
	WaitingELO         int     `json:"waitingELO"`
	GameMins           float64 `json:"gameMins"`
	VsAI               bool    `json:"vsAI,omitempty"`
}
