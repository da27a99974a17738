// Package events defines the inbound actions and outbound notifications
// exchanged with clients. The transport only ever sees these shapes; game
// packages fill them in.
package events

// Inbound message types.
const (
	RoomCreate   = "room.create"
	RoomJoin     = "room.join"
	RoomLeave    = "room.leave"
	RoomStart    = "room.start"
	SelectPrompt = "game.selectPrompt"
	Claim        = "game.claim"
	Submit       = "game.submit"
	End          = "game.end"
	Reconnect    = "system.reconnect"
)

// Outbound notification types.
const (
	RoomCreated     = "room.created"
	RoomJoined      = "room.joined"
	RoomLeft        = "room.left"
	RoomStarted     = "room.started"
	PromptSelected  = "game.promptSelected"
	WindowOpened    = "game.windowOpened"
	PlayerClaimed   = "game.playerClaimed"
	AnswerResult    = "game.answerResult"
	Revealed        = "game.revealed"
	SelectionOpened = "game.selectionOpened"
	RoundEnded      = "game.roundEnded"
	GameEnded       = "game.gameEnded"
	Snapshot        = "system.snapshot"
	Error           = "error"
)

// ClientMessage is the single inbound envelope. Which fields matter depends
// on Type.
type ClientMessage struct {
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	Code     string  `json:"code,omitempty"`
	PlayerID string  `json:"playerId,omitempty"`
	PromptID string  `json:"promptId,omitempty"`
	Text     string  `json:"text,omitempty"`
	Filter   *Filter `json:"filter,omitempty"`
}

// Filter narrows board selection at game start.
type Filter struct {
	Difficulty string   `json:"difficulty,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Notification is the outbound envelope.
type Notification struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Active bool   `json:"active"`
	Host   bool   `json:"host"`
}

type RoomInfo struct {
	ID      string       `json:"id"`
	Code    string       `json:"code"`
	Status  string       `json:"status"`
	Players []PlayerInfo `json:"players"`
}

type RoomCreatedPayload struct {
	Room   RoomInfo   `json:"room"`
	Player PlayerInfo `json:"player"`
}

type RoomJoinedPayload struct {
	Room   RoomInfo   `json:"room"`
	Player PlayerInfo `json:"player"`
}

type RoomLeftPayload struct {
	PlayerID  string `json:"playerId"`
	NewHostID string `json:"newHostId,omitempty"`
}

// PromptView is a prompt as clients see it: the expected answer never rides
// along, it is only disclosed through Revealed.
type PromptView struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Value    int    `json:"value"`
	Question string `json:"question"`
	Answered bool   `json:"answered"`
}

type CategoryView struct {
	Name    string       `json:"name"`
	Prompts []PromptView `json:"prompts"`
}

type RoomStartedPayload struct {
	Round int            `json:"round"`
	Phase string         `json:"phase"`
	Board []CategoryView `json:"board"`
}

type PromptSelectedPayload struct {
	Prompt PromptView `json:"prompt"`
	Phase  string     `json:"phase"`
}

type WindowOpenedPayload struct {
	PromptID string `json:"promptId"`
	WindowMs int64  `json:"windowMs"`
}

type PlayerClaimedPayload struct {
	PlayerID    string `json:"playerId"`
	Position    int    `json:"position"`
	IsAnswering bool   `json:"isAnswering"`
}

type AnswerResultPayload struct {
	PlayerID     string         `json:"playerId"`
	Correct      bool           `json:"correct"`
	Delta        int            `json:"delta"`
	Scores       map[string]int `json:"scores"`
	NextPlayerID string         `json:"nextPlayerId,omitempty"`
}

type RevealedPayload struct {
	PromptID string `json:"promptId"`
	Answer   string `json:"answer"`
}

// SelectionOpenedPayload announces the return to prompt selection after a
// reveal, with the board's answered marks up to date.
type SelectionOpenedPayload struct {
	Round int            `json:"round"`
	Board []CategoryView `json:"board"`
}

type RoundEndedPayload struct {
	Round int `json:"round"`
}

type RankedScore struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type GameEndedPayload struct {
	Rankings []RankedScore `json:"rankings"`
}

// SnapshotPayload re-synchronizes a single reconnecting client.
type SnapshotPayload struct {
	Room        RoomInfo       `json:"room"`
	Phase       string         `json:"phase"`
	Round       int            `json:"round"`
	Prompt      *PromptView    `json:"prompt,omitempty"`
	Queue       []string       `json:"queue"`
	ResponderID string         `json:"responderId,omitempty"`
	Scores      map[string]int `json:"scores"`
	TimeLeftMs  int64          `json:"timeLeftMs,omitempty"`
	Board       []CategoryView `json:"board,omitempty"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
