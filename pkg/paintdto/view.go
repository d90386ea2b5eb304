package paintdto

// ClientView is the per-recipient projection of a running match.
type ClientView struct {
	GameInfo          GameInfo                       `json:"gameInfo"`
	BoardConfig       BoardConfig                    `json:"boardConfig"`
	BoardDesc         map[string]Slot                `json:"boardDesc"`
	TimeDesc          TimeDesc                       `json:"timeDesc"`
	UserDataRundown   map[string]UserData            `json:"userDataRundown"`
	CheckStatus       *CheckStatus                   `json:"checkStatus"`
	LastChangedCoords []string                       `json:"lastChangedCoords"`
	LegalMovesRundown map[string]map[string][]string `json:"legalMovesRundown"`
	OwnRole           string                         `json:"ownRole"`
	Turn              string                         `json:"turn"`
}

type PlayerTag struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

type GameInfo struct {
	GameID string    `json:"gameId"`
	P1     PlayerTag `json:"p1"`
	P2     PlayerTag `json:"p2"`
	Turn   PlayerTag `json:"turn"`
}

type Colors struct {
	Piece   string `json:"piece"`
	BgLight string `json:"bgLight"`
	BgDark  string `json:"bgDark"`
}

type BoardConfig struct {
	IsFlipped   bool              `json:"isFlipped"`
	ColorConfig map[string]Colors `json:"colorConfig"`
}

type Slot struct {
	Piece  string `json:"piece,omitempty"`
	Player string `json:"player,omitempty"`
	Turf   string `json:"turf,omitempty"`
}

type Clock struct {
	SecsLeft  float64 `json:"secsLeft"`
	IsTicking bool    `json:"isTicking"`
}

type TimeDesc struct {
	Own      Clock `json:"own"`
	Opponent Clock `json:"opponent"`
}

type UserData struct {
	Displayname string `json:"displayname"`
	Rating      int    `json:"rating"`
}

type CheckStatus struct {
	Who       string `json:"who"`
	KingCoord string `json:"kingCoord"`
}
