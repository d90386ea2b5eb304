package paintdto

type QueueGame struct {
	SecsPerPlayer int  `json:"secsPerPlayer"`
	VsAI          bool `json:"vsAI"`
}

type JoinGame struct {
	GameID string `json:"gameId"`
}

type PerformMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type ChatPublish struct {
	Content string `json:"content"`
}

// GuestLogin is the body of a guest account request.
type GuestLogin struct {
	Displayname string `json:"displayname"`
}

// GuestSession is returned for a created guest account. Username is what the
// auth proxy forwards afterwards.
type GuestSession struct {
	Username    string `json:"username"`
	Displayname string `json:"displayname"`
	ELO         int    `json:"elo"`
}
