package match

import (
	"math"

	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/catalog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// ClientView projects the match for username. The board is flipped for p2.
func (m *Match) ClientView(username string) (paintdto.ClientView, error) {
	own := m.RoleOf(username)
	if own == board.NoRole {
		return paintdto.ClientView{}, ErrNotParticipant
	}
	opp := own.Opponent()

	m.mu.Lock()
	defer m.mu.Unlock()

	turn := m.board.Turn()
	ticking := m.completedTurns > 1 && !m.ended
	ownClock, oppClock := m.clocks[idx(own)], m.clocks[idx(opp)]

	v := paintdto.ClientView{
		GameInfo: paintdto.GameInfo{
			GameID: m.meta.ID,
			P1:     m.tag(board.P1),
			P2:     m.tag(board.P2),
			Turn:   m.tag(turn),
		},
		BoardConfig: paintdto.BoardConfig{
			IsFlipped: own != board.P1,
			ColorConfig: map[string]paintdto.Colors{
				string(board.P1): colorsDTO(m.palette.P1),
				string(board.P2): colorsDTO(m.palette.P2),
			},
		},
		BoardDesc: DescriptionDTO(m.board.Description()),
		TimeDesc: paintdto.TimeDesc{
			Own:      paintdto.Clock{SecsLeft: ownClock.left.Seconds(), IsTicking: ticking && turn == own},
			Opponent: paintdto.Clock{SecsLeft: oppClock.left.Seconds(), IsTicking: ticking && turn == opp},
		},
		UserDataRundown: map[string]paintdto.UserData{
			m.meta.P1.Username: userData(m.meta.P1),
			m.meta.P2.Username: userData(m.meta.P2),
		},
		LastChangedCoords: coordStrings(m.board.LastChanged()),
		LegalMovesRundown: map[string]map[string][]string{
			string(board.P1): legalDTO(m.board.LegalMoves(board.P1)),
			string(board.P2): legalDTO(m.board.LegalMoves(board.P2)),
		},
		OwnRole: string(own),
		Turn:    string(turn),
	}
	if cs := m.board.CheckStatus(); cs != nil {
		v.CheckStatus = &paintdto.CheckStatus{Who: string(cs.Who), KingCoord: string(cs.KingCoord)}
	}
	return v, nil
}

func (m *Match) tag(r board.Role) paintdto.PlayerTag {
	return paintdto.PlayerTag{Username: m.UserOf(r), Color: m.palette.For(r).Piece}
}

func colorsDTO(c catalog.Colors) paintdto.Colors {
	return paintdto.Colors{Piece: c.Piece, BgLight: c.BgLight, BgDark: c.BgDark}
}

func userData(p Player) paintdto.UserData {
	return paintdto.UserData{Displayname: p.Displayname, Rating: int(math.Floor(p.Rating))}
}

// DescriptionDTO converts a board description into its wire form.
func DescriptionDTO(d board.Description) map[string]paintdto.Slot {
	out := make(map[string]paintdto.Slot, len(d))
	for c, s := range d {
		out[string(c)] = paintdto.Slot{Piece: string(s.Piece), Player: string(s.Player), Turf: string(s.Turf)}
	}
	return out
}

func coordStrings(cs []board.Coord) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func legalDTO(l board.LegalMoves) map[string][]string {
	out := make(map[string][]string, len(l))
	for from, to := range l {
		out[string(from)] = coordStrings(to)
	}
	return out
}
