package board

import "fmt"

// SlotDescription is the wire form of a non-empty square.
type SlotDescription struct {
	Piece  Piece `json:"piece,omitempty"`
	Player Role  `json:"player,omitempty"`
	Turf   Role  `json:"turf,omitempty"`
}

// Description is a sparse board encoding. Squares with no piece and no turf are absent.
type Description map[Coord]SlotDescription

var backRank = [8]Piece{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialDescription returns the standard starting position. Every starting square is
// painted with its owner's turf.
func InitialDescription() Description {
	d := Description{}
	for _, r := range []Role{P1, P2} {
		for col := 0; col < 8; col++ {
			d[Pos{Row: r.homeRow(), Col: col}.Coord()] = SlotDescription{Piece: backRank[col], Player: r, Turf: r}
			d[Pos{Row: r.pawnRow(), Col: col}.Coord()] = SlotDescription{Piece: Pawn, Player: r, Turf: r}
		}
	}
	return d
}

// Description encodes the grid.
func (b *Board) Description() Description {
	d := Description{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			s := b.grid[row][col]
			if s.Piece == NoPiece && s.Turf == NoRole {
				continue
			}
			d[Pos{Row: row, Col: col}.Coord()] = SlotDescription{Piece: s.Piece, Player: s.Player, Turf: s.Turf}
		}
	}
	return d
}

// FromDescription builds a board from d with turn to move.
func FromDescription(d Description, turn Role) (*Board, error) {
	b := &Board{}
	if err := b.LoadDescription(d, turn); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadDescription replaces the grid with d and re-derives king positions, castling
// rights and caches. An invalid turn defaults to P1. On error b is unchanged.
func (b *Board) LoadDescription(d Description, turn Role) error {
	var next Board
	next.kings = [2]Pos{noPos, noPos}
	for c, sd := range d {
		p, ok := ParseCoord(c)
		if !ok {
			return fmt.Errorf("%w: coordinate %q", ErrInvalidDescription, string(c))
		}
		if sd.Turf != NoRole && !sd.Turf.Valid() {
			return fmt.Errorf("%w: turf %q at %s", ErrInvalidDescription, string(sd.Turf), c)
		}
		if sd.Piece != NoPiece {
			if !sd.Piece.valid() || !sd.Player.Valid() {
				return fmt.Errorf("%w: piece %q/%q at %s", ErrInvalidDescription, string(sd.Piece), string(sd.Player), c)
			}
		} else if sd.Player != NoRole {
			return fmt.Errorf("%w: owner without piece at %s", ErrInvalidDescription, c)
		}
		if sd.Piece == King {
			idx := sd.Player.index()
			if next.kings[idx] != noPos {
				return fmt.Errorf("%w: second %s king at %s", ErrInvalidDescription, sd.Player, c)
			}
			next.kings[idx] = p
		}
		next.set(p, Slot{Piece: sd.Piece, Player: sd.Player, Turf: sd.Turf})
	}

	for _, r := range []Role{P1, P2} {
		home := r.homeRow()
		owns := func(col int, piece Piece) bool {
			s := next.at(Pos{Row: home, Col: col})
			return s.Piece == piece && s.Player == r
		}
		next.castling[r.index()] = CastlingRights{
			KingMoved:      !owns(4, King),
			LeftRookMoved:  !owns(0, Rook),
			RightRookMoved: !owns(7, Rook),
		}
	}
	if !turn.Valid() {
		turn = P1
	}
	next.turn = turn
	next.refresh()
	*b = next
	return nil
}
