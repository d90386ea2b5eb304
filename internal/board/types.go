package board

import "fmt"

// Role identifies a side within a match. P1 moves first and owns ranks 1-2.
type Role string

const (
	NoRole Role = ""
	P1     Role = "p1"
	P2     Role = "p2"
)

// Valid reports whether r is one of the two playing roles.
func (r Role) Valid() bool { return r == P1 || r == P2 }

// Opponent returns the other role. NoRole maps to NoRole.
func (r Role) Opponent() Role {
	switch r {
	case P1:
		return P2
	case P2:
		return P1
	default:
		return NoRole
	}
}

func (r Role) index() int {
	switch r {
	case P1:
		return 0
	case P2:
		return 1
	}
	panic(fmt.Sprintf("board: role %q has no index", string(r)))
}

// homeRow is the back rank row of the role (rank 1 for P1, rank 8 for P2).
func (r Role) homeRow() int {
	if r == P1 {
		return 7
	}
	return 0
}

// pawnRow is the row pawns of r start on.
func (r Role) pawnRow() int {
	if r == P1 {
		return 6
	}
	return 1
}

// forward is the row delta of a pawn step.
func (r Role) forward() int {
	if r == P1 {
		return -1
	}
	return 1
}

// Piece names a chess piece kind.
type Piece string

const (
	NoPiece Piece = ""
	Pawn    Piece = "pawn"
	Knight  Piece = "knight"
	Bishop  Piece = "bishop"
	Rook    Piece = "rook"
	Queen   Piece = "queen"
	King    Piece = "king"
)

func (p Piece) valid() bool {
	switch p {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return true
	}
	return false
}

// IsPromotion reports whether a pawn may promote into p.
func (p Piece) IsPromotion() bool {
	switch p {
	case Knight, Bishop, Rook, Queen:
		return true
	}
	return false
}

// ParsePromotion validates a client supplied promotion field.
// An empty string is accepted and yields NoPiece.
func ParsePromotion(s string) (Piece, error) {
	if s == "" {
		return NoPiece, nil
	}
	p := Piece(s)
	if !p.IsPromotion() {
		return NoPiece, ErrInvalidPromotion
	}
	return p, nil
}

// Slot is one board cell. Turf is the role whose colour paints the square and is
// independent of the piece standing on it.
type Slot struct {
	Piece  Piece
	Player Role
	Turf   Role
}

func (s Slot) empty() bool { return s.Piece == NoPiece }

// Move is a request by Player to move the piece on From to To.
type Move struct {
	From      Coord
	To        Coord
	Player    Role
	Promotion Piece
}

// CastlingRights tracks which castling pieces have left their home squares.
type CastlingRights struct {
	KingMoved      bool
	LeftRookMoved  bool
	RightRookMoved bool
}

// CheckStatus names the side in check and where its king stands.
type CheckStatus struct {
	Who       Role  `json:"who"`
	KingCoord Coord `json:"kingCoord"`
}

// Status is the position state for the side to move.
type Status int

const (
	StatusNormal Status = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status ends the game.
func (s Status) Terminal() bool { return s == StatusCheckmate || s == StatusStalemate }

// LegalMoves maps each piece coordinate to its legal landing coordinates.
type LegalMoves map[Coord][]Coord

// Count returns the total number of legal moves.
func (l LegalMoves) Count() int {
	n := 0
	for _, to := range l {
		n += len(to)
	}
	return n
}

func (l LegalMoves) clone() LegalMoves {
	out := make(LegalMoves, len(l))
	for from, to := range l {
		out[from] = append([]Coord(nil), to...)
	}
	return out
}
