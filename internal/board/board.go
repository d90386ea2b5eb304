// Package board implements the paint chess rules engine.
//
// Every accepted move paints the squares it crosses with the mover's turf. Sliding
// pieces may not cross enemy turf but may land on it. A Board is not safe for
// concurrent use; the owning match serializes access.
package board

// Board is the full position. It is a plain value apart from a few cached slices
// that are replaced, never mutated, so a struct copy is a valid clone.
type Board struct {
	grid     [8][8]Slot
	kings    [2]Pos
	castling [2]CastlingRights
	turn     Role

	lastChanged []Coord
	check       *CheckStatus
	legal       [2]LegalMoves
}

// New returns the standard starting position with P1 to move.
func New() *Board {
	b, err := FromDescription(InitialDescription(), P1)
	if err != nil {
		panic("board: initial description rejected: " + err.Error())
	}
	return b
}

// Turn returns the side to move.
func (b *Board) Turn() Role { return b.turn }

// At returns the slot at c.
func (b *Board) At(c Coord) (Slot, bool) {
	p, ok := ParseCoord(c)
	if !ok {
		return Slot{}, false
	}
	return b.at(p), true
}

func (b *Board) at(p Pos) Slot { return b.grid[p.Row][p.Col] }

func (b *Board) set(p Pos, s Slot) { b.grid[p.Row][p.Col] = s }

// KingCoord returns where the king of r stands, or "" if it has none.
func (b *Board) KingCoord(r Role) Coord {
	k := b.kings[r.index()]
	if k == noPos {
		return ""
	}
	return k.Coord()
}

// Castling returns the castling rights of r.
func (b *Board) Castling(r Role) CastlingRights { return b.castling[r.index()] }

// LastChanged lists the squares touched by the latest accepted move.
func (b *Board) LastChanged() []Coord {
	return append([]Coord(nil), b.lastChanged...)
}

// CheckStatus reports the side to move when it is in check, or nil.
func (b *Board) CheckStatus() *CheckStatus {
	if b.check == nil {
		return nil
	}
	c := *b.check
	return &c
}

// LegalMoves returns a copy of the cached legal moves for r. Moves for the side not
// on turn are computed as if it were its turn.
func (b *Board) LegalMoves(r Role) LegalMoves {
	if !r.Valid() {
		return LegalMoves{}
	}
	return b.legal[r.index()].clone()
}

// Status classifies the position for the side to move.
func (b *Board) Status() Status {
	if !b.turn.Valid() {
		return StatusNormal
	}
	noMoves := len(b.legal[b.turn.index()]) == 0
	inCheck := b.InCheck(b.turn)
	switch {
	case inCheck && noMoves:
		return StatusCheckmate
	case noMoves:
		return StatusStalemate
	case inCheck:
		return StatusCheck
	}
	return StatusNormal
}

// Apply validates m and commits it. On error the board is unchanged.
func (b *Board) Apply(m Move) error {
	next, err := b.candidate(m, true)
	if err != nil {
		return err
	}
	*b = *next
	b.refresh()
	return nil
}

// ApplyMove is Apply with a boolean result.
func (b *Board) ApplyMove(m Move) bool { return b.Apply(m) == nil }

// Clone returns an independent copy of b.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// refresh recomputes the derived caches after the grid changed.
func (b *Board) refresh() {
	b.legal[0] = b.generateLegal(P1)
	b.legal[1] = b.generateLegal(P2)
	b.check = nil
	if b.turn.Valid() && b.InCheck(b.turn) {
		b.check = &CheckStatus{Who: b.turn, KingCoord: b.KingCoord(b.turn)}
	}
}
