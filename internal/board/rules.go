package board

import "fmt"

// candidate validates m against b and returns a committed copy with the turn flipped.
// The derived caches of the copy are left stale; Apply refreshes them.
func (b *Board) candidate(m Move, enforceTurn bool) (*Board, error) {
	from, ok := ParseCoord(m.From)
	if !ok {
		return nil, ErrOutOfBounds
	}
	to, ok := ParseCoord(m.To)
	if !ok {
		return nil, ErrOutOfBounds
	}
	src := b.at(from)
	if src.empty() {
		return nil, ErrNoPiece
	}
	if !m.Player.Valid() || src.Player != m.Player {
		return nil, ErrNotOwner
	}
	if enforceTurn && m.Player != b.turn {
		return nil, ErrOutOfTurn
	}
	if from == to {
		return nil, ErrIllegalShape
	}

	next := b.Clone()
	next.check = nil
	next.legal = [2]LegalMoves{}

	if b.isCastling(from, to) {
		if err := b.castle(next, from, to); err != nil {
			return nil, err
		}
	} else {
		if !b.shapeOK(from, to) {
			return nil, ErrIllegalShape
		}
		if dst := b.at(to); !dst.empty() && dst.Player == m.Player {
			return nil, ErrFriendlyCapture
		}
		mid := b.path(from, to)
		for _, p := range mid {
			s := b.at(p)
			if !s.empty() || s.Turf == m.Player.Opponent() {
				return nil, ErrPathBlocked
			}
		}
		next.relocate(from, to, mid, m.Promotion)
	}

	if next.InCheck(m.Player) {
		return nil, ErrSelfCheck
	}
	next.turn = m.Player.Opponent()
	return next, nil
}

// shapeOK checks the movement pattern of the piece on from, ignoring blockers except
// for pawn forward pushes which need an empty landing square.
func (b *Board) shapeOK(from, to Pos) bool {
	src := b.at(from)
	dr, dc := to.Row-from.Row, to.Col-from.Col
	adr, adc := abs(dr), abs(dc)
	switch src.Piece {
	case Pawn:
		dst := b.at(to)
		fwd := src.Player.forward()
		switch {
		case dc == 0 && dr == fwd:
			return dst.empty()
		case dc == 0 && dr == 2*fwd && from.Row == src.Player.pawnRow():
			return dst.empty()
		case adc == 1 && dr == fwd:
			return !dst.empty() && dst.Player != src.Player
		}
		return false
	case Knight:
		return (adr == 1 && adc == 2) || (adr == 2 && adc == 1)
	case Bishop:
		return adr == adc
	case Rook:
		return dr == 0 || dc == 0
	case Queen:
		return adr == adc || dr == 0 || dc == 0
	case King:
		return adr <= 1 && adc <= 1
	}
	panic(fmt.Sprintf("board: unknown piece %q at %s", string(src.Piece), from.Coord()))
}

// path returns the intermediate squares the piece on from crosses to reach to.
// Knights jump and kings step, so neither crosses anything.
func (b *Board) path(from, to Pos) []Pos {
	switch b.at(from).Piece {
	case Knight, King:
		return nil
	}
	return between(from, to)
}

// relocate moves the piece from one square to another, painting the origin and every
// crossed square with the mover's turf.
func (b *Board) relocate(from, to Pos, mid []Pos, promotion Piece) {
	piece := b.at(from)
	mover := piece.Player
	captured := b.at(to)

	changed := make([]Coord, 0, len(mid)+2)
	b.set(from, Slot{Turf: mover})
	changed = append(changed, from.Coord())
	for _, p := range mid {
		b.set(p, Slot{Turf: mover})
		changed = append(changed, p.Coord())
	}

	piece.Turf = mover
	if piece.Piece == Pawn && to.Row == mover.Opponent().homeRow() {
		if !promotion.IsPromotion() {
			promotion = Queen
		}
		piece.Piece = promotion
	}
	b.set(to, piece)
	changed = append(changed, to.Coord())
	b.lastChanged = changed

	rights := &b.castling[mover.index()]
	switch piece.Piece {
	case King:
		b.kings[mover.index()] = to
		rights.KingMoved = true
	case Rook:
		if from == (Pos{Row: mover.homeRow(), Col: 0}) {
			rights.LeftRookMoved = true
		}
		if from == (Pos{Row: mover.homeRow(), Col: 7}) {
			rights.RightRookMoved = true
		}
	}
	if captured.Piece == Rook {
		them := captured.Player
		theirs := &b.castling[them.index()]
		if to == (Pos{Row: them.homeRow(), Col: 0}) {
			theirs.LeftRookMoved = true
		}
		if to == (Pos{Row: them.homeRow(), Col: 7}) {
			theirs.RightRookMoved = true
		}
	}
	if captured.Piece == King {
		b.kings[captured.Player.index()] = noPos
	}
}
