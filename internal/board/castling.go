package board

// isCastling reports whether the move is a king landing on its own rook.
func (b *Board) isCastling(from, to Pos) bool {
	k, r := b.at(from), b.at(to)
	return k.Piece == King && r.Piece == Rook && k.Player == r.Player
}

// castle validates a castling request on b and writes the result into next.
// The king must target its own unmoved rook on a home corner.
func (b *Board) castle(next *Board, from, to Pos) error {
	role := b.at(from).Player
	rights := b.castling[role.index()]
	home := role.homeRow()

	if rights.KingMoved || from != (Pos{Row: home, Col: 4}) || to.Row != home {
		return ErrCastlingUnavailable
	}
	var kingDest, rookDest Pos
	switch to.Col {
	case 0:
		if rights.LeftRookMoved {
			return ErrCastlingUnavailable
		}
		kingDest, rookDest = Pos{Row: home, Col: 2}, Pos{Row: home, Col: 3}
	case 7:
		if rights.RightRookMoved {
			return ErrCastlingUnavailable
		}
		kingDest, rookDest = Pos{Row: home, Col: 6}, Pos{Row: home, Col: 5}
	default:
		return ErrCastlingUnavailable
	}

	for _, p := range between(from, to) {
		s := b.at(p)
		if !s.empty() || s.Turf == role.Opponent() {
			return ErrPathBlocked
		}
	}

	threats := b.attacks(role.Opponent())
	if threats.has(from) {
		return ErrCastlingUnavailable
	}
	step := sign(kingDest.Col - from.Col)
	for p := from.add(0, step); ; p = p.add(0, step) {
		if threats.has(p) {
			return ErrCastlingUnavailable
		}
		if p == kingDest {
			break
		}
	}

	next.set(from, Slot{Turf: role})
	next.set(to, Slot{Turf: role})
	next.set(kingDest, Slot{Piece: King, Player: role, Turf: role})
	next.set(rookDest, Slot{Piece: Rook, Player: role, Turf: role})
	next.kings[role.index()] = kingDest
	nr := &next.castling[role.index()]
	nr.KingMoved = true
	if to.Col == 0 {
		nr.LeftRookMoved = true
	} else {
		nr.RightRookMoved = true
	}
	next.lastChanged = []Coord{from.Coord(), to.Coord(), kingDest.Coord(), rookDest.Coord()}
	return nil
}
