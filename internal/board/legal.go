package board

// generateLegal enumerates coarse candidates for every piece of r and keeps those a
// clone accepts. The turn is not enforced.
func (b *Board) generateLegal(r Role) LegalMoves {
	out := LegalMoves{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			s := b.grid[row][col]
			if s.empty() || s.Player != r {
				continue
			}
			from := Pos{Row: row, Col: col}
			var dests []Coord
			for _, to := range b.candidates(from) {
				m := Move{From: from.Coord(), To: to.Coord(), Player: r}
				if _, err := b.candidate(m, false); err == nil {
					dests = append(dests, to.Coord())
				}
			}
			if len(dests) > 0 {
				out[from.Coord()] = dests
			}
		}
	}
	return out
}

// candidates lists in-bounds target squares worth trying for the piece on from.
func (b *Board) candidates(from Pos) []Pos {
	s := b.at(from)
	var raw []Pos
	switch s.Piece {
	case Pawn:
		fwd := s.Player.forward()
		raw = append(raw, from.add(fwd, 0), from.add(2*fwd, 0), from.add(fwd, -1), from.add(fwd, 1))
	case Knight:
		for _, o := range knightOffsets {
			raw = append(raw, from.add(o[0], o[1]))
		}
	case King:
		for _, o := range kingOffsets {
			raw = append(raw, from.add(o[0], o[1]))
		}
		home := s.Player.homeRow()
		raw = append(raw, Pos{Row: home, Col: 0}, Pos{Row: home, Col: 7})
	case Bishop:
		raw = rayTargets(from, bishopDirs)
	case Rook:
		raw = rayTargets(from, rookDirs)
	case Queen:
		raw = rayTargets(from, queenDirs)
	}

	seen := make(map[Pos]struct{}, len(raw))
	out := raw[:0]
	for _, p := range raw {
		if !p.InBounds() || p == from {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func rayTargets(from Pos, dirs [][2]int) []Pos {
	var out []Pos
	for _, d := range dirs {
		for p := from.add(d[0], d[1]); p.InBounds(); p = p.add(d[0], d[1]) {
			out = append(out, p)
		}
	}
	return out
}
