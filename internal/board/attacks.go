package board

import "fmt"

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	rookDirs      = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs    = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs     = append(append([][2]int{}, rookDirs...), bishopDirs...)
)

// attackSet marks the squares attacked by one side.
type attackSet [8][8]bool

func (a *attackSet) has(p Pos) bool { return p.InBounds() && a[p.Row][p.Col] }

func (a *attackSet) mark(p Pos) {
	if p.InBounds() {
		a[p.Row][p.Col] = true
	}
}

// attacks computes every square attacked by the pieces of by. Rays stop on the first
// piece, and on the first square painted by the other side, including that square.
func (b *Board) attacks(by Role) attackSet {
	var set attackSet
	enemy := by.Opponent()
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			s := b.grid[r][c]
			if s.empty() || s.Player != by {
				continue
			}
			from := Pos{Row: r, Col: c}
			switch s.Piece {
			case Pawn:
				fwd := by.forward()
				set.mark(from.add(fwd, -1))
				set.mark(from.add(fwd, 1))
			case Knight:
				for _, o := range knightOffsets {
					set.mark(from.add(o[0], o[1]))
				}
			case King:
				for _, o := range kingOffsets {
					set.mark(from.add(o[0], o[1]))
				}
			case Bishop:
				b.castRays(&set, from, bishopDirs, enemy)
			case Rook:
				b.castRays(&set, from, rookDirs, enemy)
			case Queen:
				b.castRays(&set, from, queenDirs, enemy)
			default:
				panic(fmt.Sprintf("board: unknown piece %q at %s", string(s.Piece), from.Coord()))
			}
		}
	}
	return set
}

func (b *Board) castRays(set *attackSet, from Pos, dirs [][2]int, enemy Role) {
	for _, d := range dirs {
		for p := from.add(d[0], d[1]); p.InBounds(); p = p.add(d[0], d[1]) {
			set.mark(p)
			s := b.at(p)
			if !s.empty() || s.Turf == enemy {
				break
			}
		}
	}
}

// InCheck reports whether the king of r is attacked. A side without a king is never
// in check.
func (b *Board) InCheck(r Role) bool {
	if !r.Valid() {
		return false
	}
	k := b.kings[r.index()]
	if k == noPos {
		return false
	}
	set := b.attacks(r.Opponent())
	return set.has(k)
}
