package board

// Pos is a (row, column) pair. Row 0 is rank 8, column 0 is file a.
type Pos struct {
	Row int
	Col int
}

// Coord is the public square encoding: file letter followed by rank digit, e.g. "e4".
type Coord string

// ParseCoord converts a coordinate string into a position.
func ParseCoord(c Coord) (Pos, bool) {
	if len(c) != 2 {
		return Pos{}, false
	}
	file, rank := c[0], c[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Pos{}, false
	}
	return Pos{Row: int('8' - rank), Col: int(file - 'a')}, true
}

// Coord converts an in-bounds position into its coordinate string.
func (p Pos) Coord() Coord {
	return Coord([]byte{byte('a' + p.Col), byte('8' - p.Row)})
}

// InBounds reports whether p lies on the board.
func (p Pos) InBounds() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

func (p Pos) add(dr, dc int) Pos { return Pos{Row: p.Row + dr, Col: p.Col + dc} }

var noPos = Pos{Row: -1, Col: -1}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// between lists the squares strictly between from and to on a shared rank, file or
// diagonal. It is empty for any other pair.
func between(from, to Pos) []Pos {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	straight := (dr == 0) != (dc == 0)
	diagonal := dr != 0 && abs(dr) == abs(dc)
	if !straight && !diagonal {
		return nil
	}
	sr, sc := sign(dr), sign(dc)
	var out []Pos
	for p := from.add(sr, sc); p != to; p = p.add(sr, sc) {
		out = append(out, p)
	}
	return out
}
