package game

import (
	"strings"
)

// MNK is a k-in-a-row game on a square board (tic-tac-toe is size 3, k 3).
//
// Cells hold +1 for the side to move, -1 for the opponent and 0 when empty.
type MNK struct {
	size  int
	k     int
	cells []int
	last  int // index of the last placed stone, -1 before the first move
}

func NewMNK(size, k int) *MNK {
	if size <= 0 || k <= 0 || k > size {
		panic("invalid board dimensions")
	}
	return &MNK{
		size:  size,
		k:     k,
		cells: make([]int, size*size),
		last:  -1,
	}
}

func TicTacToe() State {
	return NewMNK(3, 3)
}

func (g *MNK) Vector() []float64 {
	v := make([]float64, len(g.cells))
	for i, c := range g.cells {
		v[i] = float64(c)
	}
	return v
}

// Symmetries returns the 8 dihedral images of the board, identity first.
func (g *MNK) Symmetries() [][]float64 {
	n := g.size
	transforms := []func(r, c int) (int, int){
		func(r, c int) (int, int) { return r, c },
		func(r, c int) (int, int) { return c, n - 1 - r },
		func(r, c int) (int, int) { return n - 1 - r, n - 1 - c },
		func(r, c int) (int, int) { return n - 1 - c, r },
		func(r, c int) (int, int) { return r, n - 1 - c },
		func(r, c int) (int, int) { return n - 1 - r, c },
		func(r, c int) (int, int) { return c, r },
		func(r, c int) (int, int) { return n - 1 - c, n - 1 - r },
	}

	symmetries := make([][]float64, 0, len(transforms))
	for _, transform := range transforms {
		v := make([]float64, len(g.cells))
		for i, cell := range g.cells {
			r, c := transform(i/n, i%n)
			v[r*n+c] = float64(cell)
		}
		symmetries = append(symmetries, v)
	}
	return symmetries
}

func (g *MNK) LegalMoves() []Move {
	if _, over := g.Outcome(); over {
		return nil
	}
	moves := make([]Move, 0, len(g.cells))
	for i, c := range g.cells {
		if c == 0 {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

// Play places a stone for the side to move. It does not pass the turn; call Flip for that.
func (g *MNK) Play(m Move) error {
	i := int(m)
	if i < 0 || i >= len(g.cells) {
		return Violation("play", "move %d outside a %dx%d board", i, g.size, g.size)
	}
	if g.cells[i] != 0 {
		return Violation("play", "cell %d is occupied", i)
	}
	g.cells[i] = 1
	g.last = i
	return nil
}

// Outcome credits the owner of the last placed stone, which is the side that just moved.
func (g *MNK) Outcome() (float64, bool) {
	if g.last < 0 {
		return 0, false
	}
	if g.completes(g.last) {
		return Win, true
	}
	for _, c := range g.cells {
		if c == 0 {
			return 0, false
		}
	}
	return Draw, true
}

func (g *MNK) completes(i int) bool {
	stone := g.cells[i]
	if stone == 0 {
		return false
	}
	r0, c0 := i/g.size, i%g.size
	for _, d := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
		count := 1
		for _, sign := range []int{1, -1} {
			r, c := r0+sign*d[0], c0+sign*d[1]
			for g.inside(r, c) && g.cells[r*g.size+c] == stone {
				count++
				r, c = r+sign*d[0], c+sign*d[1]
			}
		}
		if count >= g.k {
			return true
		}
	}
	return false
}

func (g *MNK) inside(r, c int) bool {
	return r >= 0 && r < g.size && c >= 0 && c < g.size
}

func (g *MNK) Flip() {
	for i := range g.cells {
		g.cells[i] = -g.cells[i]
	}
}

func (g *MNK) Clone() State {
	cells := make([]int, len(g.cells))
	copy(cells, g.cells)
	return &MNK{size: g.size, k: g.k, cells: cells, last: g.last}
}

// Heuristic weighs every k-window still open for one side by the square of its
// stones, and compares the +1 side against the -1 side.
func (g *MNK) Heuristic() float64 {
	var mine, theirs float64
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			for _, d := range [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}} {
				endR, endC := r+(g.k-1)*d[0], c+(g.k-1)*d[1]
				if !g.inside(endR, endC) {
					continue
				}
				plus, minus := 0, 0
				for s := 0; s < g.k; s++ {
					switch g.cells[(r+s*d[0])*g.size+c+s*d[1]] {
					case 1:
						plus++
					case -1:
						minus++
					}
				}
				if minus == 0 {
					mine += float64(plus * plus)
				}
				if plus == 0 {
					theirs += float64(minus * minus)
				}
			}
		}
	}
	if mine+theirs == 0 {
		return 0
	}
	return (mine - theirs) / (mine + theirs)
}

// String renders the board with X for the side to move and O for the opponent.
func (g *MNK) String() string {
	var b strings.Builder
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			switch g.cells[r*g.size+c] {
			case 1:
				b.WriteByte('X')
			case -1:
				b.WriteByte('O')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
