// Package tictactoe implements 3x3 tic-tac-toe against the game package's
// capability contracts. It exists as a small, fully solvable reference game
// for the search engine and its tests.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/cdbfoster/zero-sum-sub001/game"
)

// Mark is the content of one cell. The zero value is an empty cell, so the
// zero Ply is never legal.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	}
	return " "
}

// Ply places a mark on a cell. Comparable, as the search requires.
type Ply struct {
	Mark Mark
	X, Y int
}

func (p Ply) String() string {
	return fmt.Sprintf("%s (%d, %d)", p.Mark, p.X+1, p.Y+1)
}

// Board is a tic-tac-toe position: nine cells and the number of plies
// played. Boards are values; Apply returns a new Board.
type Board struct {
	cells [9]Mark
	turn  uint8
}

// New returns the empty board with X to move.
func New() Board {
	return Board{}
}

// NextMark returns the mark of the side to move.
func (b Board) NextMark() Mark {
	if b.turn%2 == 0 {
		return X
	}
	return O
}

// Cell returns the mark at (x, y).
func (b Board) Cell(x, y int) Mark {
	return b.cells[x+3*y]
}

// Turn returns the number of plies played so far.
func (b Board) Turn() int {
	return int(b.turn)
}

// Extrapolate returns a ply for every empty cell, for the side to move.
func (b Board) Extrapolate() []Ply {
	next := b.NextMark()
	plies := make([]Ply, 0, 9-int(b.turn))
	for i, cell := range b.cells {
		if cell == Empty {
			plies = append(plies, Ply{Mark: next, X: i % 3, Y: i / 3})
		}
	}
	return plies
}

// Apply places the ply's mark and returns the successor board.
func (b Board) Apply(ply Ply) (Board, error) {
	if ply.X < 0 || ply.X >= 3 || ply.Y < 0 || ply.Y >= 3 {
		return Board{}, fmt.Errorf("tictactoe: coordinates (%d, %d) out of bounds", ply.X, ply.Y)
	}
	if ply.Mark != b.NextMark() {
		return Board{}, fmt.Errorf("tictactoe: it is not %v's turn", ply.Mark)
	}
	index := ply.X + 3*ply.Y
	if b.cells[index] != Empty {
		return Board{}, fmt.Errorf("tictactoe: cell (%d, %d) is occupied", ply.X, ply.Y)
	}

	next := b
	next.cells[index] = ply.Mark
	next.turn++
	return next, nil
}

// Hash returns the Zobrist key of the position.
func (b Board) Hash() uint64 {
	var h uint64
	for i, cell := range b.cells {
		if cell != Empty {
			h ^= zobristCell[i][cell-1]
		}
	}
	if b.NextMark() == O {
		h ^= zobristSide
	}
	return h
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Winner returns the mark holding three in a row, or Empty.
func (b Board) Winner() Mark {
	for _, line := range lines {
		m := b.cells[line[0]]
		if m != Empty && m == b.cells[line[1]] && m == b.cells[line[2]] {
			return m
		}
	}
	return Empty
}

// Terminal classifies a finished position from the side to move's
// perspective. The side to move can never hold the winning line, since the
// win ended the game on the opponent's ply.
func (b Board) Terminal() (game.Eval, bool) {
	if winner := b.Winner(); winner != Empty {
		if winner == b.NextMark() {
			return game.EvalWin, true
		}
		return game.EvalLoss, true
	}
	if b.turn == 9 {
		return 0, true
	}
	return 0, false
}

func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("   1  2  3")
	for y := 0; y < 3; y++ {
		fmt.Fprintf(&sb, "\n%d ", y+1)
		for x := 0; x < 3; x++ {
			fmt.Fprintf(&sb, "[%s]", b.Cell(x, y))
		}
	}
	return sb.String()
}

// Evaluator scores non-terminal positions by corner occupancy from the side
// to move's perspective. Corners do not matter against perfect play, but
// they leave a fallible opponent more ways to go wrong. Terminal positions
// are classified by the board itself before the evaluator is consulted.
type Evaluator struct{}

func (Evaluator) Evaluate(b Board) game.Eval {
	if term, over := b.Terminal(); over {
		return term
	}

	var xCorners, oCorners game.Eval
	for _, i := range [4]int{0, 2, 6, 8} {
		switch b.cells[i] {
		case X:
			xCorners++
		case O:
			oCorners++
		}
	}
	if b.NextMark() == X {
		return xCorners - oCorners
	}
	return oCorners - xCorners
}
