package engine

import (
	"math/rand"

	"github.com/google/uuid"
)

// FreeSpace is the sentinel stored in the center cell. It is always
// treated as marked.
const FreeSpace = 0

const (
	boardSize      = 5
	numbersPerCol  = 15
	MaxBingoNumber = boardSize * numbersPerCol // 75
)

var columnLetters = [boardSize]string{"B", "I", "N", "G", "O"}

// Board is one player's 5x5 grid for a single game. Cells are addressed
// [row][col]; column c holds numbers from c*15+1 to (c+1)*15, except the
// center cell which is the free space.
type Board struct {
	ID    string    `json:"id"`
	Cells [5][5]int `json:"cells"`
}

// NewBoard generates a board from rng: 5 distinct numbers per column out
// of that column's 15-number range, center cell free.
func NewBoard(rng *rand.Rand) Board {
	b := Board{ID: uuid.NewString()}
	for col := 0; col < boardSize; col++ {
		low := col*numbersPerCol + 1
		picks := rng.Perm(numbersPerCol)[:boardSize]
		for row := 0; row < boardSize; row++ {
			b.Cells[row][col] = low + picks[row]
		}
	}
	b.Cells[2][2] = FreeSpace
	return b
}

// Validate reports ErrInvalidBoard if any cell is outside 1..75, the
// center excepted.
func (b Board) Validate() error {
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			if row == 2 && col == 2 {
				if b.Cells[row][col] != FreeSpace {
					return ErrInvalidBoard
				}
				continue
			}
			n := b.Cells[row][col]
			if n < 1 || n > MaxBingoNumber {
				return ErrInvalidBoard
			}
		}
	}
	return nil
}

// Numbers flattens the grid row by row, free space included.
func (b Board) Numbers() []int {
	out := make([]int, 0, boardSize*boardSize)
	for row := 0; row < boardSize; row++ {
		out = append(out, b.Cells[row][:]...)
	}
	return out
}

// Letter returns the display column letter for a called number (B/I/N/G/O).
func Letter(n int) string {
	if n < 1 || n > MaxBingoNumber {
		return ""
	}
	return columnLetters[(n-1)/numbersPerCol]
}
