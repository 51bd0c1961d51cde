package engine

// Pattern identifies a winning arrangement on a board.
type Pattern string

const (
	PatternAny      Pattern = "any"
	PatternRow      Pattern = "row"
	PatternColumn   Pattern = "column"
	PatternDiagonal Pattern = "diagonal"
	PatternCorners  Pattern = "corners"
	PatternBlackout Pattern = "blackout"
)

// Evaluation is the outcome of checking a claim.
type Evaluation struct {
	Won     bool    `json:"won"`
	Pattern Pattern `json:"pattern,omitempty"`
}

type cell = [2]int

// patternChecks is the closed set of win patterns in claim-priority
// order: rows, columns, diagonals, corners, blackout.
var patternChecks = []struct {
	pattern Pattern
	lines   [][]cell
}{
	{PatternRow, rowLines()},
	{PatternColumn, columnLines()},
	{PatternDiagonal, diagonalLines()},
	{PatternCorners, [][]cell{{{0, 0}, {0, 4}, {4, 0}, {4, 4}}}},
	{PatternBlackout, blackoutLines()},
}

// Evaluate decides a win claim for one board against the called numbers.
// It is a pure function: same inputs always produce the same result.
// claimed == PatternAny checks every pattern in priority order; a
// concrete pattern checks only that pattern. A board with numbers
// outside 1..75 is a configuration fault (ErrInvalidBoard), not a
// false claim.
func Evaluate(board Board, called []int, claimed Pattern) (Evaluation, error) {
	if err := board.Validate(); err != nil {
		return Evaluation{}, err
	}

	calledSet := make(map[int]bool, len(called))
	for _, n := range called {
		calledSet[n] = true
	}

	marked := func(row, col int) bool {
		if row == 2 && col == 2 {
			return true
		}
		return calledSet[board.Cells[row][col]]
	}

	lineComplete := func(line []cell) bool {
		for _, c := range line {
			if !marked(c[0], c[1]) {
				return false
			}
		}
		return true
	}

	for _, check := range patternChecks {
		if claimed != PatternAny && claimed != check.pattern {
			continue
		}
		for _, line := range check.lines {
			if lineComplete(line) {
				return Evaluation{Won: true, Pattern: check.pattern}, nil
			}
		}
	}
	return Evaluation{Won: false}, nil
}

func rowLines() [][]cell {
	lines := make([][]cell, boardSize)
	for row := 0; row < boardSize; row++ {
		line := make([]cell, boardSize)
		for col := 0; col < boardSize; col++ {
			line[col] = cell{row, col}
		}
		lines[row] = line
	}
	return lines
}

func columnLines() [][]cell {
	lines := make([][]cell, boardSize)
	for col := 0; col < boardSize; col++ {
		line := make([]cell, boardSize)
		for row := 0; row < boardSize; row++ {
			line[row] = cell{row, col}
		}
		lines[col] = line
	}
	return lines
}

func diagonalLines() [][]cell {
	main := make([]cell, boardSize)
	anti := make([]cell, boardSize)
	for i := 0; i < boardSize; i++ {
		main[i] = cell{i, i}
		anti[i] = cell{i, boardSize - 1 - i}
	}
	return [][]cell{main, anti}
}

func blackoutLines() [][]cell {
	line := make([]cell, 0, boardSize*boardSize)
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			line = append(line, cell{row, col})
		}
	}
	return [][]cell{line}
}
