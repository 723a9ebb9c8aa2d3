package domain

import "errors"

// Cell is one square of the board.
type Cell struct {
    Mark        Mark
    Highlighted bool
    Color       Color
}

// Filled reports whether a player has marked the cell.
func (c Cell) Filled() bool { return c.Mark != Empty }

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Triple is one of the eight winning lines, as cell indices.
type Triple [3]int

// Lines lists the winning lines in evaluation order.
var Lines = [8]Triple{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// Errors returned by domain operations.
var (
    ErrOutOfBounds    = errors.New("out of bounds")
    ErrOccupied       = errors.New("cell occupied")
    ErrGameOver       = errors.New("game over")
    ErrStepOutOfRange = errors.New("step out of range")
    ErrNotAPlayer     = errors.New("not a player mark")
)

// EmptyBoard returns a board with every cell unplayed.
func EmptyBoard() Board {
    var b Board
    for i := range b {
        b[i] = Cell{Color: EmptyColor}
    }
    return b
}

// Evaluate returns the first line whose three cells hold the same mark.
// When several lines match, the one earliest in Lines wins.
func Evaluate(b Board) (Triple, bool) {
    for _, ln := range Lines {
        m := b[ln[0]].Mark
        if m != Empty && b[ln[1]].Mark == m && b[ln[2]].Mark == m {
            return ln, true
        }
    }
    return Triple{}, false
}

// Full reports whether every cell is marked.
func (b Board) Full() bool {
    for _, c := range b {
        if !c.Filled() {
            return false
        }
    }
    return true
}

// ApplyMove returns a copy of b with mark placed at idx. If the move
// completes a line, the cells of that line come back highlighted.
func ApplyMove(b Board, idx int, mark Mark, color Color) (Board, error) {
    if _, won := Evaluate(b); won {
        return b, ErrGameOver
    }
    if idx < 0 || idx >= len(b) {
        return b, ErrOutOfBounds
    }
    if b[idx].Filled() {
        return b, ErrOccupied
    }

    b[idx] = Cell{Mark: mark, Color: color}

    if ln, won := Evaluate(b); won {
        for _, i := range ln {
            b[i].Highlighted = true
        }
    }
    return b, nil
}

// Row returns the 1-based display row of a cell index.
func Row(idx int) int {
    return idx/3 + 1
}

// Column returns the 1-based display column of a cell index, or 0 for an
// index off the board.
func Column(idx int) int {
    switch idx {
    case 0, 3, 6:
        return 1
    case 1, 4, 7:
        return 2
    case 2, 5, 8:
        return 3
    default:
        return 0
    }
}
