package domain

import "math/rand/v2"

// Mark is the symbol a player places in a cell.
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
    default:
        return ""
    }
}

// ParseMark accepts "X", "O" and their lower-case forms.
func ParseMark(s string) (Mark, error) {
    switch s {
    case "X", "x":
        return X, nil
    case "O", "o":
        return O, nil
    default:
        return Empty, ErrNotAPlayer
    }
}

// Color is a CSS colour value used to draw a player's marks.
type Color string

// EmptyColor is the colour carried by cells nobody has played yet.
const EmptyColor Color = "black"

// Palette is the fixed set of player colours.
var Palette = [...]Color{
    "rgb(116, 9, 75)",
    "rgb(235, 6, 147)",
    "rgb(16, 9, 116)",
    "rgb(83, 7, 99)",
}

// ColorSource selects an index in [0, n). *rand.Rand satisfies it.
type ColorSource interface {
    IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// RandomColors picks uniformly from the process-wide generator.
var RandomColors ColorSource = globalRand{}

// PickColor draws one colour from the palette. A nil source falls back to
// RandomColors, and out-of-range picks wrap around.
func PickColor(src ColorSource) Color {
    if src == nil {
        src = RandomColors
    }
    i := src.IntN(len(Palette)) % len(Palette)
    if i < 0 {
        i += len(Palette)
    }
    return Palette[i]
}
