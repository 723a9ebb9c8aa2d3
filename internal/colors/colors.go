// Package colors converts the CSS colour values carried by the game into
// forms the presentation layers can use.
package colors

import (
    "errors"
    "fmt"
    "strings"

    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
    "github.com/lucasb-eyer/go-colorful"
)

// ErrUnsupported is returned for colour syntax Parse does not understand.
var ErrUnsupported = errors.New("unsupported colour")

var named = map[string]colorful.Color{
    "black": {R: 0, G: 0, B: 0},
    "white": {R: 1, G: 1, B: 1},
}

var white = named["white"]

// Parse reads rgb(r, g, b), #rrggbb, #rgb, black and white.
func Parse(c domain.Color) (colorful.Color, error) {
    s := strings.ToLower(strings.TrimSpace(string(c)))
    if v, ok := named[s]; ok {
        return v, nil
    }
    if strings.HasPrefix(s, "#") {
        v, err := colorful.Hex(s)
        if err != nil {
            return colorful.Color{}, fmt.Errorf("%w: %q: %v", ErrUnsupported, c, err)
        }
        return v, nil
    }
    if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
        var r, g, b int
        body := strings.ReplaceAll(s[len("rgb("):len(s)-1], " ", "")
        if _, err := fmt.Sscanf(body, "%d,%d,%d", &r, &g, &b); err != nil {
            return colorful.Color{}, fmt.Errorf("%w: %q: %v", ErrUnsupported, c, err)
        }
        if !inByte(r) || !inByte(g) || !inByte(b) {
            return colorful.Color{}, fmt.Errorf("%w: %q: channel out of range", ErrUnsupported, c)
        }
        return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
    }
    return colorful.Color{}, fmt.Errorf("%w: %q", ErrUnsupported, c)
}

func inByte(v int) bool { return v >= 0 && v <= 255 }

// Hex returns c as #rrggbb, or black when it cannot be parsed.
func Hex(c domain.Color) string {
    v, err := Parse(c)
    if err != nil {
        return "#000000"
    }
    return v.Hex()
}

// Tint blends c towards white by amount in [0, 1] in Lab space. Unparseable
// colours tint from black.
func Tint(c domain.Color, amount float64) string {
    v, err := Parse(c)
    if err != nil {
        v = named["black"]
    }
    return v.BlendLab(white, amount).Clamped().Hex()
}
