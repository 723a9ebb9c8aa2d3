// Package term plays a session on a terminal, one command per line.
package term

import (
    "bufio"
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"

    "github.com/jaminalder/timetravel-tic-tac-toe/internal/colors"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
    "github.com/muesli/termenv"
    "go.uber.org/zap"
)

var errUnknownCommand = errors.New("unknown command")

const help = `commands:
  move N      place the next mark on cell N (0-8)
  jump N      show the board after move N
  order       reverse the move list
  restart     start a new game
  color x|o   pick a new colour for a player
  help        show this text
  quit        leave
`

// Game holds the session played in one terminal.
type Game struct {
    out    *termenv.Output
    colors domain.ColorSource
    log    *zap.Logger
    s      domain.Session
}

func NewGame(out *termenv.Output, src domain.ColorSource, log *zap.Logger) *Game {
    if log == nil {
        log = zap.NewNop()
    }
    return &Game{
        out:    out,
        colors: src,
        log:    log.With(zap.String("component", "term")),
        s:      domain.NewSession(src),
    }
}

// Session returns the session as it currently stands.
func (g *Game) Session() domain.Session { return g.s }

// Run renders the game and executes commands from in until quit or EOF.
func (g *Game) Run(in io.Reader) error {
    g.Render()
    sc := bufio.NewScanner(in)
    for {
        fmt.Fprint(g.out, "> ")
        if !sc.Scan() {
            fmt.Fprintln(g.out)
            return sc.Err()
        }
        quit, err := g.Exec(sc.Text())
        if quit {
            return nil
        }
        if err != nil {
            fmt.Fprintln(g.out, g.out.String("error: "+err.Error()).Bold())
            continue
        }
        g.Render()
    }
}

// Exec applies one command line. Moves the rules reject are ignored.
func (g *Game) Exec(line string) (bool, error) {
    fields := strings.Fields(strings.ToLower(line))
    if len(fields) == 0 {
        return false, nil
    }
    arg := ""
    if len(fields) > 1 {
        arg = fields[1]
    }
    switch fields[0] {
    case "quit", "exit", "q":
        return true, nil
    case "help", "?":
        fmt.Fprint(g.out, help)
        return false, nil
    case "move", "m":
        cell, err := strconv.Atoi(arg)
        if err != nil {
            return false, errors.New("usage: move <cell>")
        }
        next, err := g.s.Move(cell)
        if err != nil {
            g.log.Debug("move ignored", zap.Int("cell", cell), zap.Error(err))
            return false, nil
        }
        g.s = next
    case "jump", "j":
        step, err := strconv.Atoi(arg)
        if err != nil {
            return false, errors.New("usage: jump <step>")
        }
        next, err := g.s.JumpTo(step)
        if err != nil {
            return false, err
        }
        g.s = next
    case "order", "o":
        g.s = g.s.ToggleOrder()
    case "restart", "r":
        g.s = g.s.Restart(g.colors)
    case "color", "colour", "c":
        mark, err := domain.ParseMark(arg)
        if err != nil {
            return false, err
        }
        next, err := g.s.Recolor(mark, g.colors)
        if err != nil {
            return false, err
        }
        g.s = next
    default:
        return false, fmt.Errorf("%w %q, try help", errUnknownCommand, fields[0])
    }
    return false, nil
}

// Render draws the board, the status line and the move list.
func (g *Game) Render() {
    b := g.s.Board()
    for r := 0; r < 3; r++ {
        cells := make([]string, 3)
        for c := 0; c < 3; c++ {
            cells[c] = g.cell(r*3+c, b[r*3+c])
        }
        fmt.Fprintf(g.out, " %s | %s | %s\n", cells[0], cells[1], cells[2])
        if r < 2 {
            fmt.Fprintln(g.out, "---+---+---")
        }
    }
    fmt.Fprintln(g.out)
    fmt.Fprintln(g.out, g.out.String(g.s.Status()).Bold())
    for _, e := range g.s.Moves() {
        marker := "  "
        label := g.out.String(e.String())
        if e.Current {
            marker = "> "
            label = label.Underline()
        }
        fmt.Fprintf(g.out, "%s%2d. %s\n", marker, e.Step, label)
    }
}

func (g *Game) cell(idx int, c domain.Cell) string {
    if !c.Filled() {
        return g.out.String(strconv.Itoa(idx)).Faint().String()
    }
    st := g.out.String(c.Mark.String()).Foreground(g.out.Color(colors.Hex(c.Color)))
    if c.Highlighted {
        st = st.Bold().Reverse()
    }
    return st.String()
}
