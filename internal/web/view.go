package web

import (
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/colors"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

// highlightTint is how far a winning cell's background is blended to white.
const highlightTint = 0.8

// gameView is what templates and JSON clients see of a game.
type gameView struct {
    ID      string       `json:"id"`
    Step    int          `json:"step"`
    Length  int          `json:"length"`
    Next    string       `json:"next"`
    State   string       `json:"state"`
    Winner  string       `json:"winner,omitempty"`
    Line    []int        `json:"line,omitempty"`
    Status  string       `json:"status"`
    Order   string       `json:"order"`
    Cells   []cellView   `json:"cells"`
    Players []playerView `json:"players"`
    Moves   []moveView   `json:"moves"`
}

type cellView struct {
    Index       int    `json:"index"`
    Mark        string `json:"mark"`
    Color       string `json:"color"`
    Hex         string `json:"hex"`
    Background  string `json:"background,omitempty"`
    Highlighted bool   `json:"highlighted"`
}

type playerView struct {
    Mark  string `json:"mark"`
    Color string `json:"color"`
    Hex   string `json:"hex"`
}

type moveView struct {
    Step    int    `json:"step"`
    Mark    string `json:"mark,omitempty"`
    Cell    int    `json:"cell"`
    Row     int    `json:"row,omitempty"`
    Column  int    `json:"column,omitempty"`
    Label   string `json:"label"`
    Current bool   `json:"current"`
}

func newGameView(gs app.GameState) gameView {
    sess := gs.Session
    out := sess.Outcome()
    v := gameView{
        ID:     gs.ID,
        Step:   sess.Step(),
        Length: sess.Len(),
        Next:   sess.Next().String(),
        State:  out.State.String(),
        Status: sess.Status(),
        Order:  sess.Order().String(),
    }
    if out.State == domain.Won {
        v.Winner = out.Winner.String()
        v.Line = out.Line[:]
    }
    for i, c := range sess.Board() {
        cv := cellView{
            Index:       i,
            Mark:        c.Mark.String(),
            Color:       string(c.Color),
            Hex:         colors.Hex(c.Color),
            Highlighted: c.Highlighted,
        }
        if c.Highlighted {
            cv.Background = colors.Tint(c.Color, highlightTint)
        }
        v.Cells = append(v.Cells, cv)
    }
    for _, m := range []domain.Mark{domain.X, domain.O} {
        c := sess.ColorOf(m)
        v.Players = append(v.Players, playerView{Mark: m.String(), Color: string(c), Hex: colors.Hex(c)})
    }
    for _, e := range sess.Moves() {
        v.Moves = append(v.Moves, moveView{
            Step:    e.Step,
            Mark:    e.Mark.String(),
            Cell:    e.Cell,
            Row:     e.Row,
            Column:  e.Column,
            Label:   e.String(),
            Current: e.Current,
        })
    }
    return v
}

// Rows groups the cells three by three for the board grid.
func (v gameView) Rows() [][]cellView {
    rows := make([][]cellView, 0, 3)
    for r := 0; r+3 <= len(v.Cells); r += 3 {
        rows = append(rows, v.Cells[r:r+3])
    }
    return rows
}
