package domain

import (
    "fmt"
    "slices"
)

// State is the phase a game is in.
type State uint8

const (
    InProgress State = iota
    Won
    Draw
)

func (s State) String() string {
    switch s {
    case Won:
        return "won"
    case Draw:
        return "draw"
    default:
        return "in_progress"
    }
}

// Outcome describes the displayed board. Winner and Line are only set when
// State is Won.
type Outcome struct {
    State  State
    Winner Mark
    Line   Triple
}

// Session is one game: its history, the step being shown and the cosmetic
// settings. It is a value; every transition returns a new Session and the
// receiver stays valid. Build one with NewSession; the zero value has no
// history.
type Session struct {
    history History
    step    int
    xColor  Color
    oColor  Color
    order   Order
}

// NewSession starts a game on an empty board with freshly picked colours.
func NewSession(src ColorSource) Session {
    return Session{
        history: newHistory(),
        xColor:  PickColor(src),
        oColor:  PickColor(src),
    }
}

// Restart discards the game and starts over with new colours.
func (s Session) Restart(src ColorSource) Session {
    return NewSession(src)
}

// History returns a copy of every snapshot, including the ones after the
// current step.
func (s Session) History() History { return slices.Clone(s.history) }

// Len is the number of snapshots in the history.
func (s Session) Len() int { return len(s.history) }

// Step is the index of the snapshot being shown.
func (s Session) Step() int { return s.step }

func (s Session) XColor() Color { return s.xColor }
func (s Session) OColor() Color { return s.oColor }
func (s Session) Order() Order  { return s.order }

// Current returns the snapshot being shown.
func (s Session) Current() Snapshot { return s.history[s.step] }

// Board returns the board being shown.
func (s Session) Board() Board { return s.Current().Board }

// Next is the mark to play from the current step. X moves on even steps.
func (s Session) Next() Mark {
    if s.step%2 == 0 {
        return X
    }
    return O
}

// ColorOf returns the display colour assigned to a player.
func (s Session) ColorOf(m Mark) Color {
    switch m {
    case X:
        return s.xColor
    case O:
        return s.oColor
    default:
        return EmptyColor
    }
}

// Outcome evaluates the board being shown.
func (s Session) Outcome() Outcome {
    b := s.Board()
    if ln, won := Evaluate(b); won {
        return Outcome{State: Won, Winner: b[ln[0]].Mark, Line: ln}
    }
    if b.Full() {
        return Outcome{State: Draw}
    }
    return Outcome{State: InProgress}
}

// Status is the one-line summary shown above the move list.
func (s Session) Status() string {
    o := s.Outcome()
    switch o.State {
    case Won:
        return "Winner: " + o.Winner.String()
    case Draw:
        return "It's a draw"
    default:
        return "Next player: " + s.Next().String()
    }
}

// CheckMove reports why Move would ignore idx, or nil if it would accept it.
func (s Session) CheckMove(idx int) error {
    if s.Outcome().State != InProgress {
        return ErrGameOver
    }
    if idx < 0 || idx > 8 {
        return ErrOutOfBounds
    }
    if s.Board()[idx].Filled() {
        return ErrOccupied
    }
    return nil
}

// Move plays the next mark at idx. Snapshots after the current step are
// dropped before the new one is appended. A rejected move returns s
// unchanged along with the reason.
func (s Session) Move(idx int) (Session, error) {
    if err := s.CheckMove(idx); err != nil {
        return s, err
    }
    mark := s.Next()
    b, err := ApplyMove(s.Board(), idx, mark, s.ColorOf(mark))
    if err != nil {
        return s, err
    }
    s.history = s.history.Append(s.step, Snapshot{Board: b, LastMove: idx})
    s.step = len(s.history) - 1
    return s, nil
}

// JumpTo shows an earlier (or later) snapshot without touching the history.
func (s Session) JumpTo(step int) (Session, error) {
    if step < 0 || step >= len(s.history) {
        return s, fmt.Errorf("%w: %d not in [0, %d)", ErrStepOutOfRange, step, len(s.history))
    }
    s.step = step
    return s, nil
}

// ToggleOrder flips the direction of the move list.
func (s Session) ToggleOrder() Session {
    s.order = s.order.Toggle()
    return s
}

// Recolor picks a new colour for one player. Marks already on the board
// keep the colour they were played with.
func (s Session) Recolor(m Mark, src ColorSource) (Session, error) {
    switch m {
    case X:
        s.xColor = PickColor(src)
    case O:
        s.oColor = PickColor(src)
    default:
        return s, ErrNotAPlayer
    }
    return s, nil
}

// MoveEntry is one line of the move list.
type MoveEntry struct {
    Step    int
    Mark    Mark
    Cell    int
    Row     int
    Column  int
    Current bool
}

func (e MoveEntry) String() string {
    if e.Step == 0 {
        return "Go to game start"
    }
    return fmt.Sprintf("Go to move #%d - %s at (%d, %d)", e.Step, e.Mark, e.Column, e.Row)
}

// Moves lists every snapshot in the session's order.
func (s Session) Moves() []MoveEntry {
    out := make([]MoveEntry, 0, len(s.history))
    for i := range s.history {
        step := i
        if s.order == Descending {
            step = len(s.history) - 1 - i
        }
        out = append(out, s.entry(step))
    }
    return out
}

func (s Session) entry(step int) MoveEntry {
    e := MoveEntry{Step: step, Cell: NoMove, Current: step == s.step}
    if step == 0 {
        return e
    }
    e.Mark = O
    if step%2 == 1 {
        e.Mark = X
    }
    e.Cell = s.history[step].LastMove
    e.Row = Row(e.Cell)
    e.Column = Column(e.Cell)
    return e
}
