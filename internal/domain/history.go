package domain

// NoMove marks the snapshot that no move produced.
const NoMove = -1

// Snapshot is one board configuration and the cell played to reach it.
type Snapshot struct {
    Board    Board
    LastMove int
}

// History is the ordered list of snapshots of one game. The first entry is
// always the empty board.
type History []Snapshot

func newHistory() History {
    return History{{Board: EmptyBoard(), LastMove: NoMove}}
}

// Append keeps h[0..upTo] and adds snap after it. h itself is left untouched.
func (h History) Append(upTo int, snap Snapshot) History {
    if upTo >= len(h) {
        upTo = len(h) - 1
    }
    out := make(History, upTo+1, upTo+2)
    copy(out, h[:upTo+1])
    return append(out, snap)
}

// Order is the direction the move list is presented in.
type Order uint8

const (
    Ascending Order = iota
    Descending
)

func (o Order) String() string {
    if o == Descending {
        return "descending"
    }
    return "ascending"
}

// Toggle returns the opposite order.
func (o Order) Toggle() Order {
    if o == Descending {
        return Ascending
    }
    return Descending
}
