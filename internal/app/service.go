package app

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
    "go.uber.org/zap"
)

// Errors exposed by the service layer.
var (
    ErrNotFound = errors.New("game not found")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID      string
    Session domain.Session
    Created time.Time
    Updated time.Time
}

type subscriber struct {
    ch        chan GameState
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. Every transition runs under one
// lock, so actions on a game are applied one at a time.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    colors domain.ColorSource
    log    *zap.Logger
    now    func() time.Time
}

// NewService creates a service. A nil colour source picks colours at random.
func NewService(log *zap.Logger, colors domain.ColorSource) *Service {
    if log == nil {
        log = zap.NewNop()
    }
    if colors == nil {
        colors = domain.RandomColors
    }
    return &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        colors: colors,
        log:    log.With(zap.String("component", "service")),
        now:    time.Now,
    }
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := uuid.NewString()
    now := s.now()
    gs := &GameState{ID: id, Session: domain.NewSession(s.colors), Created: now, Updated: now}
    s.games[id] = gs
    s.log.Info("game created", zap.String("game", id))
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Len returns the number of live games.
func (s *Service) Len() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.games)
}

// Move plays the next mark at cell. Rejected moves leave the game as it was
// and return the domain error next to the unchanged state.
func (s *Service) Move(id string, cell int) (*GameState, error) {
    return s.apply(id, "move", func(sess domain.Session) (domain.Session, error) {
        return sess.Move(cell)
    })
}

// JumpTo shows the snapshot at step.
func (s *Service) JumpTo(id string, step int) (*GameState, error) {
    return s.apply(id, "jump", func(sess domain.Session) (domain.Session, error) {
        return sess.JumpTo(step)
    })
}

// ToggleOrder flips the move list direction.
func (s *Service) ToggleOrder(id string) (*GameState, error) {
    return s.apply(id, "order", func(sess domain.Session) (domain.Session, error) {
        return sess.ToggleOrder(), nil
    })
}

// Restart replaces the game with a fresh one under the same id.
func (s *Service) Restart(id string) (*GameState, error) {
    return s.apply(id, "restart", func(sess domain.Session) (domain.Session, error) {
        return sess.Restart(s.colors), nil
    })
}

// Recolor picks a new colour for one player.
func (s *Service) Recolor(id string, mark domain.Mark) (*GameState, error) {
    return s.apply(id, "recolor", func(sess domain.Session) (domain.Session, error) {
        return sess.Recolor(mark, s.colors)
    })
}

// apply runs one transition, stores the result and broadcasts it.
func (s *Service) apply(id, action string, fn func(domain.Session) (domain.Session, error)) (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, ErrNotFound
    }
    next, err := fn(gs.Session)
    if err != nil {
        s.log.Debug("transition ignored",
            zap.String("game", id), zap.String("action", action), zap.Error(err))
        cp := *gs
        return &cp, err
    }
    gs.Session = next
    gs.Updated = s.now()
    cp := *gs
    s.broadcastLocked(id, cp)
    return &cp, nil
}

// broadcastLocked hands gs to every subscriber without blocking. A
// subscriber that has not read the previous state gets it replaced, so each
// one always holds the newest state.
func (s *Service) broadcastLocked(id string, gs GameState) {
    replaced := 0
    for sub := range s.subs[id] {
        select {
        case sub.ch <- gs:
            continue
        default:
        }
        // only senders hold the lock, so after draining the slot is free
        select {
        case <-sub.ch:
            replaced++
        default:
        }
        select {
        case sub.ch <- gs:
        default:
        }
    }
    if replaced > 0 {
        s.log.Debug("replaced unread states", zap.String("game", id), zap.Int("count", replaced))
    }
}

// Subscribe registers a subscriber for a game. The channel receives every
// new state, keeping only the newest one unread, and is closed on
// unsubscribe, when ctx ends or when the game is pruned.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, nil, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan GameState, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            defer s.mu.Unlock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
                if len(set) == 0 {
                    delete(s.subs, id)
                }
            }
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

// Prune removes games not updated within ttl and closes their subscribers.
// It returns the number of games removed.
func (s *Service) Prune(ttl time.Duration) int {
    cutoff := s.now().Add(-ttl)

    s.mu.Lock()
    defer s.mu.Unlock()
    pruned := 0
    for id, gs := range s.games {
        if !gs.Updated.Before(cutoff) {
            continue
        }
        for sub := range s.subs[id] {
            sub.close()
        }
        delete(s.subs, id)
        delete(s.games, id)
        pruned++
        s.log.Info("game pruned", zap.String("game", id), zap.Time("updated", gs.Updated))
    }
    return pruned
}

// RunJanitor prunes idle games every interval until ctx ends.
func (s *Service) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if n := s.Prune(ttl); n > 0 {
                s.log.Debug("janitor pass", zap.Int("pruned", n), zap.Int("live", s.Len()))
            }
        }
    }
}
