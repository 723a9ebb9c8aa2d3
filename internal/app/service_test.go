package app

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap/zaptest"
)

// firstColor always picks the first palette entry.
type firstColor struct{}

func (firstColor) IntN(int) int { return 0 }

func newTestService(t *testing.T) *Service {
    t.Helper()
    return NewService(zaptest.NewLogger(t), firstColor{})
}

func receive(t *testing.T, ch <-chan GameState) GameState {
    t.Helper()
    select {
    case gs, ok := <-ch:
        require.True(t, ok, "channel closed unexpectedly")
        return gs
    case <-time.After(2 * time.Second):
        t.Fatalf("timed out waiting for broadcast")
    }
    return GameState{}
}

func TestCreateAndGet(t *testing.T) {
    s := newTestService(t)
    gs, err := s.CreateGame()
    require.NoError(t, err)
    require.NotEmpty(t, gs.ID)
    assert.Equal(t, domain.X, gs.Session.Next())
    assert.Equal(t, 1, gs.Session.Len())
    assert.Equal(t, domain.Palette[0], gs.Session.XColor())
    assert.False(t, gs.Created.IsZero())
    assert.False(t, gs.Updated.IsZero())

    got, ok := s.Get(gs.ID)
    require.True(t, ok)
    assert.Equal(t, gs.ID, got.ID)
    assert.Equal(t, 1, s.Len())

    _, ok = s.Get("missing")
    assert.False(t, ok)
}

func TestTransitionsOnUnknownGame(t *testing.T) {
    s := newTestService(t)
    _, err := s.Move("missing", 0)
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = s.JumpTo("missing", 0)
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = s.ToggleOrder("missing")
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = s.Restart("missing")
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = s.Recolor("missing", domain.X)
    assert.ErrorIs(t, err, ErrNotFound)
    _, _, err = s.Subscribe(context.Background(), "missing")
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveUpdatesState(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()

    st, err := s.Move(gs.ID, 4)
    require.NoError(t, err)
    assert.Equal(t, domain.X, st.Session.Board()[4].Mark)
    assert.Equal(t, domain.O, st.Session.Next())
    assert.Equal(t, 1, st.Session.Step())

    latest, _ := s.Get(gs.ID)
    assert.Equal(t, st.Session, latest.Session)
}

func TestIgnoredMoveKeepsState(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()
    first, err := s.Move(gs.ID, 0)
    require.NoError(t, err)

    st, err := s.Move(gs.ID, 0)
    require.ErrorIs(t, err, domain.ErrOccupied)
    require.NotNil(t, st)
    assert.Equal(t, first.Session, st.Session)
    assert.Equal(t, first.Updated, st.Updated)
}

func TestJumpOrderRestartRecolor(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()
    for _, c := range []int{0, 4, 8} {
        _, err := s.Move(gs.ID, c)
        require.NoError(t, err)
    }

    st, err := s.JumpTo(gs.ID, 1)
    require.NoError(t, err)
    assert.Equal(t, 1, st.Session.Step())
    assert.Equal(t, 4, st.Session.Len())

    _, err = s.JumpTo(gs.ID, 9)
    assert.True(t, errors.Is(err, domain.ErrStepOutOfRange))

    st, err = s.ToggleOrder(gs.ID)
    require.NoError(t, err)
    assert.Equal(t, domain.Descending, st.Session.Order())

    st, err = s.Recolor(gs.ID, domain.O)
    require.NoError(t, err)
    assert.Equal(t, domain.Palette[0], st.Session.OColor())

    _, err = s.Recolor(gs.ID, domain.Empty)
    assert.ErrorIs(t, err, domain.ErrNotAPlayer)

    st, err = s.Restart(gs.ID)
    require.NoError(t, err)
    assert.Equal(t, 1, st.Session.Len())
    assert.Equal(t, 0, st.Session.Step())
    assert.Equal(t, domain.Ascending, st.Session.Order())
    assert.Equal(t, gs.ID, st.ID)
}

func TestSubscribeAndBroadcast(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    ch, unsub, err := s.Subscribe(ctx, gs.ID)
    require.NoError(t, err)
    defer unsub()

    _, err = s.Move(gs.ID, 0)
    require.NoError(t, err)
    got := receive(t, ch)
    assert.Equal(t, 1, got.Session.Step())

    // ignored transitions do not broadcast
    _, err = s.Move(gs.ID, 0)
    require.Error(t, err)
    select {
    case <-ch:
        t.Fatalf("unexpected broadcast for ignored move")
    default:
    }

    _, err = s.ToggleOrder(gs.ID)
    require.NoError(t, err)
    got = receive(t, ch)
    assert.Equal(t, domain.Descending, got.Session.Order())
}

func TestSlowSubscriberGetsNewestState(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()

    // never read until every move is played
    slowCh, _, err := s.Subscribe(context.Background(), gs.ID)
    require.NoError(t, err)

    for _, cell := range []int{0, 4, 8, 2} {
        _, err = s.Move(gs.ID, cell)
        require.NoError(t, err)
    }

    latest, ok := <-slowCh
    require.True(t, ok, "slow subscriber stays open")
    assert.Equal(t, 4, latest.Session.Step())
    assert.Equal(t, domain.O, latest.Session.Board()[2].Mark)
    select {
    case extra, ok := <-slowCh:
        t.Fatalf("expected one pending state, got %v (open=%v)", extra.Session.Step(), ok)
    default:
    }

    _, err = s.ToggleOrder(gs.ID)
    require.NoError(t, err)
    next := receive(t, slowCh)
    assert.Equal(t, domain.Descending, next.Session.Order())
}

func TestUnsubscribeOnContextCancel(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()

    ctx, cancel := context.WithCancel(context.Background())
    ch, _, err := s.Subscribe(ctx, gs.ID)
    require.NoError(t, err)
    cancel()

    select {
    case _, ok := <-ch:
        assert.False(t, ok)
    case <-time.After(2 * time.Second):
        t.Fatalf("subscription not closed after cancel")
    }
}

func TestPrune(t *testing.T) {
    s := newTestService(t)
    now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
    s.now = func() time.Time { return now }

    old, _ := s.CreateGame()
    ch, _, err := s.Subscribe(context.Background(), old.ID)
    require.NoError(t, err)

    now = now.Add(30 * time.Minute)
    fresh, _ := s.CreateGame()

    now = now.Add(45 * time.Minute)
    assert.Equal(t, 1, s.Prune(time.Hour))

    _, ok := s.Get(old.ID)
    assert.False(t, ok)
    _, ok = s.Get(fresh.ID)
    assert.True(t, ok)

    _, open := <-ch
    assert.False(t, open, "subscribers of pruned games are closed")
}

func TestRunJanitorStopsWithContext(t *testing.T) {
    s := newTestService(t)
    gs, _ := s.CreateGame()
    s.mu.Lock()
    s.games[gs.ID].Updated = time.Now().Add(-time.Hour)
    s.mu.Unlock()

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        s.RunJanitor(ctx, 10*time.Millisecond, time.Minute)
        close(done)
    }()

    require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
    cancel()
    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatalf("janitor did not stop")
    }
}
