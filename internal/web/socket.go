package web

import (
    "context"
    "errors"
    "fmt"
    "math"
    "net/http"
    "reflect"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
    "github.com/mitchellh/mapstructure"
    "go.uber.org/zap"
)

const writeWait = 10 * time.Second

// inbound is a command sent by a socket client.
type inbound struct {
    Type     string                 `json:"type"`
    Contents map[string]interface{} `json:"contents"`
}

// outbound is a message sent to a socket client.
type outbound struct {
    Type     string      `json:"type"`
    Contents interface{} `json:"contents"`
}

type moveRequest struct {
    Cell *int `mapstructure:"cell"`
}

type jumpRequest struct {
    Step *int `mapstructure:"step"`
}

type recolorRequest struct {
    Mark string `mapstructure:"mark"`
}

// errorResponse is returned to the client when a command cannot be applied.
type errorResponse struct {
    Reason string `json:"reason"`
}

var (
    errMissingField = errors.New("missing field")
    errNotWhole     = errors.New("not a whole number")
)

func (h *handlers) socket(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := h.upgrader.Upgrade(w, r, nil)
    if err != nil {
        // Upgrade has already replied to the client
        h.log.Warn("upgrade failed", zap.String("game", id), zap.Error(err))
        return
    }
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    updates, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        return
    }
    defer unsub()

    replies := make(chan outbound, 4)
    go h.writeLoop(ctx, cancel, conn, id, updates, replies)

    // Forever handle messages from this client
    for {
        var msg inbound
        if err := conn.ReadJSON(&msg); err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                h.log.Info("socket closed", zap.String("game", id), zap.Error(err))
            }
            return
        }
        reply, ok := h.dispatch(id, msg)
        if !ok {
            continue
        }
        select {
        case replies <- reply:
        case <-ctx.Done():
            return
        }
    }
}

// writeLoop is the connection's only writer. It sends the current state
// first, then every broadcast state and direct reply.
func (h *handlers) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, id string, updates <-chan app.GameState, replies <-chan outbound) {
    defer func() {
        cancel()
        _ = conn.Close()
    }()
    if gs, ok := h.svc.Get(id); ok {
        if err := writeMessage(conn, stateMessage(*gs)); err != nil {
            return
        }
    }
    for {
        var msg outbound
        select {
        case <-ctx.Done():
            _ = conn.WriteControl(websocket.CloseMessage,
                websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
            return
        case gs, ok := <-updates:
            if !ok {
                _ = conn.WriteControl(websocket.CloseMessage,
                    websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"), time.Now().Add(writeWait))
                return
            }
            msg = stateMessage(gs)
        case msg = <-replies:
        }
        if err := writeMessage(conn, msg); err != nil {
            h.log.Debug("socket write failed", zap.String("game", id), zap.Error(err))
            return
        }
    }
}

func writeMessage(conn *websocket.Conn, msg outbound) error {
    _ = conn.SetWriteDeadline(time.Now().Add(writeWait))
    return conn.WriteJSON(msg)
}

func stateMessage(gs app.GameState) outbound {
    return outbound{Type: "state", Contents: newGameView(gs)}
}

func errorMessage(err error) outbound {
    return outbound{Type: "error", Contents: errorResponse{Reason: err.Error()}}
}

// dispatch applies one command. Successful transitions reach the client
// through its subscription; only failures and explicit state requests are
// answered directly.
func (h *handlers) dispatch(id string, msg inbound) (outbound, bool) {
    var err error
    switch msg.Type {
    case "state":
        gs, ok := h.svc.Get(id)
        if !ok {
            return errorMessage(app.ErrNotFound), true
        }
        return stateMessage(*gs), true
    case "move":
        var req moveRequest
        if err = decodeContents(msg.Contents, &req); err == nil {
            if req.Cell == nil {
                err = fmt.Errorf("%w: cell", errMissingField)
            } else {
                _, err = h.svc.Move(id, *req.Cell)
            }
        }
    case "jump":
        var req jumpRequest
        if err = decodeContents(msg.Contents, &req); err == nil {
            if req.Step == nil {
                err = fmt.Errorf("%w: step", errMissingField)
            } else {
                _, err = h.svc.JumpTo(id, *req.Step)
            }
        }
    case "order":
        _, err = h.svc.ToggleOrder(id)
    case "restart":
        _, err = h.svc.Restart(id)
    case "recolor":
        var req recolorRequest
        if err = decodeContents(msg.Contents, &req); err == nil {
            var mark domain.Mark
            if mark, err = domain.ParseMark(req.Mark); err == nil {
                _, err = h.svc.Recolor(id, mark)
            }
        }
    default:
        err = fmt.Errorf("unknown message type %q", msg.Type)
    }

    switch {
    case err == nil:
        return outbound{}, false
    case errors.Is(err, domain.ErrOccupied), errors.Is(err, domain.ErrGameOver), errors.Is(err, domain.ErrOutOfBounds):
        // the rules ignore these moves silently
        return outbound{}, false
    default:
        return errorMessage(err), true
    }
}

func decodeContents(contents map[string]interface{}, out interface{}) error {
    dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
        DecodeHook: wholeNumberHook,
        Result:     out,
    })
    if err != nil {
        return err
    }
    if err := dec.Decode(contents); err != nil {
        return fmt.Errorf("unable to parse contents: %w", err)
    }
    return nil
}

// wholeNumberHook refuses JSON numbers with a fraction for integer fields.
func wholeNumberHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
    for to.Kind() == reflect.Ptr {
        to = to.Elem()
    }
    if to.Kind() != reflect.Int {
        return data, nil
    }
    if f, ok := data.(float64); ok && f != math.Trunc(f) {
        return nil, fmt.Errorf("%w: %v", errNotWhole, f)
    }
    return data, nil
}
