package web

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
    "go.uber.org/zap"
)

var errBadForm = errors.New("bad form value")

type handlers struct {
    svc       *app.Service
    tpl       *templates
    log       *zap.Logger
    heartbeat time.Duration
    upgrader  websocket.Upgrader
}

func (h *handlers) renderGame(gs app.GameState) ([]byte, error) {
    return renderTemplate(h.tpl.game, "", newGameView(gs))
}

func (h *handlers) writeHTML(w http.ResponseWriter, body []byte, err error) {
    if err != nil {
        h.log.Error("render failed", zap.Error(err))
        http.Error(w, "render failed", http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(body)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    body, err := renderTemplate(h.tpl.index, "base", nil)
    h.writeHTML(w, body, err)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.CreateGame()
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    body, err := renderTemplate(h.tpl.page, "base", newGameView(*gs))
    h.writeHTML(w, body, err)
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    if err := json.NewEncoder(w).Encode(newGameView(*gs)); err != nil {
        h.log.Warn("encode state", zap.Error(err))
    }
}

func (h *handlers) move(w http.ResponseWriter, r *http.Request) {
    cell, err := formInt(r, "cell")
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    id := chi.URLParam(r, "id")
    gs, err := h.svc.Move(id, cell)
    h.respond(w, r, gs, err)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
    step, err := formInt(r, "step")
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    gs, err := h.svc.JumpTo(chi.URLParam(r, "id"), step)
    h.respond(w, r, gs, err)
}

func (h *handlers) order(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.ToggleOrder(chi.URLParam(r, "id"))
    h.respond(w, r, gs, err)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.Restart(chi.URLParam(r, "id"))
    h.respond(w, r, gs, err)
}

func (h *handlers) recolor(w http.ResponseWriter, r *http.Request) {
    _ = r.ParseForm()
    mark, err := domain.ParseMark(r.Form.Get("mark"))
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    gs, err := h.svc.Recolor(chi.URLParam(r, "id"), mark)
    h.respond(w, r, gs, err)
}

// respond answers a transition. htmx requests get the game fragment, plain
// form posts are sent back to the game page. Moves the rules reject are not
// reported: the unchanged game is rendered.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, gs *app.GameState, err error) {
    switch {
    case errors.Is(err, app.ErrNotFound):
        http.NotFound(w, r)
        return
    case errors.Is(err, domain.ErrStepOutOfRange), errors.Is(err, domain.ErrNotAPlayer):
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    if r.Header.Get("HX-Request") != "true" {
        http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
        return
    }
    body, rerr := h.renderGame(*gs)
    h.writeHTML(w, body, rerr)
}

func formInt(r *http.Request, key string) (int, error) {
    _ = r.ParseForm()
    v, err := strconv.Atoi(r.Form.Get(key))
    if err != nil {
        return 0, fmt.Errorf("%w: %s", errBadForm, key)
    }
    return v, nil
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    defer unsub()
    // read after subscribing so no transition falls between the two
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()

    w.WriteHeader(http.StatusOK)
    if err := h.writeEvent(w, *gs); err != nil {
        return
    }
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case next, ok := <-ch:
            if !ok {
                return
            }
            if err := h.writeEvent(w, next); err != nil {
                return
            }
            flusher.Flush()
        }
    }
}

// writeEvent emits one "game" event. Every line of the fragment gets its
// own data field.
func (h *handlers) writeEvent(w io.Writer, gs app.GameState) error {
    body, err := h.renderGame(gs)
    if err != nil {
        h.log.Error("render failed", zap.String("game", gs.ID), zap.Error(err))
        return err
    }
    if _, err := io.WriteString(w, "event: game\n"); err != nil {
        return err
    }
    for _, line := range strings.Split(strings.TrimRight(string(body), "\n"), "\n") {
        if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
            return err
        }
    }
    _, err = io.WriteString(w, "\n")
    return err
}
