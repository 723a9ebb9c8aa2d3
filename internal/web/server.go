package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
    "go.uber.org/zap"
)

// Options tunes the HTTP surface.
type Options struct {
    // Heartbeat is the interval of SSE keep-alive comments.
    Heartbeat time.Duration
    // AllowedOrigin, when set, is the only Origin accepted for sockets.
    // Empty means same-origin only.
    AllowedOrigin string
}

const defaultHeartbeat = 15 * time.Second

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, log *zap.Logger, opts Options) http.Handler {
    if log == nil {
        log = zap.NewNop()
    }
    if opts.Heartbeat <= 0 {
        opts.Heartbeat = defaultHeartbeat
    }
    h := &handlers{
        svc:       s,
        tpl:       loadTemplates(),
        log:       log.With(zap.String("component", "web")),
        heartbeat: opts.Heartbeat,
        upgrader:  websocket.Upgrader{CheckOrigin: checkOrigin(opts.AllowedOrigin)},
    }

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(middleware.RealIP)
    r.Use(requestLogger(h.log))
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Get("/state", h.state)
        r.Post("/move", h.move)
        r.Post("/jump", h.jump)
        r.Post("/order", h.order)
        r.Post("/restart", h.restart)
        r.Post("/recolor", h.recolor)
        r.Get("/events", h.events)
        r.Get("/ws", h.socket)
    })
    return r
}

// checkOrigin returns nil (gorilla's same-origin check) when no origin is
// configured.
func checkOrigin(allowed string) func(r *http.Request) bool {
    if allowed == "" {
        return nil
    }
    return func(r *http.Request) bool {
        origin := r.Header.Get("Origin")
        return origin == "" || origin == allowed
    }
}

// requestLogger writes one access log line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            defer func() {
                log.Info("request",
                    zap.String("method", r.Method),
                    zap.String("path", r.URL.Path),
                    zap.Int("status", ww.Status()),
                    zap.Int("bytes", ww.BytesWritten()),
                    zap.Duration("duration", time.Since(start)),
                    zap.String("request_id", middleware.GetReqID(r.Context())),
                )
            }()
            next.ServeHTTP(ww, r)
        })
    }
}
