package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/config"
    "github.com/jaminalder/timetravel-tic-tac-toe/internal/web"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var configPath = flag.String("config", "config.yml", "Path to the yaml config file; environment only when it does not exist")

func main() {
    defer func() {
        if err := recover(); err != nil {
            fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
            os.Exit(1)
        }
    }()
    flag.Usage = func() {
        fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
        flag.PrintDefaults()
        fmt.Fprintln(flag.CommandLine.Output())
        fmt.Fprint(flag.CommandLine.Output(), config.Usage())
    }
    flag.Parse()

    conf := initConfig(*configPath)
    log := initLogger(conf)
    defer func() { _ = log.Sync() }()

    if err := run(log, conf); err != nil {
        log.Error("server stopped", zap.Error(err))
        _ = log.Sync()
        os.Exit(1)
    }
}

func initConfig(path string) *config.Config {
    if _, err := os.Stat(path); err != nil {
        return config.MustLoad("")
    }
    return config.MustLoad(path)
}

func initLogger(conf *config.Config) *zap.Logger {
    zc := zap.NewProductionConfig()
    level, err := zapcore.ParseLevel(conf.LogLevel)
    if err != nil {
        level = zapcore.InfoLevel
    }
    zc.Level = zap.NewAtomicLevelAt(level)
    log, err := zc.Build()
    if err != nil {
        panic(fmt.Errorf("unable to build logger: %w", err))
    }
    return log
}

func run(logger *zap.Logger, conf *config.Config) error {
    log := logger.With(zap.String("component", "main"))

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    svc := app.NewService(logger, nil)
    go svc.RunJanitor(ctx, conf.Sessions.SweepInterval, conf.Sessions.TTL)

    srv := &http.Server{
        Addr: conf.HTTP.Addr,
        Handler: web.NewServer(svc, logger, web.Options{
            Heartbeat:     conf.HTTP.Heartbeat,
            AllowedOrigin: conf.HTTP.AllowedOrigin,
        }),
        // streams and sockets end with the server context
        BaseContext: func(net.Listener) context.Context { return ctx },
    }

    errCh := make(chan error, 1)
    go func() {
        log.Info("starting HTTP server", zap.String("addr", conf.HTTP.Addr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case err := <-errCh:
        return fmt.Errorf("HTTP server error: %w", err)
    case <-ctx.Done():
        log.Info("received signal, shutting down")
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        return fmt.Errorf("shutdown: %w", err)
    }
    log.Info("server stopped", zap.Int("games", svc.Len()))
    return nil
}
