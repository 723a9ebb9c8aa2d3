package main

import (
    "flag"
    "fmt"
    "os"

    "github.com/jaminalder/timetravel-tic-tac-toe/internal/term"
    "github.com/muesli/termenv"
    "go.uber.org/zap"
)

var debug = flag.Bool("debug", false, "Log ignored moves to stderr")

func main() {
    flag.Parse()

    log := zap.NewNop()
    if *debug {
        var err error
        if log, err = zap.NewDevelopment(); err != nil {
            fmt.Fprintf(os.Stderr, "unable to build logger: %v\n", err)
            os.Exit(1)
        }
    }
    defer func() { _ = log.Sync() }()

    out := termenv.NewOutput(os.Stdout)
    g := term.NewGame(out, nil, log)
    if err := g.Run(os.Stdin); err != nil {
        log.Error("terminal game failed", zap.Error(err))
        os.Exit(1)
    }
}
