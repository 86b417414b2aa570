package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tinyrange/quadgl/internal/app"
	"github.com/tinyrange/quadgl/internal/window"
	"github.com/tinyrange/quadgl/internal/window/desktop"
)

// GLFW must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func newWindow(opts window.Options) (window.Window, error) {
	w, err := desktop.New(opts)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := app.New(newWindow).Run(ctx, os.Args[1:])
	stop()
	if code := app.ExitCode(err); code != 0 {
		fmt.Fprintf(os.Stderr, "quadgl: %v\n", err)
		os.Exit(code)
	}
}
