package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/abarbosa/atendo/internal/app"
	"github.com/abarbosa/atendo/internal/profile"
	"github.com/abarbosa/atendo/internal/tui"
)

// maxRestarts caps how many times the dashboard is relaunched after a
// panic in the event loop before giving up.
const maxRestarts = 2

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for attempt := 0; ; attempt++ {
		panicked := runOnce(profileName)
		if !panicked {
			return
		}
		if attempt >= maxRestarts {
			fmt.Fprintf(os.Stderr, "error: giving up after %d restarts\n", attempt+1)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "dashboard crashed, restarting")
	}
}

// runOnce builds, starts and runs a full dashboard instance. It returns
// true when the run ended in a panic, in which case main may retry.
func runOnce(profileName string) (panicked bool) {
	var ui *tui.App
	fxApp := fx.New(
		app.Module(app.Params{ProfileName: profileName}),
		fx.Populate(&ui),
		// The TUI owns the terminal; fx's own log lines would corrupt it.
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelStop()
		if err := fxApp.Stop(stopCtx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	runErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
				fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			}
		}()
		return ui.Run()
	}()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
	return panicked
}
