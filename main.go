package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pokeart/pokeart-go/cmd"
	"github.com/pokeart/pokeart-go/internal/app"
	"github.com/pokeart/pokeart-go/internal/buildinfo"
)

// buildDate time is set at build time
var buildDate string

// version is set at build time
var version string

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := app.NewContext(buildinfo.NewContext(version, buildDate))
	rootCmd := cmd.RootCommand(appCtx)

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := appCtx.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		return 1
	}
	return 0
}
