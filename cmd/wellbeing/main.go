package main

import (
	"context"
	"fmt"
	"os"
	"wellbeing/internal/app"
	"wellbeing/internal/config"
	"wellbeing/internal/logger"
)

func main() {
	c := &cli{open: openFromConfig}
	err := newRootCmd(c).Execute()
	// post-run hooks are skipped when a command fails
	if c.app != nil {
		c.app.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openFromConfig opens the store named by the environment or WELLBEING_CONFIG.
// Logs go to stderr so command output stays pipeable.
func openFromConfig(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New("prod")
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log.With("component", "cli"))
}
