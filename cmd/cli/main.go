package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/imagekeeper/internal/client/cli"
	"github.com/dmitrijs2005/imagekeeper/internal/client/config"
	"github.com/dmitrijs2005/imagekeeper/internal/flagx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	args := flagx.Positional(os.Args[1:], append([]string{"-c", "-config"}, config.Flags...))

	app := cli.NewApp(cfg, os.Stdin, os.Stdout)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
