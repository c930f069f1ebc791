package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "vision-search",
		Usage: "распознавание объектов на изображениях и поиск по найденным классам",
		Commands: []*cli.Command{
			detectCommand(),
			scanCommand(),
			classesCommand(),
			searchCommand(),
			botCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
