// Package main is the entry point for the kanban terminal client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kanban/internal/apiclient"
	"kanban/internal/cli"
	"kanban/internal/clientconfig"
	"kanban/internal/commands"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(cfg *clientconfig.Config) (commands.API, error) {
		return apiclient.New(cfg.ServerURL), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
