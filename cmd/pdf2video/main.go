package main

import (
	"context"
	"os"
	"os/signal"

	_ "go.uber.org/automaxprocs"

	"github.com/mgpai22/pdf2video/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
