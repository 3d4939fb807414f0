package main

import (
	"context"
	"fmt"
	"os"

	"rosterkeeper/internal/server"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
