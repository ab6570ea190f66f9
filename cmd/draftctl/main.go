package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/starford/draftdeck/internal/cli"
)

func main() {
	app := cli.NewApp(os.Stdin, os.Stdout)
	if err := app.Command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
