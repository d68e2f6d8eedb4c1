package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/aristath/orbat/internal/cli"
)

func main() {
	cli.Register()
	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
