package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prudhivi99/bookstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
