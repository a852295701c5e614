package main

import (
	"context"
	"fmt"
	"os"

	"shamewizard/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "shamewizard:", err)
		os.Exit(1)
	}
}
