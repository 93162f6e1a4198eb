package main

import (
	"fmt"
	"os"

	"lexscribe/cmd/lexscribe/cmd"
	"lexscribe/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
