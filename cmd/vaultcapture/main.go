package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"vaultcapture/internal/services"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		code := services.ExitCode(err)
		if code == 0 {
			code = 1
		}
		os.Exit(code)
	}
}
