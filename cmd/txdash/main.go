package main

import (
	"context"
	"fmt"
	"os"

	"txdash/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "txdash: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "txdash: %v\n", err)
		os.Exit(1)
	}
}
