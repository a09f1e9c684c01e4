package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/infra"
)

func main() {
	var printOnly bool
	flag.BoolVar(&printOnly, "print", false, "print the schema instead of applying it")
	flag.Parse()

	if printOnly {
		fmt.Print(infra.Schema())
		return
	}

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := infra.Migrate(ctx, dbURL, &logger); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("schema applied")
}
