package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/infra"
	"studio/internal/infra/credentials"
)

func main() {
	var (
		idFlag     string
		secretFlag string
	)
	flag.StringVar(&idFlag, "token-id", "", "Mux access token id (fallbacks to MUX_TOKEN_ID)")
	flag.StringVar(&secretFlag, "token-secret", "", "Mux access token secret (fallbacks to MUX_TOKEN_SECRET)")
	flag.Parse()

	creds := credentials.MuxCredentials{
		TokenID:     strings.TrimSpace(idFlag),
		TokenSecret: strings.TrimSpace(secretFlag),
	}
	if creds.TokenID == "" {
		creds.TokenID = strings.TrimSpace(os.Getenv("MUX_TOKEN_ID"))
	}
	if creds.TokenSecret == "" {
		creds.TokenSecret = strings.TrimSpace(os.Getenv("MUX_TOKEN_SECRET"))
	}
	if creds.Empty() {
		fmt.Fprintln(os.Stderr, "token id and secret are required via -token-id/-token-secret or environment")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "muxkey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.SetMuxCredentials(ctxExec, creds); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist mux credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Mux credentials stored successfully")
}
