package infra

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the embedded DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// Migrate applies the embedded schema in a single transaction. Every statement
// is idempotent, so running it against an up-to-date database is a no-op.
func Migrate(ctx context.Context, databaseURL string, logger *Logger) error {
	if strings.TrimSpace(databaseURL) == "" {
		return fmt.Errorf("migrate: database url is required")
	}
	if logger == nil {
		logger = NopLogger()
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("migrate: ping: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statements := splitStatements(schemaSQL)
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	logger.Info().Int("statements", len(statements)).Msg("schema applied")
	return nil
}

// splitStatements breaks the schema on semicolons at line ends. The schema
// holds no function bodies, so no statement contains an inner terminator.
func splitStatements(schema string) []string {
	var (
		out []string
		buf strings.Builder
	)
	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
