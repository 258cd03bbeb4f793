// Command generate_schema migrates an in-memory database and writes the
// resulting DDL to internal/database/sqlc/schema.sql, the schema sqlc
// generates typed queries from and tests load directly.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dvc-go/internal/database"
	"dvc-go/internal/database/migrations"
)

const header = `-- Generated from internal/database/migrations/files/*.sql.
-- Do not edit. Run 'go generate ./internal/database' to regenerate.

`

// Tables first so indexes and triggers can refer to them.
const schemaQuery = `
	SELECT sql || ';'
	FROM sqlite_master
	WHERE type IN ('table', 'index', 'trigger')
	  AND sql IS NOT NULL
	  AND name NOT LIKE 'sqlite_%'
	  AND tbl_name != 'schema_migrations'
	ORDER BY CASE type WHEN 'table' THEN 1 WHEN 'index' THEN 2 ELSE 3 END, name
`

func main() {
	out := flag.String("out", filepath.Join("internal", "database", "sqlc", "schema.sql"), "output path")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s from migrations\n", *out)
}

func run(out string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return err
	}
	schema, err := dumpSchema(db)
	if err != nil {
		return err
	}
	return os.WriteFile(out, []byte(header+schema), 0644)
}

func dumpSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(schemaQuery)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning statement: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	return b.String(), rows.Err()
}
