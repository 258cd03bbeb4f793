package database

import _ "embed"

// Schema is the full DDL produced by the migrations, for tests and tools
// that need a ready database without running golang-migrate.
//
//go:embed sqlc/schema.sql
var Schema string
