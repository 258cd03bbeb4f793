package database

// schema.sql is dumped from the migrations; sqlc reads it together with
// sqlc/queries/*.sql to produce the typed query layer in sqlc/.

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"
