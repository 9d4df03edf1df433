// Package migrations holds the embedded ClickHouse schema and applies it
// on startup.
package migrations

import "embed"

// ClickhouseFS embeds all ClickHouse migration files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
