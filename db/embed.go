// Package db provides the embedded, versioned database migrations.
package db

import "embed"

// Migrations holds the ordered DDL files under migrations/. Files are applied
// in lexical order and each one runs at most once.
//
//go:embed migrations/*.sql
var Migrations embed.FS
