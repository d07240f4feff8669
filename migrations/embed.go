// Package migrations содержит SQL миграции PostgreSQL хранилища.
package migrations

import "embed"

// FS встроенные файлы миграций.
//
//go:embed *.sql
var FS embed.FS
