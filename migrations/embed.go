// Package migrations ships the postgres schema of the cart snapshot store.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair, named for golang-migrate.
//
//go:embed *.sql
var FS embed.FS
