// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// executor factories with pkg/storage and their dialects with pkg/sqlgen.
//
// Importing it makes these kinds available at runtime:
//
//   - "sqlite"   (casmidb/internal/storage/sqlite)
//   - "postgres" (casmidb/internal/storage/postgres)
//   - "mysql"    (casmidb/internal/storage/mysql)
//   - "mssql"    (casmidb/internal/storage/mssql)
//
// Typical usage:
//
//	import (
//	    _ "casmidb/pkg/storage/all"
//
//	    "casmidb/pkg/entity"
//	    "casmidb/pkg/storage"
//	)
//
//	exec, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "file:bar.db"})
//	if err != nil {
//	    // handle error
//	}
//	defer exec.Close()
//
//	rec, err := entity.Bind(ctx, exec, &Alcohol{})
//
// A binary that needs only a subset of backends can blank-import those
// packages directly instead.
package all

import (
	_ "casmidb/internal/storage/mssql"
	_ "casmidb/internal/storage/mysql"
	_ "casmidb/internal/storage/postgres"
	_ "casmidb/internal/storage/sqlite"
)
