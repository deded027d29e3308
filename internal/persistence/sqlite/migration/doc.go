// Package migration applies versioned schema migrations to SQLite databases.
//
// Migration files are named {version}_{description}.sql (for example
// "001_initial_schema.sql") and are read from an fs.FS, usually the set
// embedded in this package. Applied versions are tracked in the
// schema_migrations table so every migration runs once, in version order,
// inside its own transaction.
//
// Example usage:
//
//	manager := migration.NewManager(db, migration.Embedded(), logger)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
