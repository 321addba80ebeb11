// Where: cli/internal/dbops/ports.go
// What: Engine and archiver ports for database operations.
// Why: Keep guard and sequencing logic independent of pgx and the pg_dump binaries.
package dbops

import (
	"context"

	"github.com/poruru/envdb/cli/internal/registry"
)

// Conn addresses one database on an environment's server with one set of credentials.
type Conn struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func connFor(p registry.Profile, database string, creds registry.Credentials) Conn {
	return Conn{
		Host:     p.Database.Host,
		Port:     p.Database.Port,
		Database: database,
		User:     creds.User,
		Password: creds.Password,
	}
}

// Engine is the SQL control plane of the database server.
// Statements other than GrantAll, ReassignOwnership and Inspect run against the
// maintenance database addressed by admin.
type Engine interface {
	CreateDatabase(ctx context.Context, admin Conn, name, owner string) error
	DropDatabase(ctx context.Context, admin Conn, name string, ifExists bool) error
	DatabaseExists(ctx context.Context, admin Conn, name string) (bool, error)
	CountSessions(ctx context.Context, admin Conn, name string) (int, error)
	TerminateSessions(ctx context.Context, admin Conn, name string) (int, error)
	GrantAll(ctx context.Context, conn Conn, owner string) error
	ReassignOwnership(ctx context.Context, conn Conn, owner string) error
	Inspect(ctx context.Context, conn Conn) (Inventory, error)
}

// Archiver produces and loads custom-format dump archives.
type Archiver interface {
	Dump(ctx context.Context, source Conn, path string) error
	Restore(ctx context.Context, target Conn, path string) error
}
