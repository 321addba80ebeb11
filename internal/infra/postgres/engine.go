// Where: cli/internal/infra/postgres/engine.go
// What: pgx implementation of the database engine port.
// Why: Run create, drop, session, grant, and inventory statements against Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
)

const (
	codeObjectInUse       = "55006"
	codeDuplicateDatabase = "42P04"

	defaultConnectTimeout = 10 * time.Second
)

// Engine opens one short-lived connection per statement group.
type Engine struct {
	ConnectTimeout time.Duration
	// SSLMode is passed through to libpq-style parsing; empty keeps pgx's prefer mode.
	SSLMode string
}

// NewEngine returns an Engine with default timeouts.
func NewEngine() *Engine {
	return &Engine{ConnectTimeout: defaultConnectTimeout}
}

var _ dbops.Engine = (*Engine)(nil)

func (e *Engine) connect(ctx context.Context, c dbops.Conn) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(e.dsn(c))
	if err != nil {
		return nil, fmt.Errorf("parse connection config: %w", err)
	}
	cfg.Password = c.Password
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s:%d/%s as %s: %w", c.Host, c.Port, c.Database, c.User, err)
	}
	return conn, nil
}

// dsn renders a keyword/value connection string. The password is set on the
// parsed config so it never appears in a string that could reach an error.
func (e *Engine) dsn(c dbops.Conn) string {
	timeout := e.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	parts := []string{
		"host=" + quoteValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"dbname=" + quoteValue(c.Database),
		"user=" + quoteValue(c.User),
		"connect_timeout=" + strconv.Itoa(int(timeout.Seconds())),
	}
	if e.SSLMode != "" {
		parts = append(parts, "sslmode="+quoteValue(e.SSLMode))
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (e *Engine) with(ctx context.Context, c dbops.Conn, fn func(*pgx.Conn) error) error {
	conn, err := e.connect(ctx, c)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(context.Background()) }()
	return classify(fn(conn))
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeObjectInUse:
			return fmt.Errorf("%w: %s", lifecycle.ErrDatabaseInUse, pgErr.Message)
		case codeDuplicateDatabase:
			return fmt.Errorf("%w: %s", lifecycle.ErrDatabaseExists, pgErr.Message)
		}
	}
	return err
}

func ident(parts ...string) string {
	return pgx.Identifier(parts).Sanitize()
}

// CreateDatabase creates name owned by owner from template0.
func (e *Engine) CreateDatabase(ctx context.Context, admin dbops.Conn, name, owner string) error {
	return e.with(ctx, admin, func(conn *pgx.Conn) error {
		stmt := fmt.Sprintf("CREATE DATABASE %s OWNER %s TEMPLATE template0", ident(name), ident(owner))
		_, err := conn.Exec(ctx, stmt)
		return err
	})
}

// DropDatabase drops name. Open sessions make the statement fail with ErrDatabaseInUse.
func (e *Engine) DropDatabase(ctx context.Context, admin dbops.Conn, name string, ifExists bool) error {
	return e.with(ctx, admin, func(conn *pgx.Conn) error {
		stmt := "DROP DATABASE " + ident(name)
		if ifExists {
			stmt = "DROP DATABASE IF EXISTS " + ident(name)
		}
		_, err := conn.Exec(ctx, stmt)
		return err
	})
}

func (e *Engine) DatabaseExists(ctx context.Context, admin dbops.Conn, name string) (bool, error) {
	var exists bool
	err := e.with(ctx, admin, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	})
	return exists, err
}

func (e *Engine) CountSessions(ctx context.Context, admin dbops.Conn, name string) (int, error) {
	var n int
	err := e.with(ctx, admin, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			"SELECT count(*) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()", name,
		).Scan(&n)
	})
	return n, err
}

// TerminateSessions ends every other backend attached to name and reports how many were signalled.
func (e *Engine) TerminateSessions(ctx context.Context, admin dbops.Conn, name string) (int, error) {
	var n int
	err := e.with(ctx, admin, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT count(*) FILTER (WHERE terminated)
FROM (
	SELECT pg_terminate_backend(pid) AS terminated
	FROM pg_stat_activity
	WHERE datname = $1 AND pid <> pg_backend_pid()
) AS sessions`, name).Scan(&n)
	})
	return n, err
}

// GrantAll grants the owner full privileges on the public schema objects of conn.Database.
func (e *Engine) GrantAll(ctx context.Context, c dbops.Conn, owner string) error {
	role := ident(owner)
	stmts := []string{
		fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s", ident(c.Database), role),
		fmt.Sprintf("GRANT ALL ON SCHEMA public TO %s", role),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA public TO %s", role),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON ALL SEQUENCES IN SCHEMA public TO %s", role),
	}
	return e.with(ctx, c, func(conn *pgx.Conn) error {
		return execAll(ctx, conn, stmts)
	})
}

// ReassignOwnership hands every public table, sequence, and view to owner.
func (e *Engine) ReassignOwnership(ctx context.Context, c dbops.Conn, owner string) error {
	return e.with(ctx, c, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT c.relname,
	CASE c.relkind WHEN 'S' THEN 'SEQUENCE' WHEN 'v' THEN 'VIEW' WHEN 'm' THEN 'MATERIALIZED VIEW' ELSE 'TABLE' END
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = 'public' AND c.relkind IN ('r', 'p', 'S', 'v', 'm')
ORDER BY c.relname`)
		if err != nil {
			return err
		}
		type object struct{ name, kind string }
		objects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (object, error) {
			var o object
			err := row.Scan(&o.name, &o.kind)
			return o, err
		})
		if err != nil {
			return err
		}
		stmts := make([]string, 0, len(objects))
		for _, o := range objects {
			stmts = append(stmts, fmt.Sprintf("ALTER %s %s OWNER TO %s", o.kind, ident("public", o.name), ident(owner)))
		}
		return execAll(ctx, conn, stmts)
	})
}

// Inspect counts rows of every user table in conn.Database.
func (e *Engine) Inspect(ctx context.Context, c dbops.Conn) (dbops.Inventory, error) {
	inv := dbops.Inventory{Tables: map[string]int64{}}
	err := e.with(ctx, c, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT table_schema, table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`)
		if err != nil {
			return err
		}
		tables, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]string, error) {
			var t [2]string
			err := row.Scan(&t[0], &t[1])
			return t, err
		})
		if err != nil {
			return err
		}
		for _, t := range tables {
			var n int64
			if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+ident(t[0], t[1])).Scan(&n); err != nil {
				return fmt.Errorf("count %s.%s: %w", t[0], t[1], err)
			}
			inv.Tables[t[0]+"."+t[1]] = n
		}
		return nil
	})
	return inv, err
}

func execAll(ctx context.Context, conn *pgx.Conn, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
