package backup

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// listTimeout bounds database listing queries.
const listTimeout = 30 * time.Second

// DatabaseLister lists the databases of a server.
type DatabaseLister interface {
	ListDatabases(ctx context.Context) ([]string, error)
}

// filterDatabases drops excluded names, keeping the server order.
func filterDatabases(databases, exclude []string) []string {
	var kept []string
	for _, db := range databases {
		if slices.Contains(exclude, db) {
			continue
		}
		kept = append(kept, db)
	}
	return kept
}

// SQLLister lists databases through a database/sql connection.
type SQLLister struct {
	driver string
	dsn    string
	query  string
}

// NewPgxLister lists PostgreSQL databases through pgx using dsn, e.g.
// "postgres://backup@localhost/postgres".
func NewPgxLister(dsn string) *SQLLister {
	return &SQLLister{
		driver: "pgx",
		dsn:    dsn,
		query:  "SELECT datname FROM pg_database ORDER BY datname",
	}
}

// NewMySQLLister lists MySQL databases with SHOW DATABASES.
func NewMySQLLister(user, password, host string, port int) *SQLLister {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + strconv.Itoa(port)
	cfg.Timeout = listTimeout

	return &SQLLister{
		driver: "mysql",
		dsn:    cfg.FormatDSN(),
		query:  "SHOW DATABASES",
	}
}

// ListDatabases implements DatabaseLister.
func (l *SQLLister) ListDatabases(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	db, err := sql.Open(l.driver, l.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", l.driver, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, l.query)
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return names, nil
}

// PsqlLister lists PostgreSQL databases by running psql, as the database
// superuser when a root user is configured. It is used when no DSN is set
// and peer authentication is the only way in.
type PsqlLister struct {
	commander Commander
	argv      []string
}

// NewPsqlLister creates a lister running psqlPath through commander.
func NewPsqlLister(commander Commander, rootUser, psqlPath string) *PsqlLister {
	argv := append(sudoPrefix(rootUser), psqlPath, "-At", "-c", "SELECT datname FROM pg_database")
	return &PsqlLister{commander: commander, argv: argv}
}

// ListDatabases implements DatabaseLister.
func (l *PsqlLister) ListDatabases(ctx context.Context) ([]string, error) {
	out, err := l.commander.Output(ctx, l.argv)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// sudoPrefix returns the argv prefix running a command as user.
func sudoPrefix(user string) []string {
	if user == "" {
		return nil
	}
	return []string{"sudo", "-u", user}
}
