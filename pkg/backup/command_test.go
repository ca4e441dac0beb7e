package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellCommander_Run(t *testing.T) {
	c := NewShellCommander(false, io.Discard, quietLogger())

	require.NoError(t, c.Run(context.Background(), "true", false))

	err := c.Run(context.Background(), "echo boom >&2; exit 3", false)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "echo boom >&2; exit 3", cmdErr.Command)
	assert.Equal(t, "boom", cmdErr.Output)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, err.Error(), `command failed: "echo boom >&2; exit 3"`)
}

func TestShellCommander_DryRun(t *testing.T) {
	var preview bytes.Buffer
	c := NewShellCommander(true, &preview, quietLogger())
	marker := filepath.Join(t.TempDir(), "marker")

	require.NoError(t, c.Run(context.Background(), "touch "+marker, false))
	assert.NoFileExists(t, marker)
	assert.Equal(t, "[dry-run] touch "+marker+"\n", preview.String())

	// Forced commands run anyway.
	require.NoError(t, c.Run(context.Background(), "touch "+marker, true))
	assert.FileExists(t, marker)

	preview.Reset()
	dst := filepath.Join(t.TempDir(), "db.gz")
	require.NoError(t, c.Dump(context.Background(), []string{"pg_dump", "app"}, nil, dst, -1))
	require.NoError(t, c.Exec(context.Background(), []string{"vacuumdb", "-z", "app"}, nil))
	assert.NoFileExists(t, dst)
	assert.Equal(t, "[dry-run] pg_dump app | gzip > \""+dst+"\"\n[dry-run] vacuumdb -z app\n", preview.String())
}

func TestShellCommander_Dump(t *testing.T) {
	c := NewShellCommander(false, io.Discard, quietLogger())
	dst := filepath.Join(t.TempDir(), "2024-01-10_02-00-00__mysql.blog.gz")

	err := c.Dump(context.Background(), []string{"sh", "-c", `printf "%s" "$DUMP_BODY"`}, []string{"DUMP_BODY=CREATE TABLE t;"}, dst, 6)
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.Equal(t, "CREATE TABLE t;", string(data))
	assert.Equal(t, "2024-01-10_02-00-00__mysql.blog", zr.Name)
}

func TestShellCommander_DumpFailure(t *testing.T) {
	c := NewShellCommander(false, io.Discard, quietLogger())
	dst := filepath.Join(t.TempDir(), "broken.gz")

	err := c.Dump(context.Background(), []string{"sh", "-c", "echo partial; echo denied >&2; exit 1"}, nil, dst, -1)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "denied", cmdErr.Output)
	assert.NoFileExists(t, dst)
}

func TestShellCommander_Output(t *testing.T) {
	c := NewShellCommander(true, io.Discard, quietLogger())

	// Queries run in dry-run mode too.
	out, err := c.Output(context.Background(), []string{"printf", "postgres\ntemplate1\n"})
	require.NoError(t, err)
	assert.Equal(t, "postgres\ntemplate1\n", string(out))
}

func TestPsqlLister(t *testing.T) {
	cmd := &fakeCommander{output: []byte("postgres\ntemplate1\n\n shop \n")}

	names, err := NewPsqlLister(cmd, "postgres", "psql").ListDatabases(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"postgres", "template1", "shop"}, names)
	assert.Equal(t, []string{`output sudo -u postgres psql -At -c SELECT datname FROM pg_database`}, cmd.callList())
}

func TestFilterDatabases(t *testing.T) {
	got := filterDatabases([]string{"template0", "shop", "blog", "template1"}, []string{"template0", "template1"})
	assert.Equal(t, []string{"shop", "blog"}, got)

	assert.Empty(t, filterDatabases(nil, []string{"x"}))
}

func TestNewMySQLLister(t *testing.T) {
	l := NewMySQLLister("root", "s3cret", "db.local", 3307)

	assert.Equal(t, "mysql", l.driver)
	assert.Contains(t, l.dsn, "root:s3cret@tcp(db.local:3307)/")
	assert.Equal(t, "SHOW DATABASES", l.query)
}

func TestSQLLister_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 on localhost refuses connections.
	_, err := NewPgxLister("postgres://nobody@127.0.0.1:1/postgres?connect_timeout=1").ListDatabases(ctx)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	ts := time.Date(2024, time.March, 22, 10, 30, 15, 0, time.UTC)

	assert.Equal(t, "/backups/daily/2024-03-22_10-30-15__postgresql.shop.gz",
		OutputPath("/backups/daily", ts, "2006-01-02_15-04-05", DumpName("postgresql", "Shop")))
}

func TestCommandError(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &CommandError{Command: "umount /mnt", Err: inner}

	assert.Equal(t, `command failed: "umount /mnt": exit status 1`, err.Error())
	assert.ErrorIs(t, err, inner)
}
