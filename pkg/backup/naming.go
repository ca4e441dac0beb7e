package backup

import (
	"path/filepath"
	"strings"
	"time"
)

// OutputPath returns "<folder>/<timestamp>__<name>".
func OutputPath(folder string, ts time.Time, layout, name string) string {
	return filepath.Join(folder, ts.Format(layout)+"__"+name)
}

// FolderArchiveName derives the archive name of a data folder:
// "/home/alice/www/" becomes "home.alice.www.tgz".
func FolderArchiveName(folder string) string {
	name := strings.ReplaceAll(folder, "/", ".")
	name = strings.Trim(name, ".")
	return strings.ToLower(name) + ".tgz"
}

// DumpName returns the dump file name of a database, e.g.
// "postgresql.shop.gz".
func DumpName(engine, database string) string {
	return engine + "." + strings.ToLower(database) + ".gz"
}
