// Package history keeps a journal of backup runs in a local SQLite
// database.
//
// Every run recorded with Store.Record keeps its timing, the number and
// size of the files it wrote, its rotation counters and the list of
// errors it hit. "easybackup history" reads the journal back with List.
//
// # Usage
//
//	store, err := history.Open("/var/lib/easybackup/history.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Record(ctx, report); err != nil {
//	    return err
//	}
//	runs, err := store.List(ctx, 10)
//
// The database uses the pure Go modernc.org/sqlite driver in WAL mode.
package history
