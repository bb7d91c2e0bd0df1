package simnet

import (
	"database/sql"
	"fmt"
	"strings"

	// sqlite3 driver registration, as in the teacher's sqlite_logger.go.
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRecorder writes U and V into a SQLite database, one table per
// instance, adapted from the teacher's SQLiteLogger (WAL-mode connection,
// transaction-batched inserts, per-instance table suffixing).
type SQLiteRecorder struct {
	db         *sql.DB
	instanceID int
	nd         int

	uTable, vTable string
}

// NewSQLiteRecorder opens (creating if needed) a SQLite database at path
// and creates fresh U/V tables for this instance.
func NewSQLiteRecorder(path string, instance, nd int) (*SQLiteRecorder, error) {
	db, err := OpenSQLiteDBOptimized(path)
	if err != nil {
		return nil, err
	}
	r := &SQLiteRecorder{db: db, instanceID: instance, nd: nd}
	r.uTable = fmt.Sprintf("U%03d", instance)
	r.vTable = fmt.Sprintf("V%03d", instance)

	stmt := fmt.Sprintf(
		"create table if not exists %s (time_index integer, node integer, compartment integer, count integer);",
		r.uTable)
	if _, err := db.Exec(stmt); err != nil {
		return nil, fmt.Errorf("%q: %s", err, stmt)
	}
	if nd > 0 {
		stmt = fmt.Sprintf(
			"create table if not exists %s (time_index integer, node integer, dimension integer, value real);",
			r.vTable)
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("%q: %s", err, stmt)
		}
	}
	return r, nil
}

// RecordNode implements Recorder by inserting one row per compartment and
// (if present) continuous dimension, all inside one transaction per call.
// Database errors are not reported: RecordNode returns nothing.
func (r *SQLiteRecorder) RecordNode(k int, t float64, nodeIndex int, u []int, v []float64) {
	tx, err := r.db.Begin()
	if err != nil {
		return
	}
	uStmt, err := tx.Prepare("insert into " + r.uTable + " (time_index, node, compartment, count) values (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return
	}
	for c, count := range u {
		uStmt.Exec(k, nodeIndex, c, count)
	}
	uStmt.Close()
	if r.nd > 0 {
		vStmt, err := tx.Prepare("insert into " + r.vTable + " (time_index, node, dimension, value) values (?, ?, ?, ?)")
		if err == nil {
			for d, val := range v {
				vStmt.Exec(k, nodeIndex, d, val)
			}
			vStmt.Close()
		}
	}
	tx.Commit()
}

// Close closes the underlying database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

// OpenSQLiteDBOptimized establishes a database connection using WAL and
// exclusive locking, adapted verbatim from the teacher's sqlite_logger.go.
func OpenSQLiteDBOptimized(path string) (*sql.DB, error) {
	return OpenSQLiteDB(path, "?_journal=WAL&_locking=EXCLUSIVE&_sync=NORMAL")
}

// OpenSQLiteDB establishes a database connection using the given connection
// string, adapted verbatim from the teacher's sqlite_logger.go.
func OpenSQLiteDB(path, connectionString string) (*sql.DB, error) {
	dsn := "file:%s%s"
	return sql.Open("sqlite3", fmt.Sprintf(dsn, strings.TrimPrefix(path, "file:"), connectionString))
}
