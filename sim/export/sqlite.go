// Package export writes the output of a finished run to SQLite or CSV for
// offline analysis and plotting.
package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/binsim/binsim/sim"
	"github.com/binsim/binsim/sim/trace"
)

var schema = []string{
	`CREATE TABLE runs (run_id TEXT PRIMARY KEY, summary TEXT)`,
	`CREATE TABLE timelog (run_id TEXT, bucket INTEGER, start REAL, queue_avg REAL, service_avg REAL, stock_avg REAL)`,
	`CREATE TABLE pool_sizes (run_id TEXT, time REAL, size INTEGER)`,
	`CREATE TABLE restocks (run_id TEXT, time REAL)`,
	`CREATE TABLE adapt_decisions (run_id TEXT, clock REAL, policy TEXT, old_size INTEGER, new_size INTEGER,
		ready_at REAL, utilization REAL, queue_time REAL, service_time REAL, request_rate REAL,
		bins_checked REAL, stock INTEGER)`,
	`CREATE TABLE outcomes (run_id TEXT, request_id INTEGER, arrival REAL, completed REAL, requested INTEGER,
		reserved INTEGER, bins_checked INTEGER, queue_time REAL, service_time REAL, satisfied INTEGER)`,
}

// SQLiteWriter stores the output of one run in a fresh SQLite database.
type SQLiteWriter struct {
	*sql.DB
	path  string
	runID string
}

// NewSQLiteWriter creates the database file at path. An empty path picks a
// unique name in the working directory. An existing file is never reused.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	runID := xid.New().String()
	if path == "" {
		path = "binsim_" + runID + ".sqlite3"
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	logrus.Infof("Database created for recording: %s", path)
	return &SQLiteWriter{DB: db, path: path, runID: runID}, nil
}

// Path returns the database file path.
func (w *SQLiteWriter) Path() string { return w.path }

// RunID returns the id written into every row.
func (w *SQLiteWriter) RunID() string { return w.runID }

// WriteRun stores the recorder output, the summary and the trace of a run in
// a single transaction.
func (w *SQLiteWriter) WriteRun(rec *sim.Recorder, summary *sim.Summary, st *trace.SimulationTrace) (err error) {
	tx, err := w.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if _, err = tx.Exec(`INSERT INTO runs VALUES (?, ?)`, w.runID, string(data)); err != nil {
		return err
	}

	tl := rec.Timelog()
	if err = insertRows(tx, `INSERT INTO timelog VALUES (?, ?, ?, ?, ?, ?)`, len(tl.Queue), func(i int) []any {
		return []any{w.runID, i, float64(i) * rec.SampleWidth(), tl.Queue[i], tl.Service[i], tl.Stock[i]}
	}); err != nil {
		return err
	}

	sizes := rec.PoolSizeHistory()
	if err = insertRows(tx, `INSERT INTO pool_sizes VALUES (?, ?, ?)`, len(sizes), func(i int) []any {
		return []any{w.runID, sizes[i].Time, sizes[i].Size}
	}); err != nil {
		return err
	}

	restocks := rec.Restocks()
	if err = insertRows(tx, `INSERT INTO restocks VALUES (?, ?)`, len(restocks), func(i int) []any {
		return []any{w.runID, restocks[i]}
	}); err != nil {
		return err
	}

	if st == nil {
		return nil
	}
	if err = insertRows(tx, `INSERT INTO adapt_decisions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(st.Adaptations), func(i int) []any {
		a := st.Adaptations[i]
		return []any{w.runID, a.Clock, a.Policy, a.OldSize, a.NewSize, a.ReadyAt, a.Utilization,
			a.QueueTime, a.ServiceTime, a.RequestRate, a.BinsChecked, a.Stock}
	}); err != nil {
		return err
	}
	return insertRows(tx, `INSERT INTO outcomes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(st.Outcomes), func(i int) []any {
		o := st.Outcomes[i]
		return []any{w.runID, o.RequestID, o.Arrival, o.Completed, o.Requested, o.Reserved,
			o.BinsChecked, o.QueueTime, o.ServiceTime, o.Satisfied}
	})
}

func insertRows(tx *sql.Tx, query string, n int, row func(int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(row(i)...); err != nil {
			return fmt.Errorf("%s: row %d: %w", query, i, err)
		}
	}
	return nil
}
