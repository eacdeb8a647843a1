package storage

import (
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/boxsim/internal/dynamo"
)

const createFramesSQL = `CREATE TABLE IF NOT EXISTS frames (
	step     INTEGER NOT NULL,
	time     REAL    NOT NULL,
	particle INTEGER NOT NULL,
	x        REAL    NOT NULL,
	y        REAL    NOT NULL,
	vx       REAL    NOT NULL,
	vy       REAL    NOT NULL,
	PRIMARY KEY (step, particle)
);`

const insertFrameSQL = `INSERT INTO frames (step, time, particle, x, y, vx, vy) VALUES (?, ?, ?, ?, ?, ?, ?)`

// SQLiteRecorder stores every committed step in a SQLite database. Each
// step is written in its own transaction.
type SQLiteRecorder struct {
	db     *sql.DB
	insert *sql.Stmt
}

func OpenSQLite(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteRecorder(db)
}

// NewSQLiteRecorder uses an already opened database. The recorder takes
// ownership and closes db on Close.
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	if _, err := db.Exec(createFramesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create frames table: %w", err)
	}
	stmt, err := db.Prepare(insertFrameSQL)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRecorder{db: db, insert: stmt}, nil
}

func (r *SQLiteRecorder) Emit(step int, t float64, e dynamo.Ensemble) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(r.insert)
	for i, s := range e {
		if _, err := stmt.Exec(step, t, i, s[dynamo.PosX], s[dynamo.PosY], s[dynamo.VelX], s[dynamo.VelY]); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert step %d particle %d: %w", step, i, err)
		}
	}
	return tx.Commit()
}

// ReadFrames returns every stored step in order.
func (r *SQLiteRecorder) ReadFrames() ([]Frame, error) {
	rows, err := r.db.Query(`SELECT step, time, particle, x, y, vx, vy FROM frames ORDER BY step, particle`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []row
	for rows.Next() {
		var rw row
		if err := rows.Scan(&rw.step, &rw.time, &rw.particle,
			&rw.state[dynamo.PosX], &rw.state[dynamo.PosY], &rw.state[dynamo.VelX], &rw.state[dynamo.VelY]); err != nil {
			return nil, err
		}
		all = append(all, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupRows(all)
}

func (r *SQLiteRecorder) Close() error {
	r.insert.Close()
	return r.db.Close()
}
