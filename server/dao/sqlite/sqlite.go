// Package sqlite provides the sqlite-backed implementation of the dao
// store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/thingtalk/server/dao"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type store struct {
	db *sql.DB
}

// NewDatastore opens (creating if needed) the example database in the
// given directory.
func NewDatastore(storageDir string) (dao.Store, error) {
	fileName := filepath.Join(storageDir, "examples.db")

	db, err := sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st := &store{db: db}
	if err := st.init(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (st *store) init() error {
	_, err := st.db.Exec(`CREATE TABLE IF NOT EXISTS examples (
		id TEXT NOT NULL PRIMARY KEY,
		sentence TEXT NOT NULL,
		sequence TEXT NOT NULL,
		entities TEXT NOT NULL,
		thingtalk TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (st *store) Close() error {
	return st.db.Close()
}

func (st *store) CreateExample(ctx context.Context, ex dao.Example) (dao.Example, error) {
	ex.ID = uuid.New()
	ex.Created = time.Now().UTC()

	_, err := st.db.ExecContext(ctx,
		`INSERT INTO examples (id, sentence, sequence, entities, thingtalk, created) VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID.String(), ex.Sentence, ex.Sequence, ex.Entities, ex.ThingTalk, ex.Created.Unix(),
	)
	if err != nil {
		return dao.Example{}, wrapDBError(err)
	}
	return ex, nil
}

func (st *store) GetExample(ctx context.Context, id uuid.UUID) (dao.Example, error) {
	row := st.db.QueryRowContext(ctx,
		`SELECT id, sentence, sequence, entities, thingtalk, created FROM examples WHERE id = ?`,
		id.String(),
	)
	return scanExample(row)
}

func (st *store) ListExamples(ctx context.Context) ([]dao.Example, error) {
	rows, err := st.db.QueryContext(ctx,
		`SELECT id, sentence, sequence, entities, thingtalk, created FROM examples ORDER BY created DESC`,
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var out []dao.Example
	for rows.Next() {
		ex, err := scanExample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	return out, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanExample(row scannable) (dao.Example, error) {
	var ex dao.Example
	var idStr string
	var created int64

	err := row.Scan(&idStr, &ex.Sentence, &ex.Sequence, &ex.Entities, &ex.ThingTalk, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dao.Example{}, dao.ErrNotFound
		}
		return dao.Example{}, wrapDBError(err)
	}

	ex.ID, err = uuid.Parse(idStr)
	if err != nil {
		return dao.Example{}, fmt.Errorf("stored example has malformed id %q: %w", idStr, err)
	}
	ex.Created = time.Unix(created, 0).UTC()
	return ex, nil
}

func wrapDBError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("database error: %s", sqliteErr.Error())
	}
	return fmt.Errorf("database error: %w", err)
}
