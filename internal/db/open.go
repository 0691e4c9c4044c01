package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var ErrNotInitialized = errors.New("product store has not been initialized")
var ErrAlreadyExists = errors.New("product store already exists")

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens the sqlite file at `path` (or `:memory:`) without touching the schema.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// it also keeps `:memory:` databases alive, since each connection would get its own.
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

// OpenExisting opens a store that was created with Create, it fails with
// ErrNotInitialized if there is no file at `path`.
func OpenExisting(path string) (*sql.DB, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no file at %s", ErrNotInitialized, path)
	}
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return OpenDB(path)
}

// Create creates a new store at `path` with the schema applied. An existing
// store is only replaced when `force` is set.
func Create(path string, force bool) (*sql.DB, error) {
	_, err := os.Stat(path)
	if err == nil {
		if !force {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		for _, f := range []string{path, path + "-wal", path + "-shm"} {
			err := os.Remove(f)
			if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("remove old store: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, wrapOpenDB(err)
	}

	if dir := filepath.Dir(path); dir != "" {
		err = os.MkdirAll(dir, 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
