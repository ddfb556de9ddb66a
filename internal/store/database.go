package store

import (
	"database/sql"
	"fmt"
	"runtime"

	"github.com/cfme-qe/coverage-reporter/internal/settings"
)

func InitDatabase(as *settings.AppSettings, readonly bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", as.SQLiteDbString(readonly))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if readonly {
		db.SetMaxOpenConns(max(4, runtime.NumCPU()))
	} else {
		if _, err := db.Exec("PRAGMA temp_store=memory"); err != nil {
			return nil, err
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
	}

	return db, nil
}
