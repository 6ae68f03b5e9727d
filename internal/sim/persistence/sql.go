// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/emgardner/keller-xline/internal/sim/model"
)

// SQLStorage persists the memory image in a SQL database, one row per byte
// of the image. It assumes a table `sensor_memory` exists (or creates it).
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
	data   []byte
	// shadow mirrors the last persisted image so OnWrite only has to
	// upsert the bytes that actually changed.
	shadow []byte
}

// NewSQLStorage creates a new SQLStorage.
// Note: The driver (e.g., sqlite3, mysql) must be imported in main.go
func NewSQLStorage(driver, dsn string) *SQLStorage {
	return &SQLStorage{
		driver: driver,
		dsn:    dsn,
	}
}

// Load connects to the DB and loads the memory image.
func (s *SQLStorage) Load() (*model.Memory, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	s.db = db

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	s.data = make([]byte, totalSize)

	rows, err := db.Query("SELECT offset, value FROM sensor_memory")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to query memory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var offset, val int
		if err := rows.Scan(&offset, &val); err != nil {
			continue
		}
		if offset < 0 || offset >= totalSize {
			continue
		}
		s.data[offset] = byte(val)
	}

	s.shadow = make([]byte, totalSize)
	copy(s.shadow, s.data)

	return mapBytesToModel(s.data), nil
}

func (s *SQLStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sensor_memory (
		offset INTEGER PRIMARY KEY,
		value INTEGER
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save upserts the whole image in one transaction.
func (s *SQLStorage) Save(m *model.Memory) error {
	if s.db == nil {
		return fmt.Errorf("sql storage not loaded")
	}
	return s.upsert(func(offset int) bool { return true })
}

// OnWrite upserts the bytes that changed since the last persist.
func (s *SQLStorage) OnWrite() {
	if s.db == nil {
		return
	}
	err := s.upsert(func(offset int) bool {
		return s.data[offset] != s.shadow[offset]
	})
	if err != nil {
		slog.Error("Failed to persist sensor memory", "err", err)
	}
}

func (s *SQLStorage) upsert(changed func(offset int) bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	// Upsert logic (SQLite compatible)
	stmt, err := tx.Prepare("INSERT INTO sensor_memory (offset, value) VALUES (?, ?) ON CONFLICT(offset) DO UPDATE SET value=excluded.value")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for offset := 0; offset < totalSize; offset++ {
		if !changed(offset) {
			continue
		}
		if _, err := stmt.Exec(offset, int64(s.data[offset])); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	copy(s.shadow, s.data)
	return nil
}

// Close closes the database connection.
func (s *SQLStorage) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}
