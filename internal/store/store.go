/*
Package store
File: store.go
Description:
    SQLite persistence for what the user edits at runtime: assignees with
    their favorite schematics, and one inventory snapshot per galaxy.

    Inventory snapshots are stored as lz4-compressed JSON together with the
    BLAKE3 hash of the compressed blob. The hash is checked on load, so a
    damaged row is reported instead of silently feeding the alert engine.
*/

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/assignee"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/catalog"
)

// ErrNoSnapshot is returned when a galaxy has no saved inventory.
var ErrNoSnapshot = errors.New("no inventory snapshot")

// ErrCorruptSnapshot is returned when a snapshot fails its hash check.
var ErrCorruptSnapshot = errors.New("inventory snapshot hash mismatch")

const schema = `
CREATE TABLE IF NOT EXISTS assignees (
	name TEXT PRIMARY KEY COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS favorites (
	assignee TEXT NOT NULL COLLATE NOCASE,
	schematic_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (assignee, schematic_id)
);
CREATE TABLE IF NOT EXISTS inventory_snapshots (
	galaxy TEXT PRIMARY KEY,
	saved_at INTEGER,
	state_blob BLOB,
	final_hash TEXT
);
`

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveAssignees replaces the stored assignees and favorites with list.
func (s *Store) SaveAssignees(list []assignee.Assignee) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM assignees"); err != nil {
		return err
	}
	for _, a := range list {
		if _, err := tx.Exec("INSERT INTO assignees (name) VALUES (?)", a.Name); err != nil {
			return fmt.Errorf("assignee %q: %w", a.Name, err)
		}
		for i, id := range a.Favorites {
			if _, err := tx.Exec("INSERT OR IGNORE INTO favorites (assignee, schematic_id, position) VALUES (?, ?, ?)", a.Name, id, i); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadAssignees returns the stored assignees, names ascending and favorites
// in the order they were saved.
func (s *Store) LoadAssignees() ([]assignee.Assignee, error) {
	rows, err := s.db.Query("SELECT name FROM assignees ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	var out []assignee.Assignee
	for rows.Next() {
		var a assignee.Assignee
		if err := rows.Scan(&a.Name); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		favs, err := s.favorites(out[i].Name)
		if err != nil {
			return nil, err
		}
		out[i].Favorites = favs
	}
	return out, nil
}

func (s *Store) favorites(name string) ([]int, error) {
	rows, err := s.db.Query("SELECT schematic_id FROM favorites WHERE assignee = ? ORDER BY position", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveInventory stores docs as the galaxy's inventory snapshot and returns its hash.
func (s *Store) SaveInventory(galaxy string, docs []catalog.InventoryDoc) (string, error) {
	raw, err := json.Marshal(docs)
	if err != nil {
		return "", err
	}
	blob, err := Compress(raw)
	if err != nil {
		return "", err
	}
	hash := Fingerprint(blob)
	_, err = s.db.Exec("INSERT OR REPLACE INTO inventory_snapshots (galaxy, saved_at, state_blob, final_hash) VALUES (?, ?, ?, ?)",
		galaxy, time.Now().Unix(), blob, hash)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// LoadInventory returns the galaxy's inventory snapshot and its hash.
func (s *Store) LoadInventory(galaxy string) ([]catalog.InventoryDoc, string, error) {
	var blob []byte
	var hash string
	err := s.db.QueryRow("SELECT state_blob, final_hash FROM inventory_snapshots WHERE galaxy = ?", galaxy).Scan(&blob, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w for galaxy %q", ErrNoSnapshot, galaxy)
	}
	if err != nil {
		return nil, "", err
	}
	if Fingerprint(blob) != hash {
		return nil, "", fmt.Errorf("%w for galaxy %q", ErrCorruptSnapshot, galaxy)
	}
	raw, err := Decompress(blob)
	if err != nil {
		return nil, "", err
	}
	var docs []catalog.InventoryDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, "", err
	}
	return docs, hash, nil
}
