package assistant

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/VladOS-0/dmi-assistant/dmi"
)

type StateDB struct {
	db *sql.DB
}

func NewStateDB(file string) (*StateDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS file (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, crc TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS state (id INTEGER PRIMARY KEY NOT NULL, file_id INTEGER NOT NULL, name TEXT NOT NULL, dirs INTEGER NOT NULL, frames INTEGER NOT NULL, movement INTEGER NOT NULL, FOREIGN KEY(file_id) REFERENCES file(id) ON DELETE CASCADE)"); err != nil {
		return nil, err
	}

	return &StateDB{
		db: db,
	}, nil
}

func (db *StateDB) Close() error {
	return db.db.Close()
}

// Fingerprint returns the checksum recorded for path during the last
// scan, or the empty string when the path is not indexed yet.
func (db *StateDB) Fingerprint(path string) (string, error) {
	var crc string
	switch err := db.db.QueryRow("SELECT crc FROM file WHERE path = ?", path).Scan(&crc); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return crc, nil
	default:
		return "", err
	}
}

// SetFile records a scanned icon, replacing any states indexed for it
// before.
func (db *StateDB) SetFile(path, crc string, cfg dmi.Config) error {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM file WHERE path = ?", path).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO file (path, crc, width, height) VALUES (?, ?, ?, ?)", path, crc, cfg.Width, cfg.Height)
		if err != nil {
			return err
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}
	case nil:
		if _, err := db.db.Exec("UPDATE file SET crc = ?, width = ?, height = ? WHERE id = ?", crc, cfg.Width, cfg.Height, id); err != nil {
			return err
		}
		if _, err := db.db.Exec("DELETE FROM state WHERE file_id = ?", id); err != nil {
			return err
		}
	default:
		return err
	}

	for _, s := range cfg.States {
		if _, err := db.db.Exec("INSERT INTO state (file_id, name, dirs, frames, movement) VALUES (?, ?, ?, ?, ?)", id, s.Name, s.Dirs, s.Frames, s.Movement); err != nil {
			return err
		}
	}

	return nil
}

// StateHit is one search result.
type StateHit struct {
	Path     string
	Name     string
	Dirs     int
	Frames   int
	Movement bool
}

// SearchStates returns every indexed state whose name matches pattern.
// The pattern understands * and ? wildcards; without either it matches
// as a substring.
func (db *StateDB) SearchStates(pattern string) ([]StateHit, error) {
	like := strings.NewReplacer("*", "%", "?", "_").Replace(pattern)
	if like == pattern {
		like = "%" + like + "%"
	}

	rows, err := db.db.Query("SELECT f.path, s.name, s.dirs, s.frames, s.movement FROM state AS s JOIN file AS f ON s.file_id = f.id WHERE s.name LIKE ? ORDER BY f.path, s.id", like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []StateHit
	for rows.Next() {
		var h StateHit
		if err := rows.Scan(&h.Path, &h.Name, &h.Dirs, &h.Frames, &h.Movement); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

// RemoveMissing drops entries whose files no longer exist on disk and
// returns how many were removed. State rows follow their file through
// the foreign key cascade.
func (db *StateDB) RemoveMissing() (int, error) {
	rows, err := db.db.Query("SELECT id, path FROM file")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			return 0, err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			missing = append(missing, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range missing {
		if _, err := db.db.Exec("DELETE FROM file WHERE id = ?", id); err != nil {
			return 0, err
		}
	}

	return len(missing), nil
}

// Stats returns how many files and states the index holds.
func (db *StateDB) Stats() (int, int, error) {
	var files, states int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM file").Scan(&files); err != nil {
		return 0, 0, err
	}
	if err := db.db.QueryRow("SELECT COUNT(*) FROM state").Scan(&states); err != nil {
		return 0, 0, err
	}
	return files, states, nil
}
