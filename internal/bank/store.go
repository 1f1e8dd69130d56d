// Package bank serves quiz questions from the two local SQLite question
// stores: labeled competition problems (olympiad) and a curated
// single-subject set (calculus). Both stores are populated offline and
// queried read-only at runtime.
package bank

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps read-only connections to the two question databases.
type Store struct {
	olympiad *sql.DB
	calculus *sql.DB
}

// Open connects to both question databases. A connection is established
// lazily, so a missing store only fails once a topic actually needs it;
// a missing file path fails up front.
func Open(olympiadPath, calculusPath string) (*Store, error) {
	oly, err := openDB(olympiadPath)
	if err != nil {
		return nil, fmt.Errorf("olympiad store: %w", err)
	}

	calc, err := openDB(calculusPath)
	if err != nil {
		oly.Close()
		return nil, fmt.Errorf("calculus store: %w", err)
	}

	return &Store{olympiad: oly, calculus: calc}, nil
}

// Close closes both database connections.
func (s *Store) Close() error {
	return errors.Join(s.olympiad.Close(), s.calculus.Close())
}

func openDB(path string) (*sql.DB, error) {
	// The driver would create a missing file on first use; the question
	// stores are produced offline, so a missing file is an error.
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("question store not found: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return db, nil
}

// applyPragmas configures the connection for shared read access.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
