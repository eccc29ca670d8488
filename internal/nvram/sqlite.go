package nvram

import (
	"database/sql"
	"fmt"
	"log/slog"

	dbutil "github.com/llehouerou/sdjuke/internal/db"
)

const currentSchemaVersion = 1

// SQLite is a Device backed by a SQLite database, one row per written byte.
// Like File, the contents are cached at open and writes go straight through.
type SQLite struct {
	db     *sql.DB
	data   []byte
	err    error
	logger *slog.Logger
}

// OpenSQLite opens or creates the database at path (":memory:" for a private
// in-memory database) and loads the first size bytes.
func OpenSQLite(path string, size int) (*SQLite, error) {
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	data, err := loadImage(db, size)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load image: %w", err)
	}

	return &SQLite{
		db:     db,
		data:   data,
		logger: slog.Default().With("component", "nvram.SQLite", "path", path),
	}, nil
}

func initSchema(db *sql.DB) error {
	return dbutil.WithTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS nvram (
				address INTEGER PRIMARY KEY CHECK (address >= 0),
				value INTEGER NOT NULL CHECK (value BETWEEN 0 AND 255)
			);
		`)
		if err != nil {
			return err
		}

		version, err := dbutil.SchemaVersion(tx)
		if err != nil {
			return err
		}
		if version == currentSchemaVersion {
			return nil
		}
		return dbutil.SetSchemaVersion(tx, currentSchemaVersion)
	})
}

func loadImage(db *sql.DB, size int) ([]byte, error) {
	data := erasedImage(size)

	rows, err := db.Query(`SELECT address, value FROM nvram WHERE address < ?`, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var addr int
		var value int
		if err := rows.Scan(&addr, &value); err != nil {
			return nil, err
		}
		data[addr] = byte(value)
	}
	return data, rows.Err()
}

func (d *SQLite) Byte(addr int) byte {
	checkAddr(addr, len(d.data))
	return d.data[addr]
}

// SetByte writes v at addr. Unchanged bytes are not rewritten.
func (d *SQLite) SetByte(addr int, v byte) {
	checkAddr(addr, len(d.data))
	if d.data[addr] == v {
		return
	}
	d.data[addr] = v
	_, err := d.db.Exec(`
		INSERT INTO nvram (address, value) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET value = excluded.value
	`, addr, int(v))
	if err != nil {
		d.err = err
		d.logger.Warn("write failed", "addr", addr, "error", err)
	}
}

func (d *SQLite) Size() int { return len(d.data) }

// Err returns the last write error, if any.
func (d *SQLite) Err() error { return d.err }

// Close closes the database.
func (d *SQLite) Close() error { return d.db.Close() }

// Verify SQLite implements Device at compile time.
var _ Device = (*SQLite)(nil)
