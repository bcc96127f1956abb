package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
)

// ErrNoActive is returned when no rule-base version has been activated yet.
var ErrNoActive = errors.New("no active rule base")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS rule_base_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	name          TEXT NOT NULL,
	format        TEXT NOT NULL,
	document      BLOB NOT NULL,
	checksum      TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	metrics_json  TEXT,
	FOREIGN KEY (parent_id) REFERENCES rule_base_versions(version_id)
);

CREATE TABLE IF NOT EXISTS evaluation_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	inputs_json   TEXT NOT NULL,
	outputs_json  TEXT NOT NULL,
	firings_json  TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES rule_base_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_rule_base (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES rule_base_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store manages versioned rule bases in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region new-record
// NewRecord parses data to make sure it is a valid document and wraps it in a
// fresh version record. Nothing is written.
func NewRecord(data []byte, format ruleset.Format, parentID string) (Record, error) {
	doc, err := ruleset.Parse(data, format)
	if err != nil {
		return Record{}, err
	}
	sum := sha256.Sum256(data)
	return Record{
		VersionID: uuid.New().String(),
		ParentID:  parentID,
		Name:      doc.Name,
		Format:    format,
		Document:  append([]byte(nil), data...),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// #endregion new-record

// #region commit-version
// CommitVersion inserts a new version and points the active row at it atomically.
func (s *Store) CommitVersion(rec Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO rule_base_versions (version_id, parent_id, name, format, document, checksum, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), rec.Name, string(rec.Format), rec.Document,
		rec.Checksum, rec.CreatedAt.Format(time.RFC3339Nano), nullIfEmpty(rec.MetricsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_rule_base (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion commit-version

// #region get-current
// HasActive reports whether any version has been activated.
func (s *Store) HasActive() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM active_rule_base`).Scan(&n); err != nil {
		return false, fmt.Errorf("check active: %w", err)
	}
	return n > 0, nil
}

// GetCurrent reads the active rule-base version.
func (s *Store) GetCurrent() (Record, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_rule_base WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoActive
	}
	if err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
const selectVersion = `SELECT version_id, parent_id, name, format, document, checksum, created_at, metrics_json
	FROM rule_base_versions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var parentID, metricsJSON sql.NullString
	var format, createdStr string

	if err := row.Scan(&rec.VersionID, &parentID, &rec.Name, &format, &rec.Document,
		&rec.Checksum, &createdStr, &metricsJSON); err != nil {
		return Record{}, err
	}
	f, err := ruleset.ParseFormat(format)
	if err != nil {
		return Record{}, fmt.Errorf("version %s: %w", rec.VersionID, err)
	}
	rec.Format = f
	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return Record{}, fmt.Errorf("version %s created_at: %w", rec.VersionID, err)
	}
	if metricsJSON.Valid {
		rec.MetricsJSON = metricsJSON.String
	}
	return rec, nil
}

// GetVersion retrieves a specific rule-base version by ID.
func (s *Store) GetVersion(id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(selectVersion+` WHERE version_id = ?`, id))
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-version

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM rule_base_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	_, err = s.db.Exec(
		`INSERT INTO active_rule_base (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		targetVersionID,
	)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region metrics
// UpdateMetrics attaches a JSON blob (usually the coverage report) to a version.
func (s *Store) UpdateMetrics(versionID, metricsJSON string) error {
	res, err := s.db.Exec(
		`UPDATE rule_base_versions SET metrics_json = ? WHERE version_id = ?`,
		nullIfEmpty(metricsJSON), versionID,
	)
	if err != nil {
		return fmt.Errorf("update metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update metrics: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("version %s not found", versionID)
	}
	return nil
}

// #endregion metrics

// #region list-versions
// ListVersions returns the most recent rule-base versions.
func (s *Store) ListVersions(limit int) ([]Record, error) {
	rows, err := s.db.Query(selectVersion+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-versions

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
