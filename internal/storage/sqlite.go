package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/claimsight/claimsight/internal/models"
)

// SQLiteStore implements Store using SQLite. Vectors are stored as
// little-endian float32 blobs, metadata as JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fragments (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		vector BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_fragments_document_id ON fragments(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

// InsertFragments stores fragments in one transaction so readers see either
// none or all of a batch's rows per fragment.
func (s *SQLiteStore) InsertFragments(ctx context.Context, fragments []*models.ContentFragment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fragments (id, document_id, content, metadata, vector, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, f := range fragments {
		metadataJSON, err := json.Marshal(f.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal metadata for %s: %w", f.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, f.ID, f.DocumentID, f.Content,
			string(metadataJSON), encodeVector(f.Vector), now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert fragment %s: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

// GetFragment returns one fragment by ID.
func (s *SQLiteStore) GetFragment(ctx context.Context, id string) (*models.ContentFragment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, content, metadata, vector FROM fragments WHERE id = ?`, id)
	f, err := scanFragment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("fragment not found: %s", id)
	}
	return f, err
}

// ListFragments returns all fragments in insertion order.
func (s *SQLiteStore) ListFragments(ctx context.Context) ([]*models.ContentFragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, metadata, vector FROM fragments ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []*models.ContentFragment
	for rows.Next() {
		f, err := scanFragment(rows)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

// DeleteByDocument removes every fragment owned by documentID.
func (s *SQLiteStore) DeleteByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM fragments WHERE document_id = ?`, documentID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM fragments WHERE document_id = ?`, documentID); err != nil {
		return nil, fmt.Errorf("delete fragments for %s: %w", documentID, err)
	}
	return ids, nil
}

// Count returns the number of stored fragments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFragment(row rowScanner) (*models.ContentFragment, error) {
	var f models.ContentFragment
	var metadataJSON string
	var vectorBlob []byte
	if err := row.Scan(&f.ID, &f.DocumentID, &f.Content, &metadataJSON, &vectorBlob); err != nil {
		return nil, err
	}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &f.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", f.ID, err)
		}
	}
	f.Vector = decodeVector(vectorBlob)
	return &f, nil
}

func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	out := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(x))
	}
	return out
}

func decodeVector(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
