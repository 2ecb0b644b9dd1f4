// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vector maintains an embedding index over papers and concepts in
// SQLite, with brute-force cosine similarity search. The corpus is small
// (one row per paper or concept) so a linear scan beats the operational
// cost of a separate vector database.
package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/paperplay/pkg/types"
)

// Collections kept in the index.
const (
	CollectionPapers   = "papers"
	CollectionConcepts = "concepts"
)

// Index stores embeddings in SQLite and answers similarity queries.
type Index struct {
	db         *sql.DB
	embedder   Embedder
	maxResults int
}

// Match is one search result, most similar first.
type Match struct {
	VectorID   string            `json:"vector_id"`
	RefID      string            `json:"ref_id"`
	Document   string            `json:"document"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity"`
}

// NewIndex opens or creates the embedding database at cfg.DBPath.
func NewIndex(cfg types.VectorConfig, embedder Embedder) (*Index, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS vectors (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		document TEXT NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_vectors_collection ON vectors(collection)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &Index{db: db, embedder: embedder, maxResults: maxResults}, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add embeds text and stores it in the named collection. A row with the
// same collection and ref id is replaced. Returns the vector id.
func (ix *Index) Add(ctx context.Context, collection, refID, text string, metadata map[string]string) (string, error) {
	emb, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embedding document: %w", err)
	}

	metaJSON, _ := json.Marshal(metadata)

	if _, err := ix.db.ExecContext(ctx,
		`DELETE FROM vectors WHERE collection = ? AND ref_id = ?`, collection, refID); err != nil {
		return "", fmt.Errorf("removing stale vector: %w", err)
	}

	id := uuid.NewString()
	_, err = ix.db.ExecContext(ctx,
		`INSERT INTO vectors (id, collection, ref_id, document, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, collection, refID, text, string(metaJSON), encodeVector(emb),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting vector: %w", err)
	}
	return id, nil
}

// Search embeds queryText and returns the k most similar documents in the
// collection, ranked by cosine similarity descending. k <= 0 selects the
// configured default.
func (ix *Index) Search(ctx context.Context, collection, queryText string, k int) ([]Match, error) {
	if k <= 0 {
		k = ix.maxResults
	}

	queryVec, err := ix.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, ref_id, document, metadata, embedding FROM vectors WHERE collection = ?`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("loading vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&m.VectorID, &m.RefID, &m.Document, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		emb, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding vector %s: %w", m.VectorID, err)
		}
		if len(emb) != len(queryVec) {
			continue
		}
		if metaJSON != "" && metaJSON != "null" {
			json.Unmarshal([]byte(metaJSON), &m.Metadata)
		}
		m.Similarity = cosine(queryVec, emb)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of vectors in the collection.
func (ix *Index) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vectors WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

// cosine returns the cosine similarity of a and b, zero when either has
// no magnitude.
func cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// encodeVector packs a float64 slice into a little-endian blob.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian blob into a float64 slice.
func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("blob length %d not a multiple of 8", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
