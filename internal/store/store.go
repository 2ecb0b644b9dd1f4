// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers, concepts, and generated questions in a
// SQLite content database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperplay/pkg/types"
)

const defaultSubjectName = "Machine Learning"

// Store manages the content SQLite database.
type Store struct {
	db        *sql.DB
	subjectID string
}

// NewStore opens or creates the content database at cfg.DBPath, creating
// the schema when absent and ensuring the configured subject row exists.
func NewStore(cfg types.StorageConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	subjectName := cfg.SubjectName
	if subjectName == "" {
		subjectName = defaultSubjectName
	}
	if s.subjectID, err = s.ensureSubject(subjectName); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring subject: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SubjectID returns the id of the subject papers are filed under.
func (s *Store) SubjectID() string {
	return s.subjectID
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS subjects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL REFERENCES subjects(id),
			arxiv_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			year INTEGER,
			citation_count INTEGER DEFAULT 0,
			journal TEXT,
			doi TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS concepts (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			name TEXT NOT NULL,
			explanation TEXT,
			concept_order INTEGER,
			importance_score REAL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_concepts_paper_id ON concepts(paper_id)`,
		`CREATE TABLE IF NOT EXISTS levels (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			name TEXT NOT NULL,
			pass_condition TEXT,
			meta TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_paper_id ON levels(paper_id)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			level_id TEXT NOT NULL REFERENCES levels(id),
			stem TEXT NOT NULL,
			content TEXT NOT NULL,
			answer TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_level_id ON questions(level_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ensureSubject returns the id of the subject row with the given name,
// inserting it when absent.
func (s *Store) ensureSubject(name string) (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM subjects WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	now := timestamp()
	_, err = s.db.Exec(
		`INSERT INTO subjects (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, "Educational content extracted from research papers", now, now,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// InsertPaper stores a paper under the store's subject, updating the
// existing row when the arXiv ID is already present. It returns the
// paper's row id either way.
func (s *Store) InsertPaper(ctx context.Context, paper *types.Paper) (string, error) {
	authorsJSON, _ := json.Marshal(paper.Authors)
	now := timestamp()

	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM papers WHERE arxiv_id = ?`, paper.ArxivID).Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx,
			`UPDATE papers SET title=?, authors=?, abstract=?, year=?, citation_count=?,
			 journal=?, doi=?, updated_at=? WHERE id=?`,
			paper.Title, string(authorsJSON), paper.Abstract, paper.Year, paper.CitationCount,
			paper.Journal, paper.DOI, now, id,
		)
		if err != nil {
			return "", fmt.Errorf("updating paper %s: %w", paper.ArxivID, err)
		}
		return id, nil
	case err != sql.ErrNoRows:
		return "", fmt.Errorf("looking up paper %s: %w", paper.ArxivID, err)
	}

	id = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (id, subject_id, arxiv_id, title, authors, abstract, year,
		 citation_count, journal, doi, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.subjectID, paper.ArxivID, paper.Title, string(authorsJSON), paper.Abstract,
		paper.Year, paper.CitationCount, paper.Journal, paper.DOI, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting paper %s: %w", paper.ArxivID, err)
	}
	return id, nil
}

// InsertConcepts replaces the paper's concept batch with the given list,
// preserving input order via concept_order.
func (s *Store) InsertConcepts(ctx context.Context, paperID string, concepts []types.Concept) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM concepts WHERE paper_id = ?`, paperID); err != nil {
		return fmt.Errorf("deleting old concepts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO concepts (id, paper_id, name, explanation, concept_order, importance_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := timestamp()
	for i, c := range concepts {
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), paperID, c.Name, c.Explanation, i, c.ImportanceScore, now,
		); err != nil {
			return fmt.Errorf("inserting concept %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

// EnsureLevel returns the id of the paper's level row, creating one named
// after the paper title when absent. Each paper carries exactly one level.
func (s *Store) EnsureLevel(ctx context.Context, paperID, paperTitle string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM levels WHERE paper_id = ?`, paperID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("looking up level for paper %s: %w", paperID, err)
	}

	meta, _ := json.Marshal(map[string]string{"paper_id": paperID})
	id = uuid.NewString()
	now := timestamp()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO levels (id, paper_id, name, pass_condition, meta, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, paperID, "Understanding: "+paperTitle, "answer all questions", string(meta), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("inserting level for paper %s: %w", paperID, err)
	}
	return id, nil
}

// Content types stored in the questions table. An analogical pair becomes
// two rows that share one answer payload.
const (
	ContentTypeLeadIn     = "analogical_lead_in"
	ContentTypeConceptual = "conceptual_question"
)

// questionContent is the content JSON stored per question row.
type questionContent struct {
	Type        string   `json:"type"`
	Options     []string `json:"options"`
	Explanation string   `json:"explanation,omitempty"`
	ConceptName string   `json:"concept_name,omitempty"`
	PairID      string   `json:"pair_id"`
}

// questionAnswer is the answer JSON shared by both rows of a pair.
type questionAnswer struct {
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// InsertQuestionPair stores an analogical question as two rows under the
// level: the everyday lead-in and the technical question, linked by a
// shared pair id and identical answer JSON.
func (s *Store) InsertQuestionPair(ctx context.Context, levelID, conceptName string, q *types.AnalogicalQuestion, score int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	answerJSON, _ := json.Marshal(questionAnswer{
		CorrectOption: q.CorrectOption,
		Explanation:   q.Explanation,
	})

	pairID := uuid.NewString()
	now := timestamp()

	rows := []struct {
		stem    string
		content questionContent
	}{
		{
			stem: q.LeadInQuestion,
			content: questionContent{
				Type:    ContentTypeLeadIn,
				Options: q.LeadInOptions,
				PairID:  pairID,
			},
		},
		{
			stem: q.ConceptQuestion,
			content: questionContent{
				Type:        ContentTypeConceptual,
				Options:     q.ConceptOptions,
				Explanation: q.ConceptExplanation,
				ConceptName: conceptName,
				PairID:      pairID,
			},
		},
	}

	for _, r := range rows {
		contentJSON, _ := json.Marshal(r.content)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, level_id, stem, content, answer, score, created_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), levelID, r.stem, string(contentJSON), string(answerJSON),
			score, "system_generated", now,
		); err != nil {
			return fmt.Errorf("inserting question row: %w", err)
		}
	}

	return tx.Commit()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
