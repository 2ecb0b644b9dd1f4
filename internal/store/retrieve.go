// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PaperRecord is a stored paper with its concept batch.
type PaperRecord struct {
	ID            string          `json:"id"`
	ArxivID       string          `json:"arxiv_id"`
	Title         string          `json:"title"`
	Authors       []string        `json:"authors"`
	Abstract      string          `json:"abstract"`
	Year          int             `json:"year"`
	CitationCount int             `json:"citation_count"`
	Journal       string          `json:"journal"`
	DOI           string          `json:"doi"`
	Concepts      []ConceptRecord `json:"concepts"`
}

// ConceptRecord is a stored concept row.
type ConceptRecord struct {
	ID              string  `json:"id"`
	PaperID         string  `json:"paper_id"`
	Name            string  `json:"name"`
	Explanation     string  `json:"explanation"`
	Order           int     `json:"concept_order"`
	ImportanceScore float64 `json:"importance_score"`
}

// GetPaperWithConcepts loads a paper by arXiv ID along with its concepts
// in batch order. A missing paper returns an error wrapping sql.ErrNoRows.
func (s *Store) GetPaperWithConcepts(ctx context.Context, arxivID string) (*PaperRecord, error) {
	var (
		p           PaperRecord
		authorsJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, arxiv_id, title, authors, abstract, year, citation_count, journal, doi
		 FROM papers WHERE arxiv_id = ?`, arxivID,
	).Scan(&p.ID, &p.ArxivID, &p.Title, &authorsJSON, &p.Abstract, &p.Year,
		&p.CitationCount, &p.Journal, &p.DOI)
	if err != nil {
		return nil, fmt.Errorf("loading paper %s: %w", arxivID, err)
	}
	if authorsJSON != "" {
		json.Unmarshal([]byte(authorsJSON), &p.Authors)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, name, explanation, concept_order, importance_score
		 FROM concepts WHERE paper_id = ? ORDER BY concept_order`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("loading concepts for %s: %w", arxivID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c ConceptRecord
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Name, &c.Explanation, &c.Order, &c.ImportanceScore); err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		p.Concepts = append(p.Concepts, c)
	}
	return &p, rows.Err()
}

// SearchConcepts returns concepts whose name matches the query substring,
// most important first.
func (s *Store) SearchConcepts(ctx context.Context, query string, limit int) ([]ConceptRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, name, explanation, concept_order, importance_score
		 FROM concepts WHERE name LIKE ? ORDER BY importance_score DESC LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching concepts: %w", err)
	}
	defer rows.Close()

	var out []ConceptRecord
	for rows.Next() {
		var c ConceptRecord
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Name, &c.Explanation, &c.Order, &c.ImportanceScore); err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CitedPaper is one entry in the Stats top-cited list.
type CitedPaper struct {
	ArxivID       string `json:"arxiv_id"`
	Title         string `json:"title"`
	CitationCount int    `json:"citation_count"`
}

// Stats summarizes the content database.
type Stats struct {
	Papers           int          `json:"papers"`
	Concepts         int          `json:"concepts"`
	Questions        int          `json:"questions"`
	AvgConceptsPaper float64      `json:"avg_concepts_per_paper"`
	TopCited         []CitedPaper `json:"top_cited"`
}

// GetStats computes database-wide counts and the five most cited papers.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM papers`, &st.Papers},
		{`SELECT COUNT(*) FROM concepts`, &st.Concepts},
		{`SELECT COUNT(*) FROM questions`, &st.Questions},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("counting rows: %w", err)
		}
	}
	if st.Papers > 0 {
		st.AvgConceptsPaper = float64(st.Concepts) / float64(st.Papers)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT arxiv_id, title, citation_count FROM papers
		 ORDER BY citation_count DESC, arxiv_id LIMIT 5`)
	if err != nil {
		return Stats{}, fmt.Errorf("querying top cited: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cp CitedPaper
		if err := rows.Scan(&cp.ArxivID, &cp.Title, &cp.CitationCount); err != nil {
			return Stats{}, fmt.Errorf("scanning top cited: %w", err)
		}
		st.TopCited = append(st.TopCited, cp)
	}
	return st, rows.Err()
}

// QuestionRow is a stored question row with decoded content.
type QuestionRow struct {
	ID            string   `json:"id"`
	LevelID       string   `json:"level_id"`
	Stem          string   `json:"stem"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
	PairID        string   `json:"pair_id"`
	Score         int      `json:"score"`
}

// QuestionsForLevel returns the level's question rows in insertion order.
func (s *Store) QuestionsForLevel(ctx context.Context, levelID string) ([]QuestionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level_id, stem, content, answer, score FROM questions
		 WHERE level_id = ? ORDER BY rowid`, levelID)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionRow
	for rows.Next() {
		var (
			q                       QuestionRow
			contentJSON, answerJSON string
		)
		if err := rows.Scan(&q.ID, &q.LevelID, &q.Stem, &contentJSON, &answerJSON, &q.Score); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		var content questionContent
		if err := json.Unmarshal([]byte(contentJSON), &content); err != nil {
			return nil, fmt.Errorf("decoding question content: %w", err)
		}
		var answer questionAnswer
		if err := json.Unmarshal([]byte(answerJSON), &answer); err != nil {
			return nil, fmt.Errorf("decoding question answer: %w", err)
		}
		q.Type = content.Type
		q.Options = content.Options
		q.PairID = content.PairID
		q.CorrectOption = answer.CorrectOption
		q.Explanation = answer.Explanation
		out = append(out, q)
	}
	return out, rows.Err()
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
