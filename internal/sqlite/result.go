package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/scryhq/scry/internal/domain/research"
)

// ResultRepository implements research.ResultRepository for SQLite.
type ResultRepository struct {
	db *DB
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db *DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// UpsertBatch writes one research run atomically. Raw results joined to a
// summary by identifier become new rows or, when the identifier already
// exists, an updated_at bump; raw results without a summary were judged
// irrelevant and are skipped. Every surviving (query, result) pair gets a
// link row, inserted idempotently.
func (r *ResultRepository) UpsertBatch(ctx context.Context, sets []research.QueryResultSet, purpose, question string) error {
	ids := make([]string, 0, 16)
	seen := make(map[string]bool)
	for _, set := range sets {
		for _, raw := range set.RawResults {
			if !seen[raw.ID] {
				seen[raw.ID] = true
				ids = append(ids, raw.ID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	err := r.db.withWriteTx(ctx, func(tx *sql.Tx) error {
		existing, err := existingIDs(ctx, tx, ids)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, set := range sets {
			summaries := make(map[string]research.Summary, len(set.Summaries))
			for _, s := range set.Summaries {
				summaries[s.ID] = s
			}

			for _, raw := range set.RawResults {
				summary, relevant := summaries[raw.ID]
				if !relevant {
					continue
				}

				if existing[raw.ID] {
					if _, err := tx.ExecContext(ctx,
						`UPDATE results SET updated_at = ? WHERE id = ?`,
						now, raw.ID); err != nil {
						return fmt.Errorf("updating result %s: %w", raw.ID, err)
					}
				} else {
					if _, err := tx.ExecContext(ctx, `
						INSERT INTO results (
							id, title, author, url, dense_summary, relevance_summary,
							text, relevance_score, query_purpose, query_question,
							published_date, created_at, updated_at
						) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
						raw.ID,
						nullable(raw.Title),
						nullable(raw.Author),
						nullable(raw.URL),
						summary.DenseSummary,
						summary.RelevanceSummary,
						raw.Text,
						raw.Score,
						purpose,
						question,
						nullable(raw.PublishedDate),
						now,
						now,
					); err != nil {
						// A row created by an earlier batch between the
						// existence check and now; fall back to a bump.
						if !isUniqueViolation(err) {
							return fmt.Errorf("inserting result %s: %w", raw.ID, err)
						}
						if _, err := tx.ExecContext(ctx,
							`UPDATE results SET updated_at = ? WHERE id = ?`,
							now, raw.ID); err != nil {
							return fmt.Errorf("updating result %s: %w", raw.ID, err)
						}
					}
					// The same identifier may appear in a sibling set of this
					// batch; treat it as existing from here on.
					existing[raw.ID] = true
				}

				if set.QueryID == "" {
					continue
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO query_results (query_id, result_id) VALUES (?, ?)
					ON CONFLICT(query_id, result_id) DO NOTHING`,
					set.QueryID, raw.ID); err != nil {
					return fmt.Errorf("linking query %s to result %s: %w", set.QueryID, raw.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert result batch: %w", err)
	}
	return nil
}

// ListRecent returns persisted results ordered by relevance score then
// recency, both descending.
func (r *ResultRepository) ListRecent(ctx context.Context, limit int) ([]research.PersistedResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+resultColumns+`
		FROM results
		ORDER BY relevance_score DESC, created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// Get retrieves a result by identifier.
func (r *ResultRepository) Get(ctx context.Context, id string) (*research.PersistedResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+resultColumns+`
		FROM results
		WHERE id = ?`, id)

	res, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, research.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return res, nil
}

// GetFullTexts returns the results matching ids, in input order. Unknown
// identifiers are silently omitted.
func (r *ResultRepository) GetFullTexts(ctx context.Context, ids []string) ([]research.PersistedResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+resultColumns+`
		FROM results
		WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get full texts: %w", err)
	}
	defer rows.Close()

	found, err := scanResults(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]research.PersistedResult, len(found))
	for _, res := range found {
		byID[res.ID] = res
	}
	ordered := make([]research.PersistedResult, 0, len(found))
	for _, id := range ids {
		if res, ok := byID[id]; ok {
			ordered = append(ordered, res)
		}
	}
	return ordered, nil
}

// Exists reports whether an identifier is already taken.
func (r *ResultRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM results WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check result existence: %w", err)
	}
	return exists, nil
}

const resultColumns = `
	id, title, author, url, dense_summary, relevance_summary,
	text, relevance_score, query_purpose, query_question,
	published_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*research.PersistedResult, error) {
	var res research.PersistedResult
	var title, author, url, publishedDate sql.NullString
	err := row.Scan(
		&res.ID,
		&title,
		&author,
		&url,
		&res.DenseSummary,
		&res.RelevanceSummary,
		&res.Text,
		&res.RelevanceScore,
		&res.QueryPurpose,
		&res.QueryQuestion,
		&publishedDate,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Title = title.String
	res.Author = author.String
	res.URL = url.String
	res.PublishedDate = publishedDate.String
	return &res, nil
}

func scanResults(rows *sql.Rows) ([]research.PersistedResult, error) {
	var results []research.PersistedResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

func existingIDs(ctx context.Context, tx *sql.Tx, ids []string) (map[string]bool, error) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM results WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching existing results: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning existing result id: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing ids: %w", err)
	}
	return existing, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
