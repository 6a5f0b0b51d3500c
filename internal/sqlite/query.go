package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scryhq/scry/internal/domain/research"
)

// QueryRepository implements research.QueryRepository for SQLite.
type QueryRepository struct {
	db *DB
}

// NewQueryRepository creates a new QueryRepository.
func NewQueryRepository(db *DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// Create stores a generated query and returns its row identifier.
func (r *QueryRepository) Create(ctx context.Context, q research.Query) (string, error) {
	id := uuid.NewString()
	err := r.db.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO queries (id, text, category, livecrawl, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id,
			q.Text,
			nullable(string(q.Category)),
			q.Livecrawl,
			time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to create query: %w", err)
	}
	return id, nil
}
