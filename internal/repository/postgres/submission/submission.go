package pg_submission

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/confdesk/review-engine/internal/domain"
)

type SubmissionRepo struct {
	db *sql.DB
}

func New(db *sql.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) Create(ctx context.Context, s *domain.Submission) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin create submission: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO submissions (submission_id, title, abstract, topic, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query, s.ID, s.Title, s.Abstract, s.Topic, s.Status, s.CreatedAt)
	if err != nil {
		return domain.ErrSubmissionExists
	}

	for i, author := range s.Authors {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO submission_authors (submission_id, ord, name) VALUES ($1, $2, $3)",
			s.ID, i, author,
		)
		if err != nil {
			return fmt.Errorf("%w: insert author: %v", domain.ErrStoreUnavailable, err)
		}
	}

	for _, ev := range s.Evaluations {
		if err := upsertEvaluation(ctx, tx, s.ID, ev); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit create submission: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, submissionID string) (*domain.Submission, error) {
	query := `
		SELECT title, abstract, topic, status, created_at
		FROM submissions
		WHERE submission_id = $1
	`
	return r.toDomainSubmission(ctx, r.db.QueryRowContext(ctx, query, submissionID), submissionID)
}

func (r *SubmissionRepo) List(ctx context.Context, status domain.Decision) ([]*domain.Submission, error) {
	query := "SELECT submission_id FROM submissions"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at"

	ids, err := r.queryIDs(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return r.getAll(ctx, ids)
}

func (r *SubmissionRepo) ListByIDs(ctx context.Context, submissionIDs []string) ([]*domain.Submission, error) {
	if len(submissionIDs) == 0 {
		return []*domain.Submission{}, nil
	}

	ids, err := r.queryIDs(ctx,
		"SELECT submission_id FROM submissions WHERE submission_id = ANY($1) ORDER BY created_at",
		pq.Array(submissionIDs),
	)
	if err != nil {
		return nil, err
	}

	return r.getAll(ctx, ids)
}

// Update persists the submission's status and evaluation list as one
// transaction. Evaluations are upserted by reviewer id and never deleted.
func (r *SubmissionRepo) Update(ctx context.Context, s *domain.Submission) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin update submission: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE submissions SET status = $1 WHERE submission_id = $2",
		s.Status, s.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: update submission status: %v", domain.ErrStoreUnavailable, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrSubmissionNotFound
	}

	for _, ev := range s.Evaluations {
		if err := upsertEvaluation(ctx, tx, s.ID, ev); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit update submission: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func upsertEvaluation(ctx context.Context, tx *sql.Tx, submissionID string, ev domain.Evaluation) error {
	query := `
		INSERT INTO submission_evaluations (submission_id, reviewer_id, decision, corrections, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (submission_id, reviewer_id) DO UPDATE SET
			decision = EXCLUDED.decision,
			corrections = EXCLUDED.corrections,
			recorded_at = EXCLUDED.recorded_at
	`
	_, err := tx.ExecContext(ctx, query, submissionID, ev.ReviewerID, ev.Decision, ev.Corrections, ev.RecordedAt)
	if err != nil {
		return fmt.Errorf("%w: upsert evaluation: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *SubmissionRepo) toDomainSubmission(ctx context.Context, row *sql.Row, submissionID string) (*domain.Submission, error) {
	s := &domain.Submission{ID: submissionID}

	err := row.Scan(
		&s.Title,
		&s.Abstract,
		&s.Topic,
		&s.Status,
		&s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get submission: %v", domain.ErrStoreUnavailable, err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM submission_authors WHERE submission_id = $1 ORDER BY ord",
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list authors: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan author row: %v", domain.ErrStoreUnavailable, err)
		}
		s.Authors = append(s.Authors, name)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: author rows: %v", domain.ErrStoreUnavailable, rows.Err())
	}

	evRows, err := r.db.QueryContext(ctx,
		"SELECT reviewer_id, decision, corrections, recorded_at FROM submission_evaluations WHERE submission_id = $1 ORDER BY recorded_at",
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list evaluations: %v", domain.ErrStoreUnavailable, err)
	}
	defer evRows.Close()

	for evRows.Next() {
		var ev domain.Evaluation
		if err := evRows.Scan(&ev.ReviewerID, &ev.Decision, &ev.Corrections, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("%w: scan evaluation row: %v", domain.ErrStoreUnavailable, err)
		}
		s.Evaluations = append(s.Evaluations, ev)
	}

	return s, evRows.Err()
}

func (r *SubmissionRepo) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list submissions: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan submission id: %v", domain.ErrStoreUnavailable, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *SubmissionRepo) getAll(ctx context.Context, ids []string) ([]*domain.Submission, error) {
	subs := make([]*domain.Submission, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}
