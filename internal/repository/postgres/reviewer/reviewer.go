package pg_reviewer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/confdesk/review-engine/internal/domain"
)

// ReviewerRepo is the postgres-backed reviewer directory. maxLoad bounds the
// number of assignments a reviewer may hold; AppendAssignment enforces it
// inside a single transaction.
type ReviewerRepo struct {
	db      *sql.DB
	maxLoad int
}

func New(db *sql.DB, maxLoad int) *ReviewerRepo {
	return &ReviewerRepo{db: db, maxLoad: maxLoad}
}

func (r *ReviewerRepo) List(ctx context.Context, interest string) ([]domain.Reviewer, error) {
	query := "SELECT reviewer_id, name, email, interest FROM reviewers"
	args := []any{}
	if interest != "" {
		query += " WHERE interest = $1"
		args = append(args, interest)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list reviewers: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	reviewers := make([]domain.Reviewer, 0)
	for rows.Next() {
		var rev domain.Reviewer
		if err := rows.Scan(&rev.ID, &rev.Name, &rev.Email, &rev.Interest); err != nil {
			return nil, fmt.Errorf("%w: scan reviewer row: %v", domain.ErrStoreUnavailable, err)
		}
		reviewers = append(reviewers, rev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: reviewer rows: %v", domain.ErrStoreUnavailable, rows.Err())
	}

	for i := range reviewers {
		assignments, err := r.listAssignments(ctx, reviewers[i].ID)
		if err != nil {
			return nil, err
		}
		reviewers[i].Assignments = assignments
	}

	return reviewers, nil
}

func (r *ReviewerRepo) GetByID(ctx context.Context, reviewerID string) (*domain.Reviewer, error) {
	rev := &domain.Reviewer{}
	query := "SELECT reviewer_id, name, email, interest FROM reviewers WHERE reviewer_id = $1"
	err := r.db.QueryRowContext(ctx, query, reviewerID).Scan(
		&rev.ID,
		&rev.Name,
		&rev.Email,
		&rev.Interest,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrReviewerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get reviewer: %v", domain.ErrStoreUnavailable, err)
	}

	rev.Assignments, err = r.listAssignments(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	return rev, nil
}

func (r *ReviewerRepo) Upsert(ctx context.Context, rev domain.Reviewer) (*domain.Reviewer, error) {
	query := `
		INSERT INTO reviewers (reviewer_id, name, email, interest)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reviewer_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			interest = EXCLUDED.interest
	`
	_, err := r.db.ExecContext(ctx, query, rev.ID, rev.Name, rev.Email, rev.Interest)
	if err != nil {
		return nil, fmt.Errorf("%w: upsert reviewer: %v", domain.ErrStoreUnavailable, err)
	}

	return r.GetByID(ctx, rev.ID)
}

// AppendAssignment adds a submission to a reviewer's assignment list. The
// load check and the insert run in one transaction with the reviewer row
// locked, so two concurrent calls cannot both slip past the last free slot.
func (r *ReviewerRepo) AppendAssignment(ctx context.Context, reviewerID, submissionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin append assignment: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		"SELECT reviewer_id FROM reviewers WHERE reviewer_id = $1 FOR UPDATE",
		reviewerID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return domain.ErrReviewerNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: lock reviewer: %v", domain.ErrStoreUnavailable, err)
	}

	var load int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviewer_assignments WHERE reviewer_id = $1",
		reviewerID,
	).Scan(&load)
	if err != nil {
		return fmt.Errorf("%w: count assignments: %v", domain.ErrStoreUnavailable, err)
	}
	if load >= r.maxLoad {
		return domain.ErrCapacityExceeded
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM reviewer_assignments WHERE reviewer_id = $1 AND submission_id = $2)",
		reviewerID, submissionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: check duplicate assignment: %v", domain.ErrStoreUnavailable, err)
	}
	if exists {
		return domain.ErrAlreadyAssigned
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO reviewer_assignments (reviewer_id, submission_id, status, assigned_at) VALUES ($1, $2, $3, $4)",
		reviewerID, submissionID, domain.DecisionPending, time.Now().In(time.UTC),
	)
	if err != nil {
		return fmt.Errorf("%w: insert assignment: %v", domain.ErrStoreUnavailable, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit append assignment: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *ReviewerRepo) listAssignments(ctx context.Context, reviewerID string) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT submission_id, status, assigned_at FROM reviewer_assignments WHERE reviewer_id = $1 ORDER BY assigned_at",
		reviewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list assignments: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.SubmissionID, &a.Status, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("%w: scan assignment row: %v", domain.ErrStoreUnavailable, err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
