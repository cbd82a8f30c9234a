package repository

import (
	"database/sql"

	pg_reviewer "github.com/confdesk/review-engine/internal/repository/postgres/reviewer"
	pg_submission "github.com/confdesk/review-engine/internal/repository/postgres/submission"
)

type Repositories struct {
	Reviewer   *pg_reviewer.ReviewerRepo
	Submission *pg_submission.SubmissionRepo
}

func New(db *sql.DB, maxLoad int) *Repositories {
	return &Repositories{
		Reviewer:   pg_reviewer.New(db, maxLoad),
		Submission: pg_submission.New(db),
	}
}
